package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/dashboard"
)

type Format string

const (
	FormatCSV    Format = "csv"
	FormatNDJSON Format = "ndjson"
	FormatHTML   Format = "html"
)

var ErrUnknownFormat = errors.New("export: unknown format")

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatNDJSON, FormatHTML:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the response media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatNDJSON:
		return "application/x-ndjson"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Row is one exported line: a trend chart point or a funnel stage.
type Row struct {
	Section   string   `json:"section"`
	Label     string   `json:"label"`
	MLR       *float64 `json:"mlr,omitempty"`
	PMPM      *float64 `json:"pmpm,omitempty"`
	Projected bool     `json:"projected,omitempty"`
	Amount    string   `json:"amount,omitempty"`
	Percent   string   `json:"percent,omitempty"`
}

const (
	SectionTrend  = "trend"
	SectionFunnel = "funnel"
)

var csvHeader = []string{"section", "label", "mlr", "pmpm", "projected", "amount", "percent"}

// Rows flattens the view: chart points in axis order, then funnel stages.
func Rows(v dashboard.View) []Row {
	rows := make([]Row, 0, len(v.Series.Points)+len(v.Funnel.Stages))
	for _, p := range v.Series.Points {
		mlr, pmpm := p.MLR, p.PMPM
		rows = append(rows, Row{Section: SectionTrend, Label: p.Label, MLR: &mlr, PMPM: &pmpm, Projected: p.IsProjected})
	}
	for i, s := range v.Funnel.Stages {
		r := Row{Section: SectionFunnel, Label: s.Name, Amount: s.Amount}
		// The first stage is the base of every percentage.
		if i > 0 {
			r.Percent = s.Percent.String()
		}
		rows = append(rows, r)
	}
	return rows
}

func WriteCSV(w io.Writer, v dashboard.View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range Rows(v) {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r Row) record() []string {
	num := func(p *float64) string {
		if p == nil {
			return ""
		}
		return strconv.FormatFloat(*p, 'f', -1, 64)
	}
	projected := ""
	if r.Section == SectionTrend {
		projected = strconv.FormatBool(r.Projected)
	}
	return []string{r.Section, r.Label, num(r.MLR), num(r.PMPM), projected, r.Amount, r.Percent}
}

// WriteNDJSON writes one JSON object per row.
func WriteNDJSON(w io.Writer, v dashboard.View) error {
	enc := json.NewEncoder(w)
	for _, r := range Rows(v) {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode row %q: %w", r.Label, err)
		}
	}
	return nil
}
