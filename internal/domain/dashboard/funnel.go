package dashboard

import (
	"math"
	"strconv"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
)

// Percent is a whole-number percentage that may be not applicable.
type Percent struct {
	Value float64
	Valid bool
}

func ratio(num, den float64) Percent {
	if den <= 0 {
		return Percent{}
	}
	v := math.Round(num / den * 100)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Percent{}
	}
	if v == 0 {
		v = 0 // drop negative zero
	}
	return Percent{Value: v, Valid: true}
}

func (p Percent) String() string {
	if !p.Valid {
		return NotAvailable
	}
	return strconv.FormatFloat(p.Value, 'f', 0, 64) + "%"
}

// MarshalJSON encodes an invalid percentage as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, p.Value, 'f', 0, 64), nil
}

// Funnel is the opportunity pipeline view. Stage ordering is not validated, so
// percentages above 100 are possible when upstream violates it.
type Funnel struct {
	Identified     float64 `json:"identified"`
	Addressable    float64 `json:"addressable"`
	Realizable     float64 `json:"realizable"`
	Realized       float64 `json:"realized"`
	Gap            float64 `json:"gap"`
	GapVisible     bool    `json:"gapVisible"`
	AddressablePct Percent `json:"addressablePct"`
	RealizablePct  Percent `json:"realizablePct"`
	RealizedPct    Percent `json:"realizedPct"`
	GapPct         Percent `json:"gapPct"`
	Stages         []Stage `json:"stages"`
}

// Stage is one rendered funnel row.
type Stage struct {
	Name    string  `json:"name"`
	Amount  string  `json:"amount"`
	Percent Percent `json:"percent"`
	Label   string  `json:"label"`
}

// BuildFunnel computes stage shares of totalIdentified and the
// realizable-to-realized gap.
func BuildFunnel(o metrics.Opportunity) Funnel {
	o = metrics.NormalizeOpportunity(&o)
	f := Funnel{
		Identified:     o.TotalIdentified,
		Addressable:    o.Addressable,
		Realizable:     o.Realizable,
		Realized:       o.Realized,
		AddressablePct: ratio(o.Addressable, o.TotalIdentified),
		RealizablePct:  ratio(o.Realizable, o.TotalIdentified),
		RealizedPct:    ratio(o.Realized, o.TotalIdentified),
	}
	if gap := o.Realizable - o.Realized; gap > 0 && o.Realizable > 0 {
		f.Gap = gap
		f.GapVisible = true
		f.GapPct = ratio(gap, o.Realizable)
	}

	f.Stages = []Stage{
		stage("Total Identified", o.TotalIdentified, Percent{}),
		stage("Addressable", o.Addressable, f.AddressablePct),
		stage("Realizable", o.Realizable, f.RealizablePct),
		stage("Realized", o.Realized, f.RealizedPct),
	}
	if f.GapVisible {
		f.Stages = append(f.Stages, stage("Gap", f.Gap, f.GapPct))
	}
	return f
}

func stage(name string, amount float64, pct Percent) Stage {
	s := Stage{Name: name, Percent: pct, Label: name}
	s.Amount, _ = FormatValue(amount, MillionsWhole)
	if name != "Total Identified" {
		s.Label = name + " (" + pct.String() + ")"
	}
	return s
}
