package dashboard

import (
	"strconv"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ChartPoint is one x-axis entry of the MLR/PMPM trend chart.
type ChartPoint struct {
	Label       string  `json:"label"`
	MLR         float64 `json:"mlr"`
	PMPM        float64 `json:"pmpm"`
	IsProjected bool    `json:"isProjected"`
}

// Band marks the forecast region of the chart by its first and last label.
type Band struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Series is the chart-ready trend: history first, then projections.
type Series struct {
	Points          []ChartPoint              `json:"points"`
	Projections     []metrics.QuarterForecast `json:"projections"`
	HasFourQuarters bool                      `json:"hasFourQuarters"`
	ForecastBand    *Band                     `json:"forecastBand,omitempty"`
}

// HistoryLen is the number of historical points.
func (s Series) HistoryLen() int {
	return len(s.Points) - len(s.Projections)
}

func monthLabel(i int) string {
	if i < len(monthLabels) {
		return monthLabels[i]
	}
	return "M" + strconv.Itoa(i+1)
}

func quarterLabel(q int) string {
	return "Next Q" + strconv.Itoa(q)
}

// BuildSeries assembles the trend chart from the rolling arrays and forecast.
// A quarter list is used verbatim; otherwise a single quarter-1 projection is
// taken from the flat next-quarter pair.
func BuildSeries(trend *metrics.Trend) Series {
	t := metrics.NormalizeTrend(trend)
	mlr, pmpm := t.Rolling12MonthMLR, t.Rolling12MonthPMPM
	fc := t.PredictiveForecast

	projections := fc.Quarters
	if len(projections) == 0 {
		projections = []metrics.QuarterForecast{{Quarter: 1, MLR: *fc.MLRNextQuarter, PMPM: *fc.PMPMNextQuarter}}
	}

	points := make([]ChartPoint, 0, len(mlr)+len(projections))
	for i, v := range mlr {
		p := ChartPoint{Label: monthLabel(i), MLR: v}
		if i < len(pmpm) {
			p.PMPM = pmpm[i]
		}
		points = append(points, p)
	}
	for _, q := range projections {
		points = append(points, ChartPoint{
			Label:       quarterLabel(q.Quarter),
			MLR:         q.MLR,
			PMPM:        q.PMPM,
			IsProjected: true,
		})
	}

	s := Series{
		Points:          points,
		Projections:     projections,
		HasFourQuarters: len(projections) >= 4,
	}
	if s.HasFourQuarters {
		s.ForecastBand = &Band{
			Start: quarterLabel(projections[0].Quarter),
			End:   quarterLabel(projections[3].Quarter),
		}
	}
	return s
}
