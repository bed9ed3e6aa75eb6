package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/dashboard"
)

type Chart string

const (
	ChartTrend        Chart = "trend"
	ChartDistribution Chart = "distribution"
)

var ErrUnknownChart = errors.New("export: unknown chart")

func ParseChart(s string) (Chart, error) {
	switch Chart(s) {
	case "", ChartTrend:
		return ChartTrend, nil
	case ChartDistribution:
		return ChartDistribution, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, s)
}

// ChartContentSecurityPolicy lets the rendered page load the echarts bundle
// and run its inline bootstrap script.
const ChartContentSecurityPolicy = "default-src 'none'; script-src 'unsafe-inline' https://go-echarts.github.io; " +
	"style-src 'unsafe-inline'; frame-ancestors 'none'"

const chartHeight = "420px"

func globalOptions(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     types.ThemeWesteros,
			Width:     "100%",
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	}
}

// RenderHTML writes a standalone page with the requested chart of v.
func RenderHTML(w io.Writer, v dashboard.View, chart Chart) error {
	switch chart {
	case ChartDistribution:
		return distributionChart(v).Render(w)
	default:
		return trendChart(v).Render(w)
	}
}

// trendChart plots MLR on the left axis and PMPM on the right. Projected
// quarters follow the history on the same x-axis.
func trendChart(v dashboard.View) *charts.Line {
	subtitle := v.PlanName
	if b := v.Series.ForecastBand; b != nil {
		subtitle += " | Forecast " + b.Start + " to " + b.End
	}

	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions("Rolling 12-Month MLR and PMPM", subtitle)...)
	line.SetGlobalOptions(charts.WithYAxisOpts(opts.YAxis{Name: "MLR (%)"}))
	line.ExtendYAxis(opts.YAxis{Name: "PMPM ($)"})

	labels := make([]string, len(v.Series.Points))
	mlr := make([]opts.LineData, len(v.Series.Points))
	pmpm := make([]opts.LineData, len(v.Series.Points))
	for i, p := range v.Series.Points {
		labels[i] = p.Label
		mlr[i] = opts.LineData{Name: p.Label, Value: p.MLR}
		pmpm[i] = opts.LineData{Name: p.Label, Value: p.PMPM}
	}

	line.SetXAxis(labels).
		AddSeries("MLR", mlr).
		AddSeries("PMPM", pmpm, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

func distributionChart(v dashboard.View) *charts.Pie {
	pie := charts.NewPie()
	global := globalOptions("Cost Distribution", v.PlanName)
	global = append(global, charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}))
	pie.SetGlobalOptions(global...)

	data := make([]opts.PieData, len(v.CostDistribution))
	for i, s := range v.CostDistribution {
		d := opts.PieData{Name: s.Name, Value: s.Value}
		if s.Color != "" {
			d.ItemStyle = &opts.ItemStyle{Color: s.Color}
		}
		data[i] = d
	}
	pie.AddSeries("Cost Distribution", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"35%", "65%"}}),
	)
	return pie
}
