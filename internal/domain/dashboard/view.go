package dashboard

import "github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"

// DefaultPlanName is shown when no plan name is configured.
const DefaultPlanName = "Presbyterian Health Plan"

// ViewStatus describes what the dashboard can render.
type ViewStatus string

const (
	ViewReady ViewStatus = "ready"
	ViewEmpty ViewStatus = "empty"
)

// UtilizationCard is one utilization tile.
type UtilizationCard struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value string  `json:"value"`
	Raw   float64 `json:"raw"`
}

// CostShare is a cost distribution slice with its share of the total.
type CostShare struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
	Share Percent `json:"share"`
	Label string  `json:"label"`
}

// View is the complete dashboard view model.
type View struct {
	PlanName         string            `json:"planName"`
	Title            string            `json:"title"`
	Filters          metrics.Filters   `json:"filters"`
	Status           ViewStatus        `json:"status"`
	KPIs             []KPICard         `json:"kpis"`
	Funnel           Funnel            `json:"funnel"`
	Utilization      []UtilizationCard `json:"utilization"`
	Series           Series            `json:"series"`
	CostDistribution []CostShare       `json:"costDistribution"`
}

// Title returns the dashboard heading for planName.
func Title(planName string) string {
	if planName == "" {
		planName = DefaultPlanName
	}
	return "Key performance metrics and trends for " + planName
}

// BuildView derives every section of the dashboard from one payload. A nil
// payload produces an empty view with defaults resolved.
func BuildView(planName string, f metrics.Filters, m *metrics.DashboardMetrics) View {
	if planName == "" {
		planName = DefaultPlanName
	}
	status := ViewReady
	if m == nil {
		status = ViewEmpty
	}
	n := metrics.Normalize(m)
	return View{
		PlanName:         planName,
		Title:            Title(planName),
		Filters:          f,
		Status:           status,
		KPIs:             BuildKPIs(*n.Organizational),
		Funnel:           BuildFunnel(*n.Opportunity),
		Utilization:      BuildUtilization(*n.CostUtilization),
		Series:           BuildSeries(n.Trend),
		CostDistribution: BuildCostShares(n.CostDistribution),
	}
}

// BuildUtilization returns the four utilization tiles.
func BuildUtilization(cu metrics.CostUtilization) []UtilizationCard {
	plain := func(v float64) string { s, _ := FormatValue(v, Scale{Precision: -1}); return s }
	pct := func(v float64) string { s, _ := FormatValue(v, PercentScale); return s }
	return []UtilizationCard{
		{Key: "edVisitsPer1000", Label: "ED Visits per 1,000", Value: plain(cu.EDVisitsPer1000), Raw: cu.EDVisitsPer1000},
		{Key: "admissionsPer1000", Label: "Admissions per 1,000", Value: plain(cu.AdmissionsPer1000), Raw: cu.AdmissionsPer1000},
		{Key: "readmissionRate", Label: "30-Day Readmission Rate", Value: pct(cu.ReadmissionRate), Raw: cu.ReadmissionRate},
		{Key: "avgLengthOfStay", Label: "Average Length of Stay", Value: plain(cu.AvgLengthOfStay), Raw: cu.AvgLengthOfStay},
	}
}

// BuildCostShares keeps slice order and computes each slice's share of the
// sum of values. Shares are not applicable when the sum is not positive.
func BuildCostShares(slices []metrics.CostSlice) []CostShare {
	var total float64
	for _, s := range slices {
		total += s.Value
	}
	out := make([]CostShare, 0, len(slices))
	for _, s := range slices {
		share := ratio(s.Value, total)
		out = append(out, CostShare{
			Name:  s.Name,
			Value: s.Value,
			Color: s.Color,
			Share: share,
			Label: s.Name + " " + share.String(),
		})
	}
	return out
}
