package metrics

import "math"

// Forecast defaults used when upstream omits the next-quarter projection.
const (
	DefaultMLRNextQuarter  = 90.0
	DefaultPMPMNextQuarter = 336.0
)

// Normalize returns a copy of m in which every nested object is present,
// non-finite numbers are replaced and forecast defaults are resolved. A nil
// input yields an all-zero payload with a default forecast. The input is never
// mutated.
func Normalize(m *DashboardMetrics) DashboardMetrics {
	var out DashboardMetrics
	if m == nil {
		m = &DashboardMetrics{}
	}

	org := Organizational{}
	if m.Organizational != nil {
		org = *m.Organizational
	}
	org.TotalMembers = finite(org.TotalMembers)
	org.TotalRevenue = finite(org.TotalRevenue)
	org.TotalMedicalCost = finite(org.TotalMedicalCost)
	org.MLR = finite(org.MLR)
	org.PMPM = finite(org.PMPM)
	org.AdminCost = optional(org.AdminCost)
	org.RevenueChangePercent = optional(org.RevenueChangePercent)
	org.CostChangePercent = optional(org.CostChangePercent)
	org.PMPMChangePercent = optional(org.PMPMChangePercent)
	org.MLRTarget = optional(org.MLRTarget)
	org.MLRAboveTarget = optional(org.MLRAboveTarget)
	org.OperatingMargin = optional(org.OperatingMargin)
	org.RequiredSavingsToHitTargetMLR = optional(org.RequiredSavingsToHitTargetMLR)
	if org.HighCostConcentration != nil {
		hc := *org.HighCostConcentration
		hc.Top1Pct = finite(hc.Top1Pct)
		hc.Top5Pct = finite(hc.Top5Pct)
		hc.Top10Pct = finite(hc.Top10Pct)
		org.HighCostConcentration = &hc
	}
	out.Organizational = &org

	opp := NormalizeOpportunity(m.Opportunity)
	out.Opportunity = &opp

	cu := CostUtilization{}
	if m.CostUtilization != nil {
		cu = *m.CostUtilization
	}
	cu.EDVisitsPer1000 = finite(cu.EDVisitsPer1000)
	cu.AdmissionsPer1000 = finite(cu.AdmissionsPer1000)
	cu.ReadmissionRate = finite(cu.ReadmissionRate)
	cu.AvgLengthOfStay = finite(cu.AvgLengthOfStay)
	cu.InpatientAdmissionRate = finite(cu.InpatientAdmissionRate)
	cu.ERUtilization = finite(cu.ERUtilization)
	cu.OutpatientUtilization = finite(cu.OutpatientUtilization)
	cu.PharmacyCostTrend = finite(cu.PharmacyCostTrend)
	out.CostUtilization = &cu

	trend := NormalizeTrend(m.Trend)
	out.Trend = &trend

	out.CostDistribution = make([]CostSlice, 0, len(m.CostDistribution))
	for _, s := range m.CostDistribution {
		s.Value = finite(s.Value)
		out.CostDistribution = append(out.CostDistribution, s)
	}
	return out
}

// NormalizeOpportunity resolves a possibly missing pipeline to concrete totals.
func NormalizeOpportunity(o *Opportunity) Opportunity {
	out := Opportunity{}
	if o != nil {
		out = *o
	}
	out.TotalIdentified = finite(out.TotalIdentified)
	out.Addressable = finite(out.Addressable)
	out.Realizable = finite(out.Realizable)
	out.Realized = finite(out.Realized)
	out.AffectedMembers = optional(out.AffectedMembers)
	return out
}

// NormalizeTrend resolves a possibly missing trend. The returned forecast is
// always present with both flat fields set.
func NormalizeTrend(t *Trend) Trend {
	out := Trend{
		Rolling12MonthMLR:  []float64{},
		Rolling12MonthPMPM: []float64{},
	}
	if t != nil {
		out.Rolling12MonthMLR = finiteSlice(t.Rolling12MonthMLR)
		out.Rolling12MonthPMPM = finiteSlice(t.Rolling12MonthPMPM)
	}

	mlr, pmpm := DefaultMLRNextQuarter, DefaultPMPMNextQuarter
	var quarters []QuarterForecast
	if t != nil && t.PredictiveForecast != nil {
		f := t.PredictiveForecast
		if f.MLRNextQuarter != nil && isFinite(*f.MLRNextQuarter) {
			mlr = *f.MLRNextQuarter
		}
		if f.PMPMNextQuarter != nil && isFinite(*f.PMPMNextQuarter) {
			pmpm = *f.PMPMNextQuarter
		}
		for _, q := range f.Quarters {
			quarters = append(quarters, QuarterForecast{
				Quarter: q.Quarter,
				MLR:     finite(q.MLR),
				PMPM:    finite(q.PMPM),
			})
		}
	}
	out.PredictiveForecast = &Forecast{
		MLRNextQuarter:  &mlr,
		PMPMNextQuarter: &pmpm,
		Quarters:        quarters,
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finite(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}

func optional(v *float64) *float64 {
	if v == nil || !isFinite(*v) {
		return nil
	}
	c := *v
	return &c
}

func finiteSlice(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = finite(v)
	}
	return out
}
