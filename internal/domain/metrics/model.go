package metrics

import (
	"net/url"
	"strings"
)

// DashboardMetrics is the payload served by the upstream metrics service.
type DashboardMetrics struct {
	Organizational   *Organizational  `json:"organizational"`
	Opportunity      *Opportunity     `json:"opportunity"`
	CostUtilization  *CostUtilization `json:"costUtilization"`
	Trend            *Trend           `json:"trend"`
	CostDistribution []CostSlice      `json:"costDistribution,omitempty"`
}

// Organizational holds plan-wide totals and ratios.
type Organizational struct {
	TotalMembers                  float64                `json:"totalMembers"`
	TotalRevenue                  float64                `json:"totalRevenue"`
	TotalMedicalCost              float64                `json:"totalMedicalCost"`
	AdminCost                     *float64               `json:"adminCost,omitempty"`
	MLR                           float64                `json:"mlr"`
	PMPM                          float64                `json:"pmpm"`
	RevenueChangePercent          *float64               `json:"revenueChangePercent,omitempty"`
	CostChangePercent             *float64               `json:"costChangePercent,omitempty"`
	PMPMChangePercent             *float64               `json:"pmpmChangePercent,omitempty"`
	MLRTarget                     *float64               `json:"mlrTarget,omitempty"`
	MLRAboveTarget                *float64               `json:"mlrAboveTarget,omitempty"`
	OperatingMargin               *float64               `json:"operatingMargin,omitempty"`
	RequiredSavingsToHitTargetMLR *float64               `json:"requiredSavingsToHitTargetMlr,omitempty"`
	HighCostConcentration         *HighCostConcentration `json:"highCostConcentration,omitempty"`
}

type HighCostConcentration struct {
	Top1Pct  float64 `json:"top1Pct"`
	Top5Pct  float64 `json:"top5Pct"`
	Top10Pct float64 `json:"top10Pct"`
}

// Opportunity holds the savings pipeline totals. Stages are expected to be
// non-increasing (identified >= addressable >= realizable >= realized) but
// upstream never enforces it.
type Opportunity struct {
	TotalIdentified float64  `json:"totalIdentified"`
	Addressable     float64  `json:"addressable"`
	Realizable      float64  `json:"realizable"`
	Realized        float64  `json:"realized"`
	AffectedMembers *float64 `json:"affectedMembers,omitempty"`
}

// CostUtilization holds per-1000-member utilization rates.
type CostUtilization struct {
	EDVisitsPer1000        float64 `json:"edVisitsPer1000"`
	AdmissionsPer1000      float64 `json:"admissionsPer1000"`
	ReadmissionRate        float64 `json:"readmissionRate"`
	AvgLengthOfStay        float64 `json:"avgLengthOfStay"`
	InpatientAdmissionRate float64 `json:"inpatientAdmissionRate"`
	ERUtilization          float64 `json:"erUtilization"`
	OutpatientUtilization  float64 `json:"outpatientUtilization"`
	PharmacyCostTrend      float64 `json:"pharmacyCostTrend"`
}

// Trend holds the rolling 12-month series (oldest first) and the forecast.
type Trend struct {
	Rolling12MonthMLR  []float64 `json:"rolling12MonthMlr"`
	Rolling12MonthPMPM []float64 `json:"rolling12MonthPmpm"`
	PredictiveForecast *Forecast `json:"predictiveForecast"`
}

// Forecast is either the flat next-quarter pair or an ordered quarter list.
type Forecast struct {
	MLRNextQuarter  *float64          `json:"mlrNextQuarter,omitempty"`
	PMPMNextQuarter *float64          `json:"pmpmNextQuarter,omitempty"`
	Quarters        []QuarterForecast `json:"quarters,omitempty"`
}

type QuarterForecast struct {
	Quarter int     `json:"quarter"`
	MLR     float64 `json:"mlr"`
	PMPM    float64 `json:"pmpm"`
}

// CostSlice is one named share of medical spend with its display color.
type CostSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Filters narrows a metrics query. Empty fields are not sent upstream.
type Filters struct {
	LOB        string `json:"lob,omitempty" query:"lob"`
	TimePeriod string `json:"timePeriod,omitempty" query:"timePeriod"`
	Geography  string `json:"geography,omitempty" query:"geography"`
	Segment    string `json:"segment,omitempty" query:"segment"`
}

// FiltersFromQuery reads the filter fields from URL query values.
func FiltersFromQuery(q url.Values) Filters {
	return Filters{
		LOB:        strings.TrimSpace(q.Get("lob")),
		TimePeriod: strings.TrimSpace(q.Get("timePeriod")),
		Geography:  strings.TrimSpace(q.Get("geography")),
		Segment:    strings.TrimSpace(q.Get("segment")),
	}
}

// Values encodes the set filters as URL query values.
func (f Filters) Values() url.Values {
	v := url.Values{}
	if f.LOB != "" {
		v.Set("lob", f.LOB)
	}
	if f.TimePeriod != "" {
		v.Set("timePeriod", f.TimePeriod)
	}
	if f.Geography != "" {
		v.Set("geography", f.Geography)
	}
	if f.Segment != "" {
		v.Set("segment", f.Segment)
	}
	return v
}

// Key returns a canonical representation used to key requests and snapshots.
func (f Filters) Key() string {
	return f.Values().Encode()
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}
