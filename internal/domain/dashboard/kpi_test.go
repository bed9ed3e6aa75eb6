package dashboard

import (
	"math"
	"testing"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		v     float64
		scale Scale
		want  string
		ok    bool
	}{
		{"revenue billions", 2_340_000_000, Billions, "$2.34B", true},
		{"cost billions", 2_106_000_000, Billions, "$2.11B", true},
		{"pipeline millions", 130_000_000, MillionsWhole, "$130M", true},
		{"savings one decimal", 168_300_000, MillionsOneDecimal, "$168.3M", true},
		{"percent", 90, PercentScale, "90%", true},
		{"fractional percent", 14.2, PercentScale, "14.2%", true},
		{"dollars", 336, Dollars, "$336", true},
		{"count", 580_000, Count, "580,000", true},
		{"count millions", 1_234_567, Count, "1,234,567", true},
		{"small count", 999, Count, "999", true},
		{"negative millions", -3_000_000, MillionsWhole, "-$3M", true},
		{"nan", math.NaN(), Billions, "N/A", false},
		{"inf", math.Inf(1), PercentScale, "N/A", false},
		{"negative inf", math.Inf(-1), Count, "N/A", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatValue(tt.v, tt.scale)
			if got != tt.want || ok != tt.ok {
				t.Errorf("FormatValue(%v) = %q, %v; want %q, %v", tt.v, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFormatDelta(t *testing.T) {
	d := FormatDelta(f64(-3))
	if d == nil || d.Direction != Down || d.Arrow != "↓" || d.Text != "3%" {
		t.Errorf("unexpected delta for -3: %+v", d)
	}
	d = FormatDelta(f64(4.2))
	if d == nil || d.Direction != Up || d.Arrow != "↑" || d.Text != "4.2%" {
		t.Errorf("unexpected delta for 4.2: %+v", d)
	}
	d = FormatDelta(f64(0))
	if d == nil || d.Direction != Up {
		t.Errorf("expected zero change to render up, got %+v", d)
	}
	if FormatDelta(nil) != nil {
		t.Error("expected no delta for absent change")
	}
	if FormatDelta(f64(math.NaN())) != nil {
		t.Error("expected no delta for non-finite change")
	}
}

func findCard(cards []KPICard, key string) *KPICard {
	for i := range cards {
		if cards[i].Key == key {
			return &cards[i]
		}
	}
	return nil
}

func TestBuildKPIs_Full(t *testing.T) {
	org := metrics.Organizational{
		TotalMembers:                  580_000,
		TotalRevenue:                  2_340_000_000,
		TotalMedicalCost:              2_106_000_000,
		MLR:                           90,
		PMPM:                          336,
		RevenueChangePercent:          f64(4.2),
		PMPMChangePercent:             f64(-3),
		MLRTarget:                     f64(85),
		MLRAboveTarget:                f64(5),
		OperatingMargin:               f64(5),
		RequiredSavingsToHitTargetMLR: f64(168_300_000),
	}
	cards := BuildKPIs(org)
	if len(cards) != 7 {
		t.Fatalf("expected 7 cards, got %d", len(cards))
	}

	rev := findCard(cards, "totalRevenue")
	if rev.Value != "$2.34B" || rev.Delta == nil || rev.Delta.Direction != Up {
		t.Errorf("unexpected revenue card: %+v", rev)
	}
	pmpm := findCard(cards, "pmpm")
	if pmpm.Value != "$336" || pmpm.Delta == nil || pmpm.Delta.Text != "3%" || pmpm.Delta.Arrow != "↓" {
		t.Errorf("unexpected pmpm card: %+v", pmpm)
	}
	mlr := findCard(cards, "mlr")
	if mlr.SubLabel != "5 pts above Target: 85%" || !mlr.SubHighlight {
		t.Errorf("unexpected mlr card: %+v", mlr)
	}
	if c := findCard(cards, "requiredSavings"); c == nil || c.Value != "$168.3M" {
		t.Errorf("unexpected savings card: %+v", c)
	}
	if c := findCard(cards, "totalCost"); c.Delta != nil {
		t.Errorf("expected no cost delta, got %+v", c.Delta)
	}
}

func TestBuildKPIs_OptionalCardsOmitted(t *testing.T) {
	cards := BuildKPIs(metrics.Organizational{MLR: 88})
	if len(cards) != 5 {
		t.Fatalf("expected 5 cards, got %d", len(cards))
	}
	mlr := findCard(cards, "mlr")
	if mlr.SubLabel != "Target: 85%" || mlr.SubHighlight {
		t.Errorf("expected static sub-label, got %+v", mlr)
	}
}

func TestBuildKPIs_TargetWithoutDelta(t *testing.T) {
	cards := BuildKPIs(metrics.Organizational{MLR: 84, MLRTarget: f64(85)})
	if mlr := findCard(cards, "mlr"); mlr.SubLabel != "Target: 85%" {
		t.Errorf("expected fallback sub-label, got %q", mlr.SubLabel)
	}
	cards = BuildKPIs(metrics.Organizational{MLR: 84, MLRTarget: f64(85), MLRAboveTarget: f64(-1)})
	if mlr := findCard(cards, "mlr"); mlr.SubHighlight {
		t.Error("expected no highlight below target")
	}
}
