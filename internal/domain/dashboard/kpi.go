package dashboard

import (
	"math"
	"strconv"
	"strings"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
)

// NotAvailable is rendered in place of any value that cannot be formatted.
const NotAvailable = "N/A"

// Scale describes how a raw number is turned into display text. A negative
// Precision selects the shortest representation that round-trips.
type Scale struct {
	Prefix    string
	Suffix    string
	Divisor   float64
	Precision int
	Grouping  bool
}

var (
	Billions           = Scale{Prefix: "$", Suffix: "B", Divisor: 1e9, Precision: 2}
	MillionsWhole      = Scale{Prefix: "$", Suffix: "M", Divisor: 1e6, Precision: 0}
	MillionsOneDecimal = Scale{Prefix: "$", Suffix: "M", Divisor: 1e6, Precision: 1}
	PercentScale       = Scale{Suffix: "%", Precision: -1}
	Dollars            = Scale{Prefix: "$", Precision: -1}
	Count              = Scale{Precision: 0, Grouping: true}
)

// FormatValue renders v with s. Non-finite input yields NotAvailable and false.
func FormatValue(v float64, s Scale) (string, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable, false
	}
	x := v
	if s.Divisor != 0 {
		x = v / s.Divisor
	}

	var num string
	if s.Precision < 0 {
		num = strconv.FormatFloat(math.Abs(x), 'f', -1, 64)
	} else {
		p := math.Pow(10, float64(s.Precision))
		num = strconv.FormatFloat(math.Round(math.Abs(x)*p)/p, 'f', s.Precision, 64)
	}
	if s.Grouping {
		num = group(num)
	}

	sign := ""
	if x < 0 && strings.Trim(num, "0.,") != "" {
		sign = "-"
	}
	return sign + s.Prefix + num + s.Suffix, true
}

// group inserts thousands separators into the integer part of num.
func group(num string) string {
	intPart, frac := num, ""
	if i := strings.IndexByte(num, '.'); i >= 0 {
		intPart, frac = num[:i], num[i:]
	}
	if len(intPart) <= 3 {
		return num
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + frac
}

// Direction of a period-over-period change.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Delta is a rendered change indicator.
type Delta struct {
	Direction Direction `json:"direction"`
	Arrow     string    `json:"arrow"`
	Text      string    `json:"text"`
}

// FormatDelta renders a signed percent change. Absent or non-finite input
// yields nil, meaning no indicator is shown.
func FormatDelta(changePercent *float64) *Delta {
	if changePercent == nil {
		return nil
	}
	v := *changePercent
	text, ok := FormatValue(math.Abs(v), PercentScale)
	if !ok {
		return nil
	}
	if v >= 0 {
		return &Delta{Direction: Up, Arrow: "↑", Text: text}
	}
	return &Delta{Direction: Down, Arrow: "↓", Text: text}
}

// KPICard is one headline metric tile.
type KPICard struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	Value        string `json:"value"`
	Available    bool   `json:"available"`
	SubLabel     string `json:"subLabel"`
	SubHighlight bool   `json:"subHighlight,omitempty"`
	Delta        *Delta `json:"delta,omitempty"`
}

const defaultMLRSubLabel = "Target: 85%"

func card(key, label string, v float64, s Scale, sub string, change *float64) KPICard {
	text, ok := FormatValue(v, s)
	return KPICard{
		Key:       key,
		Label:     label,
		Value:     text,
		Available: ok,
		SubLabel:  sub,
		Delta:     FormatDelta(change),
	}
}

// BuildKPIs returns the headline cards in display order. Optional cards are
// omitted when their field is absent.
func BuildKPIs(org metrics.Organizational) []KPICard {
	cards := []KPICard{
		card("totalMembers", "TOTAL MEMBERS", org.TotalMembers, Count, "Enrolled population", nil),
		card("totalRevenue", "TOTAL REVENUE", org.TotalRevenue, Billions, "Premium revenue", org.RevenueChangePercent),
		card("totalCost", "TOTAL COST", org.TotalMedicalCost, Billions, "Annual spend", org.CostChangePercent),
		card("pmpm", "AVERAGE PMPM", org.PMPM, Dollars, "Per member per month", org.PMPMChangePercent),
	}

	mlr := card("mlr", "MEDICAL LOSS RATIO", org.MLR, PercentScale, mlrSubLabel(org), nil)
	mlr.SubHighlight = org.MLRAboveTarget != nil && *org.MLRAboveTarget > 0
	cards = append(cards, mlr)

	if org.OperatingMargin != nil {
		cards = append(cards, card("operatingMargin", "OPERATING MARGIN", *org.OperatingMargin, PercentScale, "", nil))
	}
	if org.RequiredSavingsToHitTargetMLR != nil {
		cards = append(cards, card("requiredSavings", "REQUIRED SAVINGS TO HIT TARGET MLR",
			*org.RequiredSavingsToHitTargetMLR, MillionsOneDecimal, "Additional savings to reach 85% MLR target", nil))
	}
	return cards
}

func mlrSubLabel(org metrics.Organizational) string {
	if org.MLRAboveTarget == nil || org.MLRTarget == nil {
		return defaultMLRSubLabel
	}
	above, ok1 := FormatValue(*org.MLRAboveTarget, Scale{Precision: -1})
	target, ok2 := FormatValue(*org.MLRTarget, PercentScale)
	if !ok1 || !ok2 {
		return defaultMLRSubLabel
	}
	return above + " pts above Target: " + target
}
