package views

import (
	"math"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

// Bars is one benchmark comparison. Widths are percentages of the largest
// of the three values, so the biggest bar is always 100.
type Bars struct {
	Metric        string  `json:"metric"`
	Unit          string  `json:"unit,omitempty"`
	Your          float64 `json:"your"`
	IndustryAvg   float64 `json:"industry_avg"`
	TopPerformer  float64 `json:"top_performer"`
	YourWidth     float64 `json:"your_width"`
	AvgWidth      float64 `json:"avg_width"`
	TopWidth      float64 `json:"top_width"`
	LowerIsBetter bool    `json:"lower_is_better"`
	Favorable     bool    `json:"favorable"`
}

// BenchmarkComparison normalizes the three values against their maximum and
// classifies the caller's value against the industry average.
func BenchmarkComparison(your, industryAvg, topPerformer float64, lowerIsBetter bool) Bars {
	b := Bars{
		Your:          your,
		IndustryAvg:   industryAvg,
		TopPerformer:  topPerformer,
		LowerIsBetter: lowerIsBetter,
	}
	if lowerIsBetter {
		b.Favorable = your <= industryAvg
	} else {
		b.Favorable = your >= industryAvg
	}
	peak := math.Max(your, math.Max(industryAvg, topPerformer))
	if peak <= 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		return b
	}
	b.YourWidth = width(your, peak)
	b.AvgWidth = width(industryAvg, peak)
	b.TopWidth = width(topPerformer, peak)
	return b
}

func width(v, peak float64) float64 {
	if v <= 0 {
		return 0
	}
	return v / peak * 100
}

// LTVCACRatio is estimated LTV over estimated CAC. It reports false when
// CAC is zero or either value is unusable, so callers can show "unavailable".
func LTVCACRatio(roi models.ROIProjection) (float64, bool) {
	if roi.EstimatedCAC <= 0 || roi.EstimatedLTV < 0 {
		return 0, false
	}
	r := roi.EstimatedLTV / roi.EstimatedCAC
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// RoundTenth rounds to one decimal place for display.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

type benchmark struct {
	cacAvg, cacTop         float64
	ratioAvg, ratioTop     float64
	paybackAvg, paybackTop float64
}

var benchmarks = map[Theme]benchmark{
	ThemeSaaS:       {700, 350, 3, 5, 15, 8},
	ThemeFintech:    {1200, 600, 3, 5.5, 18, 10},
	ThemeHealthtech: {1500, 800, 2.5, 4.5, 20, 12},
	ThemeMartech:    {600, 300, 3, 5, 12, 7},
	ThemeDevtools:   {500, 250, 3.5, 6, 12, 6},
	ThemeEcommerce:  {80, 40, 2.5, 4, 6, 3},
	ThemeAI:         {900, 450, 3, 5, 14, 8},
	ThemeDefault:    {800, 400, 3, 5, 15, 8},
}

// IndustryBenchmarks compares an ROI projection against the reference table
// for the theme. The LTV:CAC row is omitted when the ratio is unavailable.
func IndustryBenchmarks(theme Theme, roi models.ROIProjection) []Bars {
	ref, ok := benchmarks[theme]
	if !ok {
		ref = benchmarks[ThemeDefault]
	}
	cac := BenchmarkComparison(roi.EstimatedCAC, ref.cacAvg, ref.cacTop, true)
	cac.Metric, cac.Unit = "Customer Acquisition Cost", "$"
	rows := []Bars{cac}

	if ratio, ok := LTVCACRatio(roi); ok {
		r := BenchmarkComparison(RoundTenth(ratio), ref.ratioAvg, ref.ratioTop, false)
		r.Metric, r.Unit = "LTV:CAC Ratio", "x"
		rows = append(rows, r)
	}

	payback := BenchmarkComparison(roi.PaybackMonths, ref.paybackAvg, ref.paybackTop, true)
	payback.Metric, payback.Unit = "Payback Period", "months"
	return append(rows, payback)
}
