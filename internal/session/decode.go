package session

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

// DecodeState turns an agent payload into a GTMState.
//
// Unknown fields are ignored and a field that does not decode is treated as
// absent, so a partial or sloppy payload never fails. The only error is a
// payload that is not a JSON object.
func DecodeState(raw []byte) (models.GTMState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.GTMState{}, fmt.Errorf("decode state: %w", err)
	}
	if fields == nil {
		return models.GTMState{}, fmt.Errorf("decode state: payload is not an object")
	}

	state := models.NewGTMState()
	state.CompanyName = optionalString(fields["company_name"])
	state.Industry = optionalString(fields["industry"])
	state.TargetMarket = optionalString(fields["target_market"])
	if s := optionalString(fields["stage"]); s != nil {
		if stage, ok := NormalizeStage(*s); ok {
			state.Stage = &stage
		}
	}
	var budget float64
	if decodeField(fields["budget"], &budget) && budget > 0 && !math.IsInf(budget, 0) {
		state.Budget = &budget
	}

	var strategy models.Strategy
	if decodeField(fields["strategy"], &strategy) && strings.TrimSpace(strategy.Name) != "" {
		strategy.Type = NormalizeStrategyType(string(strategy.Type))
		state.Strategy = &strategy
	}

	var providers []json.RawMessage
	if decodeField(fields["recommended_providers"], &providers) {
		for _, rawProvider := range providers {
			var p models.Provider
			if !decodeField(rawProvider, &p) || strings.TrimSpace(p.Name) == "" {
				continue
			}
			p.PricingTier = NormalizePricingTier(string(p.PricingTier))
			p.MatchScore = NormalizeMatchScore(p.MatchScore)
			if p.Slug == "" {
				p.Slug = Slugify(p.Name)
			}
			if p.ID == "" {
				p.ID = p.Slug
			}
			state.RecommendedProviders = append(state.RecommendedProviders, p)
		}
	}

	var roi models.ROIProjection
	if decodeField(fields["roi_projection"], &roi) && ValidROI(roi) {
		roi.Confidence = NormalizeConfidence(string(roi.Confidence))
		state.ROIProjection = &roi
	}

	var useCases []json.RawMessage
	if decodeField(fields["use_cases"], &useCases) {
		for _, rawUseCase := range useCases {
			var uc models.UseCase
			if decodeField(rawUseCase, &uc) && strings.TrimSpace(uc.CompanyName) != "" {
				state.UseCases = append(state.UseCases, uc)
			}
		}
	}

	var budgetBreakdown models.BudgetBreakdown
	if decodeField(fields["budget_breakdown"], &budgetBreakdown) && budgetBreakdown.Total >= 0 {
		state.BudgetBreakdown = &budgetBreakdown
	}

	var phases []json.RawMessage
	if decodeField(fields["timeline_phases"], &phases) {
		for _, rawPhase := range phases {
			var ph models.Phase
			if decodeField(rawPhase, &ph) && strings.TrimSpace(ph.Name) != "" {
				state.TimelinePhases = append(state.TimelinePhases, ph)
			}
		}
	}

	return state, nil
}

func decodeField(raw json.RawMessage, dst any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func optionalString(raw json.RawMessage) *string {
	var s string
	if !decodeField(raw, &s) {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ValidROI requires finite non-negative money values and a positive payback.
func ValidROI(roi models.ROIProjection) bool {
	for _, v := range []float64{roi.EstimatedCAC, roi.EstimatedLTV, roi.PaybackMonths} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return roi.EstimatedCAC >= 0 && roi.EstimatedLTV >= 0 && roi.PaybackMonths > 0
}

// NormalizeMatchScore accepts fractions in [0,1] and percentages in (1,100].
func NormalizeMatchScore(score *float64) *float64 {
	if score == nil {
		return nil
	}
	v := *score
	switch {
	case math.IsNaN(v) || v < 0 || v > 100:
		return nil
	case v > 1:
		v = v / 100
	}
	return &v
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return s
}

// NormalizeStage maps agent spellings ("Series A", "series-a") onto a Stage.
func NormalizeStage(s string) (models.Stage, bool) {
	switch normalizeKey(s) {
	case "seed", "pre_seed", "preseed":
		return models.StageSeed, true
	case "series_a", "seriesa", "a":
		return models.StageSeriesA, true
	case "series_b", "seriesb", "b":
		return models.StageSeriesB, true
	case "growth", "series_c", "scaleup", "scale_up":
		return models.StageGrowth, true
	case "enterprise", "public":
		return models.StageEnterprise, true
	default:
		return "", false
	}
}

func NormalizeStrategyType(s string) models.StrategyType {
	switch normalizeKey(s) {
	case "plg", "product_led", "product_led_growth":
		return models.StrategyPLG
	case "sales_led", "saleslead", "sales":
		return models.StrategySalesLed
	default:
		return models.StrategyHybrid
	}
}

func NormalizePricingTier(s string) models.PricingTier {
	switch normalizeKey(s) {
	case "budget", "low":
		return models.PricingBudget
	case "premium", "high", "enterprise":
		return models.PricingPremium
	default:
		return models.PricingMid
	}
}

func NormalizeConfidence(s string) models.Confidence {
	switch normalizeKey(s) {
	case "low":
		return models.ConfidenceLow
	case "high":
		return models.ConfidenceHigh
	default:
		return models.ConfidenceMedium
	}
}

// Slugify lowercases a name and joins its words with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
