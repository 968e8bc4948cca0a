package concierge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

func apply(t *testing.T, st *models.GTMState, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := ApplyTool(st, ToolCall{Name: name, Args: args})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])
	return res
}

func TestUpdateCompanyInfo(t *testing.T) {
	st := models.NewGTMState()
	res := apply(t, &st, ToolUpdateCompanyInfo, map[string]any{
		"company_name": "Acme",
		"stage":        "Series A",
		"budget":       25000.0,
		"industry":     "   ",
	})
	assert.Equal(t, "Updated: company_name, stage, budget", res["message"])
	assert.Equal(t, models.StageSeriesA, *st.Stage)
	assert.Nil(t, st.Industry)

	res = apply(t, &st, ToolUpdateCompanyInfo, map[string]any{"industry": "fintech", "stage": "unicorn"})
	assert.Contains(t, res["message"], "Ignored unrecognised stage")
	assert.Equal(t, models.StageSeriesA, *st.Stage)

	_, err := ApplyTool(&st, ToolCall{Name: ToolUpdateCompanyInfo, Args: map[string]any{"budget": -5.0}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGenerateStrategy(t *testing.T) {
	st := models.NewGTMState()
	apply(t, &st, ToolGenerateStrategy, map[string]any{
		"strategy_type":   "product-led",
		"strategy_name":   "Product-Led Growth",
		"summary":         "Let the product sell.",
		"action_items":    []any{"Free tier", "", 3, "Onboarding emails"},
		"recommended_for": []any{"Devtools"},
	})
	require.NotNil(t, st.Strategy)
	assert.Equal(t, models.StrategyPLG, st.Strategy.Type)
	assert.Equal(t, []string{"Free tier", "Onboarding emails"}, st.Strategy.ActionItems)

	_, err := ApplyTool(&st, ToolCall{Name: ToolGenerateStrategy, Args: map[string]any{"summary": "x"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddProviderReplacesBySlug(t *testing.T) {
	st := models.NewGTMState()
	apply(t, &st, ToolAddProvider, map[string]any{"name": "Growth Co", "pricing_tier": "premium", "match_score": 0.9})
	apply(t, &st, ToolAddProvider, map[string]any{"name": "Other", "match_score": 75.0})
	apply(t, &st, ToolAddProvider, map[string]any{"name": "growth co", "description": "updated"})

	require.Len(t, st.RecommendedProviders, 2)
	first := st.RecommendedProviders[0]
	assert.Equal(t, "growth-co", first.Slug)
	assert.Equal(t, "updated", first.Description)
	assert.Nil(t, first.MatchScore)
	assert.Equal(t, "agency", first.Type)
	assert.Equal(t, models.PricingMid, first.PricingTier)
	assert.NotEmpty(t, first.ID)
	assert.InDelta(t, 0.75, *st.RecommendedProviders[1].MatchScore, 1e-9)
}

func TestGenerateROIValidates(t *testing.T) {
	st := models.NewGTMState()
	apply(t, &st, ToolGenerateROI, map[string]any{
		"estimated_cac": 500.0, "estimated_ltv": 1500.0, "payback_months": 9.0, "confidence": "HIGH",
	})
	assert.Equal(t, models.ConfidenceHigh, st.ROIProjection.Confidence)

	for _, args := range []map[string]any{
		{"estimated_cac": 500.0, "estimated_ltv": 1500.0},
		{"estimated_cac": -1.0, "estimated_ltv": 1500.0, "payback_months": 9.0},
		{"estimated_cac": 1.0, "estimated_ltv": 1500.0, "payback_months": 0.0},
	} {
		_, err := ApplyTool(&st, ToolCall{Name: ToolGenerateROI, Args: args})
		assert.ErrorIs(t, err, ErrInvalidArgument, "%v", args)
	}
}

func TestAddUseCaseResults(t *testing.T) {
	st := models.NewGTMState()
	apply(t, &st, ToolAddUseCase, map[string]any{
		"company_name": "Loop",
		"challenge":    "Slow pipeline",
		"solution":     "ABM",
		"results":      []any{map[string]any{"metric": "pipeline", "value": "+40%"}, map[string]any{"value": "lost"}},
	})
	apply(t, &st, ToolAddUseCase, map[string]any{
		"company_name": "Beam",
		"results":      map[string]any{"arr_growth": 2.5},
	})
	require.Len(t, st.UseCases, 2)
	assert.Equal(t, map[string]string{"pipeline": "+40%"}, st.UseCases[0].Results)
	assert.Equal(t, map[string]string{"arr_growth": "2.5"}, st.UseCases[1].Results)
}

func TestGenerateBudgetDerivesPercentages(t *testing.T) {
	st := models.NewGTMState()
	apply(t, &st, ToolGenerateBudget, map[string]any{
		"categories": []any{
			map[string]any{"name": "Paid Media", "amount": 6000.0},
			map[string]any{"name": "Content", "amount": 3000.0},
			map[string]any{"name": "Events", "amount": 1000.0, "percentage": 12.0},
		},
	})
	b := st.BudgetBreakdown
	require.NotNil(t, b)
	assert.Equal(t, 10000.0, b.Total)
	assert.Equal(t, 60.0, b.Categories[0].Percentage)
	assert.Equal(t, 12.0, b.Categories[2].Percentage, "explicit percentages are kept")

	_, err := ApplyTool(&st, ToolCall{Name: ToolGenerateBudget, Args: map[string]any{"total": 10.0}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddTimelinePhase(t *testing.T) {
	st := models.NewGTMState()
	apply(t, &st, ToolAddTimelinePhase, map[string]any{"name": "Foundation", "duration": "Weeks 1-4"})
	apply(t, &st, ToolAddTimelinePhase, map[string]any{"name": "Launch", "duration": "Weeks 5-8"})
	apply(t, &st, ToolAddTimelinePhase, map[string]any{"name": "foundation", "duration": "Weeks 1-6", "activities": []any{"ICP"}})

	require.Len(t, st.TimelinePhases, 2)
	assert.Equal(t, "Weeks 1-6", st.TimelinePhases[0].Duration)
	assert.Equal(t, []string{"ICP"}, st.TimelinePhases[0].Activities)
}

func TestUnknownTool(t *testing.T) {
	st := models.NewGTMState()
	_, err := ApplyTool(&st, ToolCall{Name: "launch_rocket"})
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestToolDeclarationsCoverEveryTool(t *testing.T) {
	var names []string
	for _, tool := range Tools() {
		for _, fd := range tool.FunctionDeclarations {
			names = append(names, fd.Name)
		}
	}
	assert.ElementsMatch(t, []string{
		ToolUpdateCompanyInfo, ToolGenerateStrategy, ToolAddProvider, ToolGenerateROI,
		ToolAddUseCase, ToolGenerateBudget, ToolAddTimelinePhase,
	}, names)
}
