package views

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

func fullState() models.GTMState {
	st := models.NewGTMState()
	st.CompanyName = models.String("Acme")
	st.Strategy = &models.Strategy{Name: "Land and expand", Type: models.StrategyHybrid}
	st.ROIProjection = &models.ROIProjection{EstimatedCAC: 500, EstimatedLTV: 1500, PaybackMonths: 9}
	st.RecommendedProviders = []models.Provider{{ID: "a", Name: "X"}}
	st.TimelinePhases = []models.Phase{{Name: "Launch"}}
	st.BudgetBreakdown = &models.BudgetBreakdown{Total: 1000}
	return st
}

func TestCompletionProgressBounds(t *testing.T) {
	assert.Zero(t, CompletionProgress(models.NewGTMState()))
	assert.Zero(t, CompletionProgress(models.GTMState{}))
	assert.Equal(t, 1.0, CompletionProgress(fullState()))
	assert.Equal(t, 100, CompletionPercent(fullState()))

	partial := models.NewGTMState()
	partial.CompanyName = models.String("Acme")
	partial.Industry = models.String("fintech")
	partial.Stage = models.StagePtr(models.StageSeed)
	partial.TargetMarket = models.String("SMB")
	assert.InDelta(t, 1.0/6, CompletionProgress(partial), 1e-9, "company info counts once")
	assert.Equal(t, 17, CompletionPercent(partial))
}

func TestCompletionIgnoresBlankStrings(t *testing.T) {
	st := models.NewGTMState()
	st.CompanyName = models.String("  ")
	assert.Zero(t, CompletionProgress(st))
}

func TestContextualHeadlinePriority(t *testing.T) {
	tests := []struct {
		name  string
		state func(*models.GTMState)
		rule  string
		main  string
	}{
		{"company and industry", func(s *models.GTMState) {
			s.CompanyName = models.String("Acme")
			s.Industry = models.String("fintech")
		}, "company_industry", "GTM Strategy for Acme"},
		{"industry only", func(s *models.GTMState) {
			s.Industry = models.String("fintech")
		}, "industry", "GTM Strategy for fintech"},
		{"company without industry falls through", func(s *models.GTMState) {
			s.CompanyName = models.String("Acme")
			s.Stage = models.StagePtr(models.StageSeriesA)
		}, "stage", "GTM for Series A Companies"},
		{"market only", func(s *models.GTMState) {
			s.TargetMarket = models.String("mid-market")
		}, "market", "Dominate mid-market"},
		{"empty", func(*models.GTMState) {}, "default", "Your AI GTM Strategist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := models.NewGTMState()
			tt.state(&st)
			h := ContextualHeadline(st)
			assert.Equal(t, tt.rule, h.Rule)
			assert.Equal(t, tt.main, h.Main)
			assert.NotEmpty(t, h.Sub)
		})
	}

	st := models.NewGTMState()
	st.CompanyName = models.String("Acme")
	st.Industry = models.String("fintech")
	h := ContextualHeadline(st)
	assert.Contains(t, h.Main+h.Sub, "Acme")
	assert.Contains(t, h.Main+h.Sub, "fintech")
}

func TestIndustryTheme(t *testing.T) {
	cases := map[string]Theme{
		"B2B SaaS":           ThemeSaaS,
		"Consumer Finance":   ThemeFintech,
		"Digital Health":     ThemeHealthtech,
		"MarTech":            ThemeMartech,
		"Developer tooling":  ThemeDevtools,
		"Retail":             ThemeEcommerce,
		"Machine Learning":   ThemeAI,
		"Industrial welding": ThemeDefault,
		"   ":                ThemeDefault,
	}
	for industry, want := range cases {
		st := models.NewGTMState()
		st.Industry = models.String(industry)
		assert.Equal(t, want, IndustryTheme(st), industry)
	}
	assert.Equal(t, ThemeDefault, IndustryTheme(models.NewGTMState()))
	assert.Equal(t, ThemeGradient(ThemeDefault), ThemeGradient("unknown"))
	assert.Equal(t,
		"linear-gradient(to bottom right, rgba(6,78,59,0.4), rgba(19,78,74,0.3), rgba(22,78,99,0.4)), #09090b",
		ThemeGradient(ThemeFintech))
}

func TestLTVCACRatioNeverDividesByZero(t *testing.T) {
	_, ok := LTVCACRatio(models.ROIProjection{EstimatedCAC: 0, EstimatedLTV: 900, PaybackMonths: 1})
	assert.False(t, ok)

	_, ok = LTVCACRatio(models.ROIProjection{})
	assert.False(t, ok)

	r, ok := LTVCACRatio(models.ROIProjection{EstimatedCAC: 500, EstimatedLTV: 1500})
	require.True(t, ok)
	assert.Equal(t, 3.0, r)
	assert.False(t, math.IsInf(r, 0))
}

func TestBenchmarkComparison(t *testing.T) {
	b := BenchmarkComparison(400, 800, 200, true)
	assert.True(t, b.Favorable)
	assert.Equal(t, 50.0, b.YourWidth)
	assert.Equal(t, 100.0, b.AvgWidth)
	assert.Equal(t, 25.0, b.TopWidth)

	b = BenchmarkComparison(2, 3, 5, false)
	assert.False(t, b.Favorable)
	assert.Equal(t, 100.0, b.TopWidth)

	zero := BenchmarkComparison(0, 0, 0, true)
	assert.True(t, zero.Favorable)
	assert.Zero(t, zero.YourWidth)
}

func TestIndustryBenchmarksOmitsUnavailableRatio(t *testing.T) {
	rows := IndustryBenchmarks(ThemeSaaS, models.ROIProjection{EstimatedCAC: 0, EstimatedLTV: 100, PaybackMonths: 4})
	require.Len(t, rows, 2)
	assert.Equal(t, "Customer Acquisition Cost", rows[0].Metric)
	assert.Equal(t, "Payback Period", rows[1].Metric)

	rows = IndustryBenchmarks("nope", models.ROIProjection{EstimatedCAC: 500, EstimatedLTV: 1500, PaybackMonths: 9})
	require.Len(t, rows, 3)
	assert.Equal(t, 3.0, rows[1].Your)
	assert.True(t, rows[1].Favorable)
}

func TestStrategyPath(t *testing.T) {
	p := StrategyPath(models.NewGTMState())
	require.Len(t, p.Nodes, 6)
	assert.Zero(t, p.Completed)
	assert.True(t, p.Nodes[0].Active)
	assert.Equal(t, "Next: tell me about your company", p.NextHint)

	st := models.NewGTMState()
	st.CompanyName = models.String("Acme")
	st.Industry = models.String("fintech")
	st.RecommendedProviders = []models.Provider{{Name: "A"}, {Name: "B"}}
	p = StrategyPath(st)
	assert.Equal(t, 3, p.Completed)
	assert.Equal(t, "2 matches", p.Nodes[5].Value)
	assert.True(t, p.Nodes[2].Active)
	assert.False(t, p.Nodes[3].Active)
	assert.Equal(t, "Next: tell me about your stage", p.NextHint)

	p = StrategyPath(fullStateWithMarket())
	assert.Empty(t, p.NextHint)
	assert.Equal(t, 1.0, p.Progress)
}

func fullStateWithMarket() models.GTMState {
	st := fullState()
	st.Industry = models.String("saas")
	st.Stage = models.StagePtr(models.StageGrowth)
	st.TargetMarket = models.String("enterprise IT")
	return st
}

func TestKeywords(t *testing.T) {
	st := fullStateWithMarket()
	assert.Equal(t, []string{"saas", "Growth", "enterprise IT", "hybrid", "Land", "and", "expand"}, Keywords(st))
	assert.Empty(t, Keywords(models.NewGTMState()))
}

func TestFunnel(t *testing.T) {
	bars := Funnel(DemoFunnel())
	require.Len(t, bars, 5)
	assert.Equal(t, 100.0, bars[0].Width)
	require.NotNil(t, bars[0].Conversion)
	assert.Equal(t, 15.0, *bars[0].Conversion)
	assert.Nil(t, bars[4].Conversion)

	empty := Funnel([]FunnelStage{{Name: "a"}, {Name: "b"}})
	assert.Zero(t, empty[0].Width)
	assert.Nil(t, empty[0].Conversion)
}

func TestTimelineTruncatesActivities(t *testing.T) {
	phases := []models.Phase{
		{Name: "One", Activities: []string{"a", "b", "c", "d", "e"}},
		{Name: "Two"}, {Name: "Three"}, {Name: "Four"}, {Name: "Five"},
	}
	rows := Timeline(phases)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0].Activities)
	assert.Equal(t, 2, rows[0].MoreActivities)
	assert.Equal(t, rows[0].Color, rows[4].Color)
	assert.Len(t, phases[0].Activities, 5, "input untouched")
}

func TestBudgetSlicesTolerateDrift(t *testing.T) {
	slices := BudgetSlices(models.BudgetBreakdown{
		Total: 1000,
		Categories: []models.BudgetCategory{
			{Name: "Ads", Amount: 600, Percentage: 60},
			{Name: "Content", Amount: 300, Percentage: 30},
			{Name: "Events", Amount: 200, Percentage: 20},
		},
	})
	require.Len(t, slices, 3)
	assert.Zero(t, slices[0].Start)
	assert.InDelta(t, 1.0, slices[2].End, 1e-9)
	assert.InDelta(t, 54.5, slices[0].Share, 0.1)
	assert.True(t, slices[0].LargeArc)

	byAmount := BudgetSlices(models.BudgetBreakdown{Categories: []models.BudgetCategory{
		{Name: "A", Amount: 1}, {Name: "B", Amount: 3},
	}})
	assert.Equal(t, 75.0, byAmount[1].Share)

	assert.Empty(t, BudgetSlices(models.BudgetBreakdown{}))
}
