package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
)

func snapshotOf(state models.GTMState) session.Snapshot {
	return session.Snapshot{Session: "s1", Version: 7, State: state}
}

func richState() models.GTMState {
	st := models.NewGTMState()
	st.CompanyName = models.String("Acme")
	st.Industry = models.String("B2B SaaS")
	st.Stage = models.StagePtr(models.StageSeriesA)
	st.Strategy = &models.Strategy{
		Name:        "Product-led motion",
		Type:        models.StrategyPLG,
		ActionItems: []string{"one", "two", "three", "four"},
	}
	st.ROIProjection = &models.ROIProjection{EstimatedCAC: 500, EstimatedLTV: 1500, PaybackMonths: 9, Confidence: models.ConfidenceHigh}
	st.UseCases = []models.UseCase{{CompanyName: "Loop", Results: map[string]string{"pipeline": "+40%"}}}
	st.BudgetBreakdown = &models.BudgetBreakdown{Total: 100, Categories: []models.BudgetCategory{{Name: "Ads", Amount: 100, Percentage: 100}}}
	st.TimelinePhases = []models.Phase{{Name: "Launch", Activities: []string{"a"}}}
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		st.RecommendedProviders = append(st.RecommendedProviders, models.Provider{ID: name, Name: name, Slug: name})
	}
	return st
}

func TestRenderIsIdempotent(t *testing.T) {
	for _, st := range []models.GTMState{models.NewGTMState(), richState()} {
		snap := snapshotOf(st)
		before := st.Clone()
		first := Render(snap)
		second := Render(snap)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("render not idempotent (-first +second):\n%s", diff)
		}
		if diff := cmp.Diff(before, snap.State); diff != "" {
			t.Fatalf("render mutated the snapshot:\n%s", diff)
		}
	}
}

func TestRenderedReportDoesNotAliasSnapshot(t *testing.T) {
	st := richState()
	r := Render(snapshotOf(st))
	p, ok := r.Panel(KindStrategy)
	require.True(t, ok)
	props := p.Props.(StrategyPanel)
	props.NextSteps[0] = "changed"
	props.UseCases[0].Results["pipeline"] = "changed"
	assert.Equal(t, "one", st.Strategy.ActionItems[0])
	assert.Equal(t, "+40%", st.UseCases[0].Results["pipeline"])
}

func TestEmptySnapshotHasNoPanels(t *testing.T) {
	r := Render(session.EmptySnapshot("s1"))
	assert.False(t, r.HasData)
	assert.Empty(t, r.Panels)
	assert.Zero(t, r.Percent)
	assert.Equal(t, "default", r.Headline.Rule)
	assert.Equal(t, "Your GTM Dashboard", r.Title)
}

func TestOnlyROIPanelVisible(t *testing.T) {
	st := models.NewGTMState()
	st.ROIProjection = &models.ROIProjection{EstimatedCAC: 500, EstimatedLTV: 1500, PaybackMonths: 9, Confidence: models.ConfidenceHigh}

	r := Render(snapshotOf(st))
	assert.True(t, r.HasData)
	assert.Equal(t, []Kind{KindROI}, r.Visible())

	p, _ := r.Panel(KindROI)
	roi := p.Props.(ROIPanel)
	require.NotNil(t, roi.Ratio)
	assert.Equal(t, 3.0, *roi.Ratio)
	assert.Equal(t, "3.0x", roi.RatioLabel)
}

func TestROIPanelWithZeroCAC(t *testing.T) {
	st := models.NewGTMState()
	st.ROIProjection = &models.ROIProjection{EstimatedCAC: 0, EstimatedLTV: 1500, PaybackMonths: 2}
	p, ok := Render(snapshotOf(st)).Panel(KindROI)
	require.True(t, ok)
	roi := p.Props.(ROIPanel)
	assert.Nil(t, roi.Ratio)
	assert.Equal(t, "unavailable", roi.RatioLabel)
	assert.Len(t, roi.Benchmarks, 2)
}

func TestPanelsKeepFixedOrder(t *testing.T) {
	st := models.NewGTMState()
	st.BudgetBreakdown = &models.BudgetBreakdown{Total: 10}
	st.TimelinePhases = []models.Phase{{Name: "Launch"}}
	st.Industry = models.String("fintech")

	assert.Equal(t, []Kind{KindCompanyProfile, KindTimeline, KindBudget}, Render(snapshotOf(st)).Visible())
	assert.Equal(t,
		[]Kind{KindCompanyProfile, KindStrategy, KindROI, KindAgencyMatches, KindTimeline, KindBudget},
		Render(snapshotOf(richState())).Visible())
}

func TestProviderFallbackScores(t *testing.T) {
	st := models.NewGTMState()
	st.RecommendedProviders = []models.Provider{{ID: "a", Name: "X"}, {ID: "b", Name: "Y"}}

	p, ok := Render(snapshotOf(st)).Panel(KindAgencyMatches)
	require.True(t, ok)
	m := p.Props.(AgencyMatches)
	require.Len(t, m.Providers, 2)
	a, b := m.Providers[0], m.Providers[1]
	assert.Equal(t, "a", a.ID)
	assert.Greater(t, a.MatchScore, b.MatchScore)
	assert.Greater(t, b.MatchPercent, 0)
	assert.True(t, a.Estimated)
	assert.Empty(t, a.Href)
}

func TestProviderExplicitScoreWins(t *testing.T) {
	st := models.NewGTMState()
	st.RecommendedProviders = []models.Provider{
		{ID: "a", Name: "X", MatchScore: models.Float(0)},
		{ID: "b", Name: "Y", MatchScore: models.Float(0.92), Slug: "y"},
	}
	p, _ := Render(snapshotOf(st)).Panel(KindAgencyMatches)
	m := p.Props.(AgencyMatches)
	assert.Zero(t, m.Providers[0].MatchPercent)
	assert.False(t, m.Providers[0].Estimated)
	assert.Equal(t, 92, m.Providers[1].MatchPercent)
	assert.Equal(t, "/agency/y", m.Providers[1].Href)
}

func TestDisplayLimits(t *testing.T) {
	r := Render(snapshotOf(richState()))

	p, _ := r.Panel(KindAgencyMatches)
	m := p.Props.(AgencyMatches)
	assert.Equal(t, 5, m.Total)
	assert.Len(t, m.Providers, 4)

	p, _ = r.Panel(KindStrategy)
	s := p.Props.(StrategyPanel)
	assert.Equal(t, []string{"one", "two", "three"}, s.NextSteps)
	assert.Equal(t, 1, s.MoreSteps)
	assert.Equal(t, "PLG", s.Badge)
	assert.Equal(t, "Acme's GTM Dashboard", r.Title)
	assert.Equal(t, 100, r.Percent)
}

func TestFallbackScoreStrictlyDecreasing(t *testing.T) {
	prev := FallbackScore(0)
	assert.Equal(t, 0.85, prev)
	for rank := 1; rank < 50; rank++ {
		s := FallbackScore(rank)
		assert.Less(t, s, prev)
		assert.Greater(t, s, 0.0)
		prev = s
	}
}
