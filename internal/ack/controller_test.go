package ack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
)

func snap(version uint64, mutate func(*models.GTMState)) session.Snapshot {
	st := models.NewGTMState()
	if mutate != nil {
		mutate(&st)
	}
	return session.Snapshot{Session: "s1", Version: version, State: st}
}

func withROI(s *models.GTMState) {
	s.ROIProjection = &models.ROIProjection{EstimatedCAC: 1, EstimatedLTV: 3, PaybackMonths: 1}
}

func TestSectionFiresExactlyOnce(t *testing.T) {
	c := NewController()
	assert.Empty(t, c.Observe(snap(0, nil)))

	effects := c.Observe(snap(1, withROI))
	require.Len(t, effects, 1)
	assert.Equal(t, Effect{Kind: EffectSectionRevealed, Section: models.SectionROI, Version: 1}, effects[0])
	assert.Equal(t, PresentUnacknowledged, c.State(models.SectionROI))

	// replays, later snapshots and a snapshot that omits the field
	assert.Empty(t, c.Observe(snap(1, withROI)))
	assert.Empty(t, c.Observe(snap(2, withROI)))
	assert.Empty(t, c.Observe(snap(3, nil)))
	assert.Empty(t, c.Observe(snap(4, withROI)))
	assert.Equal(t, PresentUnacknowledged, c.State(models.SectionROI))
}

func TestAcknowledgeIsTerminal(t *testing.T) {
	c := NewController()
	assert.False(t, c.Acknowledge(models.SectionStrategy), "absent sections cannot be acknowledged")

	c.Observe(snap(1, func(s *models.GTMState) { s.Strategy = &models.Strategy{Name: "x"} }))
	assert.Equal(t, []models.Section{models.SectionStrategy}, c.Pending())
	assert.True(t, c.Acknowledge(models.SectionStrategy))
	assert.False(t, c.Acknowledge(models.SectionStrategy))
	assert.Equal(t, PresentAcknowledged, c.State(models.SectionStrategy))
	assert.Empty(t, c.Pending())

	assert.Empty(t, c.Observe(snap(2, func(s *models.GTMState) { s.Strategy = &models.Strategy{Name: "y"} })))
	assert.Equal(t, PresentAcknowledged, c.State(models.SectionStrategy))
}

func TestStaleSnapshotsIgnored(t *testing.T) {
	c := NewController()
	c.Observe(snap(5, nil))
	assert.Nil(t, c.Observe(snap(3, withROI)))
	assert.Equal(t, Absent, c.State(models.SectionROI))
}

func TestEffectsFollowDisplayOrder(t *testing.T) {
	c := NewController()
	effects := c.Observe(snap(1, func(s *models.GTMState) {
		s.TimelinePhases = []models.Phase{{Name: "p"}}
		s.Industry = models.String("fintech")
		withROI(s)
	}))
	var sections []models.Section
	for _, e := range effects {
		sections = append(sections, e.Section)
	}
	assert.Equal(t, []models.Section{models.SectionCompanyInfo, models.SectionROI, models.SectionTimeline}, sections)
}

func TestCelebrationOnce(t *testing.T) {
	c := NewController()
	c.Observe(snap(1, func(s *models.GTMState) {
		s.CompanyName = models.String("Acme")
		s.Strategy = &models.Strategy{Name: "x"}
		withROI(s)
		s.RecommendedProviders = []models.Provider{{Name: "A"}}
		s.TimelinePhases = []models.Phase{{Name: "p"}}
	}))
	effects := c.Observe(snap(2, func(s *models.GTMState) {
		s.BudgetBreakdown = &models.BudgetBreakdown{Total: 1}
	}))
	require.Len(t, effects, 2)
	assert.Equal(t, models.SectionBudget, effects[0].Section)
	assert.Equal(t, EffectCelebration, effects[1].Kind)

	assert.Empty(t, c.Observe(snap(3, func(s *models.GTMState) {
		s.BudgetBreakdown = &models.BudgetBreakdown{Total: 2}
	})))
}
