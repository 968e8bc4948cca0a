// Package render turns a session snapshot into the live report: which panels
// are visible, in what order, and with what content.
package render

import (
	"math"
	"time"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
	"github.com/BerylCAtieno/gtm-quest/internal/views"
)

type Kind string

const (
	KindCompanyProfile Kind = "company_profile"
	KindStrategy       Kind = "strategy"
	KindROI            Kind = "roi_projection"
	KindAgencyMatches  Kind = "agency_matches"
	KindTimeline       Kind = "timeline"
	KindBudget         Kind = "budget_allocation"
)

// Panel is one card of the report. Props holds the kind-specific value
// (CompanyProfile, StrategyPanel, ...).
type Panel struct {
	Kind    Kind           `json:"kind"`
	Section models.Section `json:"section"`
	Title   string         `json:"title"`
	Props   any            `json:"props"`
}

type Report struct {
	Session   string         `json:"session"`
	Version   uint64         `json:"version"`
	UpdatedAt time.Time      `json:"updated_at"`
	Title     string         `json:"title"`
	HasData   bool           `json:"has_data"`
	Progress  float64        `json:"progress"`
	Percent   int            `json:"percent"`
	Headline  views.Headline `json:"headline"`
	Theme     views.Theme    `json:"theme"`
	Gradient  string         `json:"gradient"`
	Keywords  []string       `json:"keywords"`
	Path      views.Path     `json:"path"`
	Panels    []Panel        `json:"panels"`
}

// Visible returns the panel kinds in display order.
func (r Report) Visible() []Kind {
	kinds := make([]Kind, len(r.Panels))
	for i, p := range r.Panels {
		kinds[i] = p.Kind
	}
	return kinds
}

// Panel returns the panel of the given kind, if visible.
func (r Report) Panel(kind Kind) (Panel, bool) {
	for _, p := range r.Panels {
		if p.Kind == kind {
			return p, true
		}
	}
	return Panel{}, false
}

type panelDef struct {
	kind    Kind
	section models.Section
	title   string
	props   func(models.GTMState) any
}

// panels is the fixed display order. Each panel is gated by its section's
// presence predicate.
var panels = []panelDef{
	{KindCompanyProfile, models.SectionCompanyInfo, "Company Profile", func(s models.GTMState) any { return companyProfile(s) }},
	{KindStrategy, models.SectionStrategy, "GTM Strategy", func(s models.GTMState) any { return strategyPanel(s) }},
	{KindROI, models.SectionROI, "ROI Projection", func(s models.GTMState) any { return roiPanel(s) }},
	{KindAgencyMatches, models.SectionProviders, "Agency Matches", func(s models.GTMState) any { return agencyMatches(s) }},
	{KindTimeline, models.SectionTimeline, "Implementation Timeline", func(s models.GTMState) any { return timelinePanel(s) }},
	{KindBudget, models.SectionBudget, "Budget Allocation", func(s models.GTMState) any { return budgetPanel(s) }},
}

// Render builds the report for one snapshot. Every value is derived from
// snap.State alone and the snapshot is never modified.
func Render(snap session.Snapshot) Report {
	state := snap.State
	theme := views.IndustryTheme(state)
	r := Report{
		Session:   snap.Session,
		Version:   snap.Version,
		UpdatedAt: snap.UpdatedAt,
		Title:     dashboardTitle(state),
		Progress:  views.CompletionProgress(state),
		Percent:   views.CompletionPercent(state),
		Headline:  views.ContextualHeadline(state),
		Theme:     theme,
		Gradient:  views.ThemeGradient(theme),
		Keywords:  views.Keywords(state),
		Path:      views.StrategyPath(state),
		Panels:    []Panel{},
	}
	for _, def := range panels {
		if !state.Has(def.section) {
			continue
		}
		r.Panels = append(r.Panels, Panel{
			Kind:    def.kind,
			Section: def.section,
			Title:   def.title,
			Props:   def.props(state),
		})
	}
	r.HasData = len(r.Panels) > 0
	return r
}

func dashboardTitle(state models.GTMState) string {
	if name, ok := models.Text(state.CompanyName); ok {
		return name + "'s GTM Dashboard"
	}
	return "Your GTM Dashboard"
}

const (
	fallbackTopScore = 0.85
	fallbackDecay    = 0.9
)

// FallbackScore is the display score for the provider at rank (0-based)
// when the agent did not send one. It strictly decreases with rank and
// never reaches zero.
func FallbackScore(rank int) float64 {
	if rank < 0 {
		rank = 0
	}
	return fallbackTopScore * math.Pow(fallbackDecay, float64(rank))
}
