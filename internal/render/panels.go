package render

import (
	"fmt"
	"math"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
	"github.com/BerylCAtieno/gtm-quest/internal/views"
)

const (
	maxProviderCards = 4
	maxNextSteps     = 3
)

type CompanyProfile struct {
	CompanyName  string       `json:"company_name,omitempty"`
	Industry     string       `json:"industry,omitempty"`
	Stage        models.Stage `json:"stage,omitempty"`
	StageLabel   string       `json:"stage_label,omitempty"`
	TargetMarket string       `json:"target_market,omitempty"`
	Budget       *float64     `json:"budget,omitempty"`
}

type StrategyPanel struct {
	Name           string              `json:"name"`
	Type           models.StrategyType `json:"type"`
	Badge          string              `json:"badge"`
	Summary        string              `json:"summary"`
	RecommendedFor []string            `json:"recommended_for"`
	NextSteps      []string            `json:"next_steps"`
	MoreSteps      int                 `json:"more_steps"`
	Funnel         []views.FunnelBar   `json:"funnel"`
	UseCases       []models.UseCase    `json:"use_cases"`
}

type ROIPanel struct {
	EstimatedCAC  float64           `json:"estimated_cac"`
	EstimatedLTV  float64           `json:"estimated_ltv"`
	PaybackMonths float64           `json:"payback_months"`
	Confidence    models.Confidence `json:"confidence"`
	Notes         string            `json:"notes,omitempty"`
	// Ratio is nil when LTV:CAC is unavailable; RatioLabel then reads "unavailable".
	Ratio      *float64     `json:"ratio,omitempty"`
	RatioLabel string       `json:"ratio_label"`
	Benchmarks []views.Bars `json:"benchmarks"`
}

type ProviderCard struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Slug            string             `json:"slug"`
	Href            string             `json:"href,omitempty"`
	Description     string             `json:"description"`
	Specializations []string           `json:"specializations"`
	PricingTier     models.PricingTier `json:"pricing_tier"`
	Rating          *float64           `json:"rating,omitempty"`
	MatchScore      float64            `json:"match_score"`
	MatchPercent    int                `json:"match_percent"`
	// Estimated is true when MatchScore came from list position.
	Estimated bool `json:"estimated"`
}

type AgencyMatches struct {
	Total     int            `json:"total"`
	Providers []ProviderCard `json:"providers"`
}

type TimelinePanel struct {
	Rows []views.TimelineRow `json:"rows"`
}

type BudgetPanel struct {
	Total  float64             `json:"total"`
	Slices []views.BudgetSlice `json:"slices"`
}

func companyProfile(s models.GTMState) CompanyProfile {
	p := CompanyProfile{}
	p.CompanyName, _ = models.Text(s.CompanyName)
	p.Industry, _ = models.Text(s.Industry)
	p.TargetMarket, _ = models.Text(s.TargetMarket)
	if s.HasStage() {
		p.Stage = *s.Stage
		p.StageLabel = s.Stage.Label()
	}
	if s.Budget != nil {
		b := *s.Budget
		p.Budget = &b
	}
	return p
}

func strategyPanel(s models.GTMState) StrategyPanel {
	st := s.Strategy
	p := StrategyPanel{
		Name:           st.Name,
		Type:           st.Type,
		Badge:          st.Type.Badge(),
		Summary:        st.Summary,
		RecommendedFor: append([]string{}, st.RecommendedFor...),
		NextSteps:      append([]string{}, st.ActionItems...),
		Funnel:         views.Funnel(views.DemoFunnel()),
		UseCases:       make([]models.UseCase, 0, len(s.UseCases)),
	}
	if len(p.NextSteps) > maxNextSteps {
		p.MoreSteps = len(p.NextSteps) - maxNextSteps
		p.NextSteps = p.NextSteps[:maxNextSteps]
	}
	for _, uc := range s.UseCases {
		results := make(map[string]string, len(uc.Results))
		for k, v := range uc.Results {
			results[k] = v
		}
		uc.Results = results
		p.UseCases = append(p.UseCases, uc)
	}
	return p
}

func roiPanel(s models.GTMState) ROIPanel {
	roi := *s.ROIProjection
	p := ROIPanel{
		EstimatedCAC:  roi.EstimatedCAC,
		EstimatedLTV:  roi.EstimatedLTV,
		PaybackMonths: roi.PaybackMonths,
		Confidence:    roi.Confidence,
		Notes:         roi.Notes,
		RatioLabel:    "unavailable",
		Benchmarks:    views.IndustryBenchmarks(views.IndustryTheme(s), roi),
	}
	if ratio, ok := views.LTVCACRatio(roi); ok {
		r := views.RoundTenth(ratio)
		p.Ratio = &r
		p.RatioLabel = fmt.Sprintf("%.1fx", r)
	}
	return p
}

func agencyMatches(s models.GTMState) AgencyMatches {
	m := AgencyMatches{Total: len(s.RecommendedProviders), Providers: []ProviderCard{}}
	for rank, pr := range s.RecommendedProviders {
		if rank == maxProviderCards {
			break
		}
		card := ProviderCard{
			ID:              pr.ID,
			Name:            pr.Name,
			Slug:            pr.Slug,
			Description:     pr.Description,
			Specializations: append([]string{}, pr.Specializations...),
			PricingTier:     pr.PricingTier,
		}
		if pr.Slug != "" {
			card.Href = "/agency/" + pr.Slug
		}
		if pr.Rating != nil {
			r := *pr.Rating
			card.Rating = &r
		}
		if pr.MatchScore != nil && !math.IsNaN(*pr.MatchScore) {
			card.MatchScore = *pr.MatchScore
		} else {
			card.MatchScore = FallbackScore(rank)
			card.Estimated = true
		}
		card.MatchPercent = int(math.Round(card.MatchScore * 100))
		m.Providers = append(m.Providers, card)
	}
	return m
}

func timelinePanel(s models.GTMState) TimelinePanel {
	return TimelinePanel{Rows: views.Timeline(s.TimelinePhases)}
}

func budgetPanel(s models.GTMState) BudgetPanel {
	return BudgetPanel{
		Total:  s.BudgetBreakdown.Total,
		Slices: views.BudgetSlices(*s.BudgetBreakdown),
	}
}
