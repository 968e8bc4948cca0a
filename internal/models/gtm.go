package models

import "strings"

// Stage is the funding or maturity stage of the company being advised.
type Stage string

const (
	StageSeed       Stage = "seed"
	StageSeriesA    Stage = "series_a"
	StageSeriesB    Stage = "series_b"
	StageGrowth     Stage = "growth"
	StageEnterprise Stage = "enterprise"
)

// Label is the human form used in headlines ("Series A").
func (s Stage) Label() string {
	switch s {
	case StageSeed:
		return "Seed"
	case StageSeriesA:
		return "Series A"
	case StageSeriesB:
		return "Series B"
	case StageGrowth:
		return "Growth"
	case StageEnterprise:
		return "Enterprise"
	default:
		return string(s)
	}
}

type StrategyType string

const (
	StrategyPLG      StrategyType = "plg"
	StrategySalesLed StrategyType = "sales_led"
	StrategyHybrid   StrategyType = "hybrid"
)

// Badge renders the type the way the strategy card shows it ("SALES-LED").
func (t StrategyType) Badge() string {
	return strings.ReplaceAll(strings.ToUpper(string(t)), "_", "-")
}

type PricingTier string

const (
	PricingBudget  PricingTier = "budget"
	PricingMid     PricingTier = "mid"
	PricingPremium PricingTier = "premium"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

type Strategy struct {
	Name           string       `json:"name"`
	Type           StrategyType `json:"type"`
	Summary        string       `json:"summary"`
	RecommendedFor []string     `json:"recommended_for"`
	ActionItems    []string     `json:"action_items"`
}

// Provider is an agency, tool or platform the agent recommends.
// Slice order in GTMState.RecommendedProviders is relevance order.
type Provider struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	Type            string      `json:"type,omitempty"`
	Specializations []string    `json:"specializations"`
	Industries      []string    `json:"industries,omitempty"`
	PricingTier     PricingTier `json:"pricing_tier"`
	Website         string      `json:"website,omitempty"`
	Description     string      `json:"description"`
	Rating          *float64    `json:"rating,omitempty"`
	MatchScore      *float64    `json:"match_score,omitempty"`
}

type ROIProjection struct {
	EstimatedCAC  float64    `json:"estimated_cac"`
	EstimatedLTV  float64    `json:"estimated_ltv"`
	PaybackMonths float64    `json:"payback_months"`
	Confidence    Confidence `json:"confidence"`
	Notes         string     `json:"notes"`
}

type UseCase struct {
	CompanyName  string            `json:"company_name"`
	Industry     string            `json:"industry"`
	CompanyStage string            `json:"company_stage,omitempty"`
	Challenge    string            `json:"challenge"`
	Solution     string            `json:"solution"`
	Results      map[string]string `json:"results"`
}

type BudgetCategory struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// BudgetBreakdown percentages should sum to 100 but are not guaranteed to.
type BudgetBreakdown struct {
	Total      float64          `json:"total"`
	Categories []BudgetCategory `json:"categories"`
}

type Phase struct {
	Name       string   `json:"name"`
	Duration   string   `json:"duration"`
	Activities []string `json:"activities"`
	Milestones []string `json:"milestones"`
}

// GTMState is the record the concierge agent fills in over a conversation.
// Every pointer field is absent until the agent sets it; slices start empty.
type GTMState struct {
	CompanyName  *string  `json:"company_name,omitempty"`
	Industry     *string  `json:"industry,omitempty"`
	Stage        *Stage   `json:"stage,omitempty"`
	TargetMarket *string  `json:"target_market,omitempty"`
	Budget       *float64 `json:"budget,omitempty"`

	Strategy             *Strategy        `json:"strategy,omitempty"`
	RecommendedProviders []Provider       `json:"recommended_providers"`
	ROIProjection        *ROIProjection   `json:"roi_projection,omitempty"`
	UseCases             []UseCase        `json:"use_cases"`
	BudgetBreakdown      *BudgetBreakdown `json:"budget_breakdown,omitempty"`
	TimelinePhases       []Phase          `json:"timeline_phases"`
}

// NewGTMState returns the session-start record: nothing present, sequences empty.
func NewGTMState() GTMState {
	return GTMState{
		RecommendedProviders: []Provider{},
		UseCases:             []UseCase{},
		TimelinePhases:       []Phase{},
	}
}

// Text returns the trimmed value of an optional string and whether it is present.
// Blank strings count as absent.
func Text(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}

func (s GTMState) HasCompanyName() bool {
	_, ok := Text(s.CompanyName)
	return ok
}

func (s GTMState) HasIndustry() bool {
	_, ok := Text(s.Industry)
	return ok
}

func (s GTMState) HasStage() bool {
	return s.Stage != nil && strings.TrimSpace(string(*s.Stage)) != ""
}

func (s GTMState) HasTargetMarket() bool {
	_, ok := Text(s.TargetMarket)
	return ok
}

// HasCompanyInfo is true when any of the four company fields is present.
func (s GTMState) HasCompanyInfo() bool {
	return s.HasCompanyName() || s.HasIndustry() || s.HasStage() || s.HasTargetMarket()
}

// Clone returns a deep copy that shares no memory with s.
func (s GTMState) Clone() GTMState {
	out := GTMState{
		CompanyName:  cloneString(s.CompanyName),
		Industry:     cloneString(s.Industry),
		TargetMarket: cloneString(s.TargetMarket),
		Budget:       cloneFloat(s.Budget),
	}
	if s.Stage != nil {
		st := *s.Stage
		out.Stage = &st
	}
	if s.Strategy != nil {
		st := *s.Strategy
		st.RecommendedFor = cloneStrings(s.Strategy.RecommendedFor)
		st.ActionItems = cloneStrings(s.Strategy.ActionItems)
		out.Strategy = &st
	}
	out.RecommendedProviders = make([]Provider, len(s.RecommendedProviders))
	for i, p := range s.RecommendedProviders {
		p.Specializations = cloneStrings(p.Specializations)
		p.Industries = cloneStrings(p.Industries)
		p.Rating = cloneFloat(p.Rating)
		p.MatchScore = cloneFloat(p.MatchScore)
		out.RecommendedProviders[i] = p
	}
	if s.ROIProjection != nil {
		roi := *s.ROIProjection
		out.ROIProjection = &roi
	}
	out.UseCases = make([]UseCase, len(s.UseCases))
	for i, uc := range s.UseCases {
		if uc.Results != nil {
			results := make(map[string]string, len(uc.Results))
			for k, v := range uc.Results {
				results[k] = v
			}
			uc.Results = results
		}
		out.UseCases[i] = uc
	}
	if s.BudgetBreakdown != nil {
		b := *s.BudgetBreakdown
		b.Categories = append([]BudgetCategory(nil), s.BudgetBreakdown.Categories...)
		out.BudgetBreakdown = &b
	}
	out.TimelinePhases = make([]Phase, len(s.TimelinePhases))
	for i, ph := range s.TimelinePhases {
		ph.Activities = cloneStrings(ph.Activities)
		ph.Milestones = cloneStrings(ph.Milestones)
		out.TimelinePhases[i] = ph
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// String and Float are helpers for building optional fields.
func String(s string) *string { return &s }

func Float(f float64) *float64 { return &f }

func StagePtr(s Stage) *Stage { return &s }
