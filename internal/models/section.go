package models

// Section is one of the six trackable groupings of a GTMState.
type Section string

const (
	SectionCompanyInfo Section = "company_info"
	SectionStrategy    Section = "strategy"
	SectionROI         Section = "roi_projection"
	SectionProviders   Section = "recommended_providers"
	SectionTimeline    Section = "timeline_phases"
	SectionBudget      Section = "budget_breakdown"
)

// Sections lists every trackable section in display priority order.
var Sections = []Section{
	SectionCompanyInfo,
	SectionStrategy,
	SectionROI,
	SectionProviders,
	SectionTimeline,
	SectionBudget,
}

// Has reports whether the section is populated in s.
func (s GTMState) Has(section Section) bool {
	switch section {
	case SectionCompanyInfo:
		return s.HasCompanyInfo()
	case SectionStrategy:
		return s.Strategy != nil
	case SectionROI:
		return s.ROIProjection != nil
	case SectionProviders:
		return len(s.RecommendedProviders) > 0
	case SectionTimeline:
		return len(s.TimelinePhases) > 0
	case SectionBudget:
		return s.BudgetBreakdown != nil
	default:
		return false
	}
}
