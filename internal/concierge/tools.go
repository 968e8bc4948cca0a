package concierge

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrInvalidArgument = errors.New("invalid tool argument")
)

const (
	ToolUpdateCompanyInfo = "update_company_info"
	ToolGenerateStrategy  = "generate_strategy"
	ToolAddProvider       = "add_provider_recommendation"
	ToolGenerateROI       = "generate_roi_projection"
	ToolAddUseCase        = "add_use_case"
	ToolGenerateBudget    = "generate_budget_breakdown"
	ToolAddTimelinePhase  = "add_timeline_phase"
)

// ToolCall is one function call requested by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ApplyTool mutates state according to call and returns the payload sent
// back to the model. On error state may be partially modified, so callers
// apply it to a copy (session.Store.TryUpdate does).
func ApplyTool(state *models.GTMState, call ToolCall) (map[string]any, error) {
	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	var (
		msg string
		err error
	)
	switch call.Name {
	case ToolUpdateCompanyInfo:
		msg, err = updateCompanyInfo(state, args)
	case ToolGenerateStrategy:
		msg, err = generateStrategy(state, args)
	case ToolAddProvider:
		msg, err = addProvider(state, args)
	case ToolGenerateROI:
		msg, err = generateROI(state, args)
	case ToolAddUseCase:
		msg, err = addUseCase(state, args)
	case ToolGenerateBudget:
		msg, err = generateBudget(state, args)
	case ToolAddTimelinePhase:
		msg, err = addTimelinePhase(state, args)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", call.Name, err)
	}
	return map[string]any{"success": true, "message": msg}, nil
}

func missing(field string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
}

func updateCompanyInfo(state *models.GTMState, args map[string]any) (string, error) {
	var updated, ignored []string
	if v, ok := argString(args, "company_name"); ok {
		state.CompanyName = &v
		updated = append(updated, "company_name")
	}
	if v, ok := argString(args, "industry"); ok {
		state.Industry = &v
		updated = append(updated, "industry")
	}
	if v, ok := argString(args, "stage"); ok {
		if stage, ok := session.NormalizeStage(v); ok {
			state.Stage = &stage
			updated = append(updated, "stage")
		} else {
			ignored = append(ignored, "stage")
		}
	}
	if v, ok := argString(args, "target_market"); ok {
		state.TargetMarket = &v
		updated = append(updated, "target_market")
	}
	if v, ok := argNumber(args, "budget"); ok && v > 0 {
		state.Budget = &v
		updated = append(updated, "budget")
	}
	if len(updated) == 0 {
		return "", fmt.Errorf("%w: no company field given", ErrInvalidArgument)
	}
	msg := "Updated: " + strings.Join(updated, ", ")
	if len(ignored) > 0 {
		msg += ". Ignored unrecognised " + strings.Join(ignored, ", ") +
			" (use seed, series_a, series_b, growth or enterprise)"
	}
	return msg, nil
}

func generateStrategy(state *models.GTMState, args map[string]any) (string, error) {
	name, ok := argString(args, "strategy_name")
	if !ok {
		return "", missing("strategy_name")
	}
	typ, _ := argString(args, "strategy_type")
	summary, _ := argString(args, "summary")
	state.Strategy = &models.Strategy{
		Name:           name,
		Type:           session.NormalizeStrategyType(typ),
		Summary:        summary,
		RecommendedFor: argStrings(args, "recommended_for"),
		ActionItems:    argStrings(args, "action_items"),
	}
	return fmt.Sprintf("Strategy '%s' has been generated and added to your report.", name), nil
}

// addProvider appends a provider, or replaces one with the same slug in place.
func addProvider(state *models.GTMState, args map[string]any) (string, error) {
	name, ok := argString(args, "name")
	if !ok {
		return "", missing("name")
	}
	typ, ok := argString(args, "provider_type")
	if !ok {
		typ = "agency"
	}
	tier, _ := argString(args, "pricing_tier")
	description, _ := argString(args, "description")
	website, _ := argString(args, "website")
	p := models.Provider{
		ID:              uuid.NewString(),
		Name:            name,
		Slug:            session.Slugify(name),
		Type:            typ,
		Specializations: argStrings(args, "specializations"),
		Industries:      argStrings(args, "industries"),
		PricingTier:     session.NormalizePricingTier(tier),
		Website:         website,
		Description:     description,
	}
	if score, ok := argNumber(args, "match_score"); ok {
		p.MatchScore = session.NormalizeMatchScore(&score)
	}

	for i, existing := range state.RecommendedProviders {
		if existing.Slug == p.Slug {
			p.ID = existing.ID
			state.RecommendedProviders[i] = p
			return fmt.Sprintf("Updated %s in your recommended providers.", name), nil
		}
	}
	state.RecommendedProviders = append(state.RecommendedProviders, p)
	return fmt.Sprintf("Added %s to your recommended providers.", name), nil
}

func generateROI(state *models.GTMState, args map[string]any) (string, error) {
	cac, ok := argNumber(args, "estimated_cac")
	if !ok {
		return "", missing("estimated_cac")
	}
	ltv, ok := argNumber(args, "estimated_ltv")
	if !ok {
		return "", missing("estimated_ltv")
	}
	payback, ok := argNumber(args, "payback_months")
	if !ok {
		return "", missing("payback_months")
	}
	confidence, _ := argString(args, "confidence")
	notes, _ := argString(args, "notes")
	roi := models.ROIProjection{
		EstimatedCAC:  cac,
		EstimatedLTV:  ltv,
		PaybackMonths: payback,
		Confidence:    session.NormalizeConfidence(confidence),
		Notes:         notes,
	}
	if !session.ValidROI(roi) {
		return "", fmt.Errorf("%w: cac and ltv must be non-negative and payback_months positive", ErrInvalidArgument)
	}
	state.ROIProjection = &roi
	return "ROI projection has been added to your report.", nil
}

func addUseCase(state *models.GTMState, args map[string]any) (string, error) {
	company, ok := argString(args, "company_name")
	if !ok {
		return "", missing("company_name")
	}
	uc := models.UseCase{CompanyName: company, Results: argResults(args)}
	uc.Industry, _ = argString(args, "industry")
	uc.CompanyStage, _ = argString(args, "company_stage")
	uc.Challenge, _ = argString(args, "challenge")
	uc.Solution, _ = argString(args, "solution")
	state.UseCases = append(state.UseCases, uc)
	return fmt.Sprintf("Added %s case study to your report.", company), nil
}

// generateBudget fills missing percentages from amounts and a missing total
// from the sum of amounts.
func generateBudget(state *models.GTMState, args map[string]any) (string, error) {
	var categories []models.BudgetCategory
	sum := 0.0
	for _, m := range argObjects(args, "categories") {
		name, ok := argString(m, "name")
		if !ok {
			continue
		}
		amount, _ := argNumber(m, "amount")
		pct, _ := argNumber(m, "percentage")
		if amount < 0 || pct < 0 {
			return "", fmt.Errorf("%w: category %s has a negative value", ErrInvalidArgument, name)
		}
		sum += amount
		categories = append(categories, models.BudgetCategory{Name: name, Amount: amount, Percentage: pct})
	}
	if len(categories) == 0 {
		return "", missing("categories")
	}
	total, ok := argNumber(args, "total")
	if !ok || total <= 0 {
		total = sum
	}
	for i := range categories {
		if categories[i].Percentage == 0 && total > 0 {
			categories[i].Percentage = math.Round(categories[i].Amount/total*1000) / 10
		}
	}
	state.BudgetBreakdown = &models.BudgetBreakdown{Total: total, Categories: categories}
	return fmt.Sprintf("Budget breakdown across %d categories has been added to your report.", len(categories)), nil
}

// addTimelinePhase appends a phase, or replaces the phase with the same name.
func addTimelinePhase(state *models.GTMState, args map[string]any) (string, error) {
	name, ok := argString(args, "name")
	if !ok {
		return "", missing("name")
	}
	duration, _ := argString(args, "duration")
	ph := models.Phase{
		Name:       name,
		Duration:   duration,
		Activities: argStrings(args, "activities"),
		Milestones: argStrings(args, "milestones"),
	}
	for i, existing := range state.TimelinePhases {
		if strings.EqualFold(existing.Name, name) {
			state.TimelinePhases[i] = ph
			return fmt.Sprintf("Updated the %s phase.", name), nil
		}
	}
	state.TimelinePhases = append(state.TimelinePhases, ph)
	return fmt.Sprintf("Added the %s phase to your timeline.", name), nil
}

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func num(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: desc}
}

func list(desc string, items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: items}
}

func enum(desc string, values ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc, Enum: values}
}

func object(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

// Tools declares every function the model may call.
func Tools() []*genai.Tool {
	return []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{
		{
			Name:        ToolUpdateCompanyInfo,
			Description: "Update the company information in the report. Call this when the user shares details about their company.",
			Parameters: object(map[string]*genai.Schema{
				"company_name":  str("Name of the company"),
				"industry":      str("Industry or vertical"),
				"stage":         enum("Company stage", "seed", "series_a", "series_b", "growth", "enterprise"),
				"target_market": str("Target market or customer segment"),
				"budget":        num("Monthly GTM budget in dollars, if shared"),
			}),
		},
		{
			Name:        ToolGenerateStrategy,
			Description: "Generate a GTM strategy recommendation and add it to the report.",
			Parameters: object(map[string]*genai.Schema{
				"strategy_type":   enum("Go-to-market motion", "plg", "sales_led", "hybrid"),
				"strategy_name":   str("Human-readable name like Product-Led Growth"),
				"summary":         str("2-3 sentence summary of the strategy"),
				"action_items":    list("Specific action items to implement", str("")),
				"recommended_for": list("Company types this works best for", str("")),
			}, "strategy_type", "strategy_name", "summary"),
		},
		{
			Name:        ToolAddProvider,
			Description: "Add an agency, tool or platform recommendation to the report.",
			Parameters: object(map[string]*genai.Schema{
				"name":            str("Name of the provider"),
				"provider_type":   enum("Kind of provider", "agency", "tool", "platform"),
				"description":     str("Brief description of what they do"),
				"specializations": list("Their specializations", str("")),
				"industries":      list("Industries they serve", str("")),
				"pricing_tier":    enum("Price level", "budget", "mid", "premium"),
				"website":         str("Website URL"),
				"match_score":     num("Fit with the user's needs from 0 to 1"),
			}, "name", "description", "pricing_tier"),
		},
		{
			Name:        ToolGenerateROI,
			Description: "Generate ROI projections for the GTM strategy.",
			Parameters: object(map[string]*genai.Schema{
				"estimated_cac":  num("Estimated customer acquisition cost in dollars"),
				"estimated_ltv":  num("Estimated customer lifetime value in dollars"),
				"payback_months": num("Estimated months to pay back CAC"),
				"confidence":     enum("Confidence in the projection", "low", "medium", "high"),
				"notes":          str("Explanatory notes about the projection"),
			}, "estimated_cac", "estimated_ltv", "payback_months"),
		},
		{
			Name:        ToolAddUseCase,
			Description: "Add a similar company success story to the report.",
			Parameters: object(map[string]*genai.Schema{
				"company_name":  str("Name of the company, can be anonymized"),
				"industry":      str("Their industry"),
				"company_stage": str("Their stage when it happened"),
				"challenge":     str("What challenge they faced"),
				"solution":      str("How they solved it"),
				"results": list("Outcomes such as revenue_increase 150%", object(map[string]*genai.Schema{
					"metric": str("Name of the result"),
					"value":  str("Value of the result"),
				}, "metric", "value")),
			}, "company_name", "challenge", "solution"),
		},
		{
			Name:        ToolGenerateBudget,
			Description: "Add a GTM budget allocation to the report.",
			Parameters: object(map[string]*genai.Schema{
				"total": num("Total budget in dollars"),
				"categories": list("Budget categories", object(map[string]*genai.Schema{
					"name":       str("Category such as Paid Media"),
					"amount":     num("Dollars allocated"),
					"percentage": num("Share of the total, 0-100"),
				}, "name", "amount")),
			}, "categories"),
		},
		{
			Name:        ToolAddTimelinePhase,
			Description: "Add an implementation phase to the timeline in the report.",
			Parameters: object(map[string]*genai.Schema{
				"name":       str("Phase name such as Foundation"),
				"duration":   str("Duration such as Weeks 1-4"),
				"activities": list("Activities in this phase", str("")),
				"milestones": list("Milestones that close the phase", str("")),
			}, "name", "duration"),
		},
	}}}
}
