package views

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

// Headline is the hero text above the live report.
type Headline struct {
	Main string `json:"main"`
	Sub  string `json:"sub"`
	// Rule names the rule that produced the text.
	Rule string `json:"rule"`
}

type headlineRule struct {
	name    string
	applies func(models.GTMState) bool
	text    func(models.GTMState) (string, string)
}

// headlineRules is evaluated top to bottom; the last rule always applies.
var headlineRules = []headlineRule{
	{
		name:    "company_industry",
		applies: func(s models.GTMState) bool { return s.HasCompanyName() && s.HasIndustry() },
		text: func(s models.GTMState) (string, string) {
			company, _ := models.Text(s.CompanyName)
			industry, _ := models.Text(s.Industry)
			return "GTM Strategy for " + company, "AI-powered go-to-market intelligence for " + industry
		},
	},
	{
		name:    "industry",
		applies: func(s models.GTMState) bool { return s.HasIndustry() },
		text: func(s models.GTMState) (string, string) {
			industry, _ := models.Text(s.Industry)
			return "GTM Strategy for " + industry, "AI-powered go-to-market intelligence"
		},
	},
	{
		name:    "stage",
		applies: func(s models.GTMState) bool { return s.HasStage() },
		text: func(s models.GTMState) (string, string) {
			return fmt.Sprintf("GTM for %s Companies", s.Stage.Label()), "Find the perfect agencies and strategies"
		},
	},
	{
		name:    "market",
		applies: func(s models.GTMState) bool { return s.HasTargetMarket() },
		text: func(s models.GTMState) (string, string) {
			market, _ := models.Text(s.TargetMarket)
			return "Dominate " + market, "AI-powered go-to-market strategy"
		},
	},
	{
		name:    "default",
		applies: func(models.GTMState) bool { return true },
		text: func(models.GTMState) (string, string) {
			return "Your AI GTM Strategist", "Speak or type to get personalized go-to-market recommendations"
		},
	},
}

// ContextualHeadline returns the text of the first matching rule. Rules do
// not merge: a state with a company name but no industry falls through to
// the stage, market or default rule.
func ContextualHeadline(state models.GTMState) Headline {
	for _, r := range headlineRules {
		if r.applies(state) {
			main, sub := r.text(state)
			return Headline{Main: main, Sub: sub, Rule: r.name}
		}
	}
	// unreachable while the default rule is last
	return Headline{Main: "Your AI GTM Strategist", Rule: "default"}
}

// Keywords are the terms the hero highlights, in reading order.
func Keywords(state models.GTMState) []string {
	var out []string
	if v, ok := models.Text(state.Industry); ok {
		out = append(out, v)
	}
	if state.HasStage() {
		out = append(out, state.Stage.Label())
	}
	if v, ok := models.Text(state.TargetMarket); ok {
		out = append(out, v)
	}
	if state.Strategy != nil {
		if state.Strategy.Type != "" {
			out = append(out, string(state.Strategy.Type))
		}
		out = append(out, strings.Fields(state.Strategy.Name)...)
	}
	return out
}

func lower(s string) string { return strings.ToLower(s) }

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
