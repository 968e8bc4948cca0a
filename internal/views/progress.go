// Package views computes presentation values from a GTMState snapshot.
// Every function is pure: the same state always yields the same output and
// the input is never modified.
package views

import (
	"math"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

// CompletionProgress is the share of trackable sections that are populated,
// in [0,1]. Company info counts once however many of its fields are set.
func CompletionProgress(state models.GTMState) float64 {
	done := 0
	for _, section := range models.Sections {
		if state.Has(section) {
			done++
		}
	}
	return float64(done) / float64(len(models.Sections))
}

// CompletionPercent is CompletionProgress as a rounded whole percentage.
func CompletionPercent(state models.GTMState) int {
	return int(math.Round(CompletionProgress(state) * 100))
}

// PathNode is one step of the strategy path shown above the report.
type PathNode struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Value     string `json:"value,omitempty"`
	Completed bool   `json:"completed"`
	Active    bool   `json:"active"`
}

type Path struct {
	Nodes     []PathNode `json:"nodes"`
	Completed int        `json:"completed"`
	Progress  float64    `json:"progress"`
	// NextHint names what the concierge still needs, empty once every node is done.
	NextHint string `json:"next_hint,omitempty"`
}

// StrategyPath builds the six-node journey company → industry → stage →
// market → strategy → agencies.
func StrategyPath(state models.GTMState) Path {
	text := func(s *string) string {
		v, _ := models.Text(s)
		return v
	}
	stage := ""
	if state.HasStage() {
		stage = state.Stage.Label()
	}
	strategy := ""
	if state.Strategy != nil {
		strategy = state.Strategy.Name
	}
	agencies := ""
	if n := len(state.RecommendedProviders); n > 0 {
		agencies = pluralize(n, "match", "matches")
	}

	nodes := []PathNode{
		{ID: "company", Label: "Company", Value: text(state.CompanyName), Completed: state.HasCompanyName()},
		{ID: "industry", Label: "Industry", Value: text(state.Industry), Completed: state.HasIndustry()},
		{ID: "stage", Label: "Stage", Value: stage, Completed: state.HasStage()},
		{ID: "market", Label: "Market", Value: text(state.TargetMarket), Completed: state.HasTargetMarket()},
		{ID: "strategy", Label: "Strategy", Value: strategy, Completed: state.Strategy != nil},
		{ID: "agencies", Label: "Agencies", Value: agencies, Completed: len(state.RecommendedProviders) > 0},
	}

	completed := 0
	for _, n := range nodes {
		if n.Completed {
			completed++
		}
	}
	path := Path{
		Nodes:     nodes,
		Completed: completed,
		Progress:  float64(completed) / float64(len(nodes)),
	}
	for i, n := range path.Nodes {
		if !n.Completed {
			path.Nodes[i].Active = true
			path.NextHint = "Next: tell me about your " + lower(n.Label)
			break
		}
	}
	return path
}
