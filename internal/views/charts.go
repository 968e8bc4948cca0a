package views

import (
	"math"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

type FunnelStage struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// FunnelBar is a stage scaled against the widest stage. Conversion is the
// percentage that reaches the next stage; nil on the last stage or when the
// stage is empty.
type FunnelBar struct {
	Name       string   `json:"name"`
	Value      float64  `json:"value"`
	Width      float64  `json:"width"`
	Conversion *float64 `json:"conversion,omitempty"`
}

func Funnel(stages []FunnelStage) []FunnelBar {
	peak := 0.0
	for _, s := range stages {
		peak = math.Max(peak, s.Value)
	}
	bars := make([]FunnelBar, len(stages))
	for i, s := range stages {
		bars[i] = FunnelBar{Name: s.Name, Value: s.Value}
		if peak > 0 {
			bars[i].Width = width(s.Value, peak)
		}
		if i+1 < len(stages) && s.Value > 0 {
			c := RoundTenth(stages[i+1].Value / s.Value * 100)
			bars[i].Conversion = &c
		}
	}
	return bars
}

// DemoFunnel is the illustrative funnel shown once a strategy exists.
func DemoFunnel() []FunnelStage {
	return []FunnelStage{
		{Name: "Visitors", Value: 10000},
		{Name: "Leads", Value: 1500},
		{Name: "MQLs", Value: 450},
		{Name: "SQLs", Value: 135},
		{Name: "Customers", Value: 40},
	}
}

const maxTimelineActivities = 3

var timelineColors = []string{"blue", "purple", "pink", "orange"}

type TimelineRow struct {
	Index      int      `json:"index"`
	Name       string   `json:"name"`
	Duration   string   `json:"duration"`
	Color      string   `json:"color"`
	Activities []string `json:"activities"`
	// MoreActivities counts the activities beyond the ones listed.
	MoreActivities int      `json:"more_activities"`
	Milestones     []string `json:"milestones"`
}

func Timeline(phases []models.Phase) []TimelineRow {
	rows := make([]TimelineRow, 0, len(phases))
	for i, ph := range phases {
		row := TimelineRow{
			Index:      i + 1,
			Name:       ph.Name,
			Duration:   ph.Duration,
			Color:      timelineColors[i%len(timelineColors)],
			Activities: append([]string{}, ph.Activities...),
			Milestones: append([]string{}, ph.Milestones...),
		}
		if len(row.Activities) > maxTimelineActivities {
			row.MoreActivities = len(row.Activities) - maxTimelineActivities
			row.Activities = row.Activities[:maxTimelineActivities]
		}
		rows = append(rows, row)
	}
	return rows
}

var budgetColors = []string{"#3b82f6", "#8b5cf6", "#ec4899", "#f97316", "#10b981", "#eab308"}

// BudgetSlice is one donut segment. Start and End are fractions of the full
// circle; Share is the percentage actually drawn after normalization.
type BudgetSlice struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Share      float64 `json:"share"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Color      string  `json:"color"`
	LargeArc   bool    `json:"large_arc"`
}

// BudgetSlices lays categories out around a donut. Percentages that do not
// sum to 100 are scaled by their actual sum so the circle always closes.
// When every percentage is missing the amounts are used instead.
func BudgetSlices(b models.BudgetBreakdown) []BudgetSlice {
	weight := func(c models.BudgetCategory) float64 { return math.Max(c.Percentage, 0) }
	total := 0.0
	for _, c := range b.Categories {
		total += weight(c)
	}
	if total == 0 {
		weight = func(c models.BudgetCategory) float64 { return math.Max(c.Amount, 0) }
		for _, c := range b.Categories {
			total += weight(c)
		}
	}

	slices := make([]BudgetSlice, 0, len(b.Categories))
	cursor := 0.0
	for i, c := range b.Categories {
		frac := 0.0
		if total > 0 {
			frac = weight(c) / total
		}
		s := BudgetSlice{
			Name:       c.Name,
			Amount:     c.Amount,
			Percentage: c.Percentage,
			Share:      RoundTenth(frac * 100),
			Start:      cursor,
			End:        math.Min(cursor+frac, 1),
			Color:      budgetColors[i%len(budgetColors)],
			LargeArc:   frac > 0.5,
		}
		cursor = s.End
		slices = append(slices, s)
	}
	return slices
}
