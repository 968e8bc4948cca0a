// Package ack tracks which report sections have appeared during a session
// and emits a one-shot effect the first time each one does.
package ack

import (
	"sync"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
)

type State int

const (
	Absent State = iota
	PresentUnacknowledged
	PresentAcknowledged
)

func (s State) String() string {
	switch s {
	case PresentUnacknowledged:
		return "present_unacknowledged"
	case PresentAcknowledged:
		return "present_acknowledged"
	default:
		return "absent"
	}
}

type EffectKind string

const (
	EffectSectionRevealed EffectKind = "section_revealed"
	// EffectCelebration fires once when every section is present.
	EffectCelebration EffectKind = "celebration"
)

// Effect asks the client to play a reveal animation. Version is the snapshot
// that triggered it.
type Effect struct {
	Kind    EffectKind     `json:"kind"`
	Section models.Section `json:"section,omitempty"`
	Version uint64         `json:"version"`
}

// Controller holds the per-section state machine for one session.
// Sections only move forward: Absent, then PresentUnacknowledged, then
// PresentAcknowledged. A section that disappears from a later snapshot keeps
// its state.
type Controller struct {
	mu         sync.Mutex
	states     map[models.Section]State
	celebrated bool
	observed   bool
	last       uint64
}

func NewController() *Controller {
	return &Controller{states: make(map[models.Section]State, len(models.Sections))}
}

// Observe diffs snap against everything seen so far and returns the effects
// to fire, in section display order. Snapshots older than the newest one
// observed are ignored.
func (c *Controller) Observe(snap session.Snapshot) []Effect {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.observed && snap.Version < c.last {
		return nil
	}
	c.observed = true
	c.last = snap.Version

	var effects []Effect
	present := 0
	for _, section := range models.Sections {
		if !snap.State.Has(section) {
			if c.states[section] != Absent {
				present++
			}
			continue
		}
		present++
		if c.states[section] == Absent {
			c.states[section] = PresentUnacknowledged
			effects = append(effects, Effect{Kind: EffectSectionRevealed, Section: section, Version: snap.Version})
		}
	}
	if !c.celebrated && present == len(models.Sections) {
		c.celebrated = true
		effects = append(effects, Effect{Kind: EffectCelebration, Version: snap.Version})
	}
	return effects
}

// Acknowledge records that the effect for section was delivered. It reports
// whether the call changed anything.
func (c *Controller) Acknowledge(section models.Section) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.states[section] != PresentUnacknowledged {
		return false
	}
	c.states[section] = PresentAcknowledged
	return true
}

func (c *Controller) State(section models.Section) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[section]
}

// Pending lists sections whose effect has fired but not been acknowledged.
func (c *Controller) Pending() []models.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Section
	for _, section := range models.Sections {
		if c.states[section] == PresentUnacknowledged {
			out = append(out, section)
		}
	}
	return out
}
