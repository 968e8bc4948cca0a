package web

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerylCAtieno/gtm-quest/internal/ack"
	"github.com/BerylCAtieno/gtm-quest/internal/models"
	"github.com/BerylCAtieno/gtm-quest/internal/render"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
)

// apiStream follows a session as server-sent events:
//
//	status  connection status of the agent state feed
//	report  the rendered report for every accepted snapshot
//	effect  one-shot reveal and celebration effects
//
// Reveal effects fire once per session, whatever the number of streams or
// reconnects. A revealed section is acknowledged once the event carrying it
// has been flushed to the client.
func (s *Server) apiStream(c *gin.Context) {
	if s.sync == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": session.ErrDisconnected.Error()})
		return
	}
	ctx := c.Request.Context()
	name := c.Param("name")
	sub := s.sync.Subscribe(ctx, name)
	updates, statuses := sub.Updates(), sub.StatusChanges()
	var (
		ctrl    *ack.Controller
		flushed []models.Section
	)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(io.Writer) bool {
		for _, section := range flushed {
			ctrl.Acknowledge(section)
		}
		flushed = flushed[:0]

		select {
		case <-ctx.Done():
			return false
		case status, ok := <-statuses:
			if !ok {
				statuses = nil
				return true
			}
			c.SSEvent("status", gin.H{"status": status})
			return true
		case snap, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("report", render.Render(snap))
			// Looked up per snapshot: a forgotten session gets a new controller.
			ctrl = s.ackController(name)
			for _, effect := range ctrl.Observe(snap) {
				c.SSEvent("effect", effect)
				if effect.Kind == ack.EffectSectionRevealed {
					flushed = append(flushed, effect.Section)
				}
			}
			return true
		}
	})
}

// ackController returns the reveal controller of a session, creating it on
// first use.
func (s *Server) ackController(name string) *ack.Controller {
	s.acksMu.Lock()
	defer s.acksMu.Unlock()
	ctrl, ok := s.acks[name]
	if !ok {
		ctrl = ack.NewController()
		s.acks[name] = ctrl
	}
	return ctrl
}

func (s *Server) forgetAcks(name string) {
	s.acksMu.Lock()
	delete(s.acks, name)
	s.acksMu.Unlock()
}
