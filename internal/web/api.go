package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/gtm-quest/internal/catalog"
	"github.com/BerylCAtieno/gtm-quest/internal/concierge"
	"github.com/BerylCAtieno/gtm-quest/internal/models"
	"github.com/BerylCAtieno/gtm-quest/internal/render"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
)

// agencyFilter reads q, location and specialization from the query string.
func agencyFilter(c *gin.Context) catalog.AgencyFilter {
	return catalog.AgencyFilter{
		Search:         c.Query("q"),
		Location:       c.Query("location"),
		Specialization: c.Query("specialization"),
	}
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return catalog.DefaultLimit
	}
	return n
}

func (s *Server) apiAgencies(c *gin.Context) {
	agencies, err := s.catalog.ListAgencies(c.Request.Context(), agencyFilter(c), queryLimit(c))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agencies": agencies, "count": len(agencies)})
}

func (s *Server) apiAgency(c *gin.Context) {
	agency, err := s.catalog.AgencyBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, agency)
}

func (s *Server) apiContact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and email are required"})
		return
	}
	id, err := s.contact.Submit(c.Request.Context(), req)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// apiReport renders the current snapshot of a concierge session.
func (s *Server) apiReport(c *gin.Context) {
	snap := session.EmptySnapshot(c.Param("name"))
	if s.concierge != nil {
		snap = s.concierge.Store().Snapshot(c.Param("name"))
	}
	c.JSON(http.StatusOK, render.Render(snap))
}

type messageRequest struct {
	Message string `json:"message" binding:"required"`
}

type messageResponse struct {
	Reply  string        `json:"reply"`
	Tools  []string      `json:"tools,omitempty"`
	Report render.Report `json:"report"`
}

// apiMessage sends one chat message to the concierge.
func (s *Server) apiMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	if s.concierge == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": concierge.ErrUnavailable.Error()})
		return
	}

	name := c.Param("name")
	reply, err := s.concierge.Converse(c.Request.Context(), name, req.Message)
	switch {
	case errors.Is(err, concierge.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case errors.Is(err, concierge.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	case err != nil:
		s.logger.Error("concierge failed", zap.String("session", name), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "The concierge could not answer right now"})
		return
	}
	c.JSON(http.StatusOK, messageResponse{
		Reply:  reply.Text,
		Tools:  reply.Tools,
		Report: render.Render(reply.Snapshot),
	})
}

// apiForget starts a session over.
func (s *Server) apiForget(c *gin.Context) {
	if s.concierge != nil {
		s.concierge.Forget(c.Param("name"))
	}
	s.forgetAcks(c.Param("name"))
	c.Status(http.StatusNoContent)
}
