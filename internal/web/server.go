// Package web serves the agency catalog, the consult page with its live GTM
// report, and the JSON and streaming APIs behind them.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/gtm-quest/internal/a2a"
	"github.com/BerylCAtieno/gtm-quest/internal/ack"
	"github.com/BerylCAtieno/gtm-quest/internal/catalog"
	"github.com/BerylCAtieno/gtm-quest/internal/concierge"
	"github.com/BerylCAtieno/gtm-quest/internal/contact"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the services the server is built from. Concierge, Sync and A2A
// may be nil; the matching routes then report the feature as unavailable.
type Deps struct {
	Catalog   *catalog.Store
	Contact   *contact.Service
	Concierge *concierge.Concierge
	Sync      *session.Synchronizer
	A2A       *a2a.Handler
	SiteURL   string
	// ContactRate is the number of contact submissions allowed per client per minute.
	ContactRate int
	Logger      *zap.Logger
}

type Server struct {
	catalog   *catalog.Store
	contact   *contact.Service
	concierge *concierge.Concierge
	sync      *session.Synchronizer
	a2a       *a2a.Handler
	siteURL   string
	limiter   *ipLimiter
	tmpl      *template.Template
	logger    *zap.Logger

	// acks holds one reveal controller per session, shared by every stream
	// that follows it.
	acksMu sync.Mutex
	acks   map[string]*ack.Controller
}

func New(d Deps) (*Server, error) {
	if d.Catalog == nil || d.Contact == nil {
		return nil, errors.New("web: catalog and contact services are required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.ContactRate <= 0 {
		d.ContactRate = 5
	}
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{
		catalog:   d.Catalog,
		contact:   d.Contact,
		concierge: d.Concierge,
		sync:      d.Sync,
		a2a:       d.A2A,
		siteURL:   strings.TrimRight(d.SiteURL, "/"),
		limiter:   newIPLimiter(d.ContactRate),
		tmpl:      tmpl,
		logger:    d.Logger,
		acks:      make(map[string]*ack.Controller),
	}, nil
}

// Router wires every route onto a fresh gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.logger))
	r.SetHTMLTemplate(s.tmpl)

	r.GET("/", s.home)
	r.GET("/agencies", s.agencies)
	r.GET("/agency/:slug", s.agency)
	r.GET("/articles", s.articles)
	r.GET("/articles/:slug", s.article)
	r.GET("/consult", s.consult)
	r.GET("/contact", s.contactPage)
	r.POST("/contact", s.limiter.Middleware(), s.contactForm)
	r.GET("/about", s.about)
	r.GET("/sitemap.xml", s.sitemap)
	r.GET("/health", s.health)

	api := r.Group("/api")
	api.GET("/agencies", s.apiAgencies)
	api.GET("/agencies/:slug", s.apiAgency)
	api.POST("/contact", s.limiter.Middleware(), s.apiContact)
	api.GET("/sessions/:name/report", s.apiReport)
	api.GET("/sessions/:name/stream", s.apiStream)
	api.POST("/sessions/:name/messages", s.apiMessage)
	api.DELETE("/sessions/:name", s.apiForget)

	if s.a2a != nil {
		r.GET("/.well-known/agent.json", s.a2a.ServeAgentCard)
		r.POST("/a2a/concierge", s.a2a.HandleConcierge)
	}

	r.NoRoute(s.seoPage)
	return r
}

func (s *Server) health(c *gin.Context) {
	if err := s.catalog.Ping(c.Request.Context()); err != nil {
		s.logger.Error("health: database unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"concierge": s.concierge != nil && s.concierge.Available(),
	})
}

// apiError maps err onto a JSON error response.
func (s *Server) apiError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, contact.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
