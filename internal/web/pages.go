package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/gtm-quest/internal/catalog"
	"github.com/BerylCAtieno/gtm-quest/internal/concierge"
	"github.com/BerylCAtieno/gtm-quest/internal/contact"
	"github.com/BerylCAtieno/gtm-quest/internal/content"
	"github.com/BerylCAtieno/gtm-quest/internal/models"
	"github.com/BerylCAtieno/gtm-quest/internal/render"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
)

const (
	relatedLimit = 3
	homeAgencies = 6
	homeArticles = 3
)

var seoSlug = regexp.MustCompile(`^/[a-z0-9]+(?:-[a-z0-9]+)*$`)

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2 January 2006")
	},
	// css marks trusted style values such as the theme gradients.
	"css": func(s string) template.CSS { return template.CSS(s) },
	"money": func(v int) string {
		return "$" + thousands(int64(v))
	},
}

// page is the data every template receives.
type page struct {
	Title       string
	Description string
	Canonical   string
	JSONLD      template.JS
	Data        any
}

func (s *Server) page(c *gin.Context, status int, name string, p page) {
	if p.Canonical == "" {
		p.Canonical = s.siteURL + c.Request.URL.Path
	}
	c.HTML(status, name, p)
}

type message struct {
	Heading string
	Text    string
}

func (s *Server) notFound(c *gin.Context) {
	s.page(c, http.StatusNotFound, "message.html", page{
		Title: "Page not found",
		Data:  message{Heading: "Page not found", Text: "The page you are looking for does not exist or has moved."},
	})
}

// pageError renders the not-found page for ErrNotFound and a generic error
// page for everything else.
func (s *Server) pageError(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		s.notFound(c)
		return
	}
	s.logger.Error("page failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	s.page(c, http.StatusInternalServerError, "message.html", page{
		Title: "Something went wrong",
		Data:  message{Heading: "Something went wrong", Text: "Please try again in a moment."},
	})
}

func (s *Server) home(c *gin.Context) {
	ctx := c.Request.Context()
	agencies, err := s.catalog.ListAgencies(ctx, catalog.AgencyFilter{}, homeAgencies)
	if err != nil {
		s.pageError(c, err)
		return
	}
	articles, err := s.catalog.ListArticles(ctx, catalog.ArticleFilter{}, homeArticles)
	if err != nil {
		s.pageError(c, err)
		return
	}
	locations, err := s.catalog.ListSEOPages(ctx, models.PageTypeLocation)
	if err != nil {
		s.pageError(c, err)
		return
	}
	s.page(c, http.StatusOK, "home.html", page{
		Title:       "GTM Quest: find your go-to-market partner",
		Description: "Compare GTM agencies and get an AI-built go-to-market strategy in minutes.",
		JSONLD: s.jsonLD(c, map[string]any{
			"@context": "https://schema.org",
			"@type":    "WebSite",
			"name":     "GTM Quest",
			"url":      s.siteURL,
		}),
		Data: gin.H{"Agencies": agencies, "Articles": articles, "Locations": locations},
	})
}

func (s *Server) agencies(c *gin.Context) {
	ctx := c.Request.Context()
	filter := agencyFilter(c)
	agencies, err := s.catalog.ListAgencies(ctx, filter, catalog.MaxLimit)
	if err != nil {
		s.pageError(c, err)
		return
	}
	locations, err := s.catalog.ListSEOPages(ctx, models.PageTypeLocation)
	if err != nil {
		s.pageError(c, err)
		return
	}
	s.page(c, http.StatusOK, "agencies.html", page{
		Title:       "GTM Agencies",
		Description: "Browse go-to-market agencies by location and specialization.",
		Data:        gin.H{"Agencies": agencies, "Filter": filter, "Locations": locations},
	})
}

func (s *Server) agency(c *gin.Context) {
	ctx := c.Request.Context()
	agency, err := s.catalog.AgencyBySlug(ctx, c.Param("slug"))
	if err != nil {
		s.pageError(c, err)
		return
	}
	related, err := s.catalog.RelatedAgencies(ctx, agency.Slug, relatedLimit)
	if err != nil {
		s.pageError(c, err)
		return
	}
	description := agency.MetaDescription
	if description == "" {
		description = content.Excerpt(agency.Description, 160)
	}
	s.page(c, http.StatusOK, "agency.html", page{
		Title:       agency.Name + " | GTM Agency",
		Description: description,
		JSONLD:      s.jsonLD(c, agencyLD(agency, s.siteURL)),
		Data:        gin.H{"Agency": agency, "Related": related},
	})
}

func (s *Server) articles(c *gin.Context) {
	filter := catalog.ArticleFilter{GuideType: c.Query("type")}
	articles, err := s.catalog.ListArticles(c.Request.Context(), filter, catalog.MaxLimit)
	if err != nil {
		s.pageError(c, err)
		return
	}
	s.page(c, http.StatusOK, "articles.html", page{
		Title:       "GTM Guides",
		Description: "Guides and benchmarks for building a go-to-market motion.",
		Data:        gin.H{"Articles": articles, "Filter": filter},
	})
}

func (s *Server) article(c *gin.Context) {
	ctx := c.Request.Context()
	article, err := s.catalog.ArticleBySlug(ctx, c.Param("slug"))
	if err != nil {
		s.pageError(c, err)
		return
	}
	body, err := content.RenderMarkdown(article.Content)
	if err != nil {
		s.pageError(c, fmt.Errorf("render article %q: %w", article.Slug, err))
		return
	}
	related, err := s.catalog.RelatedArticles(ctx, article.Slug, article.GuideType, relatedLimit)
	if err != nil {
		s.pageError(c, err)
		return
	}
	description := article.MetaDescription
	if description == "" {
		description = article.Excerpt
	}
	s.page(c, http.StatusOK, "article.html", page{
		Title:       article.Title,
		Description: description,
		JSONLD:      s.jsonLD(c, articleLD(article, s.siteURL)),
		Data: gin.H{
			"Article": article,
			"Body":    body,
			"Minutes": content.ReadingMinutes(article.WordCount, article.Content),
			"Related": related,
		},
	})
}

// consult shows the chat and the live report for a session. A new session
// name is assigned when the query does not carry one.
func (s *Server) consult(c *gin.Context) {
	name := c.Query("session")
	if name == "" {
		name = uuid.NewString()
	}
	snap := session.EmptySnapshot(name)
	available := s.concierge != nil && s.concierge.Available()
	if s.concierge != nil {
		snap = s.concierge.Store().Snapshot(name)
	}
	s.page(c, http.StatusOK, "consult.html", page{
		Title:       "AI GTM Strategist",
		Description: "Describe your company and watch your go-to-market report build itself.",
		Canonical:   s.siteURL + "/consult",
		Data: gin.H{
			"Session":   name,
			"Greeting":  concierge.Greeting,
			"Available": available,
			"Report":    render.Render(snap),
		},
	})
}

type contactView struct {
	Agency  *models.Agency
	Request models.ContactRequest
	Sent    bool
	Error   string
}

func (s *Server) contactPage(c *gin.Context) {
	view := contactView{}
	if slug := c.Query("agency"); slug != "" {
		if agency, err := s.catalog.AgencyBySlug(c.Request.Context(), slug); err == nil {
			view.Agency = &agency
			view.Request.AgencySlug = agency.Slug
		}
	}
	s.renderContact(c, http.StatusOK, view)
}

func (s *Server) contactForm(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		s.renderContact(c, http.StatusBadRequest, contactView{Request: req, Error: "Name and email are required"})
		return
	}
	if _, err := s.contact.Submit(c.Request.Context(), req); err != nil {
		if !errors.Is(err, contact.ErrValidation) {
			s.pageError(c, err)
			return
		}
		s.renderContact(c, http.StatusBadRequest, contactView{Request: req, Error: err.Error()})
		return
	}
	s.renderContact(c, http.StatusOK, contactView{Sent: true})
}

func (s *Server) renderContact(c *gin.Context, status int, view contactView) {
	s.page(c, status, "contact.html", page{
		Title:       "Talk to a GTM expert",
		Description: "Tell us about your company and we will match you with the right GTM partner.",
		Data:        view,
	})
}

func (s *Server) about(c *gin.Context) {
	s.page(c, http.StatusOK, "about.html", page{
		Title:       "About GTM Quest",
		Description: "GTM Quest helps B2B companies pick a go-to-market motion and the agency to run it.",
	})
}

// seoPage resolves any other single-segment path as a category or location
// landing page.
func (s *Server) seoPage(c *gin.Context) {
	path := c.Request.URL.Path
	if c.Request.Method != http.MethodGet || !seoSlug.MatchString(path) {
		s.notFound(c)
		return
	}
	ctx := c.Request.Context()
	seo, err := s.catalog.SEOPageBySlug(ctx, strings.TrimPrefix(path, "/"))
	if err != nil {
		s.pageError(c, err)
		return
	}

	filter := catalog.AgencyFilter{Specialization: seo.Name}
	if seo.PageType == models.PageTypeLocation {
		filter = catalog.AgencyFilter{Location: seo.Name}
	}
	agencies, err := s.catalog.ListAgencies(ctx, filter, catalog.DefaultLimit)
	if err != nil {
		s.pageError(c, err)
		return
	}
	related, err := s.catalog.SEOPagesBySlugs(ctx, seo.RelatedPages)
	if err != nil {
		s.pageError(c, err)
		return
	}

	title := seo.MetaTitle
	if title == "" {
		title = "GTM Agencies: " + seo.Title()
	}
	description := seo.MetaDescription
	if description == "" {
		description = seo.Description
	}
	s.page(c, http.StatusOK, "seo.html", page{
		Title:       title,
		Description: description,
		JSONLD:      s.jsonLD(c, faqLD(seo)),
		Data:        gin.H{"Page": seo, "Agencies": agencies, "Related": related},
	})
}

// jsonLD encodes v for a ld+json script tag. json.Marshal escapes <, > and &
// so the result cannot close the tag early.
func jsonLD(v any) (template.JS, error) {
	if v == nil {
		return "", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(raw), nil
}

func (s *Server) jsonLD(c *gin.Context, v any) template.JS {
	js, err := jsonLD(v)
	if err != nil {
		s.logger.Warn("encode json-ld", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	return js
}

func agencyLD(a models.Agency, siteURL string) map[string]any {
	ld := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Organization",
		"name":        a.Name,
		"url":         siteURL + "/agency/" + a.Slug,
		"description": a.Description,
	}
	if a.Website != "" {
		ld["sameAs"] = []string{a.Website}
	}
	if a.LogoURL != "" {
		ld["logo"] = a.LogoURL
	}
	if a.Headquarters != "" {
		ld["address"] = map[string]any{"@type": "PostalAddress", "addressLocality": a.Headquarters}
	}
	if a.FoundedYear != nil {
		ld["foundingDate"] = fmt.Sprint(*a.FoundedYear)
	}
	if a.AvgRating != nil && a.ReviewCount != nil && *a.ReviewCount > 0 {
		ld["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": *a.AvgRating,
			"reviewCount": *a.ReviewCount,
		}
	}
	return ld
}

func articleLD(a models.Article, siteURL string) map[string]any {
	ld := map[string]any{
		"@context":         "https://schema.org",
		"@type":            "Article",
		"headline":         a.Title,
		"description":      a.Excerpt,
		"mainEntityOfPage": siteURL + "/articles/" + a.Slug,
		"publisher":        map[string]any{"@type": "Organization", "name": "GTM Quest"},
	}
	if a.PublishedAt != nil {
		ld["datePublished"] = a.PublishedAt.Format(time.RFC3339)
	}
	if a.HeroAssetURL != "" {
		ld["image"] = a.HeroAssetURL
	}
	if a.WordCount != nil {
		ld["wordCount"] = *a.WordCount
	}
	return ld
}

// faqLD is nil when the page has no FAQs.
func faqLD(p models.SEOPage) any {
	if len(p.FAQs) == 0 {
		return nil
	}
	entities := make([]map[string]any, 0, len(p.FAQs))
	for _, f := range p.FAQs {
		entities = append(entities, map[string]any{
			"@type":          "Question",
			"name":           f.Question,
			"acceptedAnswer": map[string]any{"@type": "Answer", "text": f.Answer},
		})
	}
	return map[string]any{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": entities,
	}
}

// thousands formats n with comma separators.
func thousands(n int64) string {
	s := fmt.Sprint(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
