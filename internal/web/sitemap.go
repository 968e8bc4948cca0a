package web

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

var staticPages = []sitemapURL{
	{Loc: "/", ChangeFreq: "daily", Priority: 1.0},
	{Loc: "/agencies", ChangeFreq: "daily", Priority: 0.9},
	{Loc: "/articles", ChangeFreq: "weekly", Priority: 0.8},
	{Loc: "/consult", ChangeFreq: "monthly", Priority: 0.8},
	{Loc: "/contact", ChangeFreq: "yearly", Priority: 0.5},
	{Loc: "/about", ChangeFreq: "yearly", Priority: 0.5},
}

func (s *Server) sitemap(c *gin.Context) {
	ctx := c.Request.Context()
	set := urlset{XMLNS: sitemapNS}
	for _, u := range staticPages {
		u.Loc = s.siteURL + u.Loc
		set.URLs = append(set.URLs, u)
	}

	agencies, err := s.catalog.AgencySlugs(ctx)
	if err != nil {
		s.apiError(c, err)
		return
	}
	for _, slug := range agencies {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.siteURL + "/agency/" + slug, ChangeFreq: "weekly", Priority: 0.7})
	}

	articles, err := s.catalog.ArticleSlugs(ctx)
	if err != nil {
		s.apiError(c, err)
		return
	}
	for _, slug := range articles {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.siteURL + "/articles/" + slug, ChangeFreq: "monthly", Priority: 0.6})
	}

	pages, err := s.catalog.ListSEOPages(ctx, "")
	if err != nil {
		s.apiError(c, err)
		return
	}
	for _, p := range pages {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.siteURL + "/" + p.Slug, ChangeFreq: "weekly", Priority: 0.7})
	}

	c.XML(http.StatusOK, set)
}
