package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

const seoColumns = `id, slug, page_type, name, display_name, description, market_highlight,
  hero_image_url, country, region, timezone, currency, services, industries, related_pages,
  faqs, meta_title, meta_description, status`

func (s *Store) SEOPageBySlug(ctx context.Context, slug string) (models.SEOPage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+seoColumns+` FROM seo_pages WHERE slug = ? AND status = ? LIMIT 1`,
		slug, models.StatusPublished)
	p, err := scanSEOPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SEOPage{}, fmt.Errorf("seo page %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return models.SEOPage{}, fmt.Errorf("get seo page %q: %w", slug, err)
	}
	return p, nil
}

// ListSEOPages returns published pages ordered by name. An empty pageType
// lists every type.
func (s *Store) ListSEOPages(ctx context.Context, pageType string) ([]models.SEOPage, error) {
	query := `SELECT ` + seoColumns + ` FROM seo_pages WHERE status = ?`
	args := []any{models.StatusPublished}
	if pageType != "" {
		query += ` AND page_type = ?`
		args = append(args, pageType)
	}
	return s.querySEOPages(ctx, query+` ORDER BY name`, args...)
}

// SEOPagesBySlugs resolves a related-pages list, keeping the order of slugs
// and skipping unknown or unpublished entries.
func (s *Store) SEOPagesBySlugs(ctx context.Context, slugs []string) ([]models.SEOPage, error) {
	if len(slugs) == 0 {
		return []models.SEOPage{}, nil
	}
	args := []any{models.StatusPublished}
	for _, slug := range slugs {
		args = append(args, slug)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(slugs)), ",")
	pages, err := s.querySEOPages(ctx,
		`SELECT `+seoColumns+` FROM seo_pages WHERE status = ? AND slug IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]models.SEOPage, len(pages))
	for _, p := range pages {
		bySlug[p.Slug] = p
	}
	out := make([]models.SEOPage, 0, len(pages))
	for _, slug := range slugs {
		if p, ok := bySlug[slug]; ok {
			out = append(out, p)
			delete(bySlug, slug)
		}
	}
	return out, nil
}

func (s *Store) querySEOPages(ctx context.Context, query string, args ...any) ([]models.SEOPage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list seo pages: %w", err)
	}
	defer rows.Close()

	out := []models.SEOPage{}
	for rows.Next() {
		p, err := scanSEOPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seo page: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanSEOPage(row rowScanner) (models.SEOPage, error) {
	var (
		p                                     models.SEOPage
		display, description, highlight, hero sql.NullString
		country, region, timezone, currency   sql.NullString
		services, industries, related, faqs   sql.NullString
		metaTitle, metaDescription            sql.NullString
	)
	err := row.Scan(&p.ID, &p.Slug, &p.PageType, &p.Name, &display, &description, &highlight,
		&hero, &country, &region, &timezone, &currency, &services, &industries, &related,
		&faqs, &metaTitle, &metaDescription, &p.Status)
	if err != nil {
		return models.SEOPage{}, err
	}
	p.DisplayName = display.String
	p.Description = description.String
	p.MarketHighlight = highlight.String
	p.HeroImageURL = hero.String
	p.Country = country.String
	p.Region = region.String
	p.Timezone = timezone.String
	p.Currency = currency.String
	p.MetaTitle = metaTitle.String
	p.MetaDescription = metaDescription.String

	if p.Services, err = decodeList[string](services, "services"); err != nil {
		return models.SEOPage{}, err
	}
	if p.Industries, err = decodeList[string](industries, "industries"); err != nil {
		return models.SEOPage{}, err
	}
	if p.RelatedPages, err = decodeList[string](related, "related_pages"); err != nil {
		return models.SEOPage{}, err
	}
	if p.FAQs, err = decodeList[models.FAQ](faqs, "faqs"); err != nil {
		return models.SEOPage{}, err
	}
	return p, nil
}
