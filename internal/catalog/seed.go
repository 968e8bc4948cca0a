package catalog

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

//go:embed seed/catalog.yaml
var defaultSeed []byte

// Seed is the YAML fixture format loaded by LoadSeed.
type Seed struct {
	Agencies []models.Agency  `yaml:"agencies"`
	Articles []models.Article `yaml:"articles"`
	SEOPages []models.SEOPage `yaml:"seo_pages"`
}

type SeedStats struct {
	Agencies int
	Articles int
	SEOPages int
}

// LoadSeed upserts every entity in the YAML document by slug inside one
// transaction. Entities without a status are published.
func (s *Store) LoadSeed(ctx context.Context, r io.Reader) (SeedStats, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return SeedStats{}, fmt.Errorf("decode seed: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SeedStats{}, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, a := range seed.Agencies {
		if err := upsertAgency(ctx, tx, a); err != nil {
			return SeedStats{}, err
		}
	}
	for _, a := range seed.Articles {
		if err := upsertArticle(ctx, tx, a); err != nil {
			return SeedStats{}, err
		}
	}
	for _, p := range seed.SEOPages {
		if err := upsertSEOPage(ctx, tx, p); err != nil {
			return SeedStats{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return SeedStats{}, fmt.Errorf("commit seed: %w", err)
	}

	stats := SeedStats{Agencies: len(seed.Agencies), Articles: len(seed.Articles), SEOPages: len(seed.SEOPages)}
	s.logger.Info("catalog seeded",
		zap.Int("agencies", stats.Agencies),
		zap.Int("articles", stats.Articles),
		zap.Int("seo_pages", stats.SEOPages))
	return stats, nil
}

// LoadDefaultSeed loads the fixture compiled into the binary.
func (s *Store) LoadDefaultSeed(ctx context.Context) (SeedStats, error) {
	return s.LoadSeed(ctx, bytes.NewReader(defaultSeed))
}

// IsEmpty reports whether no agency has been stored yet.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agencies`).Scan(&n); err != nil {
		return false, fmt.Errorf("count agencies: %w", err)
	}
	return n == 0, nil
}

func statusOrPublished(status string) string {
	if status == "" {
		return models.StatusPublished
	}
	return status
}

func upsertAgency(ctx context.Context, tx *sql.Tx, a models.Agency) error {
	if a.Slug == "" || a.Name == "" {
		return fmt.Errorf("seed agency %q: slug and name are required", a.Name)
	}
	lists := make([]string, 4)
	for i, l := range [][]string{a.Specializations, a.ServiceAreas, a.CategoryTags, a.KeyServices} {
		enc, err := encodeList(l)
		if err != nil {
			return fmt.Errorf("seed agency %q: %w", a.Slug, err)
		}
		lists[i] = enc
	}
	const stmt = `
INSERT INTO agencies (slug, name, description, headquarters, logo_url, hero_asset_url,
  specializations, service_areas, category_tags, global_rank, founded_year, employee_count,
  website, pricing_model, min_budget, status, meta_description, overview, key_services,
  avg_rating, review_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
  name=excluded.name,
  description=excluded.description,
  headquarters=excluded.headquarters,
  logo_url=excluded.logo_url,
  hero_asset_url=excluded.hero_asset_url,
  specializations=excluded.specializations,
  service_areas=excluded.service_areas,
  category_tags=excluded.category_tags,
  global_rank=excluded.global_rank,
  founded_year=excluded.founded_year,
  employee_count=excluded.employee_count,
  website=excluded.website,
  pricing_model=excluded.pricing_model,
  min_budget=excluded.min_budget,
  status=excluded.status,
  meta_description=excluded.meta_description,
  overview=excluded.overview,
  key_services=excluded.key_services,
  avg_rating=excluded.avg_rating,
  review_count=excluded.review_count;
`
	_, err := tx.ExecContext(ctx, stmt,
		a.Slug, a.Name, a.Description, a.Headquarters, a.LogoURL, a.HeroAssetURL,
		lists[0], lists[1], lists[2], nullInt(a.GlobalRank), nullInt(a.FoundedYear), nullInt(a.EmployeeCount),
		a.Website, a.PricingModel, nullInt(a.MinBudget), statusOrPublished(a.Status), a.MetaDescription, a.Overview, lists[3],
		nullFloat(a.AvgRating), nullInt(a.ReviewCount),
	)
	if err != nil {
		return fmt.Errorf("upsert agency %q: %w", a.Slug, err)
	}
	return nil
}

func upsertArticle(ctx context.Context, tx *sql.Tx, a models.Article) error {
	if a.Slug == "" || a.Title == "" {
		return fmt.Errorf("seed article %q: slug and title are required", a.Title)
	}
	const stmt = `
INSERT INTO articles (slug, title, content, excerpt, status, guide_type, hero_asset_url,
  hero_asset_alt, meta_description, word_count, published_at, category)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
  title=excluded.title,
  content=excluded.content,
  excerpt=excluded.excerpt,
  status=excluded.status,
  guide_type=excluded.guide_type,
  hero_asset_url=excluded.hero_asset_url,
  hero_asset_alt=excluded.hero_asset_alt,
  meta_description=excluded.meta_description,
  word_count=excluded.word_count,
  published_at=excluded.published_at,
  category=excluded.category;
`
	_, err := tx.ExecContext(ctx, stmt,
		a.Slug, a.Title, a.Content, a.Excerpt, statusOrPublished(a.Status), a.GuideType, a.HeroAssetURL,
		a.HeroAssetAlt, a.MetaDescription, nullInt(a.WordCount), formatTime(a.PublishedAt), a.Category,
	)
	if err != nil {
		return fmt.Errorf("upsert article %q: %w", a.Slug, err)
	}
	return nil
}

func upsertSEOPage(ctx context.Context, tx *sql.Tx, p models.SEOPage) error {
	if p.Slug == "" || p.Name == "" || p.PageType == "" {
		return fmt.Errorf("seed seo page %q: slug, name and page_type are required", p.Slug)
	}
	lists := make([]string, 3)
	for i, l := range [][]string{p.Services, p.Industries, p.RelatedPages} {
		enc, err := encodeList(l)
		if err != nil {
			return fmt.Errorf("seed seo page %q: %w", p.Slug, err)
		}
		lists[i] = enc
	}
	faqs, err := encodeList(p.FAQs)
	if err != nil {
		return fmt.Errorf("seed seo page %q: %w", p.Slug, err)
	}
	const stmt = `
INSERT INTO seo_pages (slug, page_type, name, display_name, description, market_highlight,
  hero_image_url, country, region, timezone, currency, services, industries, related_pages,
  faqs, meta_title, meta_description, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
  page_type=excluded.page_type,
  name=excluded.name,
  display_name=excluded.display_name,
  description=excluded.description,
  market_highlight=excluded.market_highlight,
  hero_image_url=excluded.hero_image_url,
  country=excluded.country,
  region=excluded.region,
  timezone=excluded.timezone,
  currency=excluded.currency,
  services=excluded.services,
  industries=excluded.industries,
  related_pages=excluded.related_pages,
  faqs=excluded.faqs,
  meta_title=excluded.meta_title,
  meta_description=excluded.meta_description,
  status=excluded.status;
`
	_, err = tx.ExecContext(ctx, stmt,
		p.Slug, p.PageType, p.Name, p.DisplayName, p.Description, p.MarketHighlight,
		p.HeroImageURL, p.Country, p.Region, p.Timezone, p.Currency, lists[0], lists[1], lists[2],
		faqs, p.MetaTitle, p.MetaDescription, statusOrPublished(p.Status),
	)
	if err != nil {
		return fmt.Errorf("upsert seo page %q: %w", p.Slug, err)
	}
	return nil
}
