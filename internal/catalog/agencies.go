package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

// AgencyFilter narrows ListAgencies. Only one criterion applies, in the
// order Search, Location, Specialization.
type AgencyFilter struct {
	Location       string
	Specialization string
	Search         string
}

const agencyColumns = `id, slug, name, description, headquarters, logo_url, hero_asset_url,
  specializations, service_areas, category_tags, global_rank, founded_year, employee_count,
  website, pricing_model, min_budget, status, meta_description, overview, key_services,
  avg_rating, review_count`

const agencyOrder = ` ORDER BY global_rank IS NULL, global_rank, name`

func (s *Store) AgencyBySlug(ctx context.Context, slug string) (models.Agency, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+agencyColumns+` FROM agencies WHERE slug = ? AND status = ? LIMIT 1`,
		slug, models.StatusPublished)
	a, err := scanAgency(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Agency{}, fmt.Errorf("agency %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return models.Agency{}, fmt.Errorf("get agency %q: %w", slug, err)
	}
	return a, nil
}

// ListAgencies returns published agencies ordered by global rank, unranked last.
func (s *Store) ListAgencies(ctx context.Context, f AgencyFilter, limit int) ([]models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE status = ?`
	args := []any{models.StatusPublished}

	switch {
	case strings.TrimSpace(f.Search) != "":
		p := likePattern(strings.TrimSpace(f.Search))
		query += ` AND (name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`
		args = append(args, p, p)
	case strings.TrimSpace(f.Location) != "":
		loc := strings.TrimSpace(f.Location)
		query += ` AND (headquarters LIKE ? ESCAPE '\'
  OR EXISTS (SELECT 1 FROM json_each(agencies.service_areas) WHERE json_each.value = ? COLLATE NOCASE))`
		args = append(args, likePattern(loc), loc)
	case strings.TrimSpace(f.Specialization) != "":
		query += ` AND EXISTS (SELECT 1 FROM json_each(agencies.specializations) WHERE json_each.value = ? COLLATE NOCASE)`
		args = append(args, strings.TrimSpace(f.Specialization))
	}
	query += agencyOrder + ` LIMIT ?`
	args = append(args, clampLimit(limit))

	return s.queryAgencies(ctx, query, args...)
}

// RelatedAgencies lists top-ranked agencies other than excludeSlug.
func (s *Store) RelatedAgencies(ctx context.Context, excludeSlug string, limit int) ([]models.Agency, error) {
	return s.queryAgencies(ctx,
		`SELECT `+agencyColumns+` FROM agencies WHERE status = ? AND slug != ?`+agencyOrder+` LIMIT ?`,
		models.StatusPublished, excludeSlug, clampLimit(limit))
}

func (s *Store) AgencySlugs(ctx context.Context) ([]string, error) {
	return s.querySlugs(ctx, `SELECT slug FROM agencies WHERE status = ?`+agencyOrder, models.StatusPublished)
}

func (s *Store) queryAgencies(ctx context.Context, query string, args ...any) ([]models.Agency, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list agencies: %w", err)
	}
	defer rows.Close()

	out := []models.Agency{}
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agency: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) querySlugs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slugs: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		out = append(out, slug)
	}
	return out, rows.Err()
}

func scanAgency(row rowScanner) (models.Agency, error) {
	var (
		a                                            models.Agency
		description, hq, logo, hero, website         sql.NullString
		pricing, meta, overview                      sql.NullString
		specs, areas, tags, services                 sql.NullString
		rank, founded, employees, minBudget, reviews sql.NullInt64
		rating                                       sql.NullFloat64
	)
	err := row.Scan(&a.ID, &a.Slug, &a.Name, &description, &hq, &logo, &hero,
		&specs, &areas, &tags, &rank, &founded, &employees,
		&website, &pricing, &minBudget, &a.Status, &meta, &overview, &services,
		&rating, &reviews)
	if err != nil {
		return models.Agency{}, err
	}
	a.Description = description.String
	a.Headquarters = hq.String
	a.LogoURL = logo.String
	a.HeroAssetURL = hero.String
	a.Website = website.String
	a.PricingModel = pricing.String
	a.MetaDescription = meta.String
	a.Overview = overview.String
	a.GlobalRank = intPtr(rank)
	a.FoundedYear = intPtr(founded)
	a.EmployeeCount = intPtr(employees)
	a.MinBudget = intPtr(minBudget)
	a.ReviewCount = intPtr(reviews)
	a.AvgRating = floatPtr(rating)

	if a.Specializations, err = decodeList[string](specs, "specializations"); err != nil {
		return models.Agency{}, err
	}
	if a.ServiceAreas, err = decodeList[string](areas, "service_areas"); err != nil {
		return models.Agency{}, err
	}
	if a.CategoryTags, err = decodeList[string](tags, "category_tags"); err != nil {
		return models.Agency{}, err
	}
	if a.KeyServices, err = decodeList[string](services, "key_services"); err != nil {
		return models.Agency{}, err
	}
	return a, nil
}
