package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

type ArticleFilter struct {
	GuideType string
}

const articleColumns = `id, slug, title, content, excerpt, status, guide_type, hero_asset_url,
  hero_asset_alt, meta_description, word_count, published_at, category`

const articleOrder = ` ORDER BY published_at IS NULL, published_at DESC, slug`

func (s *Store) ArticleBySlug(ctx context.Context, slug string) (models.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE slug = ? AND status = ? LIMIT 1`,
		slug, models.StatusPublished)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Article{}, fmt.Errorf("article %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("get article %q: %w", slug, err)
	}
	return a, nil
}

// ListArticles returns published articles, newest first.
func (s *Store) ListArticles(ctx context.Context, f ArticleFilter, limit int) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE status = ?`
	args := []any{models.StatusPublished}
	if f.GuideType != "" {
		query += ` AND guide_type = ?`
		args = append(args, f.GuideType)
	}
	query += articleOrder + ` LIMIT ?`
	args = append(args, clampLimit(limit))
	return s.queryArticles(ctx, query, args...)
}

// RelatedArticles lists recent articles other than excludeSlug, restricted to
// guideType when it is set.
func (s *Store) RelatedArticles(ctx context.Context, excludeSlug, guideType string, limit int) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE status = ? AND slug != ?`
	args := []any{models.StatusPublished, excludeSlug}
	if guideType != "" {
		query += ` AND guide_type = ?`
		args = append(args, guideType)
	}
	query += articleOrder + ` LIMIT ?`
	args = append(args, clampLimit(limit))
	return s.queryArticles(ctx, query, args...)
}

func (s *Store) ArticleSlugs(ctx context.Context) ([]string, error) {
	return s.querySlugs(ctx, `SELECT slug FROM articles WHERE status = ?`+articleOrder, models.StatusPublished)
}

func (s *Store) queryArticles(ctx context.Context, query string, args ...any) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	out := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanArticle(row rowScanner) (models.Article, error) {
	var (
		a                                         models.Article
		excerpt, guide, hero, alt, meta, category sql.NullString
		published                                 sql.NullString
		words                                     sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Content, &excerpt, &a.Status, &guide, &hero,
		&alt, &meta, &words, &published, &category)
	if err != nil {
		return models.Article{}, err
	}
	a.Excerpt = excerpt.String
	a.GuideType = guide.String
	a.HeroAssetURL = hero.String
	a.HeroAssetAlt = alt.String
	a.MetaDescription = meta.String
	a.Category = category.String
	a.WordCount = intPtr(words)
	if published.Valid && published.String != "" {
		t, err := time.Parse(time.RFC3339, published.String)
		if err != nil {
			return models.Article{}, fmt.Errorf("parse published_at: %w", err)
		}
		a.PublishedAt = &t
	}
	return a, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
