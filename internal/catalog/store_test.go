package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
)

func newSeededStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	empty, err := store.IsEmpty(context.Background())
	require.NoError(t, err)
	require.True(t, empty)

	stats, err := store.LoadDefaultSeed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, stats.Agencies)
	return store
}

func slugsOf(agencies []models.Agency) []string {
	out := make([]string, len(agencies))
	for i, a := range agencies {
		out[i] = a.Slug
	}
	return out
}

func TestAgencyBySlug(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	a, err := store.AgencyBySlug(ctx, "thames-gtm")
	require.NoError(t, err)
	assert.Equal(t, "Thames GTM", a.Name)
	assert.Equal(t, []string{"London", "Berlin", "Amsterdam"}, a.ServiceAreas)
	require.NotNil(t, a.GlobalRank)
	assert.Equal(t, 3, *a.GlobalRank)
	assert.Equal(t, []string{"market-entry"}, a.CategoryTags)
	assert.Empty(t, a.LogoURL)

	_, err = store.AgencyBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAgenciesOrderAndFilters(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	all, err := store.ListAgencies(ctx, AgencyFilter{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"growthloop-partners", "northbound-abm", "thames-gtm", "signal-demand", "harbour-growth", "launchpad-collective",
	}, slugsOf(all), "ranked first, unranked last")

	byLocation, err := store.ListAgencies(ctx, AgencyFilter{Location: "london"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"northbound-abm", "thames-gtm"}, slugsOf(byLocation))

	bySpec, err := store.ListAgencies(ctx, AgencyFilter{Specialization: "Product-Led Growth"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"growthloop-partners", "launchpad-collective"}, slugsOf(bySpec))

	// search wins over the other filters
	search, err := store.ListAgencies(ctx, AgencyFilter{Search: "apac", Location: "London"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"harbour-growth"}, slugsOf(search))

	limited, err := store.ListAgencies(ctx, AgencyFilter{}, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListAgenciesSearchIsLiteral(t *testing.T) {
	store := newSeededStore(t)
	got, err := store.ListAgencies(context.Background(), AgencyFilter{Search: "%"}, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRelatedAgenciesExcludesCurrent(t *testing.T) {
	store := newSeededStore(t)
	got, err := store.RelatedAgencies(context.Background(), "growthloop-partners", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"northbound-abm", "thames-gtm", "signal-demand"}, slugsOf(got))

	slugs, err := store.AgencySlugs(context.Background())
	require.NoError(t, err)
	assert.Len(t, slugs, 6)
}

func TestArticles(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	list, err := store.ListArticles(ctx, ArticleFilter{}, 0)
	require.NoError(t, err)
	var slugs []string
	for _, a := range list {
		slugs = append(slugs, a.Slug)
	}
	assert.Equal(t, []string{"choosing-a-gtm-agency", "plg-vs-sales-led", "abm-playbook", "gtm-budget-benchmarks"}, slugs)
	assert.Nil(t, list[3].PublishedAt)

	guides, err := store.ListArticles(ctx, ArticleFilter{GuideType: "guide"}, 0)
	require.NoError(t, err)
	assert.Len(t, guides, 2)

	related, err := store.RelatedArticles(ctx, "plg-vs-sales-led", "guide", 4)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "abm-playbook", related[0].Slug)

	a, err := store.ArticleBySlug(ctx, "plg-vs-sales-led")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.Content, "# PLG vs Sales-Led Growth"))
	require.NotNil(t, a.WordCount)
	assert.Equal(t, 1400, *a.WordCount)

	_, err = store.ArticleBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSEOPages(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	locations, err := store.ListSEOPages(ctx, models.PageTypeLocation)
	require.NoError(t, err)
	require.Len(t, locations, 4)
	assert.Equal(t, "London", locations[0].Name)

	page, err := store.SEOPageBySlug(ctx, "gtm-agencies-london")
	require.NoError(t, err)
	assert.Equal(t, "London, United Kingdom", page.Title())
	require.Len(t, page.FAQs, 2)

	related, err := store.SEOPagesBySlugs(ctx, append(page.RelatedPages, "does-not-exist"))
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, "gtm-agencies-new-york", related[0].Slug)

	none, err := store.SEOPagesBySlugs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = store.SEOPageBySlug(ctx, "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSeedUpsertsAndHidesDrafts(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	_, err := store.LoadSeed(ctx, strings.NewReader(`
agencies:
  - slug: thames-gtm
    name: Thames GTM Renamed
    status: draft
`))
	require.NoError(t, err)

	_, err = store.AgencyBySlug(ctx, "thames-gtm")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.LoadSeed(ctx, strings.NewReader("agencies:\n  - name: no slug\n"))
	assert.Error(t, err)

	_, err = store.LoadSeed(ctx, strings.NewReader("agencies:\n  - slug: x\n    name: X\n    colour: red\n"))
	assert.Error(t, err, "unknown fields are rejected")
}
