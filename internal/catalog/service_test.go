package catalog_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ngumi22/bds-sub000/internal/cache"
	"github.com/Ngumi22/bds-sub000/internal/catalog"
	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/facet"
	"github.com/Ngumi22/bds-sub000/internal/fetch"
	"github.com/Ngumi22/bds-sub000/internal/query"
	"github.com/Ngumi22/bds-sub000/internal/repository/memory"
	"github.com/Ngumi22/bds-sub000/internal/resolver"
)

const (
	catLaptops = "64a000000000000000000001"
	catGaming  = "64a000000000000000000002"
	brandAcme  = "64b000000000000000000001"
)

type countingFetcher struct {
	inner *fetch.Fetcher
	calls atomic.Int32
}

func (c *countingFetcher) Fetch(ctx context.Context, plan query.Plan, q string, skip, limit int64) (fetch.Page, error) {
	c.calls.Add(1)
	return c.inner.Fetch(ctx, plan, q, skip, limit)
}

type fixture struct {
	service *catalog.Service
	fetcher *countingFetcher
}

func newFixture(productCount int) fixture {
	products := memory.NewProductRepository()
	categories := memory.NewCategoryRepository()
	brands := memory.NewBrandRepository()
	collections := memory.NewCollectionRepository()
	specs := memory.NewSpecificationRepository()

	laptops := catLaptops
	categories.Add(domain.Category{ID: catLaptops, Name: "Laptops", Slug: "laptops"})
	categories.Add(domain.Category{ID: catGaming, Name: "Gaming", Slug: "gaming", ParentID: &laptops})
	brands.Add(domain.Brand{ID: brandAcme, Name: "Acme", Slug: "acme"})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < productCount; i++ {
		products.Add(memory.Product{
			ID:          fmt.Sprintf("64d0000000000000000000%02d", i+1),
			Name:        fmt.Sprintf("Laptop %02d", i+1),
			Slug:        fmt.Sprintf("laptop-%02d", i+1),
			Price:       float64(500 + i*100),
			CategoryID:  catGaming,
			BrandID:     brandAcme,
			BrandName:   "Acme",
			StockStatus: domain.StockInStock,
			IsActive:    true,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}

	fetcher := &countingFetcher{inner: fetch.New(products)}
	service := catalog.NewService(
		resolver.New(categories, brands, collections),
		fetcher,
		facet.New(products, categories, brands, collections, specs),
		cache.NewMemoryCache(),
		time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return fixture{service: service, fetcher: fetcher}
}

func TestSearchPaginationArithmetic(t *testing.T) {
	f := newFixture(10)

	result, err := f.service.Search(context.Background(), domain.SearchParams{
		Category: "laptops", Page: 2, Limit: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, result.TotalCount)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 2, result.CurrentPage)
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrev)
	assert.Len(t, result.Products, 4)
}

func TestSearchLastPageIsShort(t *testing.T) {
	f := newFixture(10)

	result, err := f.service.Search(context.Background(), domain.SearchParams{
		Category: "laptops", Page: 3, Limit: 4,
	})
	require.NoError(t, err)

	assert.Len(t, result.Products, 2)
	assert.False(t, result.HasNext)
	assert.True(t, result.HasPrev)
}

func TestSearchDefaultsAndClamping(t *testing.T) {
	f := newFixture(3)

	result, err := f.service.Search(context.Background(), domain.SearchParams{
		Page: -5, Limit: 10_000,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CurrentPage)
	assert.Len(t, result.Products, 3)
}

func TestSearchIdenticalParamsShareCacheEntry(t *testing.T) {
	f := newFixture(5)

	// Same logical query spelled three ways: slug, different case, id.
	for _, category := range []string{"laptops", "LAPTOPS", catLaptops} {
		result, err := f.service.Search(context.Background(), domain.SearchParams{Category: category})
		require.NoError(t, err)
		assert.Equal(t, 5, result.TotalCount)
	}

	assert.Equal(t, int32(1), f.fetcher.calls.Load())
}

func TestSearchIsIdempotent(t *testing.T) {
	f := newFixture(5)
	params := domain.SearchParams{Category: "laptops", Brands: []string{"acme"}}

	first, err := f.service.Search(context.Background(), params)
	require.NoError(t, err)
	second, err := f.service.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSearchUnknownBrandShortCircuits(t *testing.T) {
	f := newFixture(5)

	result, err := f.service.Search(context.Background(), domain.SearchParams{
		Category: "laptops", Brands: []string{"no-such-brand"},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Products)
	assert.Zero(t, result.TotalCount)
	assert.Equal(t, domain.EmptyFacets(), result.Facets)
	assert.Zero(t, result.PriceRange)

	// The store is never touched on the short-circuit path.
	assert.Equal(t, int32(0), f.fetcher.calls.Load())
}

func TestSearchOmittedFilterIsNotAFailedFilter(t *testing.T) {
	f := newFixture(5)

	result, err := f.service.Search(context.Background(), domain.SearchParams{Category: "laptops"})
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalCount)
	assert.NotEmpty(t, result.Facets.Brands)
}

func TestSearchFreeTextQuery(t *testing.T) {
	f := newFixture(5)

	result, err := f.service.Search(context.Background(), domain.SearchParams{SearchQuery: "laptop"})
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalCount)
	require.NotEmpty(t, result.Products)
}

func TestFiltersReturnsFacetBundle(t *testing.T) {
	f := newFixture(5)

	set, err := f.service.Filters(context.Background(), domain.SearchParams{Category: "laptops"})
	require.NoError(t, err)

	require.Len(t, set.Facets.Brands, 1)
	assert.Equal(t, "Acme", set.Facets.Brands[0].Name)
	assert.Equal(t, 5, set.Facets.Brands[0].Count)
	assert.Equal(t, domain.PriceRange{Min: 500, Max: 900}, set.PriceRange)

	// The filter endpoint never fetches products.
	assert.Equal(t, int32(0), f.fetcher.calls.Load())
}

func TestFiltersMustFailReturnsEmptyBundle(t *testing.T) {
	f := newFixture(5)

	set, err := f.service.Filters(context.Background(), domain.SearchParams{Category: "nope"})
	require.NoError(t, err)

	assert.Equal(t, domain.EmptyFacets(), set.Facets)
	assert.Zero(t, set.PriceRange)
}
