// Package catalog is the storefront search service: it resolves filter
// references, builds the query plan, runs retrieval and facet aggregation
// concurrently, and assembles the paginated response behind a tagged result
// cache.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ngumi22/bds-sub000/internal/cache"
	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/fetch"
	"github.com/Ngumi22/bds-sub000/internal/query"
)

// Pagination bounds applied before anything else runs.
const (
	DefaultLimit = 24
	MaxLimit     = 100
)

const (
	searchKeyPrefix  = "search"
	filtersKeyPrefix = "filters"
)

// ParamResolver resolves raw references to canonical ids.
type ParamResolver interface {
	Resolve(ctx context.Context, params domain.SearchParams) (domain.ResolvedParams, error)
}

// ProductFetcher retrieves one product page with its total count.
type ProductFetcher interface {
	Fetch(ctx context.Context, plan query.Plan, q string, skip, limit int64) (fetch.Page, error)
}

// FacetAggregator computes the facet bundle and scoped price range.
type FacetAggregator interface {
	Aggregate(ctx context.Context, p domain.ResolvedParams) (domain.Facets, domain.PriceRange, error)
}

// FilterSet is the facet-only response for sidebar prefetching.
type FilterSet struct {
	PriceRange domain.PriceRange `json:"price_range"`
	Facets     domain.Facets     `json:"facets"`
}

// Service implements the search and filter operations.
type Service struct {
	resolver ParamResolver
	fetcher  ProductFetcher
	facets   FacetAggregator
	cache    cache.Cache
	ttl      time.Duration
	logger   *slog.Logger
}

// NewService wires the search pipeline together.
func NewService(resolver ParamResolver, fetcher ProductFetcher, facets FacetAggregator, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		resolver: resolver,
		fetcher:  fetcher,
		facets:   facets,
		cache:    c,
		ttl:      ttl,
		logger:   logger,
	}
}

// Search runs one full search call. Identical parameter sets, regardless of
// reference spelling or order, share a cache entry; a referenced filter
// that resolves to nothing short-circuits to an empty result without
// touching the store.
func (s *Service) Search(ctx context.Context, params domain.SearchParams) (*domain.SearchResult, error) {
	params = clampPagination(params)

	resolved, err := s.resolver.Resolve(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("resolve search params: %w", err)
	}

	if resolved.MustFail() {
		s.logger.DebugContext(ctx, "search short-circuited, reference resolved to nothing",
			"category", params.Category,
			"brands", params.Brands,
			"collections", params.Collections,
		)
		return emptyResult(params.Page), nil
	}

	key := cache.Key(searchKeyPrefix, resolved)
	payload, err := s.cache.GetOrCompute(ctx, key, s.tagsFor(resolved), s.ttl, func(ctx context.Context) ([]byte, error) {
		result, err := s.compute(ctx, resolved)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
	if err != nil {
		return nil, err
	}

	var result domain.SearchResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode cached search result: %w", err)
	}
	if result.Products == nil {
		result.Products = []domain.MinimalProduct{}
	}
	return &result, nil
}

// Filters computes the facet bundle without fetching products, for callers
// that render the sidebar separately from the grid.
func (s *Service) Filters(ctx context.Context, params domain.SearchParams) (*FilterSet, error) {
	params = clampPagination(params)

	resolved, err := s.resolver.Resolve(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("resolve filter params: %w", err)
	}

	if resolved.MustFail() {
		return &FilterSet{Facets: domain.EmptyFacets()}, nil
	}

	key := cache.Key(filtersKeyPrefix, resolved)
	payload, err := s.cache.GetOrCompute(ctx, key, s.tagsFor(resolved), s.ttl, func(ctx context.Context) ([]byte, error) {
		facets, priceRange, err := s.facets.Aggregate(ctx, resolved)
		if err != nil {
			return nil, err
		}
		return json.Marshal(FilterSet{PriceRange: priceRange, Facets: facets})
	})
	if err != nil {
		return nil, err
	}

	var set FilterSet
	if err := json.Unmarshal(payload, &set); err != nil {
		return nil, fmt.Errorf("decode cached filter set: %w", err)
	}
	return &set, nil
}

// compute runs retrieval and facet aggregation concurrently and assembles
// the response.
func (s *Service) compute(ctx context.Context, resolved domain.ResolvedParams) (*domain.SearchResult, error) {
	plan := query.Build(resolved)
	page, limit := resolved.Page, resolved.Limit
	skip := int64(page-1) * int64(limit)

	var (
		productPage fetch.Page
		facets      domain.Facets
		priceRange  domain.PriceRange
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.fetcher.Fetch(gctx, plan, resolved.SearchQuery, skip, int64(limit))
		if err != nil {
			return err
		}
		productPage = p
		return nil
	})
	g.Go(func() error {
		f, pr, err := s.facets.Aggregate(gctx, resolved)
		if err != nil {
			return err
		}
		facets, priceRange = f, pr
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalCount := int(productPage.TotalCount)
	totalPages := (totalCount + limit - 1) / limit

	return &domain.SearchResult{
		Products:    productPage.Products,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		CurrentPage: page,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
		PriceRange:  priceRange,
		Facets:      facets,
	}, nil
}

// tagsFor registers an entry under the global product tag plus one tag per
// category in scope, so a change in one category does not flush unrelated
// entries.
func (s *Service) tagsFor(resolved domain.ResolvedParams) []string {
	tags := []string{cache.TagProducts}
	for _, id := range resolved.CategoryClosure {
		tags = append(tags, cache.TagCategory(id))
	}
	return tags
}

func clampPagination(params domain.SearchParams) domain.SearchParams {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}
	return params
}

func emptyResult(page int) *domain.SearchResult {
	return &domain.SearchResult{
		Products:    []domain.MinimalProduct{},
		CurrentPage: page,
		Facets:      domain.EmptyFacets(),
	}
}
