// Package fetch runs the product retrieval half of a search call: the page
// of products and the total match count, fetched concurrently. Free-text
// queries take the two-phase ranked path; everything else goes through the
// structured layer directly.
package fetch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/query"
	"github.com/Ngumi22/bds-sub000/internal/repository"
)

// Page is one retrieved page of products plus the total match count.
type Page struct {
	Products   []domain.MinimalProduct
	TotalCount int64
}

// Fetcher retrieves product pages.
type Fetcher struct {
	products repository.ProductRepository
}

// New creates a Fetcher over the product repository.
func New(products repository.ProductRepository) *Fetcher {
	return &Fetcher{products: products}
}

// Fetch retrieves one page under the plan. A non-empty q selects the ranked
// path; otherwise the structured layer serves the page directly.
func (f *Fetcher) Fetch(ctx context.Context, plan query.Plan, q string, skip, limit int64) (Page, error) {
	if q != "" {
		return f.fetchRanked(ctx, plan, q, skip, limit)
	}
	return f.fetchStructured(ctx, plan, skip, limit)
}

func (f *Fetcher) fetchStructured(ctx context.Context, plan query.Plan, skip, limit int64) (Page, error) {
	var page Page
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, err := f.products.Find(ctx, plan.Filter, plan.Sort, skip, limit)
		if err != nil {
			return fmt.Errorf("find products: %w", err)
		}
		page.Products = products
		return nil
	})
	g.Go(func() error {
		count, err := f.products.Count(ctx, plan.Filter)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		page.TotalCount = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return Page{}, err
	}
	if page.Products == nil {
		page.Products = []domain.MinimalProduct{}
	}
	return page, nil
}

// fetchRanked runs the two-phase free-text path: the ranking pipeline
// produces the ordered id page, then the structured layer hydrates those
// ids. Hydration returns records in store order, so the ranked order is
// restored afterwards. Ids that fail to hydrate are dropped from the page
// without adjusting the total count; the count reflects the ranking stage's
// view of the corpus.
func (f *Fetcher) fetchRanked(ctx context.Context, plan query.Plan, q string, skip, limit int64) (Page, error) {
	var (
		ranked []repository.RankedID
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ids, err := f.products.SearchIDs(gctx, q, plan.Filter, plan.Sort, skip, limit)
		if err != nil {
			return fmt.Errorf("search product ids: %w", err)
		}
		ranked = ids
		return nil
	})
	g.Go(func() error {
		count, err := f.products.SearchCount(gctx, q, plan.Filter)
		if err != nil {
			return fmt.Errorf("count search matches: %w", err)
		}
		total = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return Page{}, err
	}

	if len(ranked) == 0 {
		return Page{Products: []domain.MinimalProduct{}, TotalCount: total}, nil
	}

	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.ID)
	}

	hydrated, err := f.products.FindByIDs(ctx, ids)
	if err != nil {
		return Page{}, fmt.Errorf("hydrate search results: %w", err)
	}

	byID := make(map[string]domain.MinimalProduct, len(hydrated))
	for _, p := range hydrated {
		byID[p.ID] = p
	}

	products := make([]domain.MinimalProduct, 0, len(ranked))
	for _, r := range ranked {
		if p, ok := byID[r.ID]; ok {
			products = append(products, p)
		}
	}
	return Page{Products: products, TotalCount: total}, nil
}
