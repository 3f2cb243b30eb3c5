// Package facet computes the filter sidebar: per-dimension counts, the
// category tree, and the scoped price range. Every count obeys the
// self-exclusion rule: a dimension's counts are taken under all active
// filters except that dimension's own, so selecting a value never hides its
// siblings.
package facet

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/query"
	"github.com/Ngumi22/bds-sub000/internal/repository"
)

// Aggregator assembles the facet bundle for one resolved query.
type Aggregator struct {
	products    repository.ProductRepository
	categories  repository.CategoryRepository
	brands      repository.BrandRepository
	collections repository.CollectionRepository
	specs       repository.SpecificationRepository
}

// New creates an Aggregator over the catalog repositories.
func New(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	brands repository.BrandRepository,
	collections repository.CollectionRepository,
	specs repository.SpecificationRepository,
) *Aggregator {
	return &Aggregator{
		products:    products,
		categories:  categories,
		brands:      brands,
		collections: collections,
		specs:       specs,
	}
}

// Aggregate computes all facets and the price range for the resolved
// parameters. The facet dimensions fan out concurrently; each one derives
// its own sibling filter with its dimension excluded.
//
// The price range and the category rollup run under the reduced scope
// filter (active products within the category closure) rather than the full
// filter, so they stay put while narrowing filters move.
func (a *Aggregator) Aggregate(ctx context.Context, p domain.ResolvedParams) (domain.Facets, domain.PriceRange, error) {
	if p.MustFail() {
		return domain.EmptyFacets(), domain.PriceRange{}, nil
	}

	src := sourceFor(a.products, p.SearchQuery)
	scope := query.Build(p).Scope

	facets := domain.EmptyFacets()
	var priceRange domain.PriceRange

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pr, err := a.products.PriceBounds(gctx, scope)
		if err != nil {
			return fmt.Errorf("price range: %w", err)
		}
		if pr != nil {
			priceRange = *pr
		}
		return nil
	})

	g.Go(func() error {
		brands, err := a.brandFacet(gctx, src, p)
		if err != nil {
			return err
		}
		facets.Brands = brands
		return nil
	})

	g.Go(func() error {
		subs, err := a.subCategoryFacet(gctx, src, p)
		if err != nil {
			return err
		}
		facets.SubCategories = subs
		return nil
	})

	g.Go(func() error {
		colls, err := a.collectionFacet(gctx, src, p)
		if err != nil {
			return err
		}
		facets.Collections = colls
		return nil
	})

	g.Go(func() error {
		stocks, err := a.stockFacet(gctx, src, p)
		if err != nil {
			return err
		}
		facets.StockStatuses = stocks
		return nil
	})

	g.Go(func() error {
		specs, err := a.specificationFacet(gctx, src, p)
		if err != nil {
			return err
		}
		facets.Specifications = specs
		return nil
	})

	g.Go(func() error {
		parents, tree, err := a.categoryRollup(gctx, scope)
		if err != nil {
			return err
		}
		facets.ParentCategories = parents
		facets.CategoryTree = tree
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Facets{}, domain.PriceRange{}, err
	}
	return facets, priceRange, nil
}

func (a *Aggregator) brandFacet(ctx context.Context, src Source, p domain.ResolvedParams) ([]domain.BrandFacet, error) {
	counts, err := src.GroupCount(ctx, "brand_id", query.FacetFilter(p, query.DimBrand))
	if err != nil {
		return nil, fmt.Errorf("brand facet: %w", err)
	}
	if len(counts) == 0 {
		return []domain.BrandFacet{}, nil
	}

	ids := make([]string, 0, len(counts))
	byID := make(map[string]int, len(counts))
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		ids = append(ids, c.Key)
		byID[c.Key] = c.Count
	}

	brands, err := a.brands.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("brand facet names: %w", err)
	}

	out := make([]domain.BrandFacet, 0, len(brands))
	for _, b := range brands {
		out = append(out, domain.BrandFacet{ID: b.ID, Name: b.Name, Count: byID[b.ID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// subCategoryFacet lists the children of the scoped category with their
// counts. Excluding the sub-category dimension restores the full closure,
// so selecting one child keeps its siblings visible.
func (a *Aggregator) subCategoryFacet(ctx context.Context, src Source, p domain.ResolvedParams) ([]domain.SubCategoryFacet, error) {
	if p.CategoryID == "" {
		return []domain.SubCategoryFacet{}, nil
	}

	children, err := a.categories.ChildrenOf(ctx, []string{p.CategoryID})
	if err != nil {
		return nil, fmt.Errorf("sub-category facet children: %w", err)
	}
	if len(children) == 0 {
		return []domain.SubCategoryFacet{}, nil
	}

	counts, err := src.GroupCount(ctx, "category_id", query.FacetFilter(p, query.DimSubCategory))
	if err != nil {
		return nil, fmt.Errorf("sub-category facet: %w", err)
	}
	byID := make(map[string]int, len(counts))
	for _, c := range counts {
		byID[c.Key] = c.Count
	}

	out := make([]domain.SubCategoryFacet, 0, len(children))
	for _, c := range children {
		if n := byID[c.ID]; n > 0 {
			out = append(out, domain.SubCategoryFacet{ID: c.ID, Name: c.Name, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (a *Aggregator) collectionFacet(ctx context.Context, src Source, p domain.ResolvedParams) ([]domain.CollectionFacet, error) {
	counts, err := src.GroupCount(ctx, "collection_ids", query.FacetFilter(p, query.DimCollection))
	if err != nil {
		return nil, fmt.Errorf("collection facet: %w", err)
	}
	if len(counts) == 0 {
		return []domain.CollectionFacet{}, nil
	}

	ids := make([]string, 0, len(counts))
	byID := make(map[string]int, len(counts))
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		ids = append(ids, c.Key)
		byID[c.Key] = c.Count
	}

	collections, err := a.collections.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("collection facet names: %w", err)
	}

	out := make([]domain.CollectionFacet, 0, len(collections))
	for _, c := range collections {
		out = append(out, domain.CollectionFacet{ID: c.ID, Name: c.Name, Count: byID[c.ID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// stockFacet surfaces only the in-stock and out-of-stock buckets; the
// remaining statuses exist on documents but are not offered as filters in
// the sidebar.
func (a *Aggregator) stockFacet(ctx context.Context, src Source, p domain.ResolvedParams) ([]domain.StockStatusFacet, error) {
	counts, err := src.GroupCount(ctx, "stock_status", query.FacetFilter(p, query.DimStock))
	if err != nil {
		return nil, fmt.Errorf("stock facet: %w", err)
	}

	byStatus := make(map[string]int, len(counts))
	for _, c := range counts {
		byStatus[c.Key] = c.Count
	}

	out := []domain.StockStatusFacet{}
	for _, status := range []string{domain.StockInStock, domain.StockOutOfStock} {
		if n := byStatus[status]; n > 0 {
			out = append(out, domain.StockStatusFacet{Status: status, Count: n})
		}
	}
	return out, nil
}

// specificationFacet buckets value counts by specification key, limited to
// the keys defined for the scoped categories. Definitions both gate which
// keys surface and fix their order.
func (a *Aggregator) specificationFacet(ctx context.Context, src Source, p domain.ResolvedParams) ([]domain.SpecificationFacet, error) {
	defs, err := a.specs.DefinitionsFor(ctx, p.CategoryClosure)
	if err != nil {
		return nil, fmt.Errorf("specification facet definitions: %w", err)
	}
	if len(defs) == 0 {
		return []domain.SpecificationFacet{}, nil
	}

	rows, err := src.GroupSpecValues(ctx, query.FacetFilter(p, query.DimSpecification))
	if err != nil {
		return nil, fmt.Errorf("specification facet: %w", err)
	}

	byKey := make(map[string][]domain.SpecificationValueCount)
	for _, row := range rows {
		if row.Count <= 0 {
			continue
		}
		byKey[row.Key] = append(byKey[row.Key], domain.SpecificationValueCount{Value: row.Value, Count: row.Count})
	}

	out := []domain.SpecificationFacet{}
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if _, ok := seen[def.Key]; ok {
			continue
		}
		seen[def.Key] = struct{}{}

		values := byKey[def.Key]
		if len(values) == 0 {
			continue
		}
		sort.Slice(values, func(i, j int) bool {
			if values[i].Count != values[j].Count {
				return values[i].Count > values[j].Count
			}
			return values[i].Value < values[j].Value
		})
		out = append(out, domain.SpecificationFacet{Key: def.Key, Values: values})
	}
	return out, nil
}

// categoryRollup builds the top-level category facet and the two-level
// tree. A parent's count is the sum of its own documents and its direct
// children's; zero-count parents are pruned, as are zero-count children
// within a surviving parent.
func (a *Aggregator) categoryRollup(ctx context.Context, scope query.Filter) ([]domain.ParentCategoryFacet, []domain.CategoryTreeFacet, error) {
	tops, err := a.categories.TopLevel(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("category rollup parents: %w", err)
	}
	if len(tops) == 0 {
		return []domain.ParentCategoryFacet{}, []domain.CategoryTreeFacet{}, nil
	}

	topIDs := make([]string, 0, len(tops))
	for _, c := range tops {
		topIDs = append(topIDs, c.ID)
	}
	children, err := a.categories.ChildrenOf(ctx, topIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("category rollup children: %w", err)
	}

	counts, err := a.products.GroupCount(ctx, "category_id", scope)
	if err != nil {
		return nil, nil, fmt.Errorf("category rollup counts: %w", err)
	}
	byID := make(map[string]int, len(counts))
	for _, c := range counts {
		byID[c.Key] = c.Count
	}

	childrenOf := make(map[string][]domain.Category)
	for _, c := range children {
		if c.ParentID == nil {
			continue
		}
		childrenOf[*c.ParentID] = append(childrenOf[*c.ParentID], c)
	}

	parents := []domain.ParentCategoryFacet{}
	tree := []domain.CategoryTreeFacet{}
	for _, top := range tops {
		total := byID[top.ID]
		subs := []domain.SubCategoryFacet{}
		for _, child := range childrenOf[top.ID] {
			n := byID[child.ID]
			total += n
			if n > 0 {
				subs = append(subs, domain.SubCategoryFacet{ID: child.ID, Name: child.Name, Count: n})
			}
		}
		if total == 0 {
			continue
		}
		sort.Slice(subs, func(i, j int) bool {
			if subs[i].Count != subs[j].Count {
				return subs[i].Count > subs[j].Count
			}
			return subs[i].Name < subs[j].Name
		})
		parents = append(parents, domain.ParentCategoryFacet{ID: top.ID, Name: top.Name, Slug: top.Slug, Count: total})
		tree = append(tree, domain.CategoryTreeFacet{ID: top.ID, Name: top.Name, Slug: top.Slug, Count: total, SubCategories: subs})
	}

	sort.Slice(parents, func(i, j int) bool {
		if parents[i].Count != parents[j].Count {
			return parents[i].Count > parents[j].Count
		}
		return parents[i].Name < parents[j].Name
	})
	sort.Slice(tree, func(i, j int) bool {
		if tree[i].Count != tree[j].Count {
			return tree[i].Count > tree[j].Count
		}
		return tree[i].Name < tree[j].Name
	})
	return parents, tree, nil
}
