package query

import (
	"github.com/Ngumi22/bds-sub000/internal/domain"
)

// Dimension identifies one facet dimension for self-exclusion. A facet's
// counts are computed under a sibling filter built with its own dimension
// excluded.
type Dimension int

const (
	DimNone Dimension = iota
	DimBrand
	DimSubCategory
	DimCollection
	DimSpecification
	DimStock
	DimPrice
)

// Plan is the output of the query builder: the full filter, the reduced
// aggregation-scope filter, and the sort spec. The Filter type serializes
// itself for both the structured layer (Find) and the native pipeline
// (Match), so the two layers always evaluate the same predicate tree.
type Plan struct {
	Filter Filter
	Scope  Filter
	Sort   Sort
}

// Build constructs the query plan for resolved parameters. When any
// referenced dimension failed to resolve the filters short-circuit to the
// Unsatisfiable variant instead of silently widening to an unfiltered
// result.
func Build(p domain.ResolvedParams) Plan {
	return Plan{
		Filter: FacetFilter(p, DimNone),
		Scope:  scopeFilter(p),
		Sort:   BuildSort(p.SortBy, p.SortOrder, p.HasSearchQuery()),
	}
}

// FacetFilter re-derives the filter with one dimension excluded. DimNone
// yields the standard filter with everything applied.
//
// Excluding the sub-category dimension restores the parent category
// closure: sub-category selection is strictly narrower than the closure and
// overrides it, so its sibling filter must fall back to the closure rather
// than to no category scope at all.
func FacetFilter(p domain.ResolvedParams, exclude Dimension) Filter {
	if p.MustFail() {
		return Filter{Unsatisfiable: true}
	}

	f := Filter{}

	if exclude != DimSubCategory && len(p.SubCategoryIDs) > 0 {
		f.CategoryIDs = p.SubCategoryIDs
	} else {
		f.CategoryIDs = p.CategoryClosure
	}

	if exclude != DimBrand {
		f.BrandIDs = p.BrandIDs
	}
	if exclude != DimCollection {
		f.CollectionIDs = p.CollectionIDs
	}
	if exclude != DimStock {
		f.StockStatuses = p.StockStatuses
	}
	if exclude != DimPrice {
		f.MinPrice = p.MinPrice
		f.MaxPrice = p.MaxPrice
	}
	if exclude != DimSpecification {
		for _, sp := range p.Specifications {
			if sp.Key == "" || len(sp.Values) == 0 {
				continue
			}
			f.Specs = append(f.Specs, SpecPredicate{Key: sp.Key, Values: sp.Values})
		}
	}

	return f
}

// scopeFilter builds the reduced filter for the facets that must stay
// stable while their own narrowing filter moves: price bounds and category
// rollups. It keeps only the category closure (is_active is implied),
// dropping brand, collection, price, stock, and specification predicates.
// Only an unresolvable category poisons it; a failed brand reference does
// not change the category's price range.
func scopeFilter(p domain.ResolvedParams) Filter {
	if p.CategoryMustFail {
		return Filter{Unsatisfiable: true}
	}
	return Filter{CategoryIDs: p.CategoryClosure}
}
