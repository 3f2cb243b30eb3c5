package domain

// BrandFacet is one available brand with its product count under the
// current filters (excluding the brand filter itself).
type BrandFacet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SubCategoryFacet is one available sub-category with its product count.
type SubCategoryFacet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ParentCategoryFacet is a top-level category whose count is the sum of its
// children's counts under the current filters.
type ParentCategoryFacet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// CollectionFacet is one available collection with its product count.
type CollectionFacet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SpecificationValueCount is one specification value with its occurrence
// count.
type SpecificationValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SpecificationFacet groups value counts under one specification key.
type SpecificationFacet struct {
	Key    string                    `json:"key"`
	Values []SpecificationValueCount `json:"values"`
}

// StockStatusFacet is one stock status with its product count. Only
// in-stock and out-of-stock are surfaced.
type StockStatusFacet struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// CategoryTreeFacet is a parent category with its children, used by richer
// sidebar UIs.
type CategoryTreeFacet struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Count         int                `json:"count"`
	SubCategories []SubCategoryFacet `json:"sub_categories"`
}

// Facets is the full facet bundle for a filter sidebar. Every count obeys
// the self-exclusion rule: it is computed under all active filters except
// the one the facet itself represents. Zero-count entries are pruned.
type Facets struct {
	Brands           []BrandFacet          `json:"brands"`
	SubCategories    []SubCategoryFacet    `json:"sub_categories"`
	ParentCategories []ParentCategoryFacet `json:"parent_categories"`
	Collections      []CollectionFacet     `json:"collections"`
	Specifications   []SpecificationFacet  `json:"specifications"`
	StockStatuses    []StockStatusFacet    `json:"stock_statuses"`
	CategoryTree     []CategoryTreeFacet   `json:"category_tree"`
}

// EmptyFacets returns a facet bundle with empty (non-nil) collections, used
// for must-fail results so callers always receive a structurally complete
// response.
func EmptyFacets() Facets {
	return Facets{
		Brands:           []BrandFacet{},
		SubCategories:    []SubCategoryFacet{},
		ParentCategories: []ParentCategoryFacet{},
		Collections:      []CollectionFacet{},
		Specifications:   []SpecificationFacet{},
		StockStatuses:    []StockStatusFacet{},
		CategoryTree:     []CategoryTreeFacet{},
	}
}
