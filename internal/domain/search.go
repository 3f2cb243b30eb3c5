package domain

// Sort field constants accepted by the search pipeline.
const (
	SortName       = "name"
	SortPrice      = "price"
	SortCreatedAt  = "createdAt"
	SortPopularity = "popularity"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ValidSortFields returns the list of permitted sort fields.
func ValidSortFields() []string {
	return []string{SortName, SortPrice, SortCreatedAt, SortPopularity}
}

// IsValidSortField checks whether the given field is a permitted sort field.
func IsValidSortField(field string) bool {
	for _, f := range ValidSortFields() {
		if f == field {
			return true
		}
	}
	return false
}

// SpecificationFilter selects products whose specification under Key matches
// any of the acceptable values (compared case-insensitively).
type SpecificationFilter struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// SearchParams is the raw filter input for one search call. Reference lists
// may freely mix canonical ids with human-readable names or slugs; malformed
// ids are skipped during resolution, never rejected.
type SearchParams struct {
	Category       string                `json:"category,omitempty"`
	SearchQuery    string                `json:"search_query,omitempty"`
	SubCategories  []string              `json:"sub_categories,omitempty"`
	Brands         []string              `json:"brands,omitempty"`
	Collections    []string              `json:"collections,omitempty"`
	Specifications []SpecificationFilter `json:"specifications,omitempty"`
	MinPrice       *float64              `json:"min_price,omitempty"`
	MaxPrice       *float64              `json:"max_price,omitempty"`
	StockStatuses  []string              `json:"stock_statuses,omitempty"`
	SortBy         string                `json:"sort_by,omitempty"`
	SortOrder      string                `json:"sort_order,omitempty"`
	Page           int                   `json:"page,omitempty"`
	Limit          int                   `json:"limit,omitempty"`
}

// HasSearchQuery reports whether the free-text retrieval path applies.
func (p SearchParams) HasSearchQuery() bool {
	return p.SearchQuery != ""
}

// ResolvedParams is SearchParams after identifier resolution: canonical id
// lists per dimension, the category closure, and one must-fail flag per
// dimension that was referenced but resolved to nothing.
//
// A must-fail flag is set only when the caller supplied at least one
// reference for that dimension and none of them resolved. Omitting a filter
// never sets its flag.
type ResolvedParams struct {
	SearchParams

	CategoryID      string   `json:"category_id,omitempty"`
	CategoryClosure []string `json:"category_closure,omitempty"`
	SubCategoryIDs  []string `json:"sub_category_ids,omitempty"`
	BrandIDs        []string `json:"brand_ids,omitempty"`
	CollectionIDs   []string `json:"collection_ids,omitempty"`

	CategoryMustFail      bool `json:"category_must_fail,omitempty"`
	BrandsMustFail        bool `json:"brands_must_fail,omitempty"`
	CollectionsMustFail   bool `json:"collections_must_fail,omitempty"`
	SubCategoriesMustFail bool `json:"sub_categories_must_fail,omitempty"`
}

// MustFail reports whether any referenced dimension failed to resolve, in
// which case the whole query matches nothing.
func (p ResolvedParams) MustFail() bool {
	return p.CategoryMustFail || p.BrandsMustFail || p.CollectionsMustFail || p.SubCategoriesMustFail
}

// PriceRange holds the price bounds of the category-scoped universe.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SearchResult is the complete output of one search call. It is constructed
// fresh per call and never mutated after return; cached copies are immutable
// snapshots keyed by parameter signature.
type SearchResult struct {
	Products    []MinimalProduct `json:"products"`
	TotalCount  int              `json:"total_count"`
	TotalPages  int              `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
	HasNext     bool             `json:"has_next"`
	HasPrev     bool             `json:"has_prev"`
	PriceRange  PriceRange       `json:"price_range"`
	Facets      Facets           `json:"facets"`
}
