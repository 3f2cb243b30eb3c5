// Package repository defines the store contracts the search pipeline runs
// against: the structured query layer (find/count/group/min-max) and the
// native aggregation surface used by the free-text path. Implementations
// live in the mongodb and memory sub-packages.
package repository

import (
	"context"

	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/query"
)

// GroupCount is one grouped-count row. Key holds the grouped value: an id
// in hex form for id-valued fields, the raw value otherwise.
type GroupCount struct {
	Key   string
	Count int
}

// SpecValueCount is one (specification key, value) occurrence count.
type SpecValueCount struct {
	Key   string
	Value string
	Count int
}

// RankedID is a product id with its relevance score from the search stage.
type RankedID struct {
	ID    string
	Score float64
}

// IsArrayField reports whether a groupable product field is array-valued
// and must be unwound so each element counts separately.
func IsArrayField(field string) bool {
	return field == "collection_ids"
}

// ProductRepository is the product side of the store. Find/Count/GroupCount/
// GroupSpecValues/PriceBounds go through the structured layer; the Search*
// methods run the native pipeline with the ranking stage in front, because
// the structured layer cannot see which records the ranking stage matches.
// PriceBounds has no ranked variant: the price range is always computed
// over the category scope, never the narrowed or ranked result set.
//
// All methods treat filters as read-only and never mutate the store. A
// connectivity failure is returned as-is; callers decide whether the whole
// request dies with it.
type ProductRepository interface {
	Find(ctx context.Context, f query.Filter, sort query.Sort, skip, limit int64) ([]domain.MinimalProduct, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.MinimalProduct, error)
	Count(ctx context.Context, f query.Filter) (int64, error)
	GroupCount(ctx context.Context, field string, f query.Filter) ([]GroupCount, error)
	GroupSpecValues(ctx context.Context, f query.Filter) ([]SpecValueCount, error)
	PriceBounds(ctx context.Context, f query.Filter) (*domain.PriceRange, error)

	SearchIDs(ctx context.Context, q string, f query.Filter, sort query.Sort, skip, limit int64) ([]RankedID, error)
	SearchCount(ctx context.Context, q string, f query.Filter) (int64, error)
	SearchGroupCount(ctx context.Context, q, field string, f query.Filter) ([]GroupCount, error)
	SearchGroupSpecValues(ctx context.Context, q string, f query.Filter) ([]SpecValueCount, error)
}

// CategoryRepository resolves and enumerates catalog categories.
type CategoryRepository interface {
	// FindByNameOrSlug matches values case-insensitively against both the
	// name and slug fields.
	FindByNameOrSlug(ctx context.Context, values []string) ([]domain.Category, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Category, error)
	ChildrenOf(ctx context.Context, parentIDs []string) ([]domain.Category, error)
	TopLevel(ctx context.Context) ([]domain.Category, error)
}

// BrandRepository resolves catalog brands.
type BrandRepository interface {
	FindByNameOrSlug(ctx context.Context, values []string) ([]domain.Brand, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Brand, error)
}

// CollectionRepository resolves curated collections.
type CollectionRepository interface {
	FindByNameOrSlug(ctx context.Context, values []string) ([]domain.Collection, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Collection, error)
}

// SpecificationRepository loads specification definitions. An empty
// category list means all definitions; a category with no definitions is
// not an error and yields an empty list.
type SpecificationRepository interface {
	DefinitionsFor(ctx context.Context, categoryIDs []string) ([]domain.SpecificationDefinition, error)
}
