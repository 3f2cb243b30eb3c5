package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Ngumi22/bds-sub000/internal/domain"
)

func matchesNameOrSlug(name, slug string, values []string) bool {
	for _, v := range values {
		if strings.EqualFold(name, v) || strings.EqualFold(slug, v) {
			return true
		}
	}
	return false
}

// CategoryRepository is an in-memory repository.CategoryRepository.
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
}

// NewCategoryRepository creates an empty in-memory category repository.
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[string]domain.Category)}
}

// Add inserts or replaces a category.
func (r *CategoryRepository) Add(c domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = c
}

func (r *CategoryRepository) filter(keep func(domain.Category) bool) []domain.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Category{}
	for _, c := range r.categories {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// FindByNameOrSlug matches categories case-insensitively by name or slug.
func (r *CategoryRepository) FindByNameOrSlug(_ context.Context, values []string) ([]domain.Category, error) {
	if len(values) == 0 {
		return []domain.Category{}, nil
	}
	return r.filter(func(c domain.Category) bool {
		return matchesNameOrSlug(c.Name, c.Slug, values)
	}), nil
}

// FindByIDs fetches categories by canonical id.
func (r *CategoryRepository) FindByIDs(_ context.Context, ids []string) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Category{}
	for _, id := range ids {
		if c, ok := r.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// ChildrenOf fetches the direct children of the given parents.
func (r *CategoryRepository) ChildrenOf(_ context.Context, parentIDs []string) ([]domain.Category, error) {
	if len(parentIDs) == 0 {
		return []domain.Category{}, nil
	}
	return r.filter(func(c domain.Category) bool {
		return c.ParentID != nil && contains(parentIDs, *c.ParentID)
	}), nil
}

// TopLevel fetches all parent categories.
func (r *CategoryRepository) TopLevel(_ context.Context) ([]domain.Category, error) {
	return r.filter(func(c domain.Category) bool {
		return c.ParentID == nil
	}), nil
}

// BrandRepository is an in-memory repository.BrandRepository.
type BrandRepository struct {
	mu     sync.RWMutex
	brands map[string]domain.Brand
}

// NewBrandRepository creates an empty in-memory brand repository.
func NewBrandRepository() *BrandRepository {
	return &BrandRepository{brands: make(map[string]domain.Brand)}
}

// Add inserts or replaces a brand.
func (r *BrandRepository) Add(b domain.Brand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brands[b.ID] = b
}

// FindByNameOrSlug matches brands case-insensitively by name or slug.
func (r *BrandRepository) FindByNameOrSlug(_ context.Context, values []string) ([]domain.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Brand{}
	for _, b := range r.brands {
		if matchesNameOrSlug(b.Name, b.Slug, values) {
			out = append(out, b)
		}
	}
	return out, nil
}

// FindByIDs fetches brands by canonical id.
func (r *BrandRepository) FindByIDs(_ context.Context, ids []string) ([]domain.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Brand{}
	for _, id := range ids {
		if b, ok := r.brands[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// CollectionRepository is an in-memory repository.CollectionRepository.
type CollectionRepository struct {
	mu          sync.RWMutex
	collections map[string]domain.Collection
}

// NewCollectionRepository creates an empty in-memory collection repository.
func NewCollectionRepository() *CollectionRepository {
	return &CollectionRepository{collections: make(map[string]domain.Collection)}
}

// Add inserts or replaces a collection.
func (r *CollectionRepository) Add(c domain.Collection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[c.ID] = c
}

// FindByNameOrSlug matches collections case-insensitively by name or slug.
func (r *CollectionRepository) FindByNameOrSlug(_ context.Context, values []string) ([]domain.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Collection{}
	for _, c := range r.collections {
		if matchesNameOrSlug(c.Name, c.Slug, values) {
			out = append(out, c)
		}
	}
	return out, nil
}

// FindByIDs fetches collections by canonical id.
func (r *CollectionRepository) FindByIDs(_ context.Context, ids []string) ([]domain.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Collection{}
	for _, id := range ids {
		if c, ok := r.collections[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// SpecificationRepository is an in-memory repository.SpecificationRepository.
type SpecificationRepository struct {
	mu          sync.RWMutex
	definitions []domain.SpecificationDefinition
}

// NewSpecificationRepository creates an empty in-memory definition repository.
func NewSpecificationRepository() *SpecificationRepository {
	return &SpecificationRepository{}
}

// Add appends a specification definition.
func (r *SpecificationRepository) Add(d domain.SpecificationDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions = append(r.definitions, d)
}

// DefinitionsFor loads definitions scoped to the given categories, or all
// definitions when no category is scoped.
func (r *SpecificationRepository) DefinitionsFor(_ context.Context, categoryIDs []string) ([]domain.SpecificationDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.SpecificationDefinition{}
	for _, d := range r.definitions {
		if len(categoryIDs) == 0 || intersects(d.CategoryIDs, categoryIDs) {
			out = append(out, d)
		}
	}
	return out, nil
}
