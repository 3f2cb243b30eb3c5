// Package resolver turns raw filter references into canonical ids. Callers
// may mix canonical ids with human-readable names or slugs in every
// reference list; resolution unifies them and flags dimensions that were
// referenced but matched nothing.
package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/query"
	"github.com/Ngumi22/bds-sub000/internal/repository"
)

// Resolver resolves filter references against the catalog.
type Resolver struct {
	categories  repository.CategoryRepository
	brands      repository.BrandRepository
	collections repository.CollectionRepository
}

// New creates a Resolver over the given catalog repositories.
func New(categories repository.CategoryRepository, brands repository.BrandRepository, collections repository.CollectionRepository) *Resolver {
	return &Resolver{categories: categories, brands: brands, collections: collections}
}

// Resolve maps every reference in the params to canonical ids.
//
// Structurally valid ids are trusted without a lookup; everything else is
// matched case-insensitively against names and slugs. A dimension's
// must-fail flag is set only when references were supplied and none of them
// produced an id. Malformed ids are dropped, never rejected.
func (r *Resolver) Resolve(ctx context.Context, params domain.SearchParams) (domain.ResolvedParams, error) {
	resolved := domain.ResolvedParams{SearchParams: params}

	if err := r.resolveCategory(ctx, params.Category, &resolved); err != nil {
		return domain.ResolvedParams{}, err
	}
	if err := r.resolveSubCategories(ctx, params.SubCategories, &resolved); err != nil {
		return domain.ResolvedParams{}, err
	}

	brandIDs, brandsFailed, err := r.resolveBrands(ctx, params.Brands)
	if err != nil {
		return domain.ResolvedParams{}, err
	}
	resolved.BrandIDs = brandIDs
	resolved.BrandsMustFail = brandsFailed

	collectionIDs, collectionsFailed, err := r.resolveCollections(ctx, params.Collections)
	if err != nil {
		return domain.ResolvedParams{}, err
	}
	resolved.CollectionIDs = collectionIDs
	resolved.CollectionsMustFail = collectionsFailed

	return resolved, nil
}

// resolveCategory resolves the single category scope and expands it to its
// closure: the category itself plus its direct children.
func (r *Resolver) resolveCategory(ctx context.Context, ref string, out *domain.ResolvedParams) error {
	if ref == "" {
		return nil
	}

	if query.IsValidID(ref) {
		out.CategoryID = ref
	} else {
		found, err := r.categories.FindByNameOrSlug(ctx, []string{ref})
		if err != nil {
			return fmt.Errorf("resolve category: %w", err)
		}
		if len(found) == 0 {
			out.CategoryMustFail = true
			return nil
		}
		// More than one match is a catalog anomaly; pick deterministically.
		sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
		out.CategoryID = found[0].ID
	}

	children, err := r.categories.ChildrenOf(ctx, []string{out.CategoryID})
	if err != nil {
		return fmt.Errorf("resolve category closure: %w", err)
	}

	closure := make([]string, 0, len(children)+1)
	closure = append(closure, out.CategoryID)
	for _, c := range children {
		closure = append(closure, c.ID)
	}
	out.CategoryClosure = closure
	return nil
}

// resolveSubCategories resolves the list like the other dimensions: valid
// ids are trusted without a lookup, names and slugs are matched and kept
// only when the record is actually a sub-category. Must-fail requires that
// names were supplied and nothing produced an id.
func (r *Resolver) resolveSubCategories(ctx context.Context, refs []string, out *domain.ResolvedParams) error {
	if len(refs) == 0 {
		return nil
	}

	ids, names := partition(refs)
	if len(names) > 0 {
		found, err := r.categories.FindByNameOrSlug(ctx, names)
		if err != nil {
			return fmt.Errorf("resolve sub-categories: %w", err)
		}
		for _, c := range found {
			if c.IsSubCategory() {
				ids = append(ids, c.ID)
			}
		}
	}

	ids = dedupe(ids)
	if len(ids) == 0 {
		out.SubCategoriesMustFail = len(names) > 0
		return nil
	}
	out.SubCategoryIDs = ids
	return nil
}

func (r *Resolver) resolveBrands(ctx context.Context, refs []string) ([]string, bool, error) {
	if len(refs) == 0 {
		return nil, false, nil
	}

	ids, names := partition(refs)
	if len(names) > 0 {
		found, err := r.brands.FindByNameOrSlug(ctx, names)
		if err != nil {
			return nil, false, fmt.Errorf("resolve brands: %w", err)
		}
		for _, b := range found {
			ids = append(ids, b.ID)
		}
	}

	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, len(names) > 0, nil
	}
	return ids, false, nil
}

func (r *Resolver) resolveCollections(ctx context.Context, refs []string) ([]string, bool, error) {
	if len(refs) == 0 {
		return nil, false, nil
	}

	ids, names := partition(refs)
	if len(names) > 0 {
		found, err := r.collections.FindByNameOrSlug(ctx, names)
		if err != nil {
			return nil, false, fmt.Errorf("resolve collections: %w", err)
		}
		for _, c := range found {
			ids = append(ids, c.ID)
		}
	}

	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, len(names) > 0, nil
	}
	return ids, false, nil
}

// partition splits references into structurally valid ids and everything
// else, which is treated as names or slugs.
func partition(refs []string) (ids, names []string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if query.IsValidID(ref) {
			ids = append(ids, ref)
		} else {
			names = append(names, ref)
		}
	}
	return ids, names
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
