// Package memory implements the repository contracts over in-process maps.
// It mirrors the store's query semantics closely enough for unit tests and
// store-less development: structured filters evaluate against the same
// predicate set, and the search path does token-prefix ranking in place of
// the store's fuzzy scoring.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/query"
	"github.com/Ngumi22/bds-sub000/internal/repository"
)

// Product is the full in-memory product record.
type Product struct {
	ID               string
	Name             string
	Slug             string
	Description      string
	ShortDescription string
	Price            float64
	OriginalPrice    *float64
	CategoryID       string
	CategoryName     string
	BrandID          string
	BrandName        string
	CollectionIDs    []string
	StockStatus      string
	IsActive         bool
	Variants         []domain.VariantGroup
	Specifications   []domain.SpecificationValue
	Images           []domain.ProductImage
	SalesCount       int64
	CreatedAt        time.Time
}

func (p Product) toMinimal() domain.MinimalProduct {
	var colors []string
	for _, v := range p.Variants {
		if strings.EqualFold(v.Type, "color") {
			colors = append(colors, v.Options...)
		}
	}
	return domain.MinimalProduct{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		CategoryID:    p.CategoryID,
		Image:         domain.PrimaryImage(p.Images),
		StockStatus:   p.StockStatus,
		HasVariants:   domain.DeriveHasVariants(p.Variants),
		IsActive:      p.IsActive,
		BrandName:     p.BrandName,
		CategoryName:  p.CategoryName,
		CollectionIDs: p.CollectionIDs,
		Colors:        colors,
	}
}

// ProductRepository is an in-memory repository.ProductRepository.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewProductRepository creates an empty in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[string]Product)}
}

// Add inserts or replaces a product record.
func (r *ProductRepository) Add(p Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

// matches evaluates the structured filter against one record.
func matches(p Product, f query.Filter) bool {
	if f.Unsatisfiable {
		return false
	}
	if !p.IsActive {
		return false
	}
	if len(f.CategoryIDs) > 0 && !contains(f.CategoryIDs, p.CategoryID) {
		return false
	}
	if len(f.BrandIDs) > 0 && !contains(f.BrandIDs, p.BrandID) {
		return false
	}
	if len(f.CollectionIDs) > 0 && !intersects(f.CollectionIDs, p.CollectionIDs) {
		return false
	}
	if len(f.StockStatuses) > 0 && !contains(f.StockStatuses, p.StockStatus) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	for _, sp := range f.Specs {
		if !hasSpecValue(p.Specifications, sp) {
			return false
		}
	}
	return true
}

func hasSpecValue(specs []domain.SpecificationValue, pred query.SpecPredicate) bool {
	for _, s := range specs {
		if s.Key != pred.Key {
			continue
		}
		for _, v := range pred.Values {
			if strings.EqualFold(s.Value, v) {
				return true
			}
		}
	}
	return false
}

// score ranks a record against a free-text query: token prefix hits on the
// name weigh most, slug and description hits less. Zero means no match.
func score(p Product, q string) float64 {
	var total float64
	nameWords := strings.Fields(strings.ToLower(p.Name))
	slug := strings.ToLower(p.Slug)
	desc := strings.ToLower(p.ShortDescription + " " + p.Description)

	for _, token := range strings.Fields(strings.ToLower(q)) {
		for _, w := range nameWords {
			if strings.HasPrefix(w, token) || strings.HasPrefix(token, w) {
				total += 3
				break
			}
		}
		if strings.Contains(slug, token) {
			total += 2
		}
		if strings.Contains(desc, token) {
			total++
		}
	}
	return total
}

func (r *ProductRepository) filtered(f query.Filter) []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}

func compareProducts(a, b Product, s query.Sort) (less, equal bool) {
	switch s.Field {
	case domain.SortName:
		return a.Name < b.Name, a.Name == b.Name
	case domain.SortPrice:
		return a.Price < b.Price, a.Price == b.Price
	case domain.SortPopularity:
		return a.SalesCount < b.SalesCount, a.SalesCount == b.SalesCount
	default:
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
}

func productBefore(a, b Product, s query.Sort) bool {
	less, equal := compareProducts(a, b, s)
	if equal {
		return a.ID < b.ID
	}
	if s.Desc {
		return !less
	}
	return less
}

func sortProducts(items []Product, s query.Sort) {
	sort.Slice(items, func(i, j int) bool {
		return productBefore(items[i], items[j], s)
	})
}

func paginate(items []Product, skip, limit int64) []Product {
	total := int64(len(items))
	if skip > total {
		skip = total
	}
	end := skip + limit
	if limit <= 0 || end > total {
		end = total
	}
	return items[skip:end]
}

// Find runs a structured query.
func (r *ProductRepository) Find(_ context.Context, f query.Filter, s query.Sort, skip, limit int64) ([]domain.MinimalProduct, error) {
	items := r.filtered(f)
	sortProducts(items, s)
	items = paginate(items, skip, limit)

	out := make([]domain.MinimalProduct, 0, len(items))
	for _, p := range items {
		out = append(out, p.toMinimal())
	}
	return out, nil
}

// FindByIDs hydrates active records for the given ids. Results come back
// ordered by id, not by input order, matching the store's behavior.
func (r *ProductRepository) FindByIDs(_ context.Context, ids []string) ([]domain.MinimalProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok && p.IsActive {
			found = append(found, p)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })

	out := make([]domain.MinimalProduct, 0, len(found))
	for _, p := range found {
		out = append(out, p.toMinimal())
	}
	return out, nil
}

// Count counts records matching the filter.
func (r *ProductRepository) Count(_ context.Context, f query.Filter) (int64, error) {
	return int64(len(r.filtered(f))), nil
}

func groupField(p Product, field string) []string {
	switch field {
	case "brand_id":
		if p.BrandID == "" {
			return nil
		}
		return []string{p.BrandID}
	case "category_id":
		return []string{p.CategoryID}
	case "stock_status":
		return []string{p.StockStatus}
	case "collection_ids":
		return p.CollectionIDs
	default:
		return nil
	}
}

func groupCounts(items []Product, field string) []repository.GroupCount {
	counts := make(map[string]int)
	for _, p := range items {
		for _, key := range groupField(p, field) {
			counts[key]++
		}
	}

	out := make([]repository.GroupCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, repository.GroupCount{Key: key, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func specCounts(items []Product) []repository.SpecValueCount {
	type pair struct{ key, value string }
	counts := make(map[pair]int)
	for _, p := range items {
		for _, s := range p.Specifications {
			counts[pair{s.Key, s.Value}]++
		}
	}

	out := make([]repository.SpecValueCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, repository.SpecValueCount{Key: k.key, Value: k.value, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func priceBounds(items []Product) *domain.PriceRange {
	if len(items) == 0 {
		return nil
	}
	pr := &domain.PriceRange{Min: items[0].Price, Max: items[0].Price}
	for _, p := range items[1:] {
		if p.Price < pr.Min {
			pr.Min = p.Price
		}
		if p.Price > pr.Max {
			pr.Max = p.Price
		}
	}
	return pr
}

// GroupCount groups matching records by a field.
func (r *ProductRepository) GroupCount(_ context.Context, field string, f query.Filter) ([]repository.GroupCount, error) {
	return groupCounts(r.filtered(f), field), nil
}

// GroupSpecValues counts specification rows per (key, value).
func (r *ProductRepository) GroupSpecValues(_ context.Context, f query.Filter) ([]repository.SpecValueCount, error) {
	return specCounts(r.filtered(f)), nil
}

// PriceBounds returns min/max price over matching records.
func (r *ProductRepository) PriceBounds(_ context.Context, f query.Filter) (*domain.PriceRange, error) {
	return priceBounds(r.filtered(f)), nil
}

// ranked returns records matching both the query and the filter, ordered by
// score descending with the requested sort and id as tiebreakers.
func (r *ProductRepository) ranked(q string, f query.Filter, s query.Sort) ([]Product, []float64) {
	items := r.filtered(f)

	type scored struct {
		p Product
		s float64
	}
	hits := make([]scored, 0, len(items))
	for _, p := range items {
		if sc := score(p, q); sc > 0 {
			hits = append(hits, scored{p: p, s: sc})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].s != hits[j].s {
			return hits[i].s > hits[j].s
		}
		return productBefore(hits[i].p, hits[j].p, s)
	})

	products := make([]Product, 0, len(hits))
	scores := make([]float64, 0, len(hits))
	for _, h := range hits {
		products = append(products, h.p)
		scores = append(scores, h.s)
	}
	return products, scores
}

// SearchIDs runs the ranked path and returns the requested id page.
func (r *ProductRepository) SearchIDs(_ context.Context, q string, f query.Filter, s query.Sort, skip, limit int64) ([]repository.RankedID, error) {
	products, scores := r.ranked(q, f, s)

	total := int64(len(products))
	if skip > total {
		skip = total
	}
	end := skip + limit
	if limit <= 0 || end > total {
		end = total
	}

	out := make([]repository.RankedID, 0, end-skip)
	for i := skip; i < end; i++ {
		out = append(out, repository.RankedID{ID: products[i].ID, Score: scores[i]})
	}
	return out, nil
}

// SearchCount counts all ranked matches.
func (r *ProductRepository) SearchCount(_ context.Context, q string, f query.Filter) (int64, error) {
	products, _ := r.ranked(q, f, query.Sort{})
	return int64(len(products)), nil
}

// SearchGroupCount groups ranked matches by a field.
func (r *ProductRepository) SearchGroupCount(_ context.Context, q, field string, f query.Filter) ([]repository.GroupCount, error) {
	products, _ := r.ranked(q, f, query.Sort{})
	return groupCounts(products, field), nil
}

// SearchGroupSpecValues counts specification rows over ranked matches.
func (r *ProductRepository) SearchGroupSpecValues(_ context.Context, q string, f query.Filter) ([]repository.SpecValueCount, error) {
	products, _ := r.ranked(q, f, query.Sort{})
	return specCounts(products), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if contains(b, x) {
			return true
		}
	}
	return false
}
