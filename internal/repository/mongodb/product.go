package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/query"
	"github.com/Ngumi22/bds-sub000/internal/repository"
)

// ProductRepository implements repository.ProductRepository over the
// products collection.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a product repository bound to the products
// collection.
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{coll: db.collection(collProducts)}
}

type variantGroupRecord struct {
	Type    string   `bson:"type"`
	Options []string `bson:"options"`
}

type specValueRecord struct {
	Key   string `bson:"key"`
	Value string `bson:"value"`
}

type imageRecord struct {
	URL       string `bson:"url"`
	AltText   string `bson:"alt_text,omitempty"`
	IsPrimary bool   `bson:"is_primary"`
}

type productRecord struct {
	ID               primitive.ObjectID   `bson:"_id"`
	Name             string               `bson:"name"`
	Slug             string               `bson:"slug"`
	Description      string               `bson:"description,omitempty"`
	ShortDescription string               `bson:"short_description,omitempty"`
	Price            float64              `bson:"price"`
	OriginalPrice    *float64             `bson:"original_price,omitempty"`
	CategoryID       primitive.ObjectID   `bson:"category_id"`
	CategoryName     string               `bson:"category_name,omitempty"`
	BrandID          *primitive.ObjectID  `bson:"brand_id,omitempty"`
	BrandName        string               `bson:"brand_name,omitempty"`
	CollectionIDs    []primitive.ObjectID `bson:"collection_ids,omitempty"`
	StockStatus      string               `bson:"stock_status"`
	IsActive         bool                 `bson:"is_active"`
	HasVariants      bool                 `bson:"has_variants"`
	Variants         []variantGroupRecord `bson:"variants,omitempty"`
	Specifications   []specValueRecord    `bson:"specifications,omitempty"`
	Images           []imageRecord        `bson:"images,omitempty"`
	SalesCount       int64                `bson:"sales_count"`
	CreatedAt        time.Time            `bson:"created_at"`
}

// toMinimal projects a stored record onto the output row. HasVariants is
// recomputed from the variant groups; the stored flag can lag behind edits
// and the computed value wins.
func (r productRecord) toMinimal() domain.MinimalProduct {
	groups := make([]domain.VariantGroup, 0, len(r.Variants))
	images := make([]domain.ProductImage, 0, len(r.Images))
	var colors []string

	for _, v := range r.Variants {
		groups = append(groups, domain.VariantGroup{Type: v.Type, Options: v.Options})
		if strings.EqualFold(v.Type, "color") {
			colors = append(colors, v.Options...)
		}
	}
	for _, img := range r.Images {
		images = append(images, domain.ProductImage{URL: img.URL, AltText: img.AltText, IsPrimary: img.IsPrimary})
	}

	collectionIDs := make([]string, 0, len(r.CollectionIDs))
	for _, id := range r.CollectionIDs {
		collectionIDs = append(collectionIDs, id.Hex())
	}

	return domain.MinimalProduct{
		ID:            r.ID.Hex(),
		Name:          r.Name,
		Slug:          r.Slug,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		CategoryID:    r.CategoryID.Hex(),
		Image:         domain.PrimaryImage(images),
		StockStatus:   r.StockStatus,
		HasVariants:   domain.DeriveHasVariants(groups),
		IsActive:      r.IsActive,
		BrandName:     r.BrandName,
		CategoryName:  r.CategoryName,
		CollectionIDs: collectionIDs,
		Colors:        colors,
	}
}

// Find runs a structured query: filter, sort, skip, limit.
func (r *ProductRepository) Find(ctx context.Context, f query.Filter, sort query.Sort, skip, limit int64) ([]domain.MinimalProduct, error) {
	opts := options.Find().
		SetSort(sort.FindSort()).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, f.Find(), opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	var records []productRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	return toMinimalAll(records), nil
}

// FindByIDs hydrates full projections for the given ids. Only active
// records are returned; missing ids are simply absent from the result.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.MinimalProduct, error) {
	if len(ids) == 0 {
		return []domain.MinimalProduct{}, nil
	}

	filter := bson.M{
		"_id":       bson.M{"$in": query.ObjectIDs(ids)},
		"is_active": true,
	}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("hydrate products: %w", err)
	}

	var records []productRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode hydrated products: %w", err)
	}

	return toMinimalAll(records), nil
}

// Count counts documents matching the structured filter.
func (r *ProductRepository) Count(ctx context.Context, f query.Filter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, f.Find())
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// GroupCount groups matching documents by a field and counts occurrences.
func (r *ProductRepository) GroupCount(ctx context.Context, field string, f query.Filter) ([]repository.GroupCount, error) {
	stages := []query.Stage{query.MatchStage{Filter: f}}
	stages = appendGroupCount(stages, field)
	return r.runGroupCount(ctx, stages)
}

// GroupSpecValues counts specification rows per (key, value) pair.
func (r *ProductRepository) GroupSpecValues(ctx context.Context, f query.Filter) ([]repository.SpecValueCount, error) {
	stages := []query.Stage{query.MatchStage{Filter: f}, query.GroupSpecStage{}}
	return r.runGroupSpec(ctx, stages)
}

// PriceBounds returns the min and max price over the matching documents,
// or nil when nothing matches.
func (r *ProductRepository) PriceBounds(ctx context.Context, f query.Filter) (*domain.PriceRange, error) {
	stages := []query.Stage{query.MatchStage{Filter: f}, query.GroupMinMaxStage{Field: "price"}}
	return r.runMinMax(ctx, stages)
}

// SearchIDs runs the ranked pipeline and returns the requested page of ids
// with their relevance scores.
func (r *ProductRepository) SearchIDs(ctx context.Context, q string, f query.Filter, sort query.Sort, skip, limit int64) ([]repository.RankedID, error) {
	stages := []query.Stage{
		query.SearchStage{Query: q},
		query.MatchStage{Filter: f},
		query.SortStage{Sort: sort},
		query.SkipStage{N: skip},
		query.LimitStage{N: limit},
		query.ProjectIDScoreStage{},
	}

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Score float64            `bson:"score"`
	}
	if err := r.run(ctx, stages, &rows); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	out := make([]repository.RankedID, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.RankedID{ID: row.ID.Hex(), Score: row.Score})
	}
	return out, nil
}

// SearchCount counts all documents the ranked pipeline would match,
// without pagination.
func (r *ProductRepository) SearchCount(ctx context.Context, q string, f query.Filter) (int64, error) {
	stages := []query.Stage{
		query.SearchStage{Query: q},
		query.MatchStage{Filter: f},
		query.CountStage{},
	}

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := r.run(ctx, stages, &rows); err != nil {
		return 0, fmt.Errorf("count search results: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// SearchGroupCount is GroupCount with the ranking stage in front.
func (r *ProductRepository) SearchGroupCount(ctx context.Context, q, field string, f query.Filter) ([]repository.GroupCount, error) {
	stages := []query.Stage{query.SearchStage{Query: q}, query.MatchStage{Filter: f}}
	stages = appendGroupCount(stages, field)
	return r.runGroupCount(ctx, stages)
}

// SearchGroupSpecValues is GroupSpecValues with the ranking stage in front.
func (r *ProductRepository) SearchGroupSpecValues(ctx context.Context, q string, f query.Filter) ([]repository.SpecValueCount, error) {
	stages := []query.Stage{query.SearchStage{Query: q}, query.MatchStage{Filter: f}, query.GroupSpecStage{}}
	return r.runGroupSpec(ctx, stages)
}

func (r *ProductRepository) run(ctx context.Context, stages []query.Stage, out any) error {
	cur, err := r.coll.Aggregate(ctx, query.Compile(stages))
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (r *ProductRepository) runGroupCount(ctx context.Context, stages []query.Stage) ([]repository.GroupCount, error) {
	var rows []struct {
		ID    any `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := r.run(ctx, stages, &rows); err != nil {
		return nil, fmt.Errorf("group products: %w", err)
	}

	out := make([]repository.GroupCount, 0, len(rows))
	for _, row := range rows {
		key, ok := groupKey(row.ID)
		if !ok {
			continue
		}
		out = append(out, repository.GroupCount{Key: key, Count: row.Count})
	}
	return out, nil
}

func (r *ProductRepository) runGroupSpec(ctx context.Context, stages []query.Stage) ([]repository.SpecValueCount, error) {
	var rows []struct {
		ID struct {
			Key   string `bson:"key"`
			Value string `bson:"value"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := r.run(ctx, stages, &rows); err != nil {
		return nil, fmt.Errorf("group specifications: %w", err)
	}

	out := make([]repository.SpecValueCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.SpecValueCount{Key: row.ID.Key, Value: row.ID.Value, Count: row.Count})
	}
	return out, nil
}

func (r *ProductRepository) runMinMax(ctx context.Context, stages []query.Stage) (*domain.PriceRange, error) {
	var rows []struct {
		Min float64 `bson:"min"`
		Max float64 `bson:"max"`
	}
	if err := r.run(ctx, stages, &rows); err != nil {
		return nil, fmt.Errorf("aggregate price bounds: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &domain.PriceRange{Min: rows[0].Min, Max: rows[0].Max}, nil
}

func appendGroupCount(stages []query.Stage, field string) []query.Stage {
	if repository.IsArrayField(field) {
		stages = append(stages, query.UnwindStage{Field: field})
	}
	return append(stages, query.GroupCountStage{Field: field})
}

func toMinimalAll(records []productRecord) []domain.MinimalProduct {
	out := make([]domain.MinimalProduct, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toMinimal())
	}
	return out
}

// groupKey converts a grouped _id value to its string form. Null group
// keys (e.g. products without a brand) are pruned.
func groupKey(v any) (string, bool) {
	switch k := v.(type) {
	case nil:
		return "", false
	case primitive.ObjectID:
		return k.Hex(), true
	case string:
		return k, true
	default:
		return fmt.Sprintf("%v", k), true
	}
}
