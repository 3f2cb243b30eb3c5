package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/query"
)

// nameOrSlugFilter matches values case-insensitively against both the name
// and slug fields.
func nameOrSlugFilter(values []string) bson.M {
	patterns := query.CaseInsensitiveIn(values)
	return bson.M{"$or": bson.A{
		bson.M{"name": bson.M{"$in": patterns}},
		bson.M{"slug": bson.M{"$in": patterns}},
	}}
}

type categoryRecord struct {
	ID       primitive.ObjectID  `bson:"_id"`
	Name     string              `bson:"name"`
	Slug     string              `bson:"slug"`
	ParentID *primitive.ObjectID `bson:"parent_id,omitempty"`
}

func (r categoryRecord) toDomain() domain.Category {
	c := domain.Category{ID: r.ID.Hex(), Name: r.Name, Slug: r.Slug}
	if r.ParentID != nil {
		parent := r.ParentID.Hex()
		c.ParentID = &parent
	}
	return c
}

// CategoryRepository implements repository.CategoryRepository.
type CategoryRepository struct {
	coll *mongo.Collection
}

// NewCategoryRepository creates a category repository.
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{coll: db.collection(collCategories)}
}

func (r *CategoryRepository) find(ctx context.Context, filter bson.M, op string) ([]domain.Category, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var records []categoryRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	out := make([]domain.Category, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// FindByNameOrSlug matches categories case-insensitively by name or slug.
func (r *CategoryRepository) FindByNameOrSlug(ctx context.Context, values []string) ([]domain.Category, error) {
	if len(values) == 0 {
		return []domain.Category{}, nil
	}
	return r.find(ctx, nameOrSlugFilter(values), "find categories by name")
}

// FindByIDs fetches categories by canonical id.
func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Category, error) {
	if len(ids) == 0 {
		return []domain.Category{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": query.ObjectIDs(ids)}}, "find categories by id")
}

// ChildrenOf fetches the direct children of the given parents.
func (r *CategoryRepository) ChildrenOf(ctx context.Context, parentIDs []string) ([]domain.Category, error) {
	if len(parentIDs) == 0 {
		return []domain.Category{}, nil
	}
	return r.find(ctx, bson.M{"parent_id": bson.M{"$in": query.ObjectIDs(parentIDs)}}, "find child categories")
}

// TopLevel fetches all parent categories.
func (r *CategoryRepository) TopLevel(ctx context.Context) ([]domain.Category, error) {
	return r.find(ctx, bson.M{"parent_id": nil}, "find top-level categories")
}

type brandRecord struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
	Slug string             `bson:"slug"`
}

// BrandRepository implements repository.BrandRepository.
type BrandRepository struct {
	coll *mongo.Collection
}

// NewBrandRepository creates a brand repository.
func NewBrandRepository(db *DB) *BrandRepository {
	return &BrandRepository{coll: db.collection(collBrands)}
}

func (r *BrandRepository) find(ctx context.Context, filter bson.M, op string) ([]domain.Brand, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var records []brandRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	out := make([]domain.Brand, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Brand{ID: rec.ID.Hex(), Name: rec.Name, Slug: rec.Slug})
	}
	return out, nil
}

// FindByNameOrSlug matches brands case-insensitively by name or slug.
func (r *BrandRepository) FindByNameOrSlug(ctx context.Context, values []string) ([]domain.Brand, error) {
	if len(values) == 0 {
		return []domain.Brand{}, nil
	}
	return r.find(ctx, nameOrSlugFilter(values), "find brands by name")
}

// FindByIDs fetches brands by canonical id.
func (r *BrandRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Brand, error) {
	if len(ids) == 0 {
		return []domain.Brand{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": query.ObjectIDs(ids)}}, "find brands by id")
}

type collectionRecord struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
	Slug string             `bson:"slug"`
}

// CollectionRepository implements repository.CollectionRepository.
type CollectionRepository struct {
	coll *mongo.Collection
}

// NewCollectionRepository creates a collection repository.
func NewCollectionRepository(db *DB) *CollectionRepository {
	return &CollectionRepository{coll: db.collection(collCollections)}
}

func (r *CollectionRepository) find(ctx context.Context, filter bson.M, op string) ([]domain.Collection, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var records []collectionRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	out := make([]domain.Collection, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Collection{ID: rec.ID.Hex(), Name: rec.Name, Slug: rec.Slug})
	}
	return out, nil
}

// FindByNameOrSlug matches collections case-insensitively by name or slug.
func (r *CollectionRepository) FindByNameOrSlug(ctx context.Context, values []string) ([]domain.Collection, error) {
	if len(values) == 0 {
		return []domain.Collection{}, nil
	}
	return r.find(ctx, nameOrSlugFilter(values), "find collections by name")
}

// FindByIDs fetches collections by canonical id.
func (r *CollectionRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Collection, error) {
	if len(ids) == 0 {
		return []domain.Collection{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": query.ObjectIDs(ids)}}, "find collections by id")
}

type specDefinitionRecord struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Key         string               `bson:"key"`
	Name        string               `bson:"name"`
	CategoryIDs []primitive.ObjectID `bson:"category_ids,omitempty"`
}

// SpecificationRepository implements repository.SpecificationRepository.
type SpecificationRepository struct {
	coll *mongo.Collection
}

// NewSpecificationRepository creates a specification-definition repository.
func NewSpecificationRepository(db *DB) *SpecificationRepository {
	return &SpecificationRepository{coll: db.collection(collSpecifications)}
}

// DefinitionsFor loads the definitions scoped to the given categories, or
// all definitions when no category is scoped. A category with no
// definitions yields an empty list, not an error.
func (r *SpecificationRepository) DefinitionsFor(ctx context.Context, categoryIDs []string) ([]domain.SpecificationDefinition, error) {
	filter := bson.M{}
	if len(categoryIDs) > 0 {
		filter["category_ids"] = bson.M{"$in": query.ObjectIDs(categoryIDs)}
	}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find specification definitions: %w", err)
	}

	var records []specDefinitionRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode specification definitions: %w", err)
	}

	out := make([]domain.SpecificationDefinition, 0, len(records))
	for _, rec := range records {
		ids := make([]string, 0, len(rec.CategoryIDs))
		for _, id := range rec.CategoryIDs {
			ids = append(ids, id.Hex())
		}
		out = append(out, domain.SpecificationDefinition{ID: rec.ID.Hex(), Key: rec.Key, Name: rec.Name, CategoryIDs: ids})
	}
	return out, nil
}
