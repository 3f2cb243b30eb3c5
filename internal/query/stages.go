package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultSearchIndex is the name of the store's full-text search index over
// the products collection.
const DefaultSearchIndex = "products_search"

// Stage is one typed stage of a native aggregation pipeline. The loose
// nested-map pipelines of the store's wire format are built only in Compile,
// so every pipeline in this module is assembled from these variants.
type Stage interface {
	compile() []bson.D
}

// SearchStage ranks documents against a free-text query: boosted
// autocomplete on name, fuzzy matches on slug and the two description
// fields, with at least one clause required to match.
type SearchStage struct {
	Index string
	Query string
}

func (s SearchStage) compile() []bson.D {
	index := s.Index
	if index == "" {
		index = DefaultSearchIndex
	}
	return []bson.D{{{Key: "$search", Value: bson.D{
		{Key: "index", Value: index},
		{Key: "compound", Value: bson.D{
			{Key: "should", Value: bson.A{
				bson.D{{Key: "autocomplete", Value: bson.D{
					{Key: "query", Value: s.Query},
					{Key: "path", Value: "name"},
					{Key: "score", Value: bson.D{{Key: "boost", Value: bson.D{{Key: "value", Value: 5.0}}}}},
				}}},
				bson.D{{Key: "text", Value: bson.D{
					{Key: "query", Value: s.Query},
					{Key: "path", Value: "slug"},
					{Key: "fuzzy", Value: bson.D{{Key: "maxEdits", Value: 2}}},
				}}},
				bson.D{{Key: "text", Value: bson.D{
					{Key: "query", Value: s.Query},
					{Key: "path", Value: bson.A{"short_description", "description"}},
					{Key: "fuzzy", Value: bson.D{{Key: "maxEdits", Value: 1}}},
				}}},
			}},
			{Key: "minimumShouldMatch", Value: 1},
		}},
	}}}}
}

// MatchStage applies a Filter as a $match stage.
type MatchStage struct {
	Filter Filter
}

func (s MatchStage) compile() []bson.D {
	return []bson.D{{{Key: "$match", Value: s.Filter.Match()}}}
}

// SortStage orders the pipeline by the given Sort.
type SortStage struct {
	Sort Sort
}

func (s SortStage) compile() []bson.D {
	return []bson.D{{{Key: "$sort", Value: s.Sort.StageSort()}}}
}

// SkipStage skips the first N documents.
type SkipStage struct {
	N int64
}

func (s SkipStage) compile() []bson.D {
	return []bson.D{{{Key: "$skip", Value: s.N}}}
}

// LimitStage caps the pipeline at N documents.
type LimitStage struct {
	N int64
}

func (s LimitStage) compile() []bson.D {
	return []bson.D{{{Key: "$limit", Value: s.N}}}
}

// ProjectIDScoreStage projects only the document id and its relevance
// score, the shape consumed by the hybrid path before hydration.
type ProjectIDScoreStage struct{}

func (ProjectIDScoreStage) compile() []bson.D {
	return []bson.D{{{Key: "$project", Value: bson.D{
		{Key: "_id", Value: 1},
		{Key: "score", Value: bson.D{{Key: "$meta", Value: "searchScore"}}},
	}}}}
}

// UnwindStage unwinds an array-valued field so each element groups
// separately. Documents missing the field drop out, which is the pruning
// the facet counts want.
type UnwindStage struct {
	Field string
}

func (s UnwindStage) compile() []bson.D {
	return []bson.D{{{Key: "$unwind", Value: "$" + s.Field}}}
}

// GroupCountStage groups by a single field and counts occurrences.
type GroupCountStage struct {
	Field string
}

func (s GroupCountStage) compile() []bson.D {
	return []bson.D{{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$" + s.Field},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}}
}

// GroupSpecStage unwinds product specification rows and counts occurrences
// per (key, value) pair.
type GroupSpecStage struct{}

func (GroupSpecStage) compile() []bson.D {
	return []bson.D{
		{{Key: "$unwind", Value: "$specifications"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "key", Value: "$specifications.key"},
				{Key: "value", Value: "$specifications.value"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

// GroupMinMaxStage collapses the pipeline to the min and max of a field.
type GroupMinMaxStage struct {
	Field string
}

func (s GroupMinMaxStage) compile() []bson.D {
	return []bson.D{{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "min", Value: bson.D{{Key: "$min", Value: "$" + s.Field}}},
		{Key: "max", Value: bson.D{{Key: "$max", Value: "$" + s.Field}}},
	}}}}
}

// CountStage collapses the pipeline to a single {total: N} document.
type CountStage struct{}

func (CountStage) compile() []bson.D {
	return []bson.D{{{Key: "$count", Value: "total"}}}
}

// Compile serializes a stage list to the store's wire format. This is the
// single point where typed stages become the loose pipeline encoding.
func Compile(stages []Stage) mongo.Pipeline {
	p := make(mongo.Pipeline, 0, len(stages))
	for _, s := range stages {
		p = append(p, s.compile()...)
	}
	return p
}
