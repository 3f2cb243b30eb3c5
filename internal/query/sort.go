package query

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Ngumi22/bds-sub000/internal/domain"
)

// Sort describes the requested ordering for one retrieval. Ranked is set on
// the free-text path, where search relevance orders first and the requested
// field breaks ties.
type Sort struct {
	Field  string
	Desc   bool
	Ranked bool
}

// BuildSort translates the caller-supplied sort key and direction into a
// Sort. Unknown fields fall back to newest-first.
func BuildSort(sortBy, sortOrder string, ranked bool) Sort {
	field := sortBy
	if !domain.IsValidSortField(field) {
		field = domain.SortCreatedAt
	}
	desc := sortOrder != domain.SortAsc
	return Sort{Field: field, Desc: desc, Ranked: ranked}
}

// fieldName maps the permitted sort keys onto document fields. Popularity
// sorts by accumulated sales.
func (s Sort) fieldName() string {
	switch s.Field {
	case domain.SortName:
		return "name"
	case domain.SortPrice:
		return "price"
	case domain.SortPopularity:
		return "sales_count"
	default:
		return "created_at"
	}
}

func (s Sort) direction() int {
	if s.Desc {
		return -1
	}
	return 1
}

// FindSort returns the ordering directive for the structured layer. An _id
// tiebreaker keeps pagination deterministic when the sort field carries
// duplicate values.
func (s Sort) FindSort() bson.D {
	return bson.D{
		{Key: s.fieldName(), Value: s.direction()},
		{Key: "_id", Value: 1},
	}
}

// StageSort returns the $sort stage body for the native pipeline. On the
// ranked path relevance score orders first, then the requested field, then
// _id so identical parameters always paginate identically.
func (s Sort) StageSort() bson.D {
	d := bson.D{}
	if s.Ranked {
		d = append(d, bson.E{Key: "score", Value: bson.D{{Key: "$meta", Value: "searchScore"}}})
	}
	d = append(d,
		bson.E{Key: s.fieldName(), Value: s.direction()},
		bson.E{Key: "_id", Value: 1},
	)
	return d
}
