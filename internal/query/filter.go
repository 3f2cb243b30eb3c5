package query

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SpecPredicate selects products whose specification under Key carries any
// of the given values, compared case-insensitively.
type SpecPredicate struct {
	Key    string
	Values []string
}

// Filter is the predicate tree for one retrieval. It is a conjunction over
// the closed set of facet dimensions; is_active=true is implied and always
// emitted by both serializers.
//
// Unsatisfiable is the explicit "matches nothing" variant used when a
// referenced filter failed to resolve. It replaces the reserved-sentinel-id
// trick: the serializers emit an empty $in on _id, which matches no record
// in any id space.
type Filter struct {
	Unsatisfiable bool

	CategoryIDs   []string
	BrandIDs      []string
	CollectionIDs []string
	StockStatuses []string
	MinPrice      *float64
	MaxPrice      *float64
	Specs         []SpecPredicate
}

// IsZero reports whether the filter carries no predicates beyond is_active.
func (f Filter) IsZero() bool {
	return !f.Unsatisfiable &&
		len(f.CategoryIDs) == 0 &&
		len(f.BrandIDs) == 0 &&
		len(f.CollectionIDs) == 0 &&
		len(f.StockStatuses) == 0 &&
		f.MinPrice == nil &&
		f.MaxPrice == nil &&
		len(f.Specs) == 0
}

// Find serializes the filter for the structured query layer
// (find/count/group round trips).
func (f Filter) Find() bson.M {
	if f.Unsatisfiable {
		return bson.M{"_id": bson.M{"$in": []primitive.ObjectID{}}}
	}

	m := bson.M{"is_active": true}

	if len(f.CategoryIDs) > 0 {
		m["category_id"] = bson.M{"$in": ObjectIDs(f.CategoryIDs)}
	}
	if len(f.BrandIDs) > 0 {
		m["brand_id"] = bson.M{"$in": ObjectIDs(f.BrandIDs)}
	}
	if len(f.CollectionIDs) > 0 {
		m["collection_ids"] = bson.M{"$in": ObjectIDs(f.CollectionIDs)}
	}
	if len(f.StockStatuses) > 0 {
		m["stock_status"] = bson.M{"$in": f.StockStatuses}
	}
	if pr := priceRangeDoc(f.MinPrice, f.MaxPrice); pr != nil {
		m["price"] = pr
	}
	if len(f.Specs) > 0 {
		elems := bson.A{}
		for _, sp := range f.Specs {
			elems = append(elems, bson.M{"$elemMatch": bson.M{
				"key":   sp.Key,
				"value": bson.M{"$in": CaseInsensitiveIn(sp.Values)},
			}})
		}
		m["specifications"] = bson.M{"$all": elems}
	}

	return m
}

// Match serializes the filter as the body of a $match stage in the native
// aggregation pipeline. Id-valued fields are wrapped as ObjectIDs here too;
// the pipeline bypasses the structured layer's coercion entirely, so plain
// strings would silently match nothing.
func (f Filter) Match() bson.D {
	if f.Unsatisfiable {
		return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: []primitive.ObjectID{}}}}}
	}

	d := bson.D{{Key: "is_active", Value: true}}

	if len(f.CategoryIDs) > 0 {
		d = append(d, bson.E{Key: "category_id", Value: bson.D{{Key: "$in", Value: ObjectIDs(f.CategoryIDs)}}})
	}
	if len(f.BrandIDs) > 0 {
		d = append(d, bson.E{Key: "brand_id", Value: bson.D{{Key: "$in", Value: ObjectIDs(f.BrandIDs)}}})
	}
	if len(f.CollectionIDs) > 0 {
		d = append(d, bson.E{Key: "collection_ids", Value: bson.D{{Key: "$in", Value: ObjectIDs(f.CollectionIDs)}}})
	}
	if len(f.StockStatuses) > 0 {
		d = append(d, bson.E{Key: "stock_status", Value: bson.D{{Key: "$in", Value: f.StockStatuses}}})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		rng := bson.D{}
		if f.MinPrice != nil {
			rng = append(rng, bson.E{Key: "$gte", Value: *f.MinPrice})
		}
		if f.MaxPrice != nil {
			rng = append(rng, bson.E{Key: "$lte", Value: *f.MaxPrice})
		}
		d = append(d, bson.E{Key: "price", Value: rng})
	}
	if len(f.Specs) > 0 {
		elems := bson.A{}
		for _, sp := range f.Specs {
			elems = append(elems, bson.D{{Key: "$elemMatch", Value: bson.D{
				{Key: "key", Value: sp.Key},
				{Key: "value", Value: bson.D{{Key: "$in", Value: CaseInsensitiveIn(sp.Values)}}},
			}}})
		}
		d = append(d, bson.E{Key: "specifications", Value: bson.D{{Key: "$all", Value: elems}}})
	}

	return d
}

// ObjectIDs converts hex id strings to ObjectIDs, silently dropping any
// that are not structurally valid. Resolution upstream guarantees validity,
// so a drop here only narrows an already-impossible match.
func ObjectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}

// IsValidID reports whether the value has the store's canonical id shape.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func priceRangeDoc(min, max *float64) bson.M {
	if min == nil && max == nil {
		return nil
	}
	rng := bson.M{}
	if min != nil {
		rng["$gte"] = *min
	}
	if max != nil {
		rng["$lte"] = *max
	}
	return rng
}

// CaseInsensitiveIn builds case-insensitive exact-match patterns for a
// value list, for use inside an $in.
func CaseInsensitiveIn(values []string) bson.A {
	out := bson.A{}
	for _, v := range values {
		out = append(out, primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"})
	}
	return out
}
