// Package cache provides tagged result caching for search responses. Every
// entry is keyed by a digest of the normalized resolved parameters and
// registered under invalidation tags; catalog change events later blow away
// whole tags at once. Concurrent misses for one key are coalesced so a cold
// popular query computes once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Ngumi22/bds-sub000/internal/domain"
)

// ComputeFunc produces the value for a key on a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Cache is the tagged read-through cache contract.
type Cache interface {
	// GetOrCompute returns the cached value for key, computing and storing
	// it under the given tags on a miss. Compute errors are returned, never
	// cached.
	GetOrCompute(ctx context.Context, key string, tags []string, ttl time.Duration, fn ComputeFunc) ([]byte, error)
	// Invalidate drops every entry registered under the tag.
	Invalidate(ctx context.Context, tag string) error
}

// TagProducts marks entries invalidated by any product change.
const TagProducts = "products"

// TagCategory returns the tag for entries scoped to one category.
func TagCategory(id string) string {
	return "category:" + id
}

// Key derives the cache key for resolved parameters. Raw reference fields
// are dropped in favor of the canonical ids they resolved to, and id lists
// are sorted before hashing, so neither reference spelling nor parameter
// order splits the cache.
func Key(prefix string, p domain.ResolvedParams) string {
	payload, err := json.Marshal(normalize(p))
	if err != nil {
		// ResolvedParams is plain data; marshaling cannot fail in practice.
		payload = []byte(fmt.Sprintf("%+v", p))
	}
	sum := sha256.Sum256(payload)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

func normalize(p domain.ResolvedParams) domain.ResolvedParams {
	p.Category = ""
	p.SubCategories = nil
	p.Brands = nil
	p.Collections = nil
	p.StockStatuses = sortedClone(p.StockStatuses)
	p.CategoryClosure = sortedClone(p.CategoryClosure)
	p.SubCategoryIDs = sortedClone(p.SubCategoryIDs)
	p.BrandIDs = sortedClone(p.BrandIDs)
	p.CollectionIDs = sortedClone(p.CollectionIDs)

	specs := make([]domain.SpecificationFilter, len(p.Specifications))
	for i, s := range p.Specifications {
		specs[i] = domain.SpecificationFilter{Key: s.Key, Values: sortedClone(s.Values)}
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Key < specs[j].Key })
	p.Specifications = specs

	return p
}

func sortedClone(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
