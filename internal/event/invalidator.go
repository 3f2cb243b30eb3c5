// Package event maps catalog change events onto cache invalidation. The
// search service never writes the catalog itself; upstream services publish
// change events and this consumer keeps cached search results from going
// stale past the TTL window.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Ngumi22/bds-sub000/internal/cache"
	"github.com/Ngumi22/bds-sub000/pkg/kafka"
)

// Aggregate types carried on catalog change events.
const (
	AggregateProduct    = "product"
	AggregateCategory   = "category"
	AggregateBrand      = "brand"
	AggregateCollection = "collection"
)

// productPayload is the slice of the product event body the invalidator
// cares about.
type productPayload struct {
	CategoryID string `json:"category_id"`
}

// Invalidator translates change events into cache tag invalidations.
type Invalidator struct {
	cache  cache.Cache
	logger *slog.Logger
}

// NewInvalidator creates an Invalidator over the result cache.
func NewInvalidator(c cache.Cache, logger *slog.Logger) *Invalidator {
	return &Invalidator{cache: c, logger: logger}
}

// Handle processes one catalog change event. Product and category events
// additionally drop the affected category's tag; every change drops the
// global product tag because facet counts can shift anywhere.
func (i *Invalidator) Handle(ctx context.Context, event *kafka.Event) error {
	tags := []string{cache.TagProducts}

	switch event.AggregateType {
	case AggregateProduct:
		var payload productPayload
		if err := event.UnmarshalData(&payload); err != nil {
			i.logger.WarnContext(ctx, "product event payload unreadable, invalidating globally",
				"event_id", event.EventID, "error", err)
		} else if payload.CategoryID != "" {
			tags = append(tags, cache.TagCategory(payload.CategoryID))
		}
	case AggregateCategory:
		tags = append(tags, cache.TagCategory(event.AggregateID))
	case AggregateBrand, AggregateCollection:
		// Global tag alone suffices; brand and collection filters are not
		// tagged per id.
	default:
		i.logger.DebugContext(ctx, "ignoring event for unknown aggregate",
			"aggregate_type", event.AggregateType, "event_type", event.EventType)
		return nil
	}

	for _, tag := range tags {
		if err := i.cache.Invalidate(ctx, tag); err != nil {
			return fmt.Errorf("invalidate tag %q: %w", tag, err)
		}
	}

	i.logger.InfoContext(ctx, "cache invalidated",
		"event_type", event.EventType,
		"aggregate_id", event.AggregateID,
		"tags", tags,
	)
	return nil
}

// Topics lists the catalog change topics the invalidator subscribes to.
func Topics() []string {
	topics := []string{}
	for _, domain := range []string{AggregateProduct, AggregateCategory, AggregateBrand, AggregateCollection} {
		for _, action := range []string{"created", "updated", "deleted"} {
			topics = append(topics, kafka.Topic(domain, action))
		}
	}
	return topics
}
