package event_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ngumi22/bds-sub000/internal/cache"
	"github.com/Ngumi22/bds-sub000/internal/event"
	"github.com/Ngumi22/bds-sub000/pkg/kafka"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func prime(t *testing.T, c cache.Cache, key string, tags []string) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	_, err := c.GetOrCompute(context.Background(), key, tags, time.Minute, func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("cached"), nil
	})
	require.NoError(t, err)
	return &calls
}

func recompute(t *testing.T, c cache.Cache, key string, calls *atomic.Int32) bool {
	t.Helper()
	before := calls.Load()
	_, err := c.GetOrCompute(context.Background(), key, nil, time.Minute, func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("cached"), nil
	})
	require.NoError(t, err)
	return calls.Load() > before
}

func TestHandleProductEventInvalidatesCategoryAndGlobal(t *testing.T) {
	c := cache.NewMemoryCache()
	inv := event.NewInvalidator(c, discardLogger())

	inCategory := prime(t, c, "k1", []string{cache.TagCategory("cat1")})
	global := prime(t, c, "k2", []string{cache.TagProducts})
	other := prime(t, c, "k3", []string{cache.TagCategory("cat2")})

	evt, err := kafka.NewEvent("product.updated", "p1", event.AggregateProduct, "catalog-service",
		map[string]string{"category_id": "cat1"})
	require.NoError(t, err)

	require.NoError(t, inv.Handle(context.Background(), evt))

	assert.True(t, recompute(t, c, "k1", inCategory))
	assert.True(t, recompute(t, c, "k2", global))
	assert.False(t, recompute(t, c, "k3", other))
}

func TestHandleCategoryEventUsesAggregateID(t *testing.T) {
	c := cache.NewMemoryCache()
	inv := event.NewInvalidator(c, discardLogger())

	tagged := prime(t, c, "k1", []string{cache.TagCategory("cat9")})

	evt, err := kafka.NewEvent("category.updated", "cat9", event.AggregateCategory, "catalog-service", nil)
	require.NoError(t, err)

	require.NoError(t, inv.Handle(context.Background(), evt))
	assert.True(t, recompute(t, c, "k1", tagged))
}

func TestHandleBrandEventInvalidatesGlobalOnly(t *testing.T) {
	c := cache.NewMemoryCache()
	inv := event.NewInvalidator(c, discardLogger())

	global := prime(t, c, "k1", []string{cache.TagProducts})

	evt, err := kafka.NewEvent("brand.deleted", "b1", event.AggregateBrand, "catalog-service", nil)
	require.NoError(t, err)

	require.NoError(t, inv.Handle(context.Background(), evt))
	assert.True(t, recompute(t, c, "k1", global))
}

func TestHandleUnknownAggregateIsIgnored(t *testing.T) {
	c := cache.NewMemoryCache()
	inv := event.NewInvalidator(c, discardLogger())

	global := prime(t, c, "k1", []string{cache.TagProducts})

	evt, err := kafka.NewEvent("order.created", "o1", "order", "order-service", nil)
	require.NoError(t, err)

	require.NoError(t, inv.Handle(context.Background(), evt))
	assert.False(t, recompute(t, c, "k1", global))
}

func TestTopicsCoverAllCatalogAggregates(t *testing.T) {
	topics := event.Topics()

	assert.Len(t, topics, 12)
	assert.Contains(t, topics, "ecommerce.product.updated")
	assert.Contains(t, topics, "ecommerce.category.deleted")
}
