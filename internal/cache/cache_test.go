package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ngumi22/bds-sub000/internal/cache"
	"github.com/Ngumi22/bds-sub000/internal/domain"
)

func TestKeyIgnoresReferenceOrder(t *testing.T) {
	a := domain.ResolvedParams{
		SearchParams: domain.SearchParams{Brands: []string{"acme", "zenith"}},
		BrandIDs:     []string{"b1", "b2"},
	}
	b := domain.ResolvedParams{
		SearchParams: domain.SearchParams{Brands: []string{"zenith", "acme"}},
		BrandIDs:     []string{"b2", "b1"},
	}

	assert.Equal(t, cache.Key("search", a), cache.Key("search", b))
}

func TestKeyDistinguishesParams(t *testing.T) {
	a := domain.ResolvedParams{SearchParams: domain.SearchParams{Page: 1}}
	b := domain.ResolvedParams{SearchParams: domain.SearchParams{Page: 2}}

	assert.NotEqual(t, cache.Key("search", a), cache.Key("search", b))
}

func TestKeyDoesNotMutateInput(t *testing.T) {
	p := domain.ResolvedParams{
		SearchParams: domain.SearchParams{Brands: []string{"zenith", "acme"}},
	}
	cache.Key("search", p)

	assert.Equal(t, []string{"zenith", "acme"}, p.Brands)
}

func TestMemoryCacheComputesOnceWithinTTL(t *testing.T) {
	c := cache.NewMemoryCache()
	var calls atomic.Int32

	fn := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("value"), nil
	}

	for i := 0; i < 3; i++ {
		val, err := c.GetOrCompute(context.Background(), "k", []string{cache.TagProducts}, time.Minute, fn)
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), val)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestMemoryCacheInvalidateByTag(t *testing.T) {
	c := cache.NewMemoryCache()
	var calls atomic.Int32

	fn := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("value"), nil
	}

	_, err := c.GetOrCompute(context.Background(), "k", []string{cache.TagCategory("c1")}, time.Minute, fn)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(context.Background(), cache.TagCategory("c1")))

	_, err = c.GetOrCompute(context.Background(), "k", []string{cache.TagCategory("c1")}, time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemoryCacheInvalidateOtherTagKeepsEntry(t *testing.T) {
	c := cache.NewMemoryCache()
	var calls atomic.Int32

	fn := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("value"), nil
	}

	_, err := c.GetOrCompute(context.Background(), "k", []string{cache.TagCategory("c1")}, time.Minute, fn)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(context.Background(), cache.TagCategory("c2")))

	_, err = c.GetOrCompute(context.Background(), "k", []string{cache.TagCategory("c1")}, time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMemoryCacheDoesNotCacheErrors(t *testing.T) {
	c := cache.NewMemoryCache()
	var calls atomic.Int32

	fail := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return nil, assert.AnError
	}

	_, err := c.GetOrCompute(context.Background(), "k", nil, time.Minute, fail)
	require.Error(t, err)

	_, err = c.GetOrCompute(context.Background(), "k", nil, time.Minute, fail)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemoryCacheCoalescesConcurrentMisses(t *testing.T) {
	c := cache.NewMemoryCache()
	var calls atomic.Int32
	gate := make(chan struct{})

	fn := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-gate
		return []byte("value"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			val, err := c.GetOrCompute(context.Background(), "k", nil, time.Minute, fn)
			assert.NoError(t, err)
			assert.Equal(t, []byte("value"), val)
		}()
	}

	// Give the goroutines time to pile onto the flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}
