package fetch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/fetch"
	"github.com/Ngumi22/bds-sub000/internal/query"
	"github.com/Ngumi22/bds-sub000/internal/repository/memory"
)

const (
	idMouse    = "64d000000000000000000001"
	idKeyboard = "64d000000000000000000002"
	idPad      = "64d000000000000000000003"
	idInactive = "64d000000000000000000004"
)

func seedProducts() *memory.ProductRepository {
	repo := memory.NewProductRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.Add(memory.Product{
		ID: idMouse, Name: "Wireless Mouse", Slug: "wireless-mouse",
		Price: 25, StockStatus: domain.StockInStock, IsActive: true,
		SalesCount: 50, CreatedAt: base,
	})
	repo.Add(memory.Product{
		ID: idKeyboard, Name: "Wireless Keyboard", Slug: "wireless-keyboard",
		Price: 45, StockStatus: domain.StockInStock, IsActive: true,
		SalesCount: 30, CreatedAt: base.Add(time.Hour),
	})
	repo.Add(memory.Product{
		ID: idPad, Name: "Mouse Pad", Slug: "mouse-pad", Description: "Cloth mouse pad",
		Price: 9, StockStatus: domain.StockInStock, IsActive: true,
		SalesCount: 10, CreatedAt: base.Add(2 * time.Hour),
	})
	repo.Add(memory.Product{
		ID: idInactive, Name: "Wired Mouse", Slug: "wired-mouse",
		Price: 15, StockStatus: domain.StockInStock, IsActive: false,
		SalesCount: 5, CreatedAt: base.Add(3 * time.Hour),
	})
	return repo
}

func TestFetchStructuredPageAndCount(t *testing.T) {
	f := fetch.New(seedProducts())
	plan := query.Plan{Sort: query.BuildSort(domain.SortPrice, domain.SortAsc, false)}

	page, err := f.Fetch(context.Background(), plan, "", 0, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.TotalCount)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Mouse Pad", page.Products[0].Name)
	assert.Equal(t, "Wireless Mouse", page.Products[1].Name)
}

func TestFetchStructuredSkipsInactive(t *testing.T) {
	f := fetch.New(seedProducts())

	page, err := f.Fetch(context.Background(), query.Plan{}, "", 0, 10)
	require.NoError(t, err)

	for _, p := range page.Products {
		assert.NotEqual(t, idInactive, p.ID)
	}
	assert.Equal(t, int64(3), page.TotalCount)
}

func TestFetchRankedRestoresRankOrder(t *testing.T) {
	f := fetch.New(seedProducts())

	// "mouse" ranks Wireless Mouse and Mouse Pad by name hits; hydration
	// returns them in id order, so the page must be re-ordered by rank.
	page, err := f.Fetch(context.Background(), query.Plan{}, "mouse", 0, 10)
	require.NoError(t, err)

	require.Len(t, page.Products, 2)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.Equal(t, idMouse, page.Products[0].ID)
	assert.Equal(t, idPad, page.Products[1].ID)
}

func TestFetchRankedMisspelledQueryStillMatches(t *testing.T) {
	f := fetch.New(seedProducts())

	page, err := f.Fetch(context.Background(), query.Plan{}, "wireles mouse", 0, 10)
	require.NoError(t, err)

	require.NotEmpty(t, page.Products)
	assert.Equal(t, idMouse, page.Products[0].ID)
}

func TestFetchRankedEmptyResult(t *testing.T) {
	f := fetch.New(seedProducts())

	page, err := f.Fetch(context.Background(), query.Plan{}, "xyzzy", 0, 10)
	require.NoError(t, err)

	assert.NotNil(t, page.Products)
	assert.Empty(t, page.Products)
	assert.Zero(t, page.TotalCount)
}

func TestFetchRankedAppliesFilter(t *testing.T) {
	f := fetch.New(seedProducts())
	min := 20.0
	plan := query.Plan{Filter: query.Filter{MinPrice: &min}}

	page, err := f.Fetch(context.Background(), plan, "mouse", 0, 10)
	require.NoError(t, err)

	require.Len(t, page.Products, 1)
	assert.Equal(t, idMouse, page.Products[0].ID)
	assert.Equal(t, int64(1), page.TotalCount)
}

func TestFetchUnsatisfiableFilterMatchesNothing(t *testing.T) {
	f := fetch.New(seedProducts())
	plan := query.Plan{Filter: query.Filter{Unsatisfiable: true}}

	page, err := f.Fetch(context.Background(), plan, "", 0, 10)
	require.NoError(t, err)

	assert.Empty(t, page.Products)
	assert.Zero(t, page.TotalCount)
}
