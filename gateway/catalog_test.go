package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/repository"
	"github.com/example/charcoalshop/pkg/shop"
)

type fakeProductLister struct {
	last     repository.ProductQuery
	products []*models.Product
	total    int64
}

func (f *fakeProductLister) List(_ context.Context, q repository.ProductQuery) ([]*models.Product, int64, error) {
	f.last = q
	return f.products, f.total, nil
}

func TestListProducts(t *testing.T) {
	e := newTestEnv(t)
	lister := &fakeProductLister{products: []*models.Product{e.product}, total: 30}
	e.gw.services.Products = lister

	t.Run("defaults", func(t *testing.T) {
		code, resp := e.do(t, http.MethodGet, "/api/products", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, repository.ProductQuery{Page: 1, Limit: 12}, lister.last)

		var page shop.Page
		require.NoError(t, json.Unmarshal(resp.Data["pagination"], &page))
		assert.Equal(t, shop.Page{Page: 1, Limit: 12, Total: 30, Pages: 3}, page)

		var products []models.Product
		require.NoError(t, json.Unmarshal(resp.Data["products"], &products))
		require.Len(t, products, 1)
		assert.Equal(t, "coconut-shell-charcoal", products[0].Slug)
	})

	t.Run("filters pass through", func(t *testing.T) {
		code, _ := e.do(t, http.MethodGet,
			"/api/products?category=Powder&search=bbq&sort=price_asc&page=2&limit=50", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, repository.ProductQuery{
			Category: models.Category("Powder"),
			Search:   "bbq",
			Sort:     "price_asc",
			Page:     2,
			Limit:    50,
		}, lister.last)
	})

	t.Run("oversized limit falls back to default", func(t *testing.T) {
		code, resp := e.do(t, http.MethodGet, "/api/products?limit=500&page=0", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, int64(12), lister.last.Limit)
		assert.Equal(t, int64(1), lister.last.Page)

		var page shop.Page
		require.NoError(t, json.Unmarshal(resp.Data["pagination"], &page))
		assert.Equal(t, int64(12), page.Limit)
	})

	t.Run("limit at cap is kept", func(t *testing.T) {
		code, _ := e.do(t, http.MethodGet, "/api/products?limit=100", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, int64(100), lister.last.Limit)
	})
}

func TestListProductsWithoutListerIsUnavailable(t *testing.T) {
	e := newTestEnv(t)
	code, resp := e.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, resp.Success)
}
