package gateway

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/repository"
	"github.com/example/charcoalshop/pkg/shop"
)

const (
	defaultProductPage = 12
	maxProductPage     = 100
)

func (g *Gateway) listProducts(c *gin.Context) {
	if g.services.Products == nil {
		g.fail(c, apperr.Transient("product listing unavailable"))
		return
	}
	page, limit := pagingQuery(c)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxProductPage {
		limit = defaultProductPage
	}
	products, total, err := g.services.Products.List(c.Request.Context(), repository.ProductQuery{
		Category: models.Category(c.Query("category")),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{
		"products":   products,
		"pagination": shop.NewPage(page, limit, total),
	})
}

func (g *Gateway) getProduct(c *gin.Context) {
	product, err := g.services.Catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"product": product})
}

// pagingQuery leaves bad or missing values at zero for the service defaults.
func pagingQuery(c *gin.Context) (int64, int64) {
	page, _ := strconv.ParseInt(c.Query("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	return page, limit
}
