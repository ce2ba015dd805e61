package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity"`
}

type updateCartRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int64  `json:"quantity"`
}

func (g *Gateway) getCart(c *gin.Context) {
	cart, err := g.services.Cart.GetCart(c.Request.Context(), currentUserID(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"cart": cart})
}

func (g *Gateway) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, badRequest(err))
		return
	}
	cart, err := g.services.Cart.AddItem(c.Request.Context(), currentUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Item added to cart", gin.H{"cart": cart})
}

func (g *Gateway) updateCartItem(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, badRequest(err))
		return
	}
	cart, err := g.services.Cart.UpdateItem(c.Request.Context(), currentUserID(c), req.ItemID, req.Quantity)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Cart updated", gin.H{"cart": cart})
}

func (g *Gateway) removeCartItem(c *gin.Context) {
	cart, err := g.services.Cart.RemoveItem(c.Request.Context(), currentUserID(c), c.Param("itemId"))
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Item removed from cart", gin.H{"cart": cart})
}

func (g *Gateway) clearCart(c *gin.Context) {
	if err := g.services.Cart.Clear(c.Request.Context(), currentUserID(c)); err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Cart cleared", nil)
}
