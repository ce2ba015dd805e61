package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
)

const auditPageSize = 50

func (g *Gateway) createOrder(c *gin.Context) {
	var req shop.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, badRequest(err))
		return
	}
	order, err := g.services.Checkout.Checkout(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	if g.services.Metrics != nil {
		g.services.Metrics.OrdersPlaced.WithLabelValues(string(order.PaymentMethod)).Inc()
	}
	ok(c, http.StatusCreated, "Order placed successfully", gin.H{"order": order})
}

func (g *Gateway) listOrders(c *gin.Context) {
	page, limit := pagingQuery(c)
	orders, p, err := g.services.Ledger.List(c.Request.Context(), currentUserID(c),
		models.OrderStatus(c.Query("status")), page, limit)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"orders": orders, "pagination": p})
}

func (g *Gateway) getOrder(c *gin.Context) {
	order, err := g.services.Ledger.Find(c.Request.Context(), c.Param("orderNumber"), currentUserID(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"order": order})
}

func (g *Gateway) trackOrder(c *gin.Context) {
	view, err := g.services.Ledger.Track(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"order": view})
}

func (g *Gateway) cancelOrder(c *gin.Context) {
	order, err := g.services.Payments.CancelOrder(c.Request.Context(), currentUserID(c), c.Param("orderNumber"))
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Order cancelled successfully", gin.H{"order": order})
}

func (g *Gateway) updateOrderStatus(c *gin.Context) {
	var req shop.StatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, badRequest(err))
		return
	}
	order, err := g.services.Payments.UpdateStatus(c.Request.Context(), c.Param("orderNumber"), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	g.logger.Info("Admin status change",
		zap.String("admin_id", currentUserID(c)),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.OrderStatus)))
	ok(c, http.StatusOK, "Order status updated", gin.H{"order": order})
}

func (g *Gateway) appendTrackingEvent(c *gin.Context) {
	var event models.TrackingEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		g.fail(c, badRequest(err))
		return
	}
	order, err := g.services.Ledger.AppendTrackingEvent(c.Request.Context(), c.Param("orderNumber"), event)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Tracking event added", gin.H{"order": order})
}

func (g *Gateway) orderAudit(c *gin.Context) {
	if g.services.Audit == nil {
		g.fail(c, apperr.Transient("audit log unavailable"))
		return
	}
	logs, err := g.services.Audit.GetAuditLogs(c.Request.Context(), c.Param("orderNumber"), auditPageSize)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"logs": logs})
}
