package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/shop"
)

type paymentIntentRequest struct {
	OrderNumber string `json:"orderNumber" binding:"required"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

type orderNumberRequest struct {
	OrderNumber string `json:"orderNumber" binding:"required"`
}

func (g *Gateway) createPaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, badRequest(err))
		return
	}
	intent, err := g.services.Payments.CreatePaymentIntent(c.Request.Context(), currentUserID(c), req.OrderNumber, req.Amount, req.Currency)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", intent)
}

func (g *Gateway) verifyPayment(c *gin.Context) {
	var req shop.PaymentConfirmation
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, badRequest(err))
		return
	}
	order, err := g.services.Payments.VerifyPayment(c.Request.Context(), currentUserID(c), req)
	g.countVerification(err)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Payment verified successfully", gin.H{"order": order})
}

func (g *Gateway) countVerification(err error) {
	if g.services.Metrics == nil {
		return
	}
	outcome := "verified"
	switch {
	case err == nil:
	case apperr.Is(err, apperr.KindAuthentication):
		outcome = "bad_signature"
	case apperr.Is(err, apperr.KindConflict):
		outcome = "conflict"
	default:
		outcome = "error"
	}
	g.services.Metrics.Verifications.WithLabelValues(outcome).Inc()
}

func (g *Gateway) confirmCOD(c *gin.Context) {
	var req orderNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, badRequest(err))
		return
	}
	order, err := g.services.Payments.ConfirmCashOnDelivery(c.Request.Context(), currentUserID(c), req.OrderNumber)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "COD order confirmed", gin.H{"order": order})
}

func (g *Gateway) receipt(c *gin.Context) {
	receipt, err := g.services.Payments.Receipt(c.Request.Context(), currentUserID(c), c.Param("orderNumber"))
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"receipt": receipt})
}
