package shop

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
)

type CheckoutRequest struct {
	ShippingAddress models.Address       `json:"shippingAddress"`
	BillingAddress  *models.Address      `json:"billingAddress,omitempty"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	Notes           string               `json:"notes,omitempty"`
}

// CheckoutService turns a user's cart into an order.
type CheckoutService struct {
	carts    CartStore
	catalog  Catalog
	ledger   *Ledger
	pricing  Pricing
	activity *Activity
	logger   *zap.Logger
}

func NewCheckoutService(carts CartStore, catalog Catalog, ledger *Ledger, pricing Pricing, activity *Activity, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		catalog:  catalog,
		ledger:   ledger,
		pricing:  pricing,
		activity: activity,
		logger:   logger.Named("checkout"),
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (*models.Order, error) {
	if err := validateShippingAddress(req.ShippingAddress); err != nil {
		return nil, err
	}
	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCOD
	}
	if !method.Valid() {
		return nil, apperr.Validation("unknown payment method %q", method)
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	subtotal, err := sumLines(cart.Items)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      product.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Unit:      product.Unit,
		})
	}
	totals := s.pricing.Quote(subtotal)

	orderNumber, err := s.ledger.NextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	billing := req.ShippingAddress
	if req.BillingAddress != nil && !req.BillingAddress.IsZero() {
		billing = *req.BillingAddress
	}

	now := s.ledger.Now()
	eta := now.Add(s.pricing.DeliveryWindow)
	order := &models.Order{
		OrderNumber:       orderNumber,
		UserID:            userID,
		Items:             items,
		ShippingAddress:   req.ShippingAddress,
		BillingAddress:    billing,
		Subtotal:          totals.Subtotal,
		ShippingCost:      totals.ShippingCost,
		Tax:               totals.Tax,
		Discount:          totals.Discount,
		Total:             totals.Total,
		PaymentMethod:     method,
		PaymentStatus:     models.PaymentStatusPending,
		OrderStatus:       models.OrderStatusPending,
		EstimatedDelivery: &eta,
		Notes:             req.Notes,
		CreatedAt:         now,
		TrackingEvents: []models.TrackingEvent{{
			Status:      "Order Placed",
			Description: "Your order has been placed successfully",
			Location:    "Online",
			Timestamp:   now,
		}},
	}

	created, err := s.ledger.Create(ctx, order)
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Wrap(apperr.KindTransient, err, "order number already taken, retry checkout")
		}
		return nil, err
	}

	if err := s.carts.Delete(ctx, userID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("user_id", userID), zap.String("order_number", created.OrderNumber), zap.Error(err))
	}

	s.logger.Info("Order placed",
		zap.String("order_number", created.OrderNumber),
		zap.String("user_id", userID),
		zap.Int64("total", created.Total),
		zap.String("payment_method", string(method)))

	s.activity.record("order_placed", created, EventOrderPlaced, noticeConfirmation, map[string]interface{}{
		"total":          created.Total,
		"payment_method": string(method),
		"items":          len(created.Items),
	})
	return created, nil
}

func validateShippingAddress(a models.Address) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", a.Name},
		{"street", a.Street},
		{"city", a.City},
		{"pincode", a.Pincode},
		{"phone", a.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("shipping address is missing %s", strings.Join(missing, ", "))
	}
	return nil
}
