package shop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/models"
)

type PaymentSettings struct {
	KeyID             string
	KeySecret         string
	Currency          string
	DefaultLocation   string
	WarehouseLocation string
	Company           config.CompanyConfig
}

func PaymentSettingsFromConfig(cfg *config.Config) PaymentSettings {
	return PaymentSettings{
		KeyID:             cfg.Payment.KeyID,
		KeySecret:         cfg.Payment.KeySecret,
		Currency:          cfg.Payment.Currency,
		DefaultLocation:   cfg.Shop.DefaultLocation,
		WarehouseLocation: cfg.Shop.WarehouseLocation,
		Company:           cfg.Shop.Company,
	}
}

type PaymentIntent struct {
	IntentID    string `json:"orderId"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	KeyID       string `json:"key"`
	OrderNumber string `json:"orderNumber"`
}

type PaymentConfirmation struct {
	OrderNumber       string `json:"orderNumber"`
	ProviderOrderID   string `json:"razorpay_order_id"`
	ProviderPaymentID string `json:"razorpay_payment_id"`
	Signature         string `json:"razorpay_signature"`
}

type StatusUpdate struct {
	Status         models.OrderStatus `json:"status"`
	TrackingNumber string             `json:"trackingNumber,omitempty"`
	Description    string             `json:"description,omitempty"`
	Location       string             `json:"location,omitempty"`
}

type Receipt struct {
	InvoiceNumber string               `json:"invoiceNumber"`
	Order         *models.Order        `json:"order"`
	Company       config.CompanyConfig `json:"company"`
	GeneratedAt   time.Time            `json:"generatedAt"`
}

var (
	unpaid      = []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusFailed}
	cancellable = []models.OrderStatus{models.OrderStatusPending, models.OrderStatusConfirmed}
)

// PaymentService reconciles payments and drives order status transitions.
type PaymentService struct {
	ledger   *Ledger
	settings PaymentSettings
	activity *Activity
	logger   *zap.Logger
}

func NewPaymentService(ledger *Ledger, settings PaymentSettings, activity *Activity, logger *zap.Logger) *PaymentService {
	if settings.Currency == "" {
		settings.Currency = "INR"
	}
	return &PaymentService{
		ledger:   ledger,
		settings: settings,
		activity: activity,
		logger:   logger.Named("payment"),
	}
}

// CreatePaymentIntent registers a provider order id on the order. An amount of
// zero means the order total.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID, orderNumber string, amount int64, currency string) (*PaymentIntent, error) {
	order, err := s.ledger.Find(ctx, orderNumber, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, apperr.Conflict("order %s is already paid", orderNumber)
	}
	if order.OrderStatus == models.OrderStatusCancelled {
		return nil, apperr.Conflict("order %s is cancelled", orderNumber)
	}
	if amount != 0 && amount != order.Total {
		return nil, apperr.Validation("amount %d does not match order total %d", amount, order.Total)
	}
	if currency == "" {
		currency = s.settings.Currency
	}

	intentID := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = s.ledger.apply(ctx,
		OrderMatch{OrderNumber: orderNumber, UserID: userID, PaymentStatusIn: unpaid},
		OrderChange{ProviderOrderID: intentID})
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Conflict("order %s is already paid", orderNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store payment intent: %w", err)
	}

	s.logger.Info("Payment intent created", zap.String("order_number", orderNumber), zap.String("intent_id", intentID))
	return &PaymentIntent{
		IntentID:    intentID,
		Amount:      order.Total * 100,
		Currency:    currency,
		KeyID:       s.settings.KeyID,
		OrderNumber: orderNumber,
	}, nil
}

// VerifyPayment checks the provider signature before touching the store and
// marks the order paid. Replaying the same confirmation is a no-op.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID string, in PaymentConfirmation) (*models.Order, error) {
	if !VerifyPaymentSignature(s.settings.KeySecret, in.ProviderOrderID, in.ProviderPaymentID, in.Signature) {
		s.logger.Warn("Payment signature mismatch", zap.String("order_number", in.OrderNumber))
		return nil, apperr.Authentication("signature mismatch")
	}

	order, err := s.ledger.Find(ctx, in.OrderNumber, userID)
	if err != nil {
		return nil, err
	}
	if order.ProviderOrderID != in.ProviderOrderID {
		return nil, apperr.Validation("payment intent does not belong to order %s", in.OrderNumber)
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		if order.ProviderPaymentID == in.ProviderPaymentID {
			return order, nil
		}
		return nil, apperr.Conflict("order %s is already paid", in.OrderNumber)
	}

	paidAt := s.ledger.Now()
	updated, err := s.ledger.apply(ctx,
		OrderMatch{OrderNumber: in.OrderNumber, UserID: userID, PaymentStatusIn: unpaid},
		OrderChange{
			PaymentStatus:     models.PaymentStatusPaid,
			ProviderPaymentID: in.ProviderPaymentID,
			PaidAt:            &paidAt,
			Event: &models.TrackingEvent{
				Status:      "Payment Confirmed",
				Description: fmt.Sprintf("Payment of ₹%d received via Razorpay", order.Total),
				Location:    "Online",
			},
		})
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Conflict("order %s is already paid", in.OrderNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info("Payment verified", zap.String("order_number", in.OrderNumber), zap.String("payment_id", in.ProviderPaymentID))
	s.activity.record("payment_verified", updated, EventPaymentCaptured, noticeNone, map[string]interface{}{
		"provider_payment_id": in.ProviderPaymentID,
	})
	return updated, nil
}

func (s *PaymentService) ConfirmCashOnDelivery(ctx context.Context, userID, orderNumber string) (*models.Order, error) {
	order, err := s.ledger.Find(ctx, orderNumber, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != models.PaymentMethodCOD {
		return nil, apperr.Validation("order %s is not a cash on delivery order", orderNumber)
	}
	if order.OrderStatus == models.OrderStatusConfirmed {
		return order, nil
	}
	if order.OrderStatus != models.OrderStatusPending {
		return nil, apperr.Conflict("order %s cannot be confirmed in status %s", orderNumber, order.OrderStatus)
	}

	updated, err := s.ledger.apply(ctx,
		OrderMatch{OrderNumber: orderNumber, UserID: userID, StatusIn: []models.OrderStatus{models.OrderStatusPending}},
		OrderChange{
			OrderStatus:   models.OrderStatusConfirmed,
			PaymentStatus: models.PaymentStatusPending,
			Event: &models.TrackingEvent{
				Status:      "Order Confirmed",
				Description: "Your COD order has been confirmed and is being processed",
				Location:    s.settings.WarehouseLocation,
			},
		})
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Conflict("order %s changed status, retry", orderNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	s.activity.record("cod_confirmed", updated, EventOrderConfirmed, noticeNone, nil)
	return updated, nil
}

// UpdateStatus is the admin override. It applies any valid status without a
// transition check.
func (s *PaymentService) UpdateStatus(ctx context.Context, orderNumber string, in StatusUpdate) (*models.Order, error) {
	if !in.Status.Valid() {
		return nil, apperr.Validation("unknown order status %q", in.Status)
	}

	// Overrides are unconditional; the prior status only annotates the audit trail.
	previous, err := s.ledger.Find(ctx, orderNumber, "")
	if err != nil {
		return nil, err
	}
	reopened := previous.OrderStatus.Terminal() && !in.Status.Terminal()

	description := in.Description
	if description == "" {
		description = fmt.Sprintf("Order status updated to %s", in.Status)
	}
	location := in.Location
	if location == "" {
		location = s.settings.DefaultLocation
	}

	change := OrderChange{
		OrderStatus:    in.Status,
		TrackingNumber: in.TrackingNumber,
		Event: &models.TrackingEvent{
			Status:      StatusLabel(in.Status),
			Description: description,
			Location:    location,
		},
	}
	if in.Status == models.OrderStatusDelivered {
		now := s.ledger.Now()
		change.DeliveredAt = &now
		change.PaymentStatus = models.PaymentStatusPaid
	}

	updated, err := s.ledger.apply(ctx, OrderMatch{OrderNumber: orderNumber}, change)
	if err != nil {
		return nil, err
	}

	if reopened {
		s.logger.Warn("Closed order reopened",
			zap.String("order_number", orderNumber),
			zap.String("from", string(previous.OrderStatus)),
			zap.String("to", string(in.Status)))
	} else {
		s.logger.Info("Order status updated", zap.String("order_number", orderNumber), zap.String("status", string(in.Status)))
	}
	s.activity.record("status_updated", updated, EventOrderStatusChanged, noticeNone, map[string]interface{}{
		"status":          string(in.Status),
		"previous_status": string(previous.OrderStatus),
		"reopened":        reopened,
		"tracking_number": in.TrackingNumber,
	})
	return updated, nil
}

// StatusLabel renders a status for the tracking log: "out_for_delivery" becomes
// "Out for delivery".
func StatusLabel(status models.OrderStatus) string {
	s := strings.ReplaceAll(string(status), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (s *PaymentService) CancelOrder(ctx context.Context, userID, orderNumber string) (*models.Order, error) {
	order, err := s.ledger.Find(ctx, orderNumber, userID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus != models.OrderStatusPending && order.OrderStatus != models.OrderStatusConfirmed {
		return nil, apperr.Conflict("cannot cancel at this stage")
	}

	updated, err := s.ledger.apply(ctx,
		OrderMatch{OrderNumber: orderNumber, UserID: userID, StatusIn: cancellable},
		OrderChange{
			OrderStatus: models.OrderStatusCancelled,
			Event: &models.TrackingEvent{
				Status:      "Cancelled",
				Description: "Order has been cancelled by customer",
				Location:    "Online",
			},
		})
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Conflict("cannot cancel at this stage")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info("Order cancelled", zap.String("order_number", orderNumber), zap.String("user_id", userID))
	s.activity.record("order_cancelled", updated, EventOrderCancelled, noticeCancellation, nil)
	return updated, nil
}

func (s *PaymentService) Receipt(ctx context.Context, userID, orderNumber string) (*Receipt, error) {
	order, err := s.ledger.Find(ctx, orderNumber, userID)
	if err != nil {
		return nil, err
	}
	return &Receipt{
		InvoiceNumber: "INV-" + order.OrderNumber,
		Order:         order,
		Company:       s.settings.Company,
		GeneratedAt:   s.ledger.Now(),
	}, nil
}
