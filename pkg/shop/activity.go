package shop

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/models"
)

const activityTimeout = 3 * time.Second

// Activity fans a completed order operation out to the collaborators that
// must never fail it: notifications, the audit trail and the event stream.
// Every field is optional.
type Activity struct {
	Users     UserDirectory
	Notifier  Notifier
	Auditor   Auditor
	Publisher EventPublisher
	Logger    *zap.Logger
}

func (a *Activity) logger() *zap.Logger {
	if a == nil || a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

type notice int

const (
	noticeNone notice = iota
	noticeConfirmation
	noticeCancellation
)

// record runs detached from the request context so a client disconnect does
// not drop the audit entry, but each call is still bounded.
func (a *Activity) record(action string, order *models.Order, eventType string, n notice, data map[string]interface{}) {
	if a == nil || order == nil {
		return
	}
	logger := a.logger().With(zap.String("order_number", order.OrderNumber), zap.String("action", action))

	if a.Auditor != nil {
		if data == nil {
			data = map[string]interface{}{}
		}
		data["user_id"] = order.UserID
		data["order_status"] = string(order.OrderStatus)
		data["payment_status"] = string(order.PaymentStatus)

		ctx, cancel := context.WithTimeout(context.Background(), activityTimeout)
		err := a.Auditor.Audit(ctx, AuditEntry{Action: action, EntityID: order.OrderNumber, Data: data})
		cancel()
		if err != nil {
			logger.Warn("Failed to write audit log", zap.Error(err))
		}
	}

	if a.Publisher != nil && eventType != "" {
		ctx, cancel := context.WithTimeout(context.Background(), activityTimeout)
		err := a.Publisher.Publish(ctx, OrderEvent{
			Type:          eventType,
			OrderNumber:   order.OrderNumber,
			UserID:        order.UserID,
			OrderStatus:   order.OrderStatus,
			PaymentStatus: order.PaymentStatus,
			Total:         order.Total,
			OccurredAt:    order.UpdatedAt,
		})
		cancel()
		if err != nil {
			logger.Warn("Failed to publish order event", zap.String("event", eventType), zap.Error(err))
		}
	}

	if n != noticeNone {
		a.notify(logger, order, n)
	}
}

func (a *Activity) notify(logger *zap.Logger, order *models.Order, n notice) {
	if a.Notifier == nil || a.Users == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), activityTimeout)
	defer cancel()

	user, err := a.Users.GetUser(ctx, order.UserID)
	if err != nil {
		logger.Warn("Skipping notification, user lookup failed", zap.String("user_id", order.UserID), zap.Error(err))
		return
	}

	switch n {
	case noticeConfirmation:
		err = a.Notifier.SendOrderConfirmation(ctx, order, user)
	case noticeCancellation:
		err = a.Notifier.SendOrderCancellation(ctx, order, user)
	}
	if err != nil {
		logger.Warn("Failed to queue notification", zap.Error(err))
	}
}
