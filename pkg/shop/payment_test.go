package shop_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
)

func TestCreatePaymentIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 45, models.PaymentMethodRazorpay)

	intent, err := f.payments.CreatePaymentIntent(ctx, testUser, order.OrderNumber, 0, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.IntentID, "order_"))
	assert.Equal(t, int64(581000), intent.Amount)
	assert.Equal(t, "INR", intent.Currency)
	assert.Equal(t, "rzp_test_key", intent.KeyID)
	assert.Equal(t, order.OrderNumber, intent.OrderNumber)
	assert.Equal(t, intent.IntentID, f.orders.Snapshot(order.OrderNumber).ProviderOrderID)

	_, err = f.payments.CreatePaymentIntent(ctx, testUser, order.OrderNumber, 100, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.payments.CreatePaymentIntent(ctx, "user-2", order.OrderNumber, 0, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestVerifyPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 45, models.PaymentMethodRazorpay)
	intent, err := f.payments.CreatePaymentIntent(ctx, testUser, order.OrderNumber, order.Total, "INR")
	require.NoError(t, err)

	confirmation := shop.PaymentConfirmation{
		OrderNumber:       order.OrderNumber,
		ProviderOrderID:   intent.IntentID,
		ProviderPaymentID: "pay_001",
		Signature:         shop.SignPayment(testSecret, intent.IntentID, "pay_001"),
	}
	paid, err := f.payments.VerifyPayment(ctx, testUser, confirmation)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, "pay_001", paid.ProviderPaymentID)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, testNow, *paid.PaidAt)
	require.Len(t, paid.TrackingEvents, 2)
	assert.Equal(t, "Payment Confirmed", paid.TrackingEvents[1].Status)

	again, err := f.payments.VerifyPayment(ctx, testUser, confirmation)
	require.NoError(t, err)
	assert.Len(t, again.TrackingEvents, 2)

	other := confirmation
	other.ProviderPaymentID = "pay_002"
	other.Signature = shop.SignPayment(testSecret, intent.IntentID, "pay_002")
	_, err = f.payments.VerifyPayment(ctx, testUser, other)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.payments.CreatePaymentIntent(ctx, testUser, order.OrderNumber, 0, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	assert.Contains(t, f.publisher.Types(), shop.EventPaymentCaptured)
}

func TestVerifyPaymentRejectsTamperedSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 45, models.PaymentMethodRazorpay)
	intent, err := f.payments.CreatePaymentIntent(ctx, testUser, order.OrderNumber, 0, "")
	require.NoError(t, err)
	before := f.orders.Snapshot(order.OrderNumber)

	signature := shop.SignPayment(testSecret, intent.IntentID, "pay_001")
	_, err = f.payments.VerifyPayment(ctx, testUser, shop.PaymentConfirmation{
		OrderNumber:       order.OrderNumber,
		ProviderOrderID:   intent.IntentID,
		ProviderPaymentID: "pay_999",
		Signature:         signature,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
	assert.Equal(t, "signature mismatch", apperr.Message(err))
	assert.Equal(t, before, f.orders.Snapshot(order.OrderNumber))
}

func TestVerifyPaymentRejectsForeignIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 45, models.PaymentMethodRazorpay)
	_, err := f.payments.CreatePaymentIntent(ctx, testUser, order.OrderNumber, 0, "")
	require.NoError(t, err)

	_, err = f.payments.VerifyPayment(ctx, testUser, shop.PaymentConfirmation{
		OrderNumber:       order.OrderNumber,
		ProviderOrderID:   "order_other",
		ProviderPaymentID: "pay_001",
		Signature:         shop.SignPayment(testSecret, "order_other", "pay_001"),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, models.PaymentStatusPending, f.orders.Snapshot(order.OrderNumber).PaymentStatus)
}

func TestConfirmCashOnDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 10, models.PaymentMethodCOD)

	confirmed, err := f.payments.ConfirmCashOnDelivery(ctx, testUser, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, confirmed.OrderStatus)
	assert.Equal(t, models.PaymentStatusPending, confirmed.PaymentStatus)
	require.Len(t, confirmed.TrackingEvents, 2)
	assert.Equal(t, "Order Confirmed", confirmed.TrackingEvents[1].Status)
	assert.Equal(t, "Bengaluru Warehouse", confirmed.TrackingEvents[1].Location)

	again, err := f.payments.ConfirmCashOnDelivery(ctx, testUser, order.OrderNumber)
	require.NoError(t, err)
	assert.Len(t, again.TrackingEvents, 2)

	_, err = f.payments.ConfirmCashOnDelivery(ctx, "user-2", order.OrderNumber)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestConfirmCashOnDeliveryRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	upi := f.placeOrder(t, 10, models.PaymentMethodUPI)
	_, err := f.payments.ConfirmCashOnDelivery(ctx, testUser, upi.OrderNumber)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	cod := f.placeOrder(t, 10, models.PaymentMethodCOD)
	_, err = f.payments.UpdateStatus(ctx, cod.OrderNumber, shop.StatusUpdate{Status: models.OrderStatusShipped})
	require.NoError(t, err)
	_, err = f.payments.ConfirmCashOnDelivery(ctx, testUser, cod.OrderNumber)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 10, models.PaymentMethodCOD)

	updated, err := f.payments.UpdateStatus(ctx, order.OrderNumber, shop.StatusUpdate{
		Status:         models.OrderStatusOutForDelivery,
		TrackingNumber: "TRK123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, updated.OrderStatus)
	assert.Equal(t, "TRK123", updated.TrackingNumber)
	last := updated.TrackingEvents[len(updated.TrackingEvents)-1]
	assert.Equal(t, "Out for delivery", last.Status)
	assert.Equal(t, "Order status updated to out_for_delivery", last.Description)
	assert.Equal(t, "Bengaluru", last.Location)

	delivered, err := f.payments.UpdateStatus(ctx, order.OrderNumber, shop.StatusUpdate{
		Status:      models.OrderStatusDelivered,
		Description: "Handed to customer",
		Location:    "Whitefield",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, delivered.PaymentStatus)
	require.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, testNow, *delivered.DeliveredAt)
	assert.Equal(t, "Handed to customer", delivered.TrackingEvents[len(delivered.TrackingEvents)-1].Description)

	// Admin override has no transition guard.
	back, err := f.payments.UpdateStatus(ctx, order.OrderNumber, shop.StatusUpdate{Status: models.OrderStatusProcessing})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, back.OrderStatus)
	assert.Len(t, back.TrackingEvents, 4)

	_, err = f.payments.UpdateStatus(ctx, order.OrderNumber, shop.StatusUpdate{Status: "lost"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.payments.UpdateStatus(ctx, "MC000000000", shop.StatusUpdate{Status: models.OrderStatusShipped})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateStatusAuditsReopenedOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 10, models.PaymentMethodCOD)

	_, err := f.payments.UpdateStatus(ctx, order.OrderNumber, shop.StatusUpdate{Status: models.OrderStatusDelivered})
	require.NoError(t, err)
	_, err = f.payments.UpdateStatus(ctx, order.OrderNumber, shop.StatusUpdate{Status: models.OrderStatusShipped})
	require.NoError(t, err)

	var updates []shop.AuditEntry
	for _, e := range f.auditor.Entries {
		if e.Action == "status_updated" {
			updates = append(updates, e)
		}
	}
	require.Len(t, updates, 2)
	assert.Equal(t, "pending", updates[0].Data["previous_status"])
	assert.Equal(t, false, updates[0].Data["reopened"])
	assert.Equal(t, "delivered", updates[1].Data["previous_status"])
	assert.Equal(t, true, updates[1].Data["reopened"])
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, models.OrderStatusDelivered.Terminal())
	assert.True(t, models.OrderStatusCancelled.Terminal())
	assert.False(t, models.OrderStatusShipped.Terminal())
	assert.False(t, models.OrderStatusPending.Terminal())
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Out for delivery", shop.StatusLabel(models.OrderStatusOutForDelivery))
	assert.Equal(t, "Shipped", shop.StatusLabel(models.OrderStatusShipped))
	assert.Equal(t, "", shop.StatusLabel(""))
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 10, models.PaymentMethodCOD)

	cancelled, err := f.payments.CancelOrder(ctx, testUser, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.OrderStatus)
	last := cancelled.TrackingEvents[len(cancelled.TrackingEvents)-1]
	assert.Equal(t, "Cancelled", last.Status)
	assert.Equal(t, "Order has been cancelled by customer", last.Description)

	notes := f.notifier.Notifications()
	require.Len(t, notes, 2)
	assert.Equal(t, "cancellation", notes[1].Kind)

	_, err = f.payments.CancelOrder(ctx, testUser, order.OrderNumber)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCancelShippedOrderIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 10, models.PaymentMethodCOD)
	_, err := f.payments.UpdateStatus(ctx, order.OrderNumber, shop.StatusUpdate{Status: models.OrderStatusShipped})
	require.NoError(t, err)
	before := f.orders.Snapshot(order.OrderNumber)

	_, err = f.payments.CancelOrder(ctx, testUser, order.OrderNumber)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, "cannot cancel at this stage", apperr.Message(err))
	assert.Equal(t, before, f.orders.Snapshot(order.OrderNumber))
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 10, models.PaymentMethodCOD)

	receipt, err := f.payments.Receipt(ctx, testUser, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, "INV-"+order.OrderNumber, receipt.InvoiceNumber)
	assert.Equal(t, "Manvith Charcoal", receipt.Company.Name)
	assert.Equal(t, order.Total, receipt.Order.Total)

	_, err = f.payments.Receipt(ctx, "user-2", order.OrderNumber)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
