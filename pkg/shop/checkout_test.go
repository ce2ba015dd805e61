package shop_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
	"github.com/example/charcoalshop/pkg/shop/shoptest"
)

func TestCheckoutMaterializesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := f.placeOrder(t, 45, "")

	assert.Equal(t, "MC260300001", order.OrderNumber)
	assert.Equal(t, testUser, order.UserID)
	assert.Equal(t, int64(4500), order.Subtotal)
	assert.Equal(t, int64(500), order.ShippingCost)
	assert.Equal(t, int64(810), order.Tax)
	assert.Equal(t, int64(5810), order.Total)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, order.ShippingAddress, order.BillingAddress)

	require.Len(t, order.Items, 1)
	assert.Equal(t, models.OrderItem{
		ProductID: f.productID(),
		Name:      "Coconut Shell Charcoal",
		Price:     100,
		Quantity:  45,
		Unit:      "kg",
	}, order.Items[0])

	require.Len(t, order.TrackingEvents, 1)
	assert.Equal(t, "Order Placed", order.TrackingEvents[0].Status)
	assert.Equal(t, "Online", order.TrackingEvents[0].Location)

	require.NotNil(t, order.EstimatedDelivery)
	assert.Equal(t, testNow.Add(shop.DefaultPricing().DeliveryWindow), *order.EstimatedDelivery)

	_, err := f.carts.Get(ctx, testUser)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "cart should be removed")

	assert.Equal(t, []shoptest.Notification{{Kind: "confirmation", OrderNumber: "MC260300001", Email: "ravi@example.com"}}, f.notifier.Notifications())
	assert.Equal(t, []string{"order_placed"}, f.auditor.Actions())
	assert.Equal(t, []string{shop.EventOrderPlaced}, f.publisher.Types())

	stored := f.orders.Snapshot("MC260300001")
	require.NotNil(t, stored)
	assert.Equal(t, order.Total, stored.Total)
}

func TestCheckoutSequentialNumbers(t *testing.T) {
	f := newFixture(t)
	f.orders.SetSequence(41)

	first := f.placeOrder(t, 10, models.PaymentMethodUPI)
	second := f.placeOrder(t, 10, models.PaymentMethodUPI)

	assert.Equal(t, "MC260300042", first.OrderNumber)
	assert.Equal(t, "MC260300043", second.OrderNumber)
}

func TestCheckoutFreeShipping(t *testing.T) {
	f := newFixture(t)

	order := f.placeOrder(t, 120, models.PaymentMethodRazorpay)

	assert.Equal(t, int64(12000), order.Subtotal)
	assert.Equal(t, int64(0), order.ShippingCost)
	assert.Equal(t, int64(2160), order.Tax)
	assert.Equal(t, int64(14160), order.Total)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.Checkout(context.Background(), testUser, shop.CheckoutRequest{ShippingAddress: shippingAddress()})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "cart is empty", apperr.Message(err))
	assert.Nil(t, f.orders.Snapshot("MC260300001"))
}

func TestCheckoutRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddItem(ctx, testUser, f.productID(), 10)
	require.NoError(t, err)

	address := shippingAddress()
	address.Pincode = ""
	_, err = f.checkout.Checkout(ctx, testUser, shop.CheckoutRequest{ShippingAddress: address})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.checkout.Checkout(ctx, testUser, shop.CheckoutRequest{ShippingAddress: shippingAddress(), PaymentMethod: "barter"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.carts.Get(ctx, testUser)
	assert.NoError(t, err, "cart survives rejected checkout")
}

func TestCheckoutKeepsBillingAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddItem(ctx, testUser, f.productID(), 10)
	require.NoError(t, err)

	billing := shippingAddress()
	billing.Name = "Ravi Traders"
	billing.GSTNumber = "29ABCDE1234F1Z5"

	order, err := f.checkout.Checkout(ctx, testUser, shop.CheckoutRequest{
		ShippingAddress: shippingAddress(),
		BillingAddress:  &billing,
		PaymentMethod:   models.PaymentMethodBank,
		Notes:           "Deliver before noon",
	})
	require.NoError(t, err)
	assert.Equal(t, billing, order.BillingAddress)
	assert.Equal(t, "Deliver before noon", order.Notes)
}

func TestCheckoutDuplicateOrderNumberIsRetryable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.orders.Insert(ctx, &models.Order{OrderNumber: "MC260300001", UserID: "someone-else"}))

	_, err := f.cart.AddItem(ctx, testUser, f.productID(), 10)
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, testUser, shop.CheckoutRequest{ShippingAddress: shippingAddress()})
	require.Error(t, err)
	assert.True(t, apperr.Retryable(err))
	assert.Equal(t, 503, apperr.HTTPStatus(err))

	cart, err := f.carts.Get(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Empty(t, f.notifier.Notifications())

	order, err := f.checkout.Checkout(ctx, testUser, shop.CheckoutRequest{ShippingAddress: shippingAddress()})
	require.NoError(t, err)
	assert.Equal(t, "MC260300002", order.OrderNumber)
}

func TestCheckoutSurvivesCartDeleteFailure(t *testing.T) {
	f := newFixture(t)
	f.carts.DeleteErr = errors.New("connection reset")

	order := f.placeOrder(t, 10, models.PaymentMethodCOD)

	assert.Equal(t, "MC260300001", order.OrderNumber)
	assert.NotNil(t, f.orders.Snapshot(order.OrderNumber))
}

func TestCheckoutStorefrontScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	premium := &models.Product{
		Slug:             "coconut-shell-charcoal-premium",
		Name:             "Coconut Shell Charcoal Premium",
		Category:         models.CategoryCoconutShell,
		Price:            45,
		Unit:             "kg",
		MinOrderQuantity: 100,
		MaxOrderQuantity: 10000,
		IsActive:         true,
	}
	f.catalog.Put(premium)

	_, err := f.cart.AddItem(ctx, testUser, premium.ID.Hex(), 100)
	require.NoError(t, err)
	order, err := f.checkout.Checkout(ctx, testUser, shop.CheckoutRequest{ShippingAddress: shippingAddress()})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(45), order.Items[0].Price)
	assert.Equal(t, int64(100), order.Items[0].Quantity)
	assert.Equal(t, int64(4500), order.Subtotal)
	assert.Equal(t, int64(500), order.ShippingCost)
	assert.Equal(t, int64(810), order.Tax)
	assert.Equal(t, int64(5810), order.Total)
	assert.Equal(t, models.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
}
