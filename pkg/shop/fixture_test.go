package shop_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
	"github.com/example/charcoalshop/pkg/shop/shoptest"
)

const (
	testUser   = "user-1"
	testSecret = "test_secret"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	carts     *shoptest.CartStore
	catalog   *shoptest.Catalog
	orders    *shoptest.OrderStore
	cache     *shoptest.TrackingCache
	notifier  *shoptest.Notifier
	auditor   *shoptest.Auditor
	publisher *shoptest.Publisher

	ledger   *shop.Ledger
	cart     *shop.CartService
	checkout *shop.CheckoutService
	payments *shop.PaymentService

	product *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()

	f := &fixture{
		carts:     shoptest.NewCartStore(),
		orders:    shoptest.NewOrderStore(),
		cache:     shoptest.NewTrackingCache(),
		notifier:  &shoptest.Notifier{},
		auditor:   &shoptest.Auditor{},
		publisher: &shoptest.Publisher{},
		product: &models.Product{
			Slug:             "coconut-shell-charcoal",
			Name:             "Coconut Shell Charcoal",
			Category:         models.CategoryCoconutShell,
			Price:            100,
			Unit:             "kg",
			MinOrderQuantity: 10,
			MaxOrderQuantity: 10000,
			InStock:          true,
			IsActive:         true,
		},
	}
	f.catalog = shoptest.NewCatalog(f.product)

	activity := &shop.Activity{
		Users: shoptest.Users{
			testUser: {ID: testUser, Name: "Ravi", Email: "ravi@example.com", Role: models.RoleCustomer},
		},
		Notifier:  f.notifier,
		Auditor:   f.auditor,
		Publisher: f.publisher,
		Logger:    logger,
	}

	f.ledger = shop.NewLedger(f.orders, logger,
		shop.WithTrackingCache(f.cache),
		shop.WithLedgerClock(func() time.Time { return testNow }))
	f.cart = shop.NewCartService(f.carts, f.catalog, logger)
	f.checkout = shop.NewCheckoutService(f.carts, f.catalog, f.ledger, shop.DefaultPricing(), activity, logger)
	f.payments = shop.NewPaymentService(f.ledger, shop.PaymentSettings{
		KeyID:             "rzp_test_key",
		KeySecret:         testSecret,
		Currency:          "INR",
		DefaultLocation:   "Bengaluru",
		WarehouseLocation: "Bengaluru Warehouse",
		Company:           config.CompanyConfig{Name: "Manvith Charcoal", GST: "29BDOPN3292F1Z3"},
	}, activity, logger)
	return f
}

func (f *fixture) productID() string {
	return f.product.ID.Hex()
}

func shippingAddress() models.Address {
	return models.Address{
		Name:    "Ravi Kumar",
		Street:  "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
		Phone:   "9876543210",
	}
}

// placeOrder fills the cart with quantity units of the fixture product and checks out.
func (f *fixture) placeOrder(t *testing.T, quantity int64, method models.PaymentMethod) *models.Order {
	t.Helper()
	ctx := context.Background()
	_, err := f.cart.AddItem(ctx, testUser, f.productID(), quantity)
	require.NoError(t, err)

	order, err := f.checkout.Checkout(ctx, testUser, shop.CheckoutRequest{
		ShippingAddress: shippingAddress(),
		PaymentMethod:   method,
	})
	require.NoError(t, err)
	return order
}
