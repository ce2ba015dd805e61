package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/auth"
	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
	"github.com/example/charcoalshop/pkg/shop/shoptest"
)

var authCfg = &config.AuthConfig{JWTSecret: "rpc-secret", TokenTTL: time.Hour}

type rpcFixture struct {
	orders *shoptest.OrderStore
	lis    *bufconn.Listener
}

func newRPCFixture(t *testing.T) *rpcFixture {
	t.Helper()
	logger := zap.NewNop()
	orders := shoptest.NewOrderStore()
	require.NoError(t, orders.Insert(context.Background(), &models.Order{
		OrderNumber:   "MC260300001",
		UserID:        "user-1",
		Items:         []models.OrderItem{{ProductID: "p1", Name: "Steam Coal", Price: 100, Quantity: 10, Unit: "kg"}},
		Subtotal:      1000,
		ShippingCost:  500,
		Tax:           180,
		Total:         1680,
		PaymentMethod: models.PaymentMethodCOD,
		PaymentStatus: models.PaymentStatusPending,
		OrderStatus:   models.OrderStatusConfirmed,
		TrackingEvents: []models.TrackingEvent{
			{Status: "Order Placed", Description: "Your order has been placed successfully", Location: "Online"},
		},
	}))

	ledger := shop.NewLedger(orders, logger)
	payments := shop.NewPaymentService(ledger, shop.PaymentSettings{KeySecret: "k", DefaultLocation: "Bengaluru"}, nil, logger)

	srv, _ := NewServer(NewOrderServer(ledger, payments, logger), authCfg, logger)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return &rpcFixture{orders: orders, lis: lis}
}

func (f *rpcFixture) dialOptions() []grpc.DialOption {
	return []grpc.DialOption{grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return f.lis.DialContext(ctx)
	})}
}

func (f *rpcFixture) client(t *testing.T, role string) *OrderClient {
	t.Helper()
	token, err := auth.GenerateToken(authCfg, "staff-1", role)
	require.NoError(t, err)
	c, err := Dial("passthrough:///bufnet", token, f.dialOptions()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOrderServiceAdminOperations(t *testing.T) {
	f := newRPCFixture(t)
	c := f.client(t, models.RoleAdmin)
	ctx := context.Background()

	view, err := c.TrackOrder(ctx, "MC260300001")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, view.OrderStatus)
	assert.Equal(t, []models.TrackingItem{{Name: "Steam Coal"}}, view.Items)

	order, err := c.UpdateOrderStatus(ctx, "MC260300001", shop.StatusUpdate{
		Status:         models.OrderStatusShipped,
		TrackingNumber: "TRK-9",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, order.OrderStatus)
	assert.Equal(t, "TRK-9", order.TrackingNumber)
	assert.Equal(t, int64(1680), order.Total)
	require.Len(t, order.TrackingEvents, 2)
	assert.Equal(t, "Shipped", order.TrackingEvents[1].Status)
	assert.Equal(t, "Bengaluru", order.TrackingEvents[1].Location)

	order, err = c.AppendTrackingEvent(ctx, "MC260300001", models.TrackingEvent{Status: "In transit", Location: "Hosur"})
	require.NoError(t, err)
	assert.Len(t, order.TrackingEvents, 3)

	_, err = c.TrackOrder(ctx, "MC000000000")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = c.UpdateOrderStatus(ctx, "MC260300001", shop.StatusUpdate{Status: "lost"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestOrderServiceRequiresAdmin(t *testing.T) {
	f := newRPCFixture(t)
	ctx := context.Background()

	_, err := f.client(t, models.RoleCustomer).TrackOrder(ctx, "MC260300001")
	assert.True(t, apperr.Is(err, apperr.KindAuthorization), "got %v", err)

	anonymous, err := Dial("passthrough:///bufnet", "", f.dialOptions()...)
	require.NoError(t, err)
	defer anonymous.Close()
	_, err = anonymous.TrackOrder(ctx, "MC260300001")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication), "got %v", err)

	assert.Len(t, f.orders.Snapshot("MC260300001").TrackingEvents, 1)
}

func TestHealthIsPublic(t *testing.T) {
	f := newRPCFixture(t)
	conn, err := grpc.NewClient("passthrough:///bufnet", append(f.dialOptions(), grpc.WithTransportCredentials(insecure.NewCredentials()))...)
	require.NoError(t, err)
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
