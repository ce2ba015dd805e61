package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/discovery"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
)

// ResolveTarget asks the registry for serviceName and falls back to fallback
// when discovery is unavailable or empty.
func ResolveTarget(ctx context.Context, disc *discovery.ServiceDiscovery, serviceName, fallback string, logger *zap.Logger) string {
	if disc == nil {
		return fallback
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	instances, err := disc.Discover(ctx, serviceName)
	if err != nil {
		logger.Info("Using default address", zap.String("service", serviceName), zap.String("address", fallback), zap.Error(err))
		return fallback
	}
	target := instances[0].Addr()
	logger.Info("Discovered service", zap.String("service", serviceName), zap.String("address", target))
	return target
}

// OrderClient calls the internal order service with a bearer token.
type OrderClient struct {
	conn  *grpc.ClientConn
	token string
}

func Dial(target, token string, opts ...grpc.DialOption) (*OrderClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to order service: %w", err)
	}
	return &OrderClient{conn: conn, token: token}, nil
}

func (c *OrderClient) invoke(ctx context.Context, method string, in, out interface{}) error {
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		st := status.Convert(err)
		return apperr.New(apperr.FromGRPCCode(st.Code()), "%s", st.Message())
	}
	return nil
}

func (c *OrderClient) TrackOrder(ctx context.Context, orderNumber string) (*models.TrackingView, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "TrackOrder", wrapperspb.String(orderNumber), out); err != nil {
		return nil, err
	}
	var view models.TrackingView
	if err := fromStruct(out, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *OrderClient) UpdateOrderStatus(ctx context.Context, orderNumber string, update shop.StatusUpdate) (*models.Order, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"orderNumber":    orderNumber,
		"status":         string(update.Status),
		"trackingNumber": update.TrackingNumber,
		"description":    update.Description,
		"location":       update.Location,
	})
	if err != nil {
		return nil, err
	}
	return c.callOrder(ctx, "UpdateOrderStatus", in)
}

func (c *OrderClient) AppendTrackingEvent(ctx context.Context, orderNumber string, event models.TrackingEvent) (*models.Order, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"orderNumber": orderNumber,
		"status":      event.Status,
		"description": event.Description,
		"location":    event.Location,
	})
	if err != nil {
		return nil, err
	}
	return c.callOrder(ctx, "AppendTrackingEvent", in)
}

func (c *OrderClient) callOrder(ctx context.Context, method string, in *structpb.Struct) (*models.Order, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	var order models.Order
	if err := fromStruct(out, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func fromStruct(s *structpb.Struct, dest interface{}) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *OrderClient) Close() error {
	return c.conn.Close()
}
