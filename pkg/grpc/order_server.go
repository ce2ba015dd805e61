package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/auth"
	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
)

const ServiceName = "shop.v1.OrderService"

// OrderService is the internal operations API used by staff tooling.
type OrderService interface {
	TrackOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AppendTrackingEvent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type OrderServer struct {
	ledger   *shop.Ledger
	payments *shop.PaymentService
	logger   *zap.Logger
}

func NewOrderServer(ledger *shop.Ledger, payments *shop.PaymentService, logger *zap.Logger) *OrderServer {
	return &OrderServer{ledger: ledger, payments: payments, logger: logger.Named("order-rpc")}
}

func (s *OrderServer) TrackOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	orderNumber := strings.TrimSpace(req.GetValue())
	if orderNumber == "" {
		return nil, toStatus(apperr.Validation("order number is required"))
	}
	view, err := s.ledger.Track(ctx, orderNumber)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(view)
}

func (s *OrderServer) UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := req.GetFields()
	orderNumber := stringField(f, "orderNumber")
	if orderNumber == "" {
		return nil, toStatus(apperr.Validation("orderNumber is required"))
	}
	order, err := s.payments.UpdateStatus(ctx, orderNumber, shop.StatusUpdate{
		Status:         models.OrderStatus(stringField(f, "status")),
		TrackingNumber: stringField(f, "trackingNumber"),
		Description:    stringField(f, "description"),
		Location:       stringField(f, "location"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(order)
}

func (s *OrderServer) AppendTrackingEvent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := req.GetFields()
	orderNumber := stringField(f, "orderNumber")
	if orderNumber == "" {
		return nil, toStatus(apperr.Validation("orderNumber is required"))
	}
	order, err := s.ledger.AppendTrackingEvent(ctx, orderNumber, models.TrackingEvent{
		Status:      stringField(f, "status"),
		Description: stringField(f, "description"),
		Location:    stringField(f, "location"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(order)
}

func stringField(fields map[string]*structpb.Value, key string) string {
	if v, ok := fields[key]; ok {
		return strings.TrimSpace(v.GetStringValue())
	}
	return ""
}

// toStruct renders v through its JSON form so RPC clients see the same field
// names as the REST API.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func toStatus(err error) error {
	return status.Error(apperr.GRPCCode(err), apperr.Message(err))
}

func _OrderService_TrackOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderService).TrackOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/TrackOrder"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderService).TrackOrder(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_UpdateOrderStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderService).UpdateOrderStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/UpdateOrderStatus"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderService).UpdateOrderStatus(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_AppendTrackingEvent_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderService).AppendTrackingEvent(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/AppendTrackingEvent"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderService).AppendTrackingEvent(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TrackOrder", Handler: _OrderService_TrackOrder_Handler},
		{MethodName: "UpdateOrderStatus", Handler: _OrderService_UpdateOrderStatus_Handler},
		{MethodName: "AppendTrackingEvent", Handler: _OrderService_AppendTrackingEvent_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shop/v1/order.proto",
}

// NewServer builds the gRPC server with admin auth, request logging, health
// and reflection.
func NewServer(orders OrderService, authCfg *config.AuthConfig, logger *zap.Logger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor(logger.Named("grpc")),
		adminInterceptor(authCfg),
	))
	srv.RegisterService(&OrderServiceDesc, orders)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	return srv, hs
}

// Serve listens on addr until the server is stopped.
func Serve(srv *grpc.Server, addr string, logger *zap.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	logger.Info("Order service started", zap.String("address", addr))
	return srv.Serve(lis)
}

func adminInterceptor(authCfg *config.AuthConfig) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
			return handler(ctx, req)
		}

		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				header = values[0]
			}
		}
		id, err := auth.Authenticate(authCfg, header)
		if err != nil {
			return nil, toStatus(err)
		}
		if !id.IsAdmin() {
			return nil, toStatus(apperr.Authorization("admin access required"))
		}
		return handler(auth.WithIdentity(ctx, id), req)
	}
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}
		if code == codes.Internal || code == codes.Unknown {
			logger.Error("RPC failed", append(fields, zap.Error(err))...)
		} else {
			logger.Info("RPC", fields...)
		}
		return resp, err
	}
}
