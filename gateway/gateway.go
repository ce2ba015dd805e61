package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/metrics"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/repository"
	"github.com/example/charcoalshop/pkg/shop"
)

type ProductLister interface {
	List(ctx context.Context, q repository.ProductQuery) ([]*models.Product, int64, error)
}

type AuditReader interface {
	GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*repository.AuditLog, error)
}

// Services are the collaborators the REST handlers call into.
type Services struct {
	Cart     *shop.CartService
	Checkout *shop.CheckoutService
	Ledger   *shop.Ledger
	Payments *shop.PaymentService
	Catalog  shop.Catalog
	Products ProductLister
	Audit    AuditReader
	// Ping reports storage health for /api/health. Optional.
	Ping    func(ctx context.Context) error
	Metrics *metrics.Metrics
}

type Gateway struct {
	config   *config.Config
	services Services
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
}

func NewGateway(cfg *config.Config, services Services, logger *zap.Logger) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))
	if services.Metrics != nil {
		router.Use(services.Metrics.Middleware())
	}

	g := &Gateway{
		config:   cfg,
		services: services,
		logger:   logger,
		router:   router,
	}
	g.setupRoutes()
	return g
}

func (g *Gateway) setupRoutes() {
	user := g.requireAuth()
	admin := g.requireAdmin()

	api := g.router.Group("/api")
	{
		api.GET("/health", g.health)

		products := api.Group("/products")
		{
			products.GET("", g.listProducts)
			products.GET("/:slug", g.getProduct)
		}

		cart := api.Group("/cart", user)
		{
			cart.GET("", g.getCart)
			cart.POST("/add", g.addToCart)
			cart.PUT("/update", g.updateCartItem)
			cart.DELETE("/remove/:itemId", g.removeCartItem)
			cart.DELETE("/clear", g.clearCart)
		}

		orders := api.Group("/orders")
		{
			orders.GET("/track/:orderNumber", g.trackOrder)
			orders.POST("", user, g.createOrder)
			orders.GET("", user, g.listOrders)
			orders.GET("/:orderNumber", user, g.getOrder)
			orders.PUT("/:orderNumber/cancel", user, g.cancelOrder)
			orders.PUT("/:orderNumber/status", user, admin, g.updateOrderStatus)
			orders.POST("/:orderNumber/events", user, admin, g.appendTrackingEvent)
			orders.GET("/:orderNumber/audit", user, admin, g.orderAudit)
		}

		payments := api.Group("/payments", user)
		{
			payments.POST("/create-order", g.createPaymentIntent)
			payments.POST("/verify", g.verifyPayment)
			payments.POST("/cod-confirm", g.confirmCOD)
			payments.GET("/receipt/:orderNumber", g.receipt)
		}
	}

	if g.services.Metrics != nil {
		g.router.GET("/metrics", gin.WrapH(g.services.Metrics.Handler()))
	}
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Handler exposes the router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	addr := g.config.Gateway.Addr()
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.logger.Info("Gateway starting", zap.String("address", addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

func (g *Gateway) health(c *gin.Context) {
	if g.services.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := g.services.Ping(ctx); err != nil {
			g.logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "message": "database unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Manvith Charcoal API is running"})
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if id, ok := identity(c); ok {
			fields = append(fields, zap.String("user_id", id.UserID))
		}
		logger.Info("HTTP request", fields...)
	}
}
