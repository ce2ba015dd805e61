package shop

import (
	"context"
	"time"

	"github.com/example/charcoalshop/pkg/models"
)

// CartStore persists one cart document per user.
type CartStore interface {
	// Get returns a NotFound error when the user has no cart.
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	// Delete is idempotent.
	Delete(ctx context.Context, userID string) error
}

type Catalog interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
}

// OrderStore is the durable side of the ledger. Implementations enforce a
// uniqueness constraint on the order number and report duplicates as Conflict.
type OrderStore interface {
	NextSequence(ctx context.Context) (int64, error)
	Insert(ctx context.Context, order *models.Order) error
	// Find matches by order number and, when userID is not empty, by owner.
	Find(ctx context.Context, orderNumber, userID string) (*models.Order, error)
	List(ctx context.Context, query OrderQuery) ([]*models.Order, int64, error)
	// Apply performs change on the single order selected by match and returns
	// the updated document, or NotFound when nothing matched.
	Apply(ctx context.Context, match OrderMatch, change OrderChange) (*models.Order, error)
}

type OrderQuery struct {
	UserID string
	Status models.OrderStatus
	Page   int64
	Limit  int64
}

type OrderMatch struct {
	OrderNumber     string
	UserID          string
	StatusIn        []models.OrderStatus
	PaymentStatusIn []models.PaymentStatus
}

// OrderChange lists the fields an update sets. Zero values are left untouched;
// Event, when present, is appended to the tracking log.
type OrderChange struct {
	OrderStatus       models.OrderStatus
	PaymentStatus     models.PaymentStatus
	ProviderOrderID   string
	ProviderPaymentID string
	TrackingNumber    string
	PaidAt            *time.Time
	DeliveredAt       *time.Time
	Event             *models.TrackingEvent
	UpdatedAt         time.Time
}

// TrackingCache holds public tracking views keyed by order number.
type TrackingCache interface {
	GetTracking(ctx context.Context, orderNumber string) (*models.TrackingView, error)
	CacheTracking(ctx context.Context, view *models.TrackingView) error
	InvalidateTracking(ctx context.Context, orderNumber string) error
}

type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Notifier delivers customer messages. Implementations must not block the
// caller on delivery.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order, user *models.User) error
	SendOrderCancellation(ctx context.Context, order *models.Order, user *models.User) error
}

type AuditEntry struct {
	Action   string
	EntityID string
	Data     map[string]interface{}
}

type Auditor interface {
	Audit(ctx context.Context, entry AuditEntry) error
}

type OrderEvent struct {
	Type          string
	OrderNumber   string
	UserID        string
	OrderStatus   models.OrderStatus
	PaymentStatus models.PaymentStatus
	Total         int64
	OccurredAt    time.Time
}

const (
	EventOrderPlaced        = "order.placed"
	EventOrderConfirmed     = "order.confirmed"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"
	EventPaymentCaptured    = "payment.captured"
)

type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}
