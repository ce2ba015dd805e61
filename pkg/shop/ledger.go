package shop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
)

const (
	DefaultOrderPrefix = "MC"
	defaultPageSize    = 10
	maxPageSize        = 100
)

// FormatOrderNumber renders prefix + YY + MM + five digit zero padded sequence.
func FormatOrderNumber(prefix string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s%02d%02d%05d", prefix, at.Year()%100, int(at.Month()), seq)
}

// Ledger owns order records: numbering, creation, lookup and the tracking log.
type Ledger struct {
	store  OrderStore
	cache  TrackingCache
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

type LedgerOption func(*Ledger)

func WithTrackingCache(cache TrackingCache) LedgerOption {
	return func(l *Ledger) { l.cache = cache }
}

func WithOrderPrefix(prefix string) LedgerOption {
	return func(l *Ledger) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(store OrderStore, logger *zap.Logger, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:  store,
		prefix: DefaultOrderPrefix,
		logger: logger.Named("ledger"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) NextOrderNumber(ctx context.Context) (string, error) {
	seq, err := l.store.NextSequence(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}
	return FormatOrderNumber(l.prefix, l.now(), seq), nil
}

func (l *Ledger) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	now := l.now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentStatusPending
	}
	if order.OrderStatus == "" {
		order.OrderStatus = models.OrderStatusPending
	}
	if order.TrackingEvents == nil {
		order.TrackingEvents = []models.TrackingEvent{}
	}

	if err := l.store.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order %s: %w", order.OrderNumber, err)
	}
	return order, nil
}

func validateOrder(o *models.Order) error {
	var problems []string
	if o.OrderNumber == "" {
		problems = append(problems, "order number is required")
	}
	if o.UserID == "" {
		problems = append(problems, "user is required")
	}
	if len(o.Items) == 0 {
		problems = append(problems, "at least one item is required")
	}
	for _, f := range []struct {
		name  string
		value int64
	}{
		{"subtotal", o.Subtotal},
		{"shippingCost", o.ShippingCost},
		{"tax", o.Tax},
		{"discount", o.Discount},
		{"total", o.Total},
	} {
		if f.value < 0 {
			problems = append(problems, f.name+" must not be negative")
		}
	}
	if o.Total != o.Subtotal+o.ShippingCost+o.Tax-o.Discount {
		problems = append(problems, "total must equal subtotal + shippingCost + tax - discount")
	}
	if !o.PaymentMethod.Valid() {
		problems = append(problems, fmt.Sprintf("unknown payment method %q", o.PaymentMethod))
	}
	if len(problems) > 0 {
		return apperr.Validation("invalid order: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Find returns the order; a non-empty userID restricts the lookup to that owner.
func (l *Ledger) Find(ctx context.Context, orderNumber, userID string) (*models.Order, error) {
	return l.store.Find(ctx, orderNumber, userID)
}

type Page struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPage(page, limit, total int64) Page {
	pages := int64(0)
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page{Page: page, Limit: limit, Total: total, Pages: pages}
}

func normalizePaging(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// List returns the user's orders newest first.
func (l *Ledger) List(ctx context.Context, userID string, status models.OrderStatus, page, limit int64) ([]*models.Order, Page, error) {
	if userID == "" {
		return nil, Page{}, apperr.Authorization("orders can only be listed for a user")
	}
	if status != "" && !status.Valid() {
		return nil, Page{}, apperr.Validation("unknown order status %q", status)
	}
	page, limit = normalizePaging(page, limit)

	orders, total, err := l.store.List(ctx, OrderQuery{UserID: userID, Status: status, Page: page, Limit: limit})
	if err != nil {
		return nil, Page{}, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, NewPage(page, limit, total), nil
}

// Track returns the public tracking view, served from cache when possible.
func (l *Ledger) Track(ctx context.Context, orderNumber string) (*models.TrackingView, error) {
	if l.cache != nil {
		view, err := l.cache.GetTracking(ctx, orderNumber)
		if err == nil && view != nil {
			return view, nil
		}
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			l.logger.Warn("Tracking cache read failed", zap.String("order_number", orderNumber), zap.Error(err))
		}
	}

	order, err := l.store.Find(ctx, orderNumber, "")
	if err != nil {
		return nil, err
	}
	view := order.TrackingView()

	if l.cache != nil {
		l.cacheTracking(ctx, order, view)
	}
	return view, nil
}

// cacheTracking writes view back and then re-reads the order. A write that
// landed between the read and the cache write has already run its
// invalidation, so the stale entry is dropped here instead.
func (l *Ledger) cacheTracking(ctx context.Context, read *models.Order, view *models.TrackingView) {
	log := l.logger.With(zap.String("order_number", read.OrderNumber))
	if err := l.cache.CacheTracking(ctx, view); err != nil {
		log.Warn("Failed to cache tracking view", zap.Error(err))
		return
	}

	current, err := l.store.Find(ctx, read.OrderNumber, "")
	if err == nil && sameRevision(read, current) {
		return
	}
	if err := l.cache.InvalidateTracking(ctx, read.OrderNumber); err != nil {
		log.Warn("Failed to drop stale tracking view", zap.Error(err))
	}
}

// sameRevision reports whether b carries no change to the tracked fields of a.
// The event log only grows, so its length orders revisions.
func sameRevision(a, b *models.Order) bool {
	return a.UpdatedAt.Equal(b.UpdatedAt) &&
		a.OrderStatus == b.OrderStatus &&
		a.PaymentStatus == b.PaymentStatus &&
		a.TrackingNumber == b.TrackingNumber &&
		len(a.TrackingEvents) == len(b.TrackingEvents)
}

func (l *Ledger) AppendTrackingEvent(ctx context.Context, orderNumber string, event models.TrackingEvent) (*models.Order, error) {
	if strings.TrimSpace(event.Status) == "" {
		return nil, apperr.Validation("tracking event status is required")
	}
	return l.apply(ctx, OrderMatch{OrderNumber: orderNumber}, OrderChange{Event: &event})
}

// apply stamps the change, writes it and drops the cached tracking view.
func (l *Ledger) apply(ctx context.Context, match OrderMatch, change OrderChange) (*models.Order, error) {
	now := l.now()
	change.UpdatedAt = now
	if change.Event != nil && change.Event.Timestamp.IsZero() {
		change.Event.Timestamp = now
	}

	order, err := l.store.Apply(ctx, match, change)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.InvalidateTracking(ctx, match.OrderNumber); err != nil {
			l.logger.Warn("Failed to invalidate tracking cache", zap.String("order_number", match.OrderNumber), zap.Error(err))
		}
	}
	return order, nil
}

func (l *Ledger) Now() time.Time {
	return l.now()
}
