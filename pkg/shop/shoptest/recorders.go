package shoptest

import (
	"context"
	"sync"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
)

type Users map[string]*models.User

func (u Users) GetUser(_ context.Context, id string) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("user %s not found", id)
}

type Notification struct {
	Kind        string
	OrderNumber string
	Email       string
}

type Notifier struct {
	mu   sync.Mutex
	Sent []Notification
	Err  error
}

func (n *Notifier) SendOrderConfirmation(_ context.Context, order *models.Order, user *models.User) error {
	return n.add("confirmation", order, user)
}

func (n *Notifier) SendOrderCancellation(_ context.Context, order *models.Order, user *models.User) error {
	return n.add("cancellation", order, user)
}

func (n *Notifier) add(kind string, order *models.Order, user *models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, Notification{Kind: kind, OrderNumber: order.OrderNumber, Email: user.Email})
	return nil
}

func (n *Notifier) Notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.Sent...)
}

type Auditor struct {
	mu      sync.Mutex
	Entries []shop.AuditEntry
}

func (a *Auditor) Audit(_ context.Context, entry shop.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, entry)
	return nil
}

func (a *Auditor) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.Entries))
	for i, e := range a.Entries {
		out[i] = e.Action
	}
	return out
}

type Publisher struct {
	mu     sync.Mutex
	Events []shop.OrderEvent
}

func (p *Publisher) Publish(_ context.Context, event shop.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Events))
	for i, e := range p.Events {
		out[i] = e.Type
	}
	return out
}

// TrackingCache is a map backed cache that counts invalidations.
type TrackingCache struct {
	mu            sync.Mutex
	views         map[string]*models.TrackingView
	Invalidations int
}

func NewTrackingCache() *TrackingCache {
	return &TrackingCache{views: make(map[string]*models.TrackingView)}
}

func (c *TrackingCache) GetTracking(_ context.Context, orderNumber string) (*models.TrackingView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.views[orderNumber]; ok {
		return v, nil
	}
	return nil, apperr.NotFound("tracking view %s not cached", orderNumber)
}

func (c *TrackingCache) CacheTracking(_ context.Context, view *models.TrackingView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[view.OrderNumber] = view
	return nil
}

func (c *TrackingCache) InvalidateTracking(_ context.Context, orderNumber string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, orderNumber)
	c.Invalidations++
	return nil
}

func (c *TrackingCache) Cached(orderNumber string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.views[orderNumber]
	return ok
}
