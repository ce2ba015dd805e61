// Package shoptest provides in-memory stores and recording collaborators for
// exercising the shop services without Mongo, Redis or MySQL.
package shoptest

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
)

type CartStore struct {
	mu    sync.Mutex
	carts map[string]*models.Cart

	// DeleteErr, when set, is returned by Delete.
	DeleteErr error
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*models.Cart)}
}

func (s *CartStore) Get(_ context.Context, userID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[userID]
	if !ok {
		return nil, apperr.NotFound("cart not found")
	}
	return copyCart(cart), nil
}

func (s *CartStore) Save(_ context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	s.carts[cart.UserID] = copyCart(cart)
	return nil
}

func (s *CartStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.carts, userID)
	return nil
}

func copyCart(c *models.Cart) *models.Cart {
	out := *c
	out.Items = append([]models.CartItem(nil), c.Items...)
	return &out
}

type Catalog struct {
	mu       sync.RWMutex
	products map[string]*models.Product
}

func NewCatalog(products ...*models.Product) *Catalog {
	c := &Catalog{products: make(map[string]*models.Product)}
	for _, p := range products {
		c.Put(p)
	}
	return c
}

// Put stores p, assigning an id when it has none.
func (c *Catalog) Put(p *models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	c.products[p.ID.Hex()] = p
}

func (c *Catalog) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
}

func (c *Catalog) GetProduct(_ context.Context, id string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, apperr.NotFound("product %s not found", id)
	}
	out := *p
	return &out, nil
}

func (c *Catalog) GetProductBySlug(_ context.Context, slug string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.Slug == slug {
			out := *p
			return &out, nil
		}
	}
	return nil, apperr.NotFound("product %s not found", slug)
}

// OrderStore mimics the Mongo order repository: unique order numbers and
// conditional single-document updates.
type OrderStore struct {
	mu     sync.Mutex
	seq    int64
	orders []*models.Order

	// InsertErr, when set, is returned by Insert.
	InsertErr error
}

func NewOrderStore() *OrderStore {
	return &OrderStore{}
}

// SetSequence makes the next allocated sequence n+1.
func (s *OrderStore) SetSequence(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = n
}

func (s *OrderStore) NextSequence(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *OrderStore) Insert(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return s.InsertErr
	}
	for _, o := range s.orders {
		if o.OrderNumber == order.OrderNumber {
			return apperr.Conflict("order number %s already exists", order.OrderNumber)
		}
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	s.orders = append(s.orders, copyOrder(order))
	return nil
}

func (s *OrderStore) Find(_ context.Context, orderNumber, userID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o := s.find(shop.OrderMatch{OrderNumber: orderNumber, UserID: userID}); o != nil {
		return copyOrder(o), nil
	}
	return nil, apperr.NotFound("order %s not found", orderNumber)
}

func (s *OrderStore) List(_ context.Context, q shop.OrderQuery) ([]*models.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*models.Order
	for _, o := range s.orders {
		if o.UserID != q.UserID {
			continue
		}
		if q.Status != "" && o.OrderStatus != q.Status {
			continue
		}
		matched = append(matched, o)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	out := make([]*models.Order, 0, end-start)
	for _, o := range matched[start:end] {
		out = append(out, copyOrder(o))
	}
	return out, total, nil
}

func (s *OrderStore) Apply(_ context.Context, match shop.OrderMatch, change shop.OrderChange) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.find(match)
	if o == nil {
		return nil, apperr.NotFound("order %s not found", match.OrderNumber)
	}

	if change.OrderStatus != "" {
		o.OrderStatus = change.OrderStatus
	}
	if change.PaymentStatus != "" {
		o.PaymentStatus = change.PaymentStatus
	}
	if change.ProviderOrderID != "" {
		o.ProviderOrderID = change.ProviderOrderID
	}
	if change.ProviderPaymentID != "" {
		o.ProviderPaymentID = change.ProviderPaymentID
	}
	if change.TrackingNumber != "" {
		o.TrackingNumber = change.TrackingNumber
	}
	if change.PaidAt != nil {
		t := *change.PaidAt
		o.PaidAt = &t
	}
	if change.DeliveredAt != nil {
		t := *change.DeliveredAt
		o.DeliveredAt = &t
	}
	if change.Event != nil {
		o.TrackingEvents = append(o.TrackingEvents, *change.Event)
	}
	if !change.UpdatedAt.IsZero() {
		o.UpdatedAt = change.UpdatedAt
	}
	return copyOrder(o), nil
}

// Snapshot returns the stored order without going through the service layer.
func (s *OrderStore) Snapshot(orderNumber string) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o := s.find(shop.OrderMatch{OrderNumber: orderNumber}); o != nil {
		return copyOrder(o)
	}
	return nil
}

func (s *OrderStore) find(m shop.OrderMatch) *models.Order {
	for _, o := range s.orders {
		if o.OrderNumber != m.OrderNumber {
			continue
		}
		if m.UserID != "" && o.UserID != m.UserID {
			continue
		}
		if len(m.StatusIn) > 0 && !containsStatus(m.StatusIn, o.OrderStatus) {
			continue
		}
		if len(m.PaymentStatusIn) > 0 && !containsPayment(m.PaymentStatusIn, o.PaymentStatus) {
			continue
		}
		return o
	}
	return nil
}

func containsStatus(set []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPayment(set []models.PaymentStatus, s models.PaymentStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func copyOrder(o *models.Order) *models.Order {
	out := *o
	out.Items = append([]models.OrderItem(nil), o.Items...)
	out.TrackingEvents = append([]models.TrackingEvent(nil), o.TrackingEvents...)
	return &out
}
