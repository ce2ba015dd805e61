package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range orderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further fulfilment happens after s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodBank     PaymentMethod = "bank"
	PaymentMethodUPI      PaymentMethod = "upi"
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodCredit   PaymentMethod = "credit"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodBank, PaymentMethodUPI, PaymentMethodRazorpay, PaymentMethodCredit:
		return true
	}
	return false
}

type Address struct {
	Name      string `bson:"name" json:"name"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	Pincode   string `bson:"pincode" json:"pincode"`
	Phone     string `bson:"phone" json:"phone"`
	GSTNumber string `bson:"gst_number,omitempty" json:"gstNumber,omitempty"`
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// OrderItem is a frozen copy of a cart line; it is never re-read from the catalog.
type OrderItem struct {
	ProductID string `bson:"product_id" json:"productId"`
	Name      string `bson:"name" json:"name"`
	Price     int64  `bson:"price" json:"price"`
	Quantity  int64  `bson:"quantity" json:"quantity"`
	Unit      string `bson:"unit" json:"unit"`
}

type TrackingEvent struct {
	Status      string    `bson:"status" json:"status"`
	Description string    `bson:"description" json:"description"`
	Location    string    `bson:"location" json:"location"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}

type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber       string             `bson:"order_number" json:"orderNumber"`
	UserID            string             `bson:"user_id" json:"userId"`
	Items             []OrderItem        `bson:"items" json:"items"`
	ShippingAddress   Address            `bson:"shipping_address" json:"shippingAddress"`
	BillingAddress    Address            `bson:"billing_address" json:"billingAddress"`
	Subtotal          int64              `bson:"subtotal" json:"subtotal"`
	ShippingCost      int64              `bson:"shipping_cost" json:"shippingCost"`
	Tax               int64              `bson:"tax" json:"tax"`
	Discount          int64              `bson:"discount" json:"discount"`
	Total             int64              `bson:"total" json:"total"`
	PaymentMethod     PaymentMethod      `bson:"payment_method" json:"paymentMethod"`
	PaymentStatus     PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	OrderStatus       OrderStatus        `bson:"order_status" json:"orderStatus"`
	ProviderOrderID   string             `bson:"provider_order_id,omitempty" json:"providerOrderId,omitempty"`
	ProviderPaymentID string             `bson:"provider_payment_id,omitempty" json:"providerPaymentId,omitempty"`
	PaidAt            *time.Time         `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	TrackingNumber    string             `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	TrackingEvents    []TrackingEvent    `bson:"tracking_events" json:"trackingEvents"`
	EstimatedDelivery *time.Time         `bson:"estimated_delivery,omitempty" json:"estimatedDelivery,omitempty"`
	DeliveredAt       *time.Time         `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
}

// TrackingView is the public projection of an order: no pricing, no addresses.
type TrackingView struct {
	OrderNumber       string          `json:"orderNumber"`
	OrderStatus       OrderStatus     `json:"orderStatus"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	TrackingEvents    []TrackingEvent `json:"trackingEvents"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty"`
	Items             []TrackingItem  `json:"items"`
	CreatedAt         time.Time       `json:"createdAt"`
}

type TrackingItem struct {
	Name string `json:"name"`
}

func (o *Order) TrackingView() *TrackingView {
	items := make([]TrackingItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = TrackingItem{Name: item.Name}
	}
	events := make([]TrackingEvent, len(o.TrackingEvents))
	copy(events, o.TrackingEvents)

	return &TrackingView{
		OrderNumber:       o.OrderNumber,
		OrderStatus:       o.OrderStatus,
		TrackingNumber:    o.TrackingNumber,
		TrackingEvents:    events,
		EstimatedDelivery: o.EstimatedDelivery,
		DeliveredAt:       o.DeliveredAt,
		Items:             items,
		CreatedAt:         o.CreatedAt,
	}
}
