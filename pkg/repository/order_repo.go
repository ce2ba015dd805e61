package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
)

const orderCounterID = "order_number"

type OrderRepository struct {
	orders   *mongo.Collection
	counters *mongo.Collection
	timeout  time.Duration
}

func NewOrderRepository(orders, counters *mongo.Collection, timeout time.Duration) *OrderRepository {
	return &OrderRepository{orders: orders, counters: counters, timeout: timeout}
}

type counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// NextSequence atomically increments the order counter.
func (r *OrderRepository) NextSequence(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var c counter
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": orderCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, translate(err, "order counter")
	}
	return c.Seq, nil
}

// SyncSequence raises the counter to the number of stored orders so numbering
// continues after data created before the counter existed.
func (r *OrderRepository) SyncSequence(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	count, err := r.orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, translate(err, "orders")
	}
	_, err = r.counters.UpdateOne(ctx,
		bson.M{"_id": orderCounterID},
		bson.M{"$max": bson.M{"seq": count}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return 0, translate(err, "order counter")
	}
	return count, nil
}

func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.orders.InsertOne(ctx, order)
	if err != nil {
		return translate(err, "order "+order.OrderNumber)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (r *OrderRepository) Find(ctx context.Context, orderNumber, userID string) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"order_number": orderNumber}
	if userID != "" {
		filter["user_id"] = userID
	}

	var order models.Order
	if err := r.orders.FindOne(ctx, filter).Decode(&order); err != nil {
		return nil, translate(err, "order "+orderNumber)
	}
	return &order, nil
}

func (r *OrderRepository) List(ctx context.Context, q shop.OrderQuery) ([]*models.Order, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"user_id": q.UserID}
	if q.Status != "" {
		filter["order_status"] = q.Status
	}

	total, err := r.orders.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, "orders")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((q.Page - 1) * q.Limit).
		SetLimit(q.Limit)
	cursor, err := r.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translate(err, "orders")
	}
	defer cursor.Close(ctx)

	orders := []*models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, translate(err, "orders")
	}
	return orders, total, nil
}

// Apply runs a single conditional findOneAndUpdate, so guards in match and the
// write are evaluated atomically by the server.
func (r *OrderRepository) Apply(ctx context.Context, match shop.OrderMatch, change shop.OrderChange) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	err := r.orders.FindOneAndUpdate(ctx, matchFilter(match), changeUpdate(change), opts).Decode(&order)
	if err != nil {
		return nil, translate(err, "order "+match.OrderNumber)
	}
	return &order, nil
}

func matchFilter(m shop.OrderMatch) bson.M {
	filter := bson.M{"order_number": m.OrderNumber}
	if m.UserID != "" {
		filter["user_id"] = m.UserID
	}
	if len(m.StatusIn) > 0 {
		filter["order_status"] = bson.M{"$in": m.StatusIn}
	}
	if len(m.PaymentStatusIn) > 0 {
		filter["payment_status"] = bson.M{"$in": m.PaymentStatusIn}
	}
	return filter
}

func changeUpdate(c shop.OrderChange) bson.M {
	set := bson.M{}
	if c.OrderStatus != "" {
		set["order_status"] = c.OrderStatus
	}
	if c.PaymentStatus != "" {
		set["payment_status"] = c.PaymentStatus
	}
	if c.ProviderOrderID != "" {
		set["provider_order_id"] = c.ProviderOrderID
	}
	if c.ProviderPaymentID != "" {
		set["provider_payment_id"] = c.ProviderPaymentID
	}
	if c.TrackingNumber != "" {
		set["tracking_number"] = c.TrackingNumber
	}
	if c.PaidAt != nil {
		set["paid_at"] = *c.PaidAt
	}
	if c.DeliveredAt != nil {
		set["delivered_at"] = *c.DeliveredAt
	}
	if !c.UpdatedAt.IsZero() {
		set["updated_at"] = c.UpdatedAt
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if c.Event != nil {
		update["$push"] = bson.M{"tracking_events": *c.Event}
	}
	return update
}
