package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/charcoalshop/pkg/models"
)

type CartRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewCartRepository(coll *mongo.Collection, timeout time.Duration) *CartRepository {
	return &CartRepository{coll: coll, timeout: timeout}
}

func (r *CartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var cart models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart); err != nil {
		return nil, translate(err, "cart")
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Save replaces the user's cart document, creating it on first use.
func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	doc := bson.M{
		"user_id":    cart.UserID,
		"items":      cart.Items,
		"updated_at": cart.UpdatedAt,
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"user_id": cart.UserID}, doc, options.Replace().SetUpsert(true))
	return translate(err, "cart")
}

func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	return translate(err, "cart")
}
