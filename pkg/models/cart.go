package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ID        string `bson:"item_id" json:"id"`
	ProductID string `bson:"product_id" json:"productId"`
	Quantity  int64  `bson:"quantity" json:"quantity"`
	// Price is the unit price captured when the line was first added.
	Price int64 `bson:"price" json:"price"`
}

// Cart is the single mutable cart document owned by one user.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * item.Quantity
	}
	return total
}

func (c *Cart) ItemByProduct(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) ItemByID(itemID string) int {
	for i, item := range c.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}
