package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
)

func TestCartRepositoryMock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save upserts", func(mt *mtest.T) {
		repo := NewCartRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "c1"}}}},
		))

		err := repo.Save(context.Background(), &models.Cart{
			UserID:    "user-1",
			Items:     []models.CartItem{{ID: "i1", ProductID: "p1", Quantity: 20, Price: 100}},
			UpdatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(mt, err)
	})

	mt.Run("get decodes items", func(mt *mtest.T) {
		repo := NewCartRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.carts", mtest.FirstBatch, bson.D{
			{Key: "user_id", Value: "user-1"},
			{Key: "items", Value: bson.A{
				bson.D{
					{Key: "item_id", Value: "i1"},
					{Key: "product_id", Value: "p1"},
					{Key: "quantity", Value: int64(20)},
					{Key: "price", Value: int64(100)},
				},
			}},
		}))

		cart, err := repo.Get(context.Background(), "user-1")
		require.NoError(mt, err)
		assert.Equal(mt, "user-1", cart.UserID)
		require.Len(mt, cart.Items, 1)
		assert.Equal(mt, models.CartItem{ID: "i1", ProductID: "p1", Quantity: 20, Price: 100}, cart.Items[0])
	})

	mt.Run("get without items returns empty slice", func(mt *mtest.T) {
		repo := NewCartRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.carts", mtest.FirstBatch,
			bson.D{{Key: "user_id", Value: "user-1"}}))

		cart, err := repo.Get(context.Background(), "user-1")
		require.NoError(mt, err)
		assert.NotNil(mt, cart.Items)
		assert.Empty(mt, cart.Items)
	})

	mt.Run("get missing cart", func(mt *mtest.T) {
		repo := NewCartRepository(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.carts", mtest.FirstBatch))

		_, err := repo.Get(context.Background(), "user-1")
		assert.True(mt, apperr.Is(err, apperr.KindNotFound))
	})
}
