package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
)

type ProductQuery struct {
	Category models.Category
	Search   string
	// Sort is one of price_asc, price_desc, rating, name; anything else is newest first.
	Sort  string
	Page  int64
	Limit int64
}

type ProductRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewProductRepository(coll *mongo.Collection, timeout time.Duration) *ProductRepository {
	return &ProductRepository{coll: coll, timeout: timeout}
}

func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("product %s not found", id)
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&product); err != nil {
		return nil, translate(err, "product "+id)
	}
	return &product, nil
}

func (r *ProductRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"slug": slug, "is_active": true}).Decode(&product); err != nil {
		return nil, translate(err, "product "+slug)
	}
	return &product, nil
}

// List returns active products matching q and the total match count.
func (r *ProductRepository) List(ctx context.Context, q ProductQuery) ([]*models.Product, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := productFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, "products")
	}

	opts := options.Find().SetSort(productSort(q.Sort))
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
		if q.Page > 1 {
			opts.SetSkip((q.Page - 1) * q.Limit)
		}
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translate(err, "products")
	}
	defer cursor.Close(ctx)

	products := []*models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, translate(err, "products")
	}
	return products, total, nil
}

// productFilter selects active products; search matches name or description
// case-insensitively and literally.
func productFilter(q ProductQuery) bson.M {
	filter := bson.M{"is_active": true}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}

func productSort(sort string) bson.D {
	switch sort {
	case "price_asc":
		return bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price", Value: -1}}
	case "rating":
		return bson.D{{Key: "rating", Value: -1}}
	case "name":
		return bson.D{{Key: "name", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

// Upsert writes p keyed by slug and returns its id.
func (r *ProductRepository) Upsert(ctx context.Context, p *models.Product) (primitive.ObjectID, error) {
	if err := p.Validate(); err != nil {
		return primitive.NilObjectID, apperr.Wrap(apperr.KindValidation, err, "invalid product")
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	doc, err := bson.Marshal(p)
	if err != nil {
		return primitive.NilObjectID, err
	}
	var fields bson.M
	if err := bson.Unmarshal(doc, &fields); err != nil {
		return primitive.NilObjectID, err
	}
	delete(fields, "_id")
	createdAt := fields["created_at"]
	delete(fields, "created_at")

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored models.Product
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"slug": p.Slug},
		bson.M{"$set": fields, "$setOnInsert": bson.M{"created_at": createdAt}},
		opts,
	).Decode(&stored)
	if err != nil {
		return primitive.NilObjectID, translate(err, "product "+p.Slug)
	}
	return stored.ID, nil
}
