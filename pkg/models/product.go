package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryCoconutShell    Category = "Coconut Shell"
	CategoryPowder          Category = "Powder"
	CategoryWoodCharcoal    Category = "Wood Charcoal"
	CategoryActivatedCarbon Category = "Activated Carbon"
	CategorySteamCoal       Category = "Steam Coal"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryCoconutShell, CategoryPowder, CategoryWoodCharcoal, CategoryActivatedCarbon, CategorySteamCoal:
		return true
	}
	return false
}

type Specification struct {
	Label string `bson:"label" json:"label"`
	Value string `bson:"value" json:"value"`
}

type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug             string             `bson:"slug" json:"slug"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description" json:"description"`
	ShortDescription string             `bson:"short_description,omitempty" json:"shortDescription,omitempty"`
	Category         Category           `bson:"category" json:"category"`
	Price            int64              `bson:"price" json:"price"`
	Unit             string             `bson:"unit" json:"unit"`
	MinOrderQuantity int64              `bson:"min_order_quantity" json:"minOrderQuantity"`
	MaxOrderQuantity int64              `bson:"max_order_quantity" json:"maxOrderQuantity"`
	Stock            int64              `bson:"stock" json:"stock"`
	InStock          bool               `bson:"in_stock" json:"inStock"`
	Images           []string           `bson:"images,omitempty" json:"images,omitempty"`
	Specifications   []Specification    `bson:"specifications,omitempty" json:"specifications,omitempty"`
	Features         []string           `bson:"features,omitempty" json:"features,omitempty"`
	Applications     []string           `bson:"applications,omitempty" json:"applications,omitempty"`
	Badge            string             `bson:"badge,omitempty" json:"badge,omitempty"`
	Rating           float64            `bson:"rating" json:"rating"`
	ReviewCount      int64              `bson:"review_count" json:"reviewCount"`
	IsActive         bool               `bson:"is_active" json:"isActive"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
}

// Validate checks the catalog rules a product must satisfy before it is stored.
func (p *Product) Validate() error {
	if p.Slug == "" || p.Name == "" {
		return fmt.Errorf("product requires slug and name")
	}
	if !p.Category.Valid() {
		return fmt.Errorf("product %s: unknown category %q", p.Slug, p.Category)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %s: negative price %d", p.Slug, p.Price)
	}
	if p.MinOrderQuantity > p.MaxOrderQuantity {
		return fmt.Errorf("product %s: min order quantity %d exceeds max %d", p.Slug, p.MinOrderQuantity, p.MaxOrderQuantity)
	}
	return nil
}

// ProductSummary is the part of a product shown next to a cart line.
type ProductSummary struct {
	ID     string   `json:"id"`
	Slug   string   `json:"slug"`
	Name   string   `json:"name"`
	Unit   string   `json:"unit"`
	Images []string `json:"images,omitempty"`
}

func (p *Product) Summary() *ProductSummary {
	return &ProductSummary{
		ID:     p.ID.Hex(),
		Slug:   p.Slug,
		Name:   p.Name,
		Unit:   p.Unit,
		Images: p.Images,
	}
}
