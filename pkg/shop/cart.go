package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
)

type CartLine struct {
	ID        string                 `json:"id"`
	ProductID string                 `json:"productId"`
	Product   *models.ProductSummary `json:"product,omitempty"`
	Quantity  int64                  `json:"quantity"`
	Price     int64                  `json:"price"`
	Subtotal  int64                  `json:"subtotal"`
}

type CartView struct {
	Items []CartLine `json:"items"`
	Total int64      `json:"total"`
}

type CartService struct {
	carts   CartStore
	catalog Catalog
	logger  *zap.Logger
	now     func() time.Time
}

func NewCartService(carts CartStore, catalog Catalog, logger *zap.Logger) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		logger:  logger.Named("cart"),
		now:     time.Now,
	}
}

// GetCart renders the user's cart. A user without a cart gets an empty view.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return &CartView{Items: []CartLine{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return s.view(ctx, cart), nil
}

func (s *CartService) view(ctx context.Context, cart *models.Cart) *CartView {
	v := &CartView{Items: make([]CartLine, 0, len(cart.Items)), Total: cart.Total()}
	for _, item := range cart.Items {
		line := CartLine{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Price * item.Quantity,
		}
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		switch {
		case err == nil:
			line.Product = product.Summary()
		case !apperr.Is(err, apperr.KindNotFound):
			s.logger.Warn("Failed to resolve cart product", zap.String("product_id", item.ProductID), zap.Error(err))
		}
		v.Items = append(v.Items, line)
	}
	return v
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int64) (*CartView, error) {
	product, err := s.orderable(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := checkQuantity(product, quantity); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if i := cart.ItemByProduct(productID); i >= 0 {
		merged := cart.Items[i].Quantity + quantity
		if err := checkQuantity(product, merged); err != nil {
			return nil, err
		}
		cart.Items[i].Quantity = merged
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ID:        uuid.NewString(),
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		})
	}

	return s.save(ctx, cart)
}

// UpdateItem replaces a line's quantity; zero or less removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int64) (*CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.ItemByID(itemID)
	if i < 0 {
		return nil, apperr.NotFound("item %s not found in cart", itemID)
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		return s.save(ctx, cart)
	}

	product, err := s.orderable(ctx, cart.Items[i].ProductID)
	if err != nil {
		return nil, err
	}
	if err := checkQuantity(product, quantity); err != nil {
		return nil, err
	}
	cart.Items[i].Quantity = quantity
	return s.save(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if i := cart.ItemByID(itemID); i >= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	}
	return s.save(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.carts.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*CartView, error) {
	if _, err := sumLines(cart.Items); err != nil {
		return nil, err
	}
	cart.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.view(ctx, cart), nil
}

// orderable returns the product when it exists and is on sale.
func (s *CartService) orderable(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperr.NotFound("product %s not found", productID)
	}
	return product, nil
}

// checkQuantity applies the product's order bounds. A zero maximum means the
// product has no per-order cap beyond maxAmount.
func checkQuantity(product *models.Product, quantity int64) error {
	minimum := product.MinOrderQuantity
	if minimum < 1 {
		minimum = 1
	}
	if quantity < minimum {
		return apperr.Validation("minimum order quantity is %d %s", minimum, product.Unit)
	}
	if product.MaxOrderQuantity > 0 && quantity > product.MaxOrderQuantity {
		return apperr.Validation("maximum order quantity is %d %s", product.MaxOrderQuantity, product.Unit)
	}
	_, err := lineAmount(product.Price, quantity)
	return err
}
