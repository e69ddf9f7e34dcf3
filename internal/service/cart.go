package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/repo"
)

// CartService keeps one cart per user and one line per (product, size)
// pair. Stock is validated against the per-size ledger on every add and
// update but reserved only at order placement, never at add-to-cart.
type CartService struct {
	Repo *repo.GormRepo
}

type CartLine struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Size        string  `json:"size"`
	Quantity    uint    `json:"quantity"`
	Total       float64 `json:"total"`
}

type CartView struct {
	CartID uint       `json:"cart_id"`
	Items  []CartLine `json:"items"`
	Total  float64    `json:"total"`
}

func (s *CartService) checkStock(ctx context.Context, productID uint, size string, quantity uint) error {
	if !models.ValidSize(size) {
		return fmt.Errorf("%w: unknown size %q", ErrValidation, size)
	}
	row, err := s.Repo.GetProductSize(ctx, productID, size)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d has no size %s", ErrSizeUnavailable, productID, size)
		}
		return err
	}
	if row.Quantity < quantity {
		return fmt.Errorf("%w: size %s of product %d, available: %d, requested: %d",
			ErrInsufficientStock, size, productID, row.Quantity, quantity)
	}
	return nil
}

// AddItem upserts the user's cart and the (product, size) line,
// incrementing quantity when the line already exists.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, size string, quantity uint) (*models.CartItem, error) {
	if productID == 0 || quantity == 0 {
		return nil, fmt.Errorf("%w: product and positive quantity required", ErrValidation)
	}

	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.GetCartItem(ctx, cart.ID, productID, size)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	requested := quantity
	if item != nil {
		requested += item.Quantity
	}
	if err := s.checkStock(ctx, productID, size, requested); err != nil {
		return nil, err
	}

	if item != nil {
		item.Quantity = requested
		if err := s.Repo.SaveCartItem(ctx, item); err != nil {
			return nil, err
		}
		return item, nil
	}

	newItem := models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	}
	if err := s.Repo.CreateCartItem(ctx, &newItem); err != nil {
		return nil, err
	}
	return &newItem, nil
}

// UpdateItem sets the line to an exact quantity; zero deletes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uint, size string, quantity uint) (*models.CartItem, error) {
	cart, err := s.Repo.GetCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart", ErrNotFound)
		}
		return nil, err
	}

	item, err := s.Repo.GetCartItem(ctx, cart.ID, productID, size)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart item", ErrNotFound)
		}
		return nil, err
	}

	if quantity == 0 {
		if err := s.Repo.DeleteCartItem(ctx, item.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := s.checkStock(ctx, productID, size, quantity); err != nil {
		return nil, err
	}

	item.Quantity = quantity
	if err := s.Repo.SaveCartItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem decrements the line by quantity, deleting it when the count
// reaches exactly zero.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint, quantity uint) (*models.CartItem, error) {
	if quantity == 0 {
		return nil, fmt.Errorf("%w: positive quantity required", ErrValidation)
	}

	cart, err := s.Repo.GetCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart", ErrNotFound)
		}
		return nil, err
	}

	item, err := s.Repo.GetCartItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart item", ErrNotFound)
		}
		return nil, err
	}

	if quantity > item.Quantity {
		return nil, fmt.Errorf("%w: removal exceeds quantity in cart", ErrValidation)
	}
	if quantity == item.Quantity {
		if err := s.Repo.DeleteCartItem(ctx, item.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item.Quantity -= quantity
	if err := s.Repo.SaveCartItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetCart returns the cart joined with live product data; an absent and
// an empty cart are indistinguishable to the caller.
func (s *CartService) GetCart(ctx context.Context, userID uint) (*CartView, error) {
	cart, err := s.Repo.GetCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart", ErrNotFound)
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart", ErrNotFound)
	}

	view := CartView{CartID: cart.ID, Items: make([]CartLine, 0, len(cart.Items))}
	for _, it := range cart.Items {
		p, err := s.Repo.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		line := CartLine{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Size:        it.Size,
			Quantity:    it.Quantity,
			Total:       p.Price * float64(it.Quantity),
		}
		view.Items = append(view.Items, line)
		view.Total += line.Total
	}
	return &view, nil
}

// GetQuantity never fails: missing cart or line reads as zero.
func (s *CartService) GetQuantity(ctx context.Context, userID, productID uint, size string) (uint, error) {
	cart, err := s.Repo.GetCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	item, err := s.Repo.GetCartItem(ctx, cart.ID, productID, size)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return item.Quantity, nil
}
