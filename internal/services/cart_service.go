package services

import (
	"context"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"
)

// CartService mutates the cart aggregate and saves it as a whole.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	tx       Transactor
}

func NewCartService(repos *repositories.Repositories, tx Transactor) *CartService {
	return &CartService{
		carts:    repos.Carts,
		products: repos.Products,
		tx:       tx,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	return s.carts.GetOrCreate(ctx, userID)
}

// AddItem adds qty units, refusing quantities beyond current stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	var cart *models.Cart
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		cart, err = s.carts.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		inCart := 0
		if line, ok := cart.Find(productID); ok {
			inCart = line.Quantity
		}
		if inCart+qty > product.StockQuantity {
			return apperrors.OutOfStock(product.Name)
		}
		if err := cart.Add(product, qty); err != nil {
			return err
		}
		return s.carts.Save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem sets a line's quantity. Zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	var cart *models.Cart
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		cart, err = s.carts.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if qty > 0 {
			product, err := s.products.GetByID(ctx, productID)
			if err != nil {
				return err
			}
			if qty > product.StockQuantity {
				return apperrors.OutOfStock(product.Name)
			}
		}
		if err := cart.SetQuantity(productID, qty); err != nil {
			return err
		}
		return s.carts.Save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	var cart *models.Cart
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		cart, err = s.carts.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if !cart.Remove(productID) {
			return apperrors.NotFound("cart item", productID)
		}
		return s.carts.Save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}
