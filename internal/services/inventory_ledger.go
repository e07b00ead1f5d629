package services

import (
	"context"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"
)

// InventoryLedger is the only writer of product stock.
type InventoryLedger struct {
	products repositories.ProductRepository
}

func NewInventoryLedger(products repositories.ProductRepository) *InventoryLedger {
	return &InventoryLedger{products: products}
}

// Decrement atomically removes qty units when at least qty remain. It
// returns false without mutating anything otherwise.
func (l *InventoryLedger) Decrement(ctx context.Context, productID string, qty int) (bool, error) {
	if qty <= 0 {
		return false, apperrors.Validation("quantity must be positive")
	}
	return l.products.DecrementStock(ctx, productID, qty)
}

// CheckAvailable is the fast pre-check. It is advisory only; Decrement is
// authoritative.
func (l *InventoryLedger) CheckAvailable(ctx context.Context, productID string, qty int) (*models.Product, error) {
	product, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.StockQuantity < qty {
		return product, apperrors.OutOfStock(product.Name)
	}
	return product, nil
}
