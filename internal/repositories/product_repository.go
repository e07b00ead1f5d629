package repositories

import (
	"context"

	"ecobazaar/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// DecrementStock subtracts qty only when at least qty units remain and
	// reports whether it did.
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
	// CountBySeller returns how many products the seller lists and their
	// combined stock.
	CountBySeller(ctx context.Context, sellerID string) (products, stock int64, err error)
}
