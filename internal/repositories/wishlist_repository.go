package repositories

import (
	"context"

	"ecobazaar/internal/models"
)

// WishlistRepository stores the products each user saved for later.
type WishlistRepository interface {
	// ListByUserID returns the user's items with their products, newest first.
	ListByUserID(ctx context.Context, userID string) ([]models.WishlistItem, error)
	// AddIfAbsent inserts the item unless the user already saved the product
	// and reports whether it inserted.
	AddIfAbsent(ctx context.Context, item *models.WishlistItem) (bool, error)
	GetByID(ctx context.Context, id string) (*models.WishlistItem, error)
	Delete(ctx context.Context, id string) error
}
