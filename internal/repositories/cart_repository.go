package repositories

import (
	"context"

	"ecobazaar/internal/models"
)

// CartRepository loads and saves the cart aggregate as a whole.
type CartRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	// GetForUpdate is GetOrCreate holding a row lock on the cart until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
}
