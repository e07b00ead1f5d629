package repositories

import (
	"context"

	"ecobazaar/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// CreditOrderPoints adds points to both balances and counts one eco order.
	CreditOrderPoints(ctx context.Context, id string, points int64) error
	// DebitAvailablePoints subtracts points only when the balance covers them.
	DebitAvailablePoints(ctx context.Context, id string, points int64) (bool, error)
	UpdateLevel(ctx context.Context, id, level string) error
	// SetLifetimePoints overwrites the lifetime total only if it still equals
	// expected.
	SetLifetimePoints(ctx context.Context, id string, expected, points int64, level string) (bool, error)
}
