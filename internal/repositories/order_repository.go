package repositories

import (
	"context"
	"time"

	"ecobazaar/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error)
	ListByUserID(ctx context.Context, userID string) ([]models.Order, error)
	ListBySellerID(ctx context.Context, sellerID string) ([]models.Order, error)
	// MarkPointsCredited flips points_credited from false to true and reports
	// whether this call did it.
	MarkPointsCredited(ctx context.Context, id string, points int64) (bool, error)
	SumCarbonSavedByUserID(ctx context.Context, userID string) (float64, error)
	// TopEcoSavers ranks users by carbon saved on orders placed in [from, to).
	TopEcoSavers(ctx context.Context, from, to time.Time, limit int) ([]models.LeaderboardEntry, error)
	// SellerSales counts distinct orders and sums revenue and carbon saved
	// over the seller's order lines.
	SellerSales(ctx context.Context, sellerID string) (*models.SellerStats, error)
}
