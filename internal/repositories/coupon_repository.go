package repositories

import (
	"context"
	"time"

	"ecobazaar/internal/models"
)

// CouponRepository defines the interface for coupon data access.
type CouponRepository interface {
	// CreateIfAbsent inserts the coupon unless (user, code) already exists and
	// reports whether it inserted. A second UNUSED redemption coupon with the
	// same terms fails with Duplicate.
	CreateIfAbsent(ctx context.Context, coupon *models.Coupon) (bool, error)
	FindByUserAndCode(ctx context.Context, userID, code string) (*models.Coupon, error)
	ExistsByUserAndCode(ctx context.Context, userID, code string) (bool, error)
	ListByUserID(ctx context.Context, userID string) ([]models.Coupon, error)
	ListByUserAndStatus(ctx context.Context, userID string, status models.CouponStatus) ([]models.Coupon, error)
	// MarkUsed moves an UNUSED coupon to USED and reports whether it did.
	MarkUsed(ctx context.Context, id, orderID string, usedAt time.Time) (bool, error)
	MarkExpired(ctx context.Context, id string) error
}
