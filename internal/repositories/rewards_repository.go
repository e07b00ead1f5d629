package repositories

import (
	"context"

	"ecobazaar/internal/models"
)

// RewardsRepository stores the points history ledger and badges.
type RewardsRepository interface {
	AppendHistory(ctx context.Context, entry *models.PointsHistoryEntry) error
	ListHistory(ctx context.Context, userID string) ([]models.PointsHistoryEntry, error)
	// AwardBadge inserts the badge unless the user already holds it and
	// reports whether it inserted.
	AwardBadge(ctx context.Context, badge *models.UserBadge) (bool, error)
	ListBadges(ctx context.Context, userID string) ([]models.UserBadge, error)
}
