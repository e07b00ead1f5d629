package repositories

import (
	"context"
	"fmt"

	"ecobazaar/internal/database"
	"ecobazaar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMRewardsRepository stores history entries and badges.
type GORMRewardsRepository struct {
	db *gorm.DB
}

func NewGORMRewardsRepository(db *gorm.DB) *GORMRewardsRepository {
	return &GORMRewardsRepository{db: db}
}

func (r *GORMRewardsRepository) AppendHistory(ctx context.Context, entry *models.PointsHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := database.Conn(ctx, r.db).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append points history for user %s: %w", entry.UserID, err)
	}
	return nil
}

// ListHistory returns entries newest first.
func (r *GORMRewardsRepository) ListHistory(ctx context.Context, userID string) ([]models.PointsHistoryEntry, error) {
	var entries []models.PointsHistoryEntry
	err := database.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list points history for user %s: %w", userID, err)
	}
	return entries, nil
}

func (r *GORMRewardsRepository) AwardBadge(ctx context.Context, badge *models.UserBadge) (bool, error) {
	if badge.ID == "" {
		badge.ID = uuid.New().String()
	}
	res := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_code"}},
			DoNothing: true,
		}).
		Create(badge)
	if res.Error != nil {
		return false, fmt.Errorf("failed to award badge %s: %w", badge.BadgeCode, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMRewardsRepository) ListBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := database.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&badges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list badges for user %s: %w", userID, err)
	}
	return badges, nil
}
