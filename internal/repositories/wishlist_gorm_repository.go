package repositories

import (
	"context"
	"errors"
	"fmt"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/database"
	"ecobazaar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

func (r *GORMWishlistRepository) ListByUserID(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := database.Conn(ctx, r.db).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist for user %s: %w", userID, err)
	}
	return items, nil
}

func (r *GORMWishlistRepository) AddIfAbsent(ctx context.Context, item *models.WishlistItem) (bool, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	res := database.Conn(ctx, r.db).
		Omit("Product").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(item)
	if res.Error != nil {
		return false, fmt.Errorf("failed to add product %s to wishlist: %w", item.ProductID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMWishlistRepository) GetByID(ctx context.Context, id string) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if err := database.Conn(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("wishlist item", id)
		}
		return nil, fmt.Errorf("failed to get wishlist item %s: %w", id, err)
	}
	return &item, nil
}

func (r *GORMWishlistRepository) Delete(ctx context.Context, id string) error {
	res := database.Conn(ctx, r.db).Delete(&models.WishlistItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete wishlist item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("wishlist item", id)
	}
	return nil
}
