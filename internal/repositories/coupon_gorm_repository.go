package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/database"
	"ecobazaar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCouponRepository is a GORM implementation of CouponRepository.
type GORMCouponRepository struct {
	db *gorm.DB
}

func NewGORMCouponRepository(db *gorm.DB) *GORMCouponRepository {
	return &GORMCouponRepository{db: db}
}

func (r *GORMCouponRepository) CreateIfAbsent(ctx context.Context, coupon *models.Coupon) (bool, error) {
	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	res := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(coupon)
	if res.Error != nil {
		if database.IsDuplicateKey(res.Error) {
			return false, apperrors.Duplicate("an active %s%% coupon with minimum order %s already exists", coupon.DiscountValue.String(), coupon.MinOrderValue.StringFixed(2))
		}
		return false, fmt.Errorf("failed to create coupon %s: %w", coupon.Code, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// FindByUserAndCode matches the code case-insensitively.
func (r *GORMCouponRepository) FindByUserAndCode(ctx context.Context, userID, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := database.Conn(ctx, r.db).
		First(&coupon, "user_id = ? AND UPPER(code) = UPPER(?)", userID, code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "invalid coupon code or it does not belong to you")
		}
		return nil, fmt.Errorf("failed to get coupon %s: %w", code, err)
	}
	return &coupon, nil
}

func (r *GORMCouponRepository) ExistsByUserAndCode(ctx context.Context, userID, code string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&models.Coupon{}).
		Where("user_id = ? AND code = ?", userID, code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check coupon %s: %w", code, err)
	}
	return count > 0, nil
}

func (r *GORMCouponRepository) ListByUserID(ctx context.Context, userID string) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := database.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons for user %s: %w", userID, err)
	}
	return coupons, nil
}

func (r *GORMCouponRepository) ListByUserAndStatus(ctx context.Context, userID string, status models.CouponStatus) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := database.Conn(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s coupons for user %s: %w", status, userID, err)
	}
	return coupons, nil
}

func (r *GORMCouponRepository) MarkUsed(ctx context.Context, id, orderID string, usedAt time.Time) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&models.Coupon{}).
		Where("id = ? AND status = ?", id, models.CouponUnused).
		UpdateColumns(map[string]interface{}{
			"status":   models.CouponUsed,
			"used_at":  usedAt,
			"order_id": orderID,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark coupon %s used: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMCouponRepository) MarkExpired(ctx context.Context, id string) error {
	err := database.Conn(ctx, r.db).
		Model(&models.Coupon{}).
		Where("id = ? AND status = ?", id, models.CouponUnused).
		UpdateColumn("status", models.CouponExpired).Error
	if err != nil {
		return fmt.Errorf("failed to mark coupon %s expired: %w", id, err)
	}
	return nil
}
