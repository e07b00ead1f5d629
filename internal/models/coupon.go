package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponStatus string

const (
	CouponUnused  CouponStatus = "UNUSED"
	CouponUsed    CouponStatus = "USED"
	CouponExpired CouponStatus = "EXPIRED"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

// Coupon is owned by one user. Status moves from UNUSED to USED or EXPIRED
// and never back. A user holds at most one UNUSED redemption coupon per
// discount and minimum order value.
type Coupon struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"uniqueIndex:idx_coupons_user_code;index:idx_coupons_active_redemption,unique,where:status = 'UNUSED' AND unlock_threshold = 0;type:varchar(36);not null"`
	Code            string          `json:"code" gorm:"uniqueIndex:idx_coupons_user_code;type:varchar(64);not null"`
	Description     string          `json:"description"`
	DiscountType    DiscountType    `json:"discount_type" gorm:"type:varchar(16);not null"`
	DiscountValue   decimal.Decimal `json:"discount_value" gorm:"index:idx_coupons_active_redemption;type:decimal(12,2);not null"`
	MinOrderValue   decimal.Decimal `json:"min_order_value" gorm:"index:idx_coupons_active_redemption;type:decimal(12,2);not null"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	Status          CouponStatus    `json:"status" gorm:"type:varchar(16);not null;index"`
	UnlockThreshold int64           `json:"unlock_threshold" gorm:"not null;default:0"`
	PointsRequired  int64           `json:"points_required" gorm:"not null;default:0"`
	UsedAt          *time.Time      `json:"used_at,omitempty"`
	OrderID         *string         `json:"order_id,omitempty" gorm:"type:varchar(36)"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ExpiredOn reports whether the coupon's expiry date lies before the calendar
// day of now.
func (c *Coupon) ExpiredOn(now time.Time) bool {
	return c.ExpiryDate.Before(StartOfDay(now))
}

// StartOfDay truncates t to UTC midnight.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
