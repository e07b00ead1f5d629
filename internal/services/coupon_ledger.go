package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	redemptionValidity = 30 * 24 * time.Hour
	thresholdValidity  = 60 * 24 * time.Hour
)

var hundred = decimal.NewFromInt(100)

// ClaimRequest asks to buy a percent-off coupon with available points.
type ClaimRequest struct {
	UserID         string
	PointsRequired int64
	DiscountValue  decimal.Decimal
	MinOrderValue  decimal.Decimal
}

// ClaimResult is the issued coupon and the user's remaining balance.
type ClaimResult struct {
	Coupon        *models.Coupon `json:"coupon"`
	UpdatedPoints int64          `json:"updated_points"`
}

// ApplyPreview is the effect a coupon would have on an amount.
type ApplyPreview struct {
	Coupon         *models.Coupon  `json:"coupon"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	NewTotal       decimal.Decimal `json:"new_total"`
}

// CouponLedger issues, validates and consumes coupons.
type CouponLedger struct {
	coupons repositories.CouponRepository
	users   repositories.UserRepository
	rewards repositories.RewardsRepository
	tx      Transactor
	now     Clock
}

func NewCouponLedger(repos *repositories.Repositories, tx Transactor) *CouponLedger {
	return &CouponLedger{
		coupons: repos.Coupons,
		users:   repos.Users,
		rewards: repos.Rewards,
		tx:      tx,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (l *CouponLedger) SetClock(now Clock) {
	l.now = now
}

// ComputeDiscount applies the coupon to amount. The result never exceeds
// amount and is rounded to two decimals.
func ComputeDiscount(coupon *models.Coupon, amount decimal.Decimal) decimal.Decimal {
	if amount.Sign() <= 0 {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case models.DiscountFixed:
		discount = coupon.DiscountValue
	default:
		discount = amount.Mul(coupon.DiscountValue).Div(hundred)
	}
	discount = discount.Round(2)
	if discount.GreaterThan(amount) {
		return amount
	}
	if discount.Sign() < 0 {
		return decimal.Zero
	}
	return discount
}

// Validate checks that the user's coupon can discount orderAmount. An
// UNUSED coupon found past its expiry is moved to EXPIRED before failing.
func (l *CouponLedger) Validate(ctx context.Context, code, userID string, orderAmount decimal.Decimal) (*models.Coupon, error) {
	return l.validate(ctx, code, userID, orderAmount, true)
}

// PreviewApply reports the discount without mutating the coupon.
func (l *CouponLedger) PreviewApply(ctx context.Context, code, userID string, subtotal decimal.Decimal) (*ApplyPreview, error) {
	coupon, err := l.validate(ctx, code, userID, subtotal, false)
	if err != nil {
		return nil, err
	}
	discount := ComputeDiscount(coupon, subtotal)
	return &ApplyPreview{
		Coupon:         coupon,
		DiscountAmount: discount,
		NewTotal:       subtotal.Sub(discount),
	}, nil
}

func (l *CouponLedger) validate(ctx context.Context, code, userID string, amount decimal.Decimal, markExpired bool) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.Validation("coupon code is required")
	}
	coupon, err := l.coupons.FindByUserAndCode(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if coupon.Status != models.CouponUnused {
		return nil, apperrors.InvalidState("coupon %s is %s", coupon.Code, coupon.Status)
	}
	if coupon.ExpiredOn(l.now()) {
		if markExpired {
			if err := l.coupons.MarkExpired(ctx, coupon.ID); err != nil {
				return nil, err
			}
			coupon.Status = models.CouponExpired
		}
		return nil, apperrors.Expired("coupon %s has expired", coupon.Code)
	}
	if amount.LessThan(coupon.MinOrderValue) {
		return nil, apperrors.BelowMinimum("order amount must be at least %s to use coupon %s", coupon.MinOrderValue.StringFixed(2), coupon.Code)
	}
	return coupon, nil
}

// ExpireIfPast moves the user's UNUSED coupon to EXPIRED once its expiry
// date has passed.
func (l *CouponLedger) ExpireIfPast(ctx context.Context, code, userID string) error {
	coupon, err := l.coupons.FindByUserAndCode(ctx, userID, strings.TrimSpace(code))
	if err != nil {
		return err
	}
	if coupon.Status != models.CouponUnused || !coupon.ExpiredOn(l.now()) {
		return nil
	}
	return l.coupons.MarkExpired(ctx, coupon.ID)
}

// Consume marks the coupon USED for orderID. It fails with InvalidState if
// another order consumed it first.
func (l *CouponLedger) Consume(ctx context.Context, coupon *models.Coupon, orderID string) error {
	usedAt := l.now()
	ok, err := l.coupons.MarkUsed(ctx, coupon.ID, orderID, usedAt)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.InvalidState("coupon %s is no longer available", coupon.Code)
	}
	coupon.Status = models.CouponUsed
	coupon.UsedAt = &usedAt
	coupon.OrderID = &orderID
	return nil
}

// IssueByRedemption buys a percent-off coupon with available points.
func (l *CouponLedger) IssueByRedemption(ctx context.Context, req ClaimRequest) (*ClaimResult, error) {
	ctx, span := tracer.Start(ctx, "CouponLedger.IssueByRedemption")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID), attribute.Int64("points.required", req.PointsRequired))

	if req.PointsRequired <= 0 {
		return nil, apperrors.Validation("points required must be positive")
	}
	if req.DiscountValue.Sign() <= 0 || req.DiscountValue.GreaterThan(hundred) {
		return nil, apperrors.Validation("discount value must be between 0 and 100")
	}
	if req.MinOrderValue.Sign() < 0 {
		return nil, apperrors.Validation("minimum order value must not be negative")
	}

	var result *ClaimResult
	err := l.tx.Do(ctx, func(ctx context.Context) error {
		user, err := l.users.GetByID(ctx, req.UserID)
		if err != nil {
			return err
		}

		active, err := l.coupons.ListByUserAndStatus(ctx, req.UserID, models.CouponUnused)
		if err != nil {
			return err
		}
		now := l.now()
		for _, c := range active {
			if c.ExpiredOn(now) {
				if err := l.coupons.MarkExpired(ctx, c.ID); err != nil {
					return err
				}
				continue
			}
			if c.DiscountValue.Equal(req.DiscountValue) && c.MinOrderValue.Equal(req.MinOrderValue) {
				return apperrors.Duplicate("you already have an active %s%% coupon with minimum order %s", req.DiscountValue.String(), req.MinOrderValue.StringFixed(2))
			}
		}

		if user.AvailableCarbonPoints < req.PointsRequired {
			return apperrors.InsufficientPoints(req.PointsRequired)
		}
		debited, err := l.users.DebitAvailablePoints(ctx, req.UserID, req.PointsRequired)
		if err != nil {
			return err
		}
		if !debited {
			return apperrors.InsufficientPoints(req.PointsRequired)
		}

		code := fmt.Sprintf("ECO%s-%s", req.DiscountValue.Round(0).String(), strings.ToUpper(uuid.New().String()[:8]))
		coupon := &models.Coupon{
			UserID:         req.UserID,
			Code:           code,
			Description:    fmt.Sprintf("%s%% off, redeemed for %d points", req.DiscountValue.String(), req.PointsRequired),
			DiscountType:   models.DiscountPercent,
			DiscountValue:  req.DiscountValue,
			MinOrderValue:  req.MinOrderValue,
			ExpiryDate:     models.StartOfDay(now.Add(redemptionValidity)),
			Status:         models.CouponUnused,
			PointsRequired: req.PointsRequired,
		}
		created, err := l.coupons.CreateIfAbsent(ctx, coupon)
		if err != nil {
			return err
		}
		if !created {
			return apperrors.Duplicate("coupon code %s already issued", code)
		}

		if err := l.rewards.AppendHistory(ctx, &models.PointsHistoryEntry{
			UserID:       req.UserID,
			PointsChange: -req.PointsRequired,
			Description:  fmt.Sprintf("Redeemed coupon %s", code),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		updated, err := l.users.GetByID(ctx, req.UserID)
		if err != nil {
			return err
		}
		result = &ClaimResult{Coupon: coupon, UpdatedPoints: updated.AvailableCarbonPoints}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

// IssueByThreshold grants a tier coupon once per user and code, whatever
// the state of an earlier grant. It reports whether a coupon was created.
func (l *CouponLedger) IssueByThreshold(ctx context.Context, userID string, threshold int64, code string, discountValue, minOrderValue decimal.Decimal) (bool, error) {
	var created bool
	err := l.tx.Do(ctx, func(ctx context.Context) error {
		exists, err := l.coupons.ExistsByUserAndCode(ctx, userID, code)
		if err != nil || exists {
			return err
		}

		now := l.now()
		coupon := &models.Coupon{
			UserID:          userID,
			Code:            code,
			Description:     fmt.Sprintf("Unlocked at %d points (%s%% OFF)", threshold, discountValue.String()),
			DiscountType:    models.DiscountPercent,
			DiscountValue:   discountValue,
			MinOrderValue:   minOrderValue,
			ExpiryDate:      models.StartOfDay(now.Add(thresholdValidity)),
			Status:          models.CouponUnused,
			UnlockThreshold: threshold,
		}
		created, err = l.coupons.CreateIfAbsent(ctx, coupon)
		if err != nil || !created {
			return err
		}

		return l.rewards.AppendHistory(ctx, &models.PointsHistoryEntry{
			UserID:       userID,
			PointsChange: 0,
			Description:  fmt.Sprintf("Reward Unlocked: %s (%s%% OFF)", code, discountValue.String()),
			CreatedAt:    now,
		})
	})
	return created, err
}

// ListForUser returns all of the user's coupons, newest first.
func (l *CouponLedger) ListForUser(ctx context.Context, userID string) ([]models.Coupon, error) {
	return l.coupons.ListByUserID(ctx, userID)
}
