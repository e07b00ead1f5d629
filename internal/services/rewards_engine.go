package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	reconcileTolerance = 1
	reconcileAttempts  = 3
)

// Badge describes an award granted by BadgeChecks.
type Badge struct {
	Code  string
	Label string
	Icon  string
}

var (
	BadgeFirstEcoOrder = Badge{Code: "FIRST_ECO_ORDER", Label: "First Eco Order", Icon: "leaf"}
	BadgeTenEcoOrders  = Badge{Code: "10_ECO_ORDERS", Label: "Eco Enthusiast", Icon: "shopping-bag"}
	Badge100KgSaved    = Badge{Code: "100_KG_SAVED", Label: "100kg Saver", Icon: "cloud-lightning"}
	Badge500Points     = Badge{Code: "500_POINTS", Label: "500 Points Club", Icon: "star"}
)

var errLifetimeChanged = errors.New("lifetime points changed during reconcile")

// RewardRung is one rung of the threshold ladder as seen by a user.
type RewardRung struct {
	Code          string `json:"code"`
	Percent       int64  `json:"percent"`
	MinOrderValue int64  `json:"min_order_value"`
	Threshold     int64  `json:"threshold"`
	Unlocked      bool   `json:"unlocked"`
	PointsNeeded  int64  `json:"points_needed"`
}

// RewardsSummary is the rewards read model.
type RewardsSummary struct {
	TotalCarbonPoints     int64              `json:"total_carbon_points"`
	AvailableCarbonPoints int64              `json:"available_carbon_points"`
	CurrentLevel          string             `json:"current_level"`
	NextLevelThreshold    int64              `json:"next_level_threshold"`
	PointsToNextLevel     int64              `json:"points_to_next_level"`
	ProgressPercent       float64            `json:"progress_percent"`
	TotalCarbonSavedKg    float64            `json:"total_carbon_saved_kg"`
	Rewards               []RewardRung       `json:"rewards"`
	ActiveCoupons         []models.Coupon    `json:"active_coupons"`
	UsedCoupons           []models.Coupon    `json:"used_coupons"`
	Badges                []models.UserBadge `json:"badges"`
}

// RewardsEngine owns lifetime and available points, levels and badges.
type RewardsEngine struct {
	users   repositories.UserRepository
	orders  repositories.OrderRepository
	coupons repositories.CouponRepository
	rewards repositories.RewardsRepository
	ledger  *CouponLedger
	tx      Transactor
}

func NewRewardsEngine(repos *repositories.Repositories, ledger *CouponLedger, tx Transactor) *RewardsEngine {
	return &RewardsEngine{
		users:   repos.Users,
		orders:  repos.Orders,
		coupons: repos.Coupons,
		rewards: repos.Rewards,
		ledger:  ledger,
		tx:      tx,
	}
}

// CreditOrder awards the order's points to its owner exactly once and
// returns the points credited by this call.
func (e *RewardsEngine) CreditOrder(ctx context.Context, order *models.Order) (int64, error) {
	if order.PointsCredited {
		return 0, nil
	}
	ctx, span := tracer.Start(ctx, "RewardsEngine.CreditOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", order.ID))

	points := PointsForCarbon(order.TotalCarbonSaved)
	var credited int64
	err := e.tx.Do(ctx, func(ctx context.Context) error {
		flipped, err := e.orders.MarkPointsCredited(ctx, order.ID, points)
		if err != nil {
			return err
		}
		if !flipped {
			return nil
		}
		if err := e.users.CreditOrderPoints(ctx, order.UserID, points); err != nil {
			return err
		}
		orderID := order.ID
		if err := e.rewards.AppendHistory(ctx, &models.PointsHistoryEntry{
			UserID:       order.UserID,
			OrderID:      &orderID,
			PointsChange: points,
			Description:  fmt.Sprintf("Earned from Order #%s", order.ID),
		}); err != nil {
			return err
		}

		user, err := e.users.GetByID(ctx, order.UserID)
		if err != nil {
			return err
		}
		if level := LevelFor(user.TotalCarbonPoints); level != user.CurrentLevel {
			if err := e.users.UpdateLevel(ctx, user.ID, level); err != nil {
				return err
			}
			user.CurrentLevel = level
		}
		if err := e.UnlockThresholdCoupons(ctx, user); err != nil {
			return err
		}
		if err := e.BadgeChecks(ctx, user); err != nil {
			return err
		}
		credited = points
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	order.PointsCredited = true
	order.CarbonPointsEarned = points
	return credited, nil
}

// UnlockThresholdCoupons issues every ladder coupon the user's lifetime
// points have reached.
func (e *RewardsEngine) UnlockThresholdCoupons(ctx context.Context, user *models.User) error {
	for _, rung := range ThresholdLadder {
		if user.TotalCarbonPoints < rung.Threshold {
			continue
		}
		if _, err := e.ledger.IssueByThreshold(ctx, user.ID, rung.Threshold, rung.Code,
			decimal.NewFromInt(rung.Percent), decimal.NewFromInt(rung.MinOrderValue)); err != nil {
			return fmt.Errorf("failed to unlock %s for user %s: %w", rung.Code, user.ID, err)
		}
	}
	return nil
}

// BadgeChecks awards every badge whose condition the user meets.
func (e *RewardsEngine) BadgeChecks(ctx context.Context, user *models.User) error {
	var earned []Badge
	if user.TotalEcoOrders == 1 {
		earned = append(earned, BadgeFirstEcoOrder)
	}
	if user.TotalEcoOrders == 10 {
		earned = append(earned, BadgeTenEcoOrders)
	}
	if float64(user.TotalCarbonPoints)/10 >= 100 {
		earned = append(earned, Badge100KgSaved)
	}
	if user.TotalCarbonPoints >= 500 {
		earned = append(earned, Badge500Points)
	}
	for _, b := range earned {
		if _, err := e.rewards.AwardBadge(ctx, &models.UserBadge{
			UserID:    user.ID,
			BadgeCode: b.Code,
			Label:     b.Label,
			Icon:      b.Icon,
			AwardedAt: e.ledger.now(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Reconcile rebuilds lifetime points and level from order history when the
// stored total drifted by more than the tolerance. The overwrite is a
// compare-and-set on the observed total, so a concurrent credit forces a
// re-read instead of being lost.
func (e *RewardsEngine) Reconcile(ctx context.Context, userID string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "RewardsEngine.Reconcile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	for attempt := 0; attempt < reconcileAttempts; attempt++ {
		var user *models.User
		err := e.tx.Do(ctx, func(ctx context.Context) error {
			var err error
			user, err = e.users.GetByID(ctx, userID)
			if err != nil {
				return err
			}
			saved, err := e.orders.SumCarbonSavedByUserID(ctx, userID)
			if err != nil {
				return err
			}
			expected := PointsForCarbon(saved)
			if math.Abs(float64(user.TotalCarbonPoints-expected)) <= reconcileTolerance {
				return nil
			}

			level := LevelFor(expected)
			ok, err := e.users.SetLifetimePoints(ctx, userID, user.TotalCarbonPoints, expected, level)
			if err != nil {
				return err
			}
			if !ok {
				return errLifetimeChanged
			}
			user.TotalCarbonPoints = expected
			user.CurrentLevel = level
			return e.UnlockThresholdCoupons(ctx, user)
		})
		if errors.Is(err, errLifetimeChanged) {
			continue
		}
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		return user, nil
	}
	return nil, fmt.Errorf("reconcile user %s: %w", userID, errLifetimeChanged)
}

// Summary reconciles the user and assembles the rewards read model.
func (e *RewardsEngine) Summary(ctx context.Context, userID string) (*RewardsSummary, error) {
	user, err := e.Reconcile(ctx, userID)
	if err != nil {
		return nil, err
	}
	coupons, err := e.coupons.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := e.rewards.ListBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	points := user.TotalCarbonPoints
	next := NextLevelThreshold(points)
	summary := &RewardsSummary{
		TotalCarbonPoints:     points,
		AvailableCarbonPoints: user.AvailableCarbonPoints,
		CurrentLevel:          LevelFor(points),
		NextLevelThreshold:    next,
		ProgressPercent:       ProgressPercent(points),
		TotalCarbonSavedKg:    float64(points) / 10,
		ActiveCoupons:         []models.Coupon{},
		UsedCoupons:           []models.Coupon{},
		Badges:                badges,
	}
	if next > 0 {
		summary.PointsToNextLevel = next - points
	}
	for _, rung := range ThresholdLadder {
		r := RewardRung{
			Code:          rung.Code,
			Percent:       rung.Percent,
			MinOrderValue: rung.MinOrderValue,
			Threshold:     rung.Threshold,
			Unlocked:      points >= rung.Threshold,
		}
		if !r.Unlocked {
			r.PointsNeeded = rung.Threshold - points
		}
		summary.Rewards = append(summary.Rewards, r)
	}
	now := e.ledger.now()
	for _, c := range coupons {
		switch {
		case c.Status == models.CouponUsed:
			summary.UsedCoupons = append(summary.UsedCoupons, c)
		case c.Status == models.CouponUnused && !c.ExpiredOn(now):
			summary.ActiveCoupons = append(summary.ActiveCoupons, c)
		}
	}
	return summary, nil
}

// History returns the user's points ledger, newest first.
func (e *RewardsEngine) History(ctx context.Context, userID string) ([]models.PointsHistoryEntry, error) {
	if _, err := e.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return e.rewards.ListHistory(ctx, userID)
}

// Badges returns the user's badges in award order.
func (e *RewardsEngine) Badges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	if _, err := e.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return e.rewards.ListBadges(ctx, userID)
}
