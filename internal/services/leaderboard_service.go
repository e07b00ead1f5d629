package services

import (
	"context"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// LeaderboardService ranks customers by the carbon their orders saved.
type LeaderboardService struct {
	orders repositories.OrderRepository
	now    Clock
}

func NewLeaderboardService(orders repositories.OrderRepository) *LeaderboardService {
	return &LeaderboardService{orders: orders, now: time.Now}
}

// SetClock replaces the time source.
func (s *LeaderboardService) SetClock(now Clock) {
	s.now = now
}

// MonthWindow returns the UTC calendar month containing t as [from, to).
func MonthWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// TopEcoSaversOfMonth ranks orders placed in the current month. A zero limit
// means DefaultLeaderboardLimit.
func (s *LeaderboardService) TopEcoSaversOfMonth(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	ctx, span := tracer.Start(ctx, "LeaderboardService.TopEcoSaversOfMonth")
	defer span.End()

	if limit == 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit < 0 || limit > MaxLeaderboardLimit {
		return nil, apperrors.Validation("limit must be between 1 and %d", MaxLeaderboardLimit)
	}
	span.SetAttributes(attribute.Int("leaderboard.limit", limit))

	from, to := MonthWindow(s.now())
	entries, err := s.orders.TopEcoSavers(ctx, from, to, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}
