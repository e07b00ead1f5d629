package models

import "time"

// PointsHistoryEntry is an append-only record of a points delta.
type PointsHistoryEntry struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string    `json:"user_id" gorm:"index;type:varchar(36);not null"`
	OrderID      *string   `json:"order_id,omitempty" gorm:"type:varchar(36)"`
	PointsChange int64     `json:"points_change"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// UserBadge records a badge awarded to a user. (UserID, BadgeCode) is unique.
type UserBadge struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_user_badges_user_code;type:varchar(36);not null"`
	BadgeCode string    `json:"badge_code" gorm:"uniqueIndex:idx_user_badges_user_code;type:varchar(32);not null"`
	Label     string    `json:"label"`
	Icon      string    `json:"icon"`
	AwardedAt time.Time `json:"awarded_at"`
}

// LeaderboardEntry is one user's carbon savings over a window.
type LeaderboardEntry struct {
	UserID            string  `json:"user_id"`
	CustomerName      string  `json:"customer_name"`
	TotalCarbonSaved  float64 `json:"total_carbon_saved_kg"`
	TotalCarbonPoints int64   `json:"total_carbon_points"`
	CurrentLevel      string  `json:"current_level"`
	EcoOrdersCount    int64   `json:"eco_orders_count"`
}
