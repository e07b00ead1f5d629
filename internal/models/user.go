package models

import "time"

// User represents a marketplace account with its rewards balances.
type User struct {
	ID                    string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name                  string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email                 string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Role                  Role      `json:"role" gorm:"type:varchar(16);not null;default:CUSTOMER"`
	TotalCarbonPoints     int64     `json:"total_carbon_points" gorm:"not null;default:0"`
	AvailableCarbonPoints int64     `json:"available_carbon_points" gorm:"not null;default:0;check:chk_users_available_points,available_carbon_points >= 0"`
	CurrentLevel          string    `json:"current_level" gorm:"type:varchar(32)"`
	TotalEcoOrders        int       `json:"total_eco_orders" gorm:"not null;default:0"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
