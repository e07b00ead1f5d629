package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product listed by a seller.
type Product struct {
	ID                     string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name                   string          `json:"name" gorm:"type:varchar(150);not null" validate:"required,min=3,max=150"`
	Slug                   string          `json:"slug" gorm:"uniqueIndex;type:varchar(200)"`
	Description            string          `json:"description" validate:"omitempty,max=1000"`
	CategoryName           string          `json:"category_name" gorm:"type:varchar(100)" validate:"required"`
	SellerID               string          `json:"seller_id" gorm:"index;type:varchar(36)"`
	Price                  decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	StockQuantity          int             `json:"stock_quantity" gorm:"not null;default:0;check:chk_products_stock,stock_quantity >= 0" validate:"gte=0"`
	CarbonFootprintPerUnit float64         `json:"carbon_footprint_per_unit"`
	CarbonSavedPerItem     float64         `json:"carbon_saved_per_item"`
	City                   string          `json:"city" gorm:"type:varchar(100)"`
	State                  string          `json:"state" gorm:"type:varchar(100)"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
