package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusConfirmed = "CONFIRMED"

// Address is the delivery address captured at checkout.
type Address struct {
	FullName   string `json:"full_name" gorm:"type:varchar(150)" validate:"required"`
	Line1      string `json:"line1" gorm:"type:varchar(255)" validate:"required"`
	Line2      string `json:"line2" gorm:"type:varchar(255)"`
	City       string `json:"city" gorm:"type:varchar(100)" validate:"required"`
	State      string `json:"state" gorm:"type:varchar(100)" validate:"required"`
	PostalCode string `json:"postal_code" gorm:"type:varchar(20)" validate:"required"`
	Country    string `json:"country" gorm:"type:varchar(100)"`
	Phone      string `json:"phone" gorm:"type:varchar(32)"`
}

// OrderItem is a snapshot of a product at order time.
type OrderItem struct {
	ID                     string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID                string          `json:"order_id" gorm:"index;type:varchar(36);not null"`
	ProductID              string          `json:"product_id" gorm:"type:varchar(36);not null"`
	ProductName            string          `json:"product_name"`
	SellerID               string          `json:"seller_id" gorm:"index;type:varchar(36)"`
	Price                  decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity               int             `json:"quantity" gorm:"not null"`
	CarbonFootprintPerUnit float64         `json:"carbon_footprint_per_unit"`
	CarbonSavedPerItem     float64         `json:"carbon_saved_per_item"`
	ShippingFee            decimal.Decimal `json:"shipping_fee" gorm:"type:decimal(12,2)"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is created once at checkout. Only PointsCredited and
// CarbonPointsEarned change afterwards.
type Order struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID             string          `json:"user_id" gorm:"index;uniqueIndex:idx_orders_user_idempotency;type:varchar(36);not null"`
	Items              []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal           decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	ShippingCost       decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(12,2);not null"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2);not null"`
	TotalAmount        decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	TotalCarbonSaved   float64         `json:"total_carbon_saved"`
	CouponCode         string          `json:"coupon_code,omitempty" gorm:"type:varchar(64)"`
	Status             string          `json:"status" gorm:"type:varchar(20)"`
	ShippingAddress    Address         `json:"shipping_address" gorm:"embedded;embeddedPrefix:ship_"`
	PointsCredited     bool            `json:"points_credited" gorm:"not null;default:false"`
	CarbonPointsEarned int64           `json:"carbon_points_earned" gorm:"not null;default:0"`
	IdempotencyKey     *string         `json:"-" gorm:"uniqueIndex:idx_orders_user_idempotency;type:varchar(128)"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// SellerStats sums a seller's listings and the order lines sold from them.
type SellerStats struct {
	TotalProducts    int64           `json:"total_products"`
	TotalStock       int64           `json:"total_stock"`
	TotalOrders      int64           `json:"total_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalCarbonSaved float64         `json:"total_co2_saved"`
}
