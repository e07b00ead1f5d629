package models

import (
	"time"

	"ecobazaar/internal/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem holds one distinct product in a cart, with the price and carbon
// values captured when it was first added.
type CartItem struct {
	ID                     string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID                 string          `json:"cart_id" gorm:"uniqueIndex:idx_cart_items_cart_product;type:varchar(36);not null"`
	ProductID              string          `json:"product_id" gorm:"uniqueIndex:idx_cart_items_cart_product;type:varchar(36);not null"`
	ProductName            string          `json:"product_name"`
	SellerID               string          `json:"seller_id" gorm:"type:varchar(36)"`
	Price                  decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity               int             `json:"quantity" gorm:"not null"`
	CarbonFootprintPerUnit float64         `json:"carbon_footprint_per_unit"`
	CarbonSavedPerItem     float64         `json:"carbon_saved_per_item"`
}

// Cart is the aggregate root for a user's cart. Items are mutated only
// through its methods and persisted as a whole by CartRepository.Save.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart owned by userID.
func NewCart(userID string) *Cart {
	return &Cart{ID: uuid.New().String(), UserID: userID}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts qty units of product into the cart, merging with an existing line.
func (c *Cart) Add(product *Product, qty int) error {
	if qty <= 0 {
		return apperrors.Validation("quantity must be positive")
	}
	if i := c.indexOf(product.ID); i >= 0 {
		c.Items[i].Quantity += qty
		return nil
	}
	c.Items = append(c.Items, CartItem{
		ID:                     uuid.New().String(),
		CartID:                 c.ID,
		ProductID:              product.ID,
		ProductName:            product.Name,
		SellerID:               product.SellerID,
		Price:                  product.Price,
		Quantity:               qty,
		CarbonFootprintPerUnit: product.CarbonFootprintPerUnit,
		CarbonSavedPerItem:     product.CarbonSavedPerItem,
	})
	return nil
}

// SetQuantity replaces the quantity of a line. Zero removes it.
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty < 0 {
		return apperrors.Validation("quantity must not be negative")
	}
	i := c.indexOf(productID)
	if i < 0 {
		return apperrors.NotFound("cart item", productID)
	}
	if qty == 0 {
		c.Remove(productID)
		return nil
	}
	c.Items[i].Quantity = qty
	return nil
}

// Remove deletes the line for productID and reports whether it existed.
func (c *Cart) Remove(productID string) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Find returns the line for productID.
func (c *Cart) Find(productID string) (CartItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return CartItem{}, false
}

// Snapshot returns a copy of the current lines.
func (c *Cart) Snapshot() []CartItem {
	out := make([]CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal is the sum of snapshot price times quantity.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
