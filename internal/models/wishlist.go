package models

import "time"

// WishlistItem marks a product a user wants to buy later. (UserID, ProductID)
// is unique.
type WishlistItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_wishlist_user_product;type:varchar(36);not null"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex:idx_wishlist_user_product;type:varchar(36);not null"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"created_at"`
}
