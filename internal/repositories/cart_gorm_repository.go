package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecobazaar/internal/database"
	"ecobazaar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository persists the cart aggregate.
type GORMCartRepository struct {
	db *gorm.DB
}

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) load(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := database.Conn(ctx, r.db).Preload("Items").First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart, creating an empty one on first use.
func (r *GORMCartRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := r.load(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}

	fresh := models.NewCart(userID)
	if err := database.Conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Omit("Items").Create(fresh).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart for user %s: %w", userID, err)
	}
	cart, err = r.load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	return cart, nil
}

// GetForUpdate locks the carts row before loading the items, so concurrent
// writers of the same cart queue behind the caller's transaction. SQLite has
// no row locks; its single connection serializes writers instead.
func (r *GORMCartRepository) GetForUpdate(ctx context.Context, userID string) (*models.Cart, error) {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	var locked models.Cart
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&locked, "user_id = ?", userID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart for user %s: %w", userID, err)
	}
	cart, err := r.load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	return cart, nil
}

// Save replaces the stored items with the aggregate's current items.
func (r *GORMCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	return database.WithTransaction(ctx, r.db, database.DefaultTxOptions(), func(ctx context.Context) error {
		conn := database.Conn(ctx, r.db)
		if err := conn.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}
		if len(cart.Items) > 0 {
			for i := range cart.Items {
				cart.Items[i].CartID = cart.ID
			}
			if err := conn.Create(&cart.Items).Error; err != nil {
				return fmt.Errorf("failed to save cart items: %w", err)
			}
		}
		if err := conn.Model(cart).UpdateColumn("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("failed to touch cart: %w", err)
		}
		return nil
	})
}
