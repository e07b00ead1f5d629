package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/database"
	"ecobazaar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts the order together with its items.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := database.Conn(ctx, r.db).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := database.Conn(ctx, r.db).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	var order models.Order
	err := database.Conn(ctx, r.db).
		Preload("Items").
		First(&order, "user_id = ? AND idempotency_key = ?", userID, key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order with idempotency key", key)
		}
		return nil, fmt.Errorf("failed to get order by idempotency key: %w", err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) ListByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := database.Conn(ctx, r.db).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// ListBySellerID returns orders that contain at least one item sold by
// sellerID.
func (r *GORMOrderRepository) ListBySellerID(ctx context.Context, sellerID string) ([]models.Order, error) {
	conn := database.Conn(ctx, r.db)
	sub := conn.Model(&models.OrderItem{}).Select("order_id").Where("seller_id = ?", sellerID)

	var orders []models.Order
	err := conn.
		Preload("Items").
		Where("id IN (?)", sub).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for seller %s: %w", sellerID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) MarkPointsCredited(ctx context.Context, id string, points int64) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&models.Order{}).
		Where("id = ? AND points_credited = ?", id, false).
		UpdateColumns(map[string]interface{}{
			"points_credited":      true,
			"carbon_points_earned": points,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %s credited: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMOrderRepository) SumCarbonSavedByUserID(ctx context.Context, userID string) (float64, error) {
	var total float64
	row := database.Conn(ctx, r.db).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_carbon_saved), 0)").
		Where("user_id = ?", userID).
		Row()
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum carbon saved for user %s: %w", userID, err)
	}
	return total, nil
}

const ecoSaverColumns = "orders.user_id AS user_id, users.name AS customer_name, " +
	"SUM(orders.total_carbon_saved) AS total_carbon_saved, " +
	"users.total_carbon_points AS total_carbon_points, users.current_level AS current_level, " +
	"COUNT(orders.id) AS eco_orders_count"

func (r *GORMOrderRepository) TopEcoSavers(ctx context.Context, from, to time.Time, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := database.Conn(ctx, r.db).
		Table("orders").
		Select(ecoSaverColumns).
		Joins("JOIN users ON users.id = orders.user_id").
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Group("orders.user_id, users.name, users.total_carbon_points, users.current_level").
		Order("SUM(orders.total_carbon_saved) DESC, orders.user_id").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank eco savers: %w", err)
	}
	return entries, nil
}

func (r *GORMOrderRepository) SellerSales(ctx context.Context, sellerID string) (*models.SellerStats, error) {
	var stats models.SellerStats
	row := database.Conn(ctx, r.db).
		Model(&models.OrderItem{}).
		Select("COUNT(DISTINCT order_id), COALESCE(SUM(price * quantity), 0), COALESCE(SUM(carbon_saved_per_item * quantity), 0)").
		Where("seller_id = ?", sellerID).
		Row()
	if err := row.Scan(&stats.TotalOrders, &stats.TotalRevenue, &stats.TotalCarbonSaved); err != nil {
		return nil, fmt.Errorf("failed to sum sales for seller %s: %w", sellerID, err)
	}
	stats.TotalRevenue = stats.TotalRevenue.Round(2)
	return &stats, nil
}
