package repositories

import (
	"context"
	"errors"
	"fmt"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/database"
	"ecobazaar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	if err := database.Conn(ctx, r.db).Create(user).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return apperrors.Duplicate("email %s already registered", user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := database.Conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

func (r *GORMUserRepository) CreditOrderPoints(ctx context.Context, id string, points int64) error {
	res := database.Conn(ctx, r.db).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"total_carbon_points":     gorm.Expr("total_carbon_points + ?", points),
			"available_carbon_points": gorm.Expr("available_carbon_points + ?", points),
			"total_eco_orders":        gorm.Expr("total_eco_orders + ?", 1),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to credit points to user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

func (r *GORMUserRepository) DebitAvailablePoints(ctx context.Context, id string, points int64) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&models.User{}).
		Where("id = ? AND available_carbon_points >= ?", id, points).
		UpdateColumn("available_carbon_points", gorm.Expr("available_carbon_points - ?", points))
	if res.Error != nil {
		return false, fmt.Errorf("failed to debit points from user %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMUserRepository) UpdateLevel(ctx context.Context, id, level string) error {
	res := database.Conn(ctx, r.db).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("current_level", level)
	if res.Error != nil {
		return fmt.Errorf("failed to update level for user %s: %w", id, res.Error)
	}
	return nil
}

func (r *GORMUserRepository) SetLifetimePoints(ctx context.Context, id string, expected, points int64, level string) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&models.User{}).
		Where("id = ? AND total_carbon_points = ?", id, expected).
		UpdateColumns(map[string]interface{}{
			"total_carbon_points": points,
			"current_level":       level,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to set lifetime points for user %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
