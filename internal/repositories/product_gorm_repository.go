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

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := database.Conn(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetBySlug retrieves a single product by its slug.
func (r *GORMProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := database.Conn(ctx, r.db).First(&product, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product", slug)
		}
		return nil, fmt.Errorf("failed to get product by slug %s: %w", slug, err)
	}
	return &product, nil
}

// Create creates a new product.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := database.Conn(ctx, r.db).Create(product).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return apperrors.Duplicate("product slug %s already exists", product.Slug)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// DecrementStock performs a single conditional UPDATE so concurrent callers
// can never jointly overdraw stock.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return false, fmt.Errorf("failed to decrement stock for product %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMProductRepository) CountBySeller(ctx context.Context, sellerID string) (int64, int64, error) {
	var products, stock int64
	row := database.Conn(ctx, r.db).
		Model(&models.Product{}).
		Select("COUNT(*), COALESCE(SUM(stock_quantity), 0)").
		Where("seller_id = ?", sellerID).
		Row()
	if err := row.Scan(&products, &stock); err != nil {
		return 0, 0, fmt.Errorf("failed to count products for seller %s: %w", sellerID, err)
	}
	return products, stock, nil
}
