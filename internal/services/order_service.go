package services

import (
	"context"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"
)

// OrderService handles read access to orders and seller sales.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orderRepo.ListByUserID(ctx, userID)
}

// GetForUser returns one order if it belongs to the caller. Admins may read
// any order.
func (s *OrderService) GetForUser(ctx context.Context, who models.Identity, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != who.UserID && who.Role != models.RoleAdmin {
		return nil, apperrors.Unauthorized("order %s does not belong to you", orderID)
	}
	return order, nil
}

// ListForSeller returns orders containing the seller's items.
func (s *OrderService) ListForSeller(ctx context.Context, who models.Identity) ([]models.Order, error) {
	if !who.Role.Can(models.CapViewSellerOrders) {
		return nil, apperrors.Unauthorized("role %s cannot view seller orders", who.Role)
	}
	return s.orderRepo.ListBySellerID(ctx, who.UserID)
}

// SellerStats sums the seller's listings and everything sold from them.
func (s *OrderService) SellerStats(ctx context.Context, who models.Identity) (*models.SellerStats, error) {
	if !who.Role.Can(models.CapViewSellerOrders) {
		return nil, apperrors.Unauthorized("role %s cannot view seller stats", who.Role)
	}
	stats, err := s.orderRepo.SellerSales(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	stats.TotalProducts, stats.TotalStock, err = s.productRepo.CountBySeller(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
