package services

import (
	"context"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"
)

// WishlistService keeps the products a user saved for later.
type WishlistService struct {
	wishlist repositories.WishlistRepository
	products repositories.ProductRepository
}

func NewWishlistService(repos *repositories.Repositories) *WishlistService {
	return &WishlistService{
		wishlist: repos.Wishlist,
		products: repos.Products,
	}
}

func (s *WishlistService) List(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	return s.wishlist.ListByUserID(ctx, userID)
}

// Add saves the product for the user. Saving it twice is a no-op.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) ([]models.WishlistItem, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := s.wishlist.AddIfAbsent(ctx, &models.WishlistItem{UserID: userID, ProductID: productID}); err != nil {
		return nil, err
	}
	return s.wishlist.ListByUserID(ctx, userID)
}

// Remove deletes one of the caller's own wishlist items.
func (s *WishlistService) Remove(ctx context.Context, userID, itemID string) error {
	item, err := s.wishlist.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return apperrors.Unauthorized("wishlist item %s does not belong to you", itemID)
	}
	return s.wishlist.Delete(ctx, itemID)
}
