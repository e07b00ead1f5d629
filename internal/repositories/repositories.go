package repositories

import "gorm.io/gorm"

// Repositories groups every repository bound to the same database.
type Repositories struct {
	Products ProductRepository
	Users    UserRepository
	Orders   OrderRepository
	Carts    CartRepository
	Coupons  CouponRepository
	Rewards  RewardsRepository
	Wishlist WishlistRepository
}

// NewGORMRepositories builds the GORM implementation of every repository.
func NewGORMRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Products: NewGORMProductRepository(db),
		Users:    NewGORMUserRepository(db),
		Orders:   NewGORMOrderRepository(db),
		Carts:    NewGORMCartRepository(db),
		Coupons:  NewGORMCouponRepository(db),
		Rewards:  NewGORMRewardsRepository(db),
		Wishlist: NewGORMWishlistRepository(db),
	}
}
