package repositories_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/database"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedProduct(t *testing.T, repos *repositories.Repositories, sellerID string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:          "Jute Tote",
		Slug:          "jute-tote-" + uuid.New().String()[:8],
		CategoryName:  "Sustainable Fashion",
		SellerID:      sellerID,
		Price:         decimal.RequireFromString("149.00"),
		StockQuantity: stock,
		City:          "Pune",
		State:         "Maharashtra",
	}
	require.NoError(t, repos.Products.Create(context.Background(), p))
	return p
}

func seedUser(t *testing.T, repos *repositories.Repositories, lifetime, available int64) *models.User {
	t.Helper()
	u := &models.User{
		Name:                  "Ravi Kumar",
		Email:                 uuid.New().String() + "@example.com",
		Role:                  models.RoleCustomer,
		TotalCarbonPoints:     lifetime,
		AvailableCarbonPoints: available,
	}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u
}

func TestProductRepository_DecrementStockNeverOverdraws(t *testing.T) {
	repos := repositories.NewGORMRepositories(openSQLite(t))
	p := seedProduct(t, repos, uuid.New().String(), 5)

	var wg sync.WaitGroup
	var succeeded int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repos.Products.DecrementStock(context.Background(), p.ID, 1)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), succeeded)
	reloaded, err := repos.Products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.StockQuantity)

	ok, err := repos.Products.DecrementStock(context.Background(), p.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductRepository_NotFoundAndDuplicateSlug(t *testing.T) {
	repos := repositories.NewGORMRepositories(openSQLite(t))
	p := seedProduct(t, repos, uuid.New().String(), 1)

	_, err := repos.Products.GetByID(context.Background(), uuid.New().String())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	dup := *p
	dup.ID = ""
	err = repos.Products.Create(context.Background(), &dup)
	assert.True(t, apperrors.Is(err, apperrors.KindDuplicate))
}

func TestUserRepository_PointsUpdates(t *testing.T) {
	repos := repositories.NewGORMRepositories(openSQLite(t))
	ctx := context.Background()
	u := seedUser(t, repos, 100, 50)

	require.NoError(t, repos.Users.CreditOrderPoints(ctx, u.ID, 20))
	got, err := repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), got.TotalCarbonPoints)
	assert.Equal(t, int64(70), got.AvailableCarbonPoints)
	assert.Equal(t, 1, got.TotalEcoOrders)

	ok, err := repos.Users.DebitAvailablePoints(ctx, u.ID, 71)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repos.Users.DebitAvailablePoints(ctx, u.ID, 70)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Users.SetLifetimePoints(ctx, u.ID, 999, 10, "Green Beginner")
	require.NoError(t, err)
	assert.False(t, ok, "stale expected value must not overwrite")
	ok, err = repos.Users.SetLifetimePoints(ctx, u.ID, 120, 10, "Green Beginner")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.TotalCarbonPoints)
	assert.Equal(t, int64(0), got.AvailableCarbonPoints)
	assert.Equal(t, "Green Beginner", got.CurrentLevel)
}

func TestOrderRepository_CreditOnceAndSellerListing(t *testing.T) {
	repos := repositories.NewGORMRepositories(openSQLite(t))
	ctx := context.Background()
	buyer := seedUser(t, repos, 0, 0)
	sellerID := uuid.New().String()
	p := seedProduct(t, repos, sellerID, 3)

	key := "retry-1"
	order := &models.Order{
		UserID: buyer.ID,
		Items: []models.OrderItem{{
			ProductID:   p.ID,
			ProductName: p.Name,
			SellerID:    sellerID,
			Price:       p.Price,
			Quantity:    1,
		}},
		Subtotal:         p.Price,
		ShippingCost:     decimal.NewFromInt(10),
		DiscountAmount:   decimal.Zero,
		TotalAmount:      p.Price.Add(decimal.NewFromInt(10)),
		TotalCarbonSaved: 2.5,
		Status:           models.OrderStatusConfirmed,
		IdempotencyKey:   &key,
	}
	require.NoError(t, repos.Orders.Create(ctx, order))

	flipped, err := repos.Orders.MarkPointsCredited(ctx, order.ID, 25)
	require.NoError(t, err)
	assert.True(t, flipped)
	flipped, err = repos.Orders.MarkPointsCredited(ctx, order.ID, 25)
	require.NoError(t, err)
	assert.False(t, flipped)

	byKey, err := repos.Orders.GetByIdempotencyKey(ctx, buyer.ID, key)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byKey.ID)
	assert.True(t, byKey.PointsCredited)
	assert.Equal(t, int64(25), byKey.CarbonPointsEarned)
	require.Len(t, byKey.Items, 1)

	sellerOrders, err := repos.Orders.ListBySellerID(ctx, sellerID)
	require.NoError(t, err)
	require.Len(t, sellerOrders, 1)
	assert.Equal(t, order.ID, sellerOrders[0].ID)

	none, err := repos.Orders.ListBySellerID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Empty(t, none)

	saved, err := repos.Orders.SumCarbonSavedByUserID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, saved, 1e-9)

	dup := *order
	dup.ID = ""
	dup.Items = nil
	assert.Error(t, repos.Orders.Create(ctx, &dup))
}

func TestCouponRepository_CreateIfAbsentAndMarkUsed(t *testing.T) {
	repos := repositories.NewGORMRepositories(openSQLite(t))
	ctx := context.Background()
	u := seedUser(t, repos, 0, 0)

	newCoupon := func() *models.Coupon {
		return &models.Coupon{
			UserID:        u.ID,
			Code:          "ECO5",
			DiscountType:  models.DiscountPercent,
			DiscountValue: decimal.NewFromInt(5),
			MinOrderValue: decimal.NewFromInt(200),
			ExpiryDate:    models.StartOfDay(time.Now().Add(48 * time.Hour)),
			Status:        models.CouponUnused,
		}
	}

	first := newCoupon()
	created, err := repos.Coupons.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repos.Coupons.CreateIfAbsent(ctx, newCoupon())
	require.NoError(t, err)
	assert.False(t, created)

	found, err := repos.Coupons.FindByUserAndCode(ctx, u.ID, "eco5")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	orderID := uuid.New().String()
	ok, err := repos.Coupons.MarkUsed(ctx, first.ID, orderID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Coupons.MarkUsed(ctx, first.ID, uuid.New().String(), time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	used, err := repos.Coupons.ListByUserAndStatus(ctx, u.ID, models.CouponUsed)
	require.NoError(t, err)
	require.Len(t, used, 1)
	require.NotNil(t, used[0].OrderID)
	assert.Equal(t, orderID, *used[0].OrderID)

	_, err = repos.Coupons.FindByUserAndCode(ctx, uuid.New().String(), "ECO5")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestCouponRepository_OneActiveRedemptionPerTerms(t *testing.T) {
	repos := repositories.NewGORMRepositories(openSQLite(t))
	ctx := context.Background()
	u := seedUser(t, repos, 0, 0)

	redemption := func(code string) *models.Coupon {
		return &models.Coupon{
			UserID:         u.ID,
			Code:           code,
			DiscountType:   models.DiscountPercent,
			DiscountValue:  decimal.NewFromInt(10),
			MinOrderValue:  decimal.NewFromInt(300),
			ExpiryDate:     models.StartOfDay(time.Now().Add(48 * time.Hour)),
			Status:         models.CouponUnused,
			PointsRequired: 500,
		}
	}

	first := redemption("ECO10-AAAA0001")
	created, err := repos.Coupons.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	_, err = repos.Coupons.CreateIfAbsent(ctx, redemption("ECO10-AAAA0002"))
	assert.True(t, apperrors.Is(err, apperrors.KindDuplicate))

	unlocked := redemption("ECO10")
	unlocked.UnlockThreshold = 2500
	unlocked.PointsRequired = 0
	created, err = repos.Coupons.CreateIfAbsent(ctx, unlocked)
	require.NoError(t, err)
	assert.True(t, created)

	ok, err := repos.Coupons.MarkUsed(ctx, first.ID, uuid.New().String(), time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	created, err = repos.Coupons.CreateIfAbsent(ctx, redemption("ECO10-AAAA0003"))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestCartRepository_GetForUpdateInsideTransaction(t *testing.T) {
	db := openSQLite(t)
	repos := repositories.NewGORMRepositories(db)
	tx := database.NewTxManager(db, database.DefaultTxOptions())
	ctx := context.Background()
	u := seedUser(t, repos, 0, 0)
	p := seedProduct(t, repos, uuid.New().String(), 5)

	err := tx.Do(ctx, func(ctx context.Context) error {
		cart, err := repos.Carts.GetForUpdate(ctx, u.ID)
		if err != nil {
			return err
		}
		if err := cart.Add(p, 2); err != nil {
			return err
		}
		return repos.Carts.Save(ctx, cart)
	})
	require.NoError(t, err)

	cart, err := repos.Carts.GetOrCreate(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	again, err := repos.Carts.GetForUpdate(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCartRepository_SaveReplacesItems(t *testing.T) {
	repos := repositories.NewGORMRepositories(openSQLite(t))
	ctx := context.Background()
	u := seedUser(t, repos, 0, 0)
	a := seedProduct(t, repos, uuid.New().String(), 5)
	b := seedProduct(t, repos, uuid.New().String(), 5)

	cart, err := repos.Carts.GetOrCreate(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	require.NoError(t, cart.Add(a, 2))
	require.NoError(t, cart.Add(b, 1))
	require.NoError(t, repos.Carts.Save(ctx, cart))

	again, err := repos.Carts.GetOrCreate(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
	require.Len(t, again.Items, 2)

	require.NoError(t, again.SetQuantity(a.ID, 0))
	require.NoError(t, repos.Carts.Save(ctx, again))

	final, err := repos.Carts.GetOrCreate(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, final.Items, 1)
	assert.Equal(t, b.ID, final.Items[0].ProductID)
}

func TestRewardsRepository_BadgesAndHistory(t *testing.T) {
	repos := repositories.NewGORMRepositories(openSQLite(t))
	ctx := context.Background()
	u := seedUser(t, repos, 0, 0)

	badge := func() *models.UserBadge {
		return &models.UserBadge{UserID: u.ID, BadgeCode: "FIRST_ECO_ORDER", Label: "First Eco Order", Icon: "leaf", AwardedAt: time.Now()}
	}
	awarded, err := repos.Rewards.AwardBadge(ctx, badge())
	require.NoError(t, err)
	assert.True(t, awarded)
	awarded, err = repos.Rewards.AwardBadge(ctx, badge())
	require.NoError(t, err)
	assert.False(t, awarded)

	badges, err := repos.Rewards.ListBadges(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, badges, 1)

	older := time.Now().Add(-time.Hour)
	require.NoError(t, repos.Rewards.AppendHistory(ctx, &models.PointsHistoryEntry{UserID: u.ID, PointsChange: 30, Description: "Earned", CreatedAt: older}))
	require.NoError(t, repos.Rewards.AppendHistory(ctx, &models.PointsHistoryEntry{UserID: u.ID, PointsChange: -20, Description: "Redeemed", CreatedAt: time.Now()}))

	history, err := repos.Rewards.ListHistory(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(-20), history[0].PointsChange)
}
