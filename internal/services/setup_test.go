package services_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"ecobazaar/internal/carbon"
	"ecobazaar/internal/database"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"
	"ecobazaar/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

var (
	pune   = models.Address{FullName: "Asha Rao", Line1: "12 MG Road", City: "Pune", State: "Maharashtra", PostalCode: "411001", Country: "IN", Phone: "9999999999"}
	mumbai = models.Address{FullName: "Asha Rao", Line1: "4 Marine Drive", City: "Mumbai", State: "Maharashtra", PostalCode: "400001", Country: "IN", Phone: "9999999999"}
	delhi  = models.Address{FullName: "Asha Rao", Line1: "9 Janpath", City: "New Delhi", State: "Delhi", PostalCode: "110001", Country: "IN", Phone: "9999999999"}
)

type fixture struct {
	db        *gorm.DB
	repos     *repositories.Repositories
	tx        *database.TxManager
	engine    *carbon.Engine
	inventory *services.InventoryLedger
	coupons   *services.CouponLedger
	rewards   *services.RewardsEngine
	checkout  *services.CheckoutOrchestrator
	carts     *services.CartService
	orders    *services.OrderService
	wishlist  *services.WishlistService
	board     *services.LeaderboardService
	publisher *MockPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repos := repositories.NewGORMRepositories(db)
	tx := database.NewTxManager(db, database.DefaultTxOptions())
	engine := carbon.NewEngine(carbon.DefaultConfig())

	f := &fixture{db: db, repos: repos, tx: tx, engine: engine, publisher: new(MockPublisher)}
	f.inventory = services.NewInventoryLedger(repos.Products)
	f.coupons = services.NewCouponLedger(repos, tx)
	f.rewards = services.NewRewardsEngine(repos, f.coupons, tx)
	f.checkout = services.NewCheckoutOrchestrator(repos, f.inventory, f.coupons, f.rewards, engine, tx, f.publisher)
	f.carts = services.NewCartService(repos, tx)
	f.orders = services.NewOrderService(repos.Orders, repos.Products)
	f.wishlist = services.NewWishlistService(repos)
	f.board = services.NewLeaderboardService(repos.Orders)
	return f
}

// expectPublish accepts any number of order.created events.
func (f *fixture) expectPublish() {
	f.publisher.On("Publish", services.RoutingKeyOrderCreated, mock.Anything).Return(nil).Maybe()
}

func (f *fixture) user(t *testing.T, role models.Role, lifetime, available int64) *models.User {
	t.Helper()
	u := &models.User{
		Name:                  "Asha Rao",
		Email:                 uuid.New().String() + "@example.com",
		Role:                  role,
		TotalCarbonPoints:     lifetime,
		AvailableCarbonPoints: available,
		CurrentLevel:          services.LevelFor(lifetime),
	}
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return u
}

// product lists an item sold from Pune.
func (f *fixture) product(t *testing.T, name string, price string, stock int, savedPerItem float64) *models.Product {
	t.Helper()
	return f.productAt(t, name, price, stock, savedPerItem, "Pune", "Maharashtra")
}

func (f *fixture) productAt(t *testing.T, name string, price string, stock int, savedPerItem float64, city, state string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:                   name,
		Slug:                   strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + uuid.New().String()[:8],
		CategoryName:           "Eco-Friendly Groceries",
		SellerID:               uuid.New().String(),
		Price:                  decimal.RequireFromString(price),
		StockQuantity:          stock,
		CarbonFootprintPerUnit: 1.0,
		CarbonSavedPerItem:     savedPerItem,
		City:                   city,
		State:                  state,
	}
	require.NoError(t, f.repos.Products.Create(context.Background(), p))
	return p
}

func (f *fixture) coupon(t *testing.T, userID, code string, percent, minOrder int64, expiry time.Time) *models.Coupon {
	t.Helper()
	c := &models.Coupon{
		UserID:        userID,
		Code:          code,
		DiscountType:  models.DiscountPercent,
		DiscountValue: decimal.NewFromInt(percent),
		MinOrderValue: decimal.NewFromInt(minOrder),
		ExpiryDate:    models.StartOfDay(expiry),
		Status:        models.CouponUnused,
	}
	created, err := f.repos.Coupons.CreateIfAbsent(context.Background(), c)
	require.NoError(t, err)
	require.True(t, created)
	return c
}

func (f *fixture) addToCart(t *testing.T, userID string, p *models.Product, qty int) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), userID, p.ID, qty)
	require.NoError(t, err)
}

func (f *fixture) reloadUser(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.repos.Users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) reloadProduct(t *testing.T, id string) *models.Product {
	t.Helper()
	p, err := f.repos.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

// placedOrder stores an order directly with a fixed creation time.
func (f *fixture) placedOrder(t *testing.T, userID string, saved float64, at time.Time) *models.Order {
	t.Helper()
	o := &models.Order{
		UserID:           userID,
		Subtotal:         decimal.NewFromInt(100),
		ShippingCost:     decimal.Zero,
		DiscountAmount:   decimal.Zero,
		TotalAmount:      decimal.NewFromInt(100),
		TotalCarbonSaved: saved,
		Status:           models.OrderStatusConfirmed,
		ShippingAddress:  pune,
		CreatedAt:        at,
	}
	require.NoError(t, f.repos.Orders.Create(context.Background(), o))
	return o
}

func customer(u *models.User) models.Identity {
	return models.Identity{UserID: u.ID, Role: u.Role}
}
