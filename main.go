package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/cache"
	"ecobazaar/internal/carbon"
	"ecobazaar/internal/config"
	"ecobazaar/internal/database"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"
	"ecobazaar/internal/server"
	"ecobazaar/internal/services"
	"ecobazaar/internal/tracing"
	"ecobazaar/internal/workers"
	"ecobazaar/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	carbonCfg, err := carbon.LoadConfig(cfg.Viper)
	if err != nil {
		log.Fatalf("Failed to load carbon tables: %v", err)
	}
	engine := carbon.NewEngine(carbonCfg)

	// --- Tracing ---
	if err := tracing.InitTracing(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.App.Env,
	}); err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// --- Database ---
	db, err := database.Open(database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogQueries:      cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	txOpts := database.DefaultTxOptions()
	txOpts.MaxRetries = cfg.Database.TxMaxRetries
	tx := database.NewTxManager(db, txOpts)
	repos := repositories.NewGORMRepositories(db)

	// --- Cache ---
	var productCache cache.Cache = cache.NewInMemoryCache()
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "ecobazaar:")
		if err != nil {
			log.Printf("Redis unavailable, falling back to in-memory cache: %v", err)
		} else {
			defer redisCache.Close()
			productCache = redisCache
		}
	}

	// --- Initialize RabbitMQ Client ---
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQ.Enabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	// --- Initialize Services ---
	inventory := services.NewInventoryLedger(repos.Products)
	coupons := services.NewCouponLedger(repos, tx)
	rewards := services.NewRewardsEngine(repos, coupons, tx)
	checkout := services.NewCheckoutOrchestrator(repos, inventory, coupons, rewards, engine, tx, publisher)
	authService := services.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.TTL)

	if cfg.IsDevelopment() {
		seedDevelopmentData(repos, authService, engine)
	}

	app := server.NewApp(server.Deps{
		Auth:        authService,
		Catalog:     services.NewCatalogService(repos.Products, engine, productCache, cfg.Redis.CacheTTL),
		Carts:       services.NewCartService(repos, tx),
		Checkout:    checkout,
		Orders:      services.NewOrderService(repos.Orders, repos.Products),
		Coupons:     coupons,
		Rewards:     rewards,
		Wishlist:    services.NewWishlistService(repos),
		Leaderboard: services.NewLeaderboardService(repos.Orders),
		CORSOrigins: cfg.App.CORSOrigins,
		Health: func() fiber.Map {
			return fiber.Map{
				"carbon_tables": engine.Version(),
				"rabbitmq":      mqClient != nil,
				"redis":         cfg.Redis.Enabled,
			}
		},
	})

	// --- Start RabbitMQ Consumer ---
	if mqClient != nil {
		worker := workers.NewReconcileWorker(rewards, 10*time.Second)
		log.Println("Starting RabbitMQ consumer for order events...")
		if err := mqClient.ConsumeOrderEvents(worker.HandleDelivery); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.App.Port)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.App.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracing.Shutdown(ctx); err != nil {
		log.Printf("Error during tracing shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server gracefully stopped")
}

// seedDevelopmentData creates a demo seller, customer and product, and logs
// tokens for both users.
func seedDevelopmentData(repos *repositories.Repositories, authService *services.AuthService, engine *carbon.Engine) {
	ctx := context.Background()

	users := []models.User{
		{ID: "6f9d8f7e-3c1a-4d5b-9a10-0c1e2b3a4d01", Name: "Demo Seller", Email: "seller@ecobazaar.local", Role: models.RoleSeller, CurrentLevel: services.LevelFor(0)},
		{ID: "6f9d8f7e-3c1a-4d5b-9a10-0c1e2b3a4d02", Name: "Demo Customer", Email: "customer@ecobazaar.local", Role: models.RoleCustomer, CurrentLevel: services.LevelFor(0)},
	}
	for i := range users {
		if err := repos.Users.Create(ctx, &users[i]); err != nil && !apperrors.Is(err, apperrors.KindDuplicate) {
			log.Printf("Error seeding user %s: %v", users[i].Email, err)
			continue
		}
		token, err := authService.TokenForUser(ctx, users[i].ID)
		if err != nil {
			log.Printf("Error issuing token for %s: %v", users[i].Email, err)
			continue
		}
		log.Printf("Seeded %s (%s), token: %s", users[i].Email, users[i].Role, token)
	}

	footprint := engine.Footprint(carbon.EcoInputs{
		Materials: []carbon.Input{{Name: "Bamboo", Weight: 0.05}},
		Packaging: []carbon.Input{{Name: "Recycled Paper", Weight: 0.02}},
	})
	product := models.Product{
		ID:                     "6f9d8f7e-3c1a-4d5b-9a10-0c1e2b3a4d10",
		Name:                   "Bamboo Toothbrush",
		Slug:                   "bamboo-toothbrush",
		Description:            "Biodegradable handle, charcoal bristles",
		CategoryName:           "Personal Care (Eco-Friendly)",
		SellerID:               users[0].ID,
		Price:                  decimal.RequireFromString("99.00"),
		StockQuantity:          100,
		CarbonFootprintPerUnit: footprint,
		CarbonSavedPerItem:     engine.SavedPerItem("Personal Care (Eco-Friendly)", footprint),
		City:                   "Pune",
		State:                  "Maharashtra",
	}
	if err := repos.Products.Create(ctx, &product); err != nil && !apperrors.Is(err, apperrors.KindDuplicate) {
		log.Printf("Error seeding product %s: %v", product.Name, err)
		return
	}
	log.Printf("Seeded product: %s (ID: %s)", product.Name, product.ID)
}
