package server

import (
	"time"

	"ecobazaar/internal/handlers"
	"ecobazaar/internal/middleware"
	"ecobazaar/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps is everything NewApp routes to.
type Deps struct {
	Auth        *services.AuthService
	Catalog     *services.CatalogService
	Carts       *services.CartService
	Checkout    *services.CheckoutOrchestrator
	Orders      *services.OrderService
	Coupons     *services.CouponLedger
	Rewards     *services.RewardsEngine
	Wishlist    *services.WishlistService
	Leaderboard *services.LeaderboardService

	CORSOrigins string
	// Health may add fields to the /health response.
	Health func() fiber.Map
}

// NewApp builds the Fiber app with every route under /api/v1.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "ecobazaar"})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	origins := deps.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{AllowOrigins: origins}))
	app.Use(middleware.Tracing())

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if deps.Health != nil {
			for k, v := range deps.Health() {
				body[k] = v
			}
		}
		return c.Status(fiber.StatusOK).JSON(body)
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.AuthRequired(deps.Auth))

	handlers.NewProductHandler(deps.Catalog).RegisterRoutes(apiV1)
	handlers.NewCartHandler(deps.Carts, deps.Checkout).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(deps.Orders).RegisterRoutes(apiV1)
	handlers.NewCouponHandler(deps.Coupons).RegisterRoutes(apiV1)
	handlers.NewRewardsHandler(deps.Rewards).RegisterRoutes(apiV1)
	handlers.NewWishlistHandler(deps.Wishlist).RegisterRoutes(apiV1)
	handlers.NewLeaderboardHandler(deps.Leaderboard).RegisterRoutes(apiV1)

	return app
}
