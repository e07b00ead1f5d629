package handlers

import (
	"ecobazaar/internal/middleware"
	"ecobazaar/internal/models"
	"ecobazaar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)

	canViewSales := middleware.RequireCapability(models.CapViewSellerOrders)
	router.Get("/seller/orders", canViewSales, h.HandleGetSellerOrders)
	router.Get("/seller/stats", canViewSales, h.HandleGetSellerStats)
}

// HandleGetOrders retrieves the caller's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListForUser(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order owned by the caller.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetForUser(c.UserContext(), identity(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleGetSellerOrders retrieves orders containing the seller's items.
func (h *OrderHandler) HandleGetSellerOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListForSeller(c.UserContext(), identity(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve seller orders")
	}
	return c.JSON(orders)
}

// HandleGetSellerStats sums the seller's listings and sales.
func (h *OrderHandler) HandleGetSellerStats(c *fiber.Ctx) error {
	stats, err := h.service.SellerStats(c.UserContext(), identity(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve seller stats")
	}
	return c.JSON(stats)
}
