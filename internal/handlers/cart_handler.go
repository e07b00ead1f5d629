package handlers

import (
	"ecobazaar/internal/middleware"
	"ecobazaar/internal/models"
	"ecobazaar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type checkoutRequest struct {
	ShippingAddress models.Address `json:"shipping_address"`
	CouponCode      string         `json:"coupon_code" validate:"omitempty,max=64"`
}

// CartHandler handles HTTP requests for the cart and checkout.
type CartHandler struct {
	carts    *services.CartService
	checkout *services.CheckoutOrchestrator
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *services.CartService, checkout *services.CheckoutOrchestrator) *CartHandler {
	return &CartHandler{
		carts:    carts,
		checkout: checkout,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)

	canCheckout := middleware.RequireCapability(models.CapCheckout)
	cartRoutes.Post("/items", canCheckout, h.HandleAddItem)
	cartRoutes.Put("/items/:productId", canCheckout, h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", canCheckout, h.HandleRemoveItem)
	cartRoutes.Post("/checkout", canCheckout, h.HandleCheckout)
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.carts.GetCart(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondError(c, err, "Could not retrieve cart")
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	cart, err := h.carts.AddItem(c.UserContext(), identity(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err, "Could not add item to cart")
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	cart, err := h.carts.UpdateItem(c.UserContext(), identity(c).UserID, c.Params("productId"), req.Quantity)
	if err != nil {
		return respondError(c, err, "Could not update cart item")
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.carts.RemoveItem(c.UserContext(), identity(c).UserID, c.Params("productId"))
	if err != nil {
		return respondError(c, err, "Could not remove cart item")
	}
	return c.JSON(cart)
}

// HandleCheckout converts the caller's cart into an order. An
// Idempotency-Key header makes retries return the first order.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	order, err := h.checkout.Checkout(c.UserContext(), services.CheckoutRequest{
		Identity:        identity(c),
		ShippingAddress: req.ShippingAddress,
		CouponCode:      req.CouponCode,
		IdempotencyKey:  c.Get("Idempotency-Key"),
	})
	if err != nil {
		return respondError(c, err, "Could not complete checkout")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
