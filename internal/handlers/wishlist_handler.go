package handlers

import (
	"ecobazaar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WishlistHandler handles HTTP requests for the caller's wishlist.
type WishlistHandler struct {
	service *services.WishlistService
}

func NewWishlistHandler(service *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{service: service}
}

// RegisterRoutes registers the wishlist routes with the Fiber app.
func (h *WishlistHandler) RegisterRoutes(router fiber.Router) {
	wishlistRoutes := router.Group("/wishlist")
	wishlistRoutes.Get("/", h.HandleList)
	wishlistRoutes.Post("/add/:productId", h.HandleAdd)
	wishlistRoutes.Delete("/:id", h.HandleRemove)
}

func (h *WishlistHandler) HandleList(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondError(c, err, "Could not retrieve wishlist")
	}
	return c.JSON(items)
}

func (h *WishlistHandler) HandleAdd(c *fiber.Ctx) error {
	items, err := h.service.Add(c.UserContext(), identity(c).UserID, c.Params("productId"))
	if err != nil {
		return respondError(c, err, "Could not add product to wishlist")
	}
	return c.JSON(items)
}

func (h *WishlistHandler) HandleRemove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.UserContext(), identity(c).UserID, c.Params("id")); err != nil {
		return respondError(c, err, "Could not remove wishlist item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
