package handlers

import (
	"ecobazaar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RewardsHandler serves the rewards read model.
type RewardsHandler struct {
	engine *services.RewardsEngine
}

func NewRewardsHandler(engine *services.RewardsEngine) *RewardsHandler {
	return &RewardsHandler{engine: engine}
}

// RegisterRoutes registers the rewards routes with the Fiber app.
func (h *RewardsHandler) RegisterRoutes(router fiber.Router) {
	rewardRoutes := router.Group("/rewards")
	rewardRoutes.Get("/summary", h.HandleSummary)
	rewardRoutes.Get("/history", h.HandleHistory)
	rewardRoutes.Get("/badges", h.HandleBadges)
}

func (h *RewardsHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.engine.Summary(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondError(c, err, "Could not retrieve rewards summary")
	}
	return c.JSON(summary)
}

func (h *RewardsHandler) HandleHistory(c *fiber.Ctx) error {
	history, err := h.engine.History(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondError(c, err, "Could not retrieve points history")
	}
	return c.JSON(history)
}

func (h *RewardsHandler) HandleBadges(c *fiber.Ctx) error {
	badges, err := h.engine.Badges(c.UserContext(), identity(c).UserID)
	if err != nil {
		return respondError(c, err, "Could not retrieve badges")
	}
	return c.JSON(badges)
}
