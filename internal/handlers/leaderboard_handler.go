package handlers

import (
	"ecobazaar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LeaderboardHandler serves the monthly eco savers ranking.
type LeaderboardHandler struct {
	service *services.LeaderboardService
}

func NewLeaderboardHandler(service *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// RegisterRoutes registers the leaderboard routes with the Fiber app.
func (h *LeaderboardHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/leaderboard", h.HandleTopEcoSavers)
}

// HandleTopEcoSavers accepts an optional ?limit, ten by default.
func (h *LeaderboardHandler) HandleTopEcoSavers(c *fiber.Ctx) error {
	entries, err := h.service.TopEcoSaversOfMonth(c.UserContext(), c.QueryInt("limit", services.DefaultLeaderboardLimit))
	if err != nil {
		return respondError(c, err, "Could not retrieve leaderboard")
	}
	return c.JSON(entries)
}
