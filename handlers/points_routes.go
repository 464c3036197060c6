// handlers/points_routes.go
package handlers

import (
	"strconv"

	"ambassador-platform/middleware"
	"ambassador-platform/models"
	"ambassador-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPointsRoutes(app *fiber.App, pointsService *services.PointsService, leaderboardService *services.LeaderboardService) {
	// 🔓 Leaderboard is public (behind Gateway auth) — it's the landing page view.
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "0"))
		regionID := c.Query("region_id")

		entries, err := leaderboardService.GetLeaderboard(regionID, limit)
		if err != nil {
			// Fail-closed: an empty board, never partial data.
			return c.Status(fiber.StatusInternalServerError).JSON(models.LeaderboardResponse{
				Entries: []models.LeaderboardEntry{},
			})
		}
		return c.JSON(models.LeaderboardResponse{
			Region:     regionID,
			Limit:      len(entries),
			TotalUsers: len(entries),
			Entries:    entries,
		})
	})

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/points/me", func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		standing, err := leaderboardService.GetUserStanding(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to compute standing",
				"cause": err.Error(),
			})
		}
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		grants, err := pointsService.GrantsForUser(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load ledger",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"standing": standing,
			"grants":   grants,
		})
	})

	// Manual grants — reviewer roles only, range-checked 1–100 in the service.
	grantRoles := middleware.RequireRoles(string(models.RoleRegionalLead), string(models.RoleAdmin))
	secured.Post("/points/grant", grantRoles, func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
			Amount int64  `json:"amount"`
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.UserID == "" || req.Reason == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and reason are required"})
		}

		grant, err := pointsService.ManualGrant(middleware.UserID(c), req.UserID, req.Amount, req.Reason)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "grant rejected",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(grant)
	})

	secured.Get("/points/users/:id", grantRoles, func(c *fiber.Ctx) error {
		userID := c.Params("id")
		standing, err := leaderboardService.GetUserStanding(userID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user standing unavailable", "cause": err.Error()})
		}
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		grants, err := pointsService.GrantsForUser(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load ledger", "cause": err.Error()})
		}
		return c.JSON(fiber.Map{
			"standing": standing,
			"grants":   grants,
		})
	})
}
