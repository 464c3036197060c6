// handlers/club_routes.go
package handlers

import (
	"ambassador-platform/middleware"
	"ambassador-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupClubRoutes(app *fiber.App, clubService *services.ClubService) {
	// 🔓 Public routes — no user context, but still behind Gateway auth
	app.Get("/clubs", clubService.GetAllClubs)
	app.Get("/clubs/:id", clubService.GetClubByID)

	// 🔐 Secured routes — require user context (userID, roles)
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/clubs", clubService.CreateClub)
	secured.Put("/clubs/:id", clubService.UpdateClub)
	secured.Patch("/clubs/:id", clubService.UpdateClub)
	secured.Delete("/clubs/:id", clubService.ArchiveClub)

	secured.Post("/clubs/:id/join", clubService.RequestMembership)
	secured.Get("/clubs/:id/members", clubService.ListMembers)
	secured.Post("/clubs/memberships/:membership_id/review", clubService.ReviewMembership)
}
