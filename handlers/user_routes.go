// handlers/user_routes.go
package handlers

import (
	"ambassador-platform/middleware"
	"ambassador-platform/models"
	"ambassador-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, exodeService *services.ExodeService) {
	app.Get("/regions", userService.ListRegions)

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/users", userService.SearchUsers)
	secured.Get("/users/:id", userService.GetUserByID)

	// Exode learning platform integration.
	secured.Post("/exode/link", exodeService.LinkUser)
	secured.Post("/exode/token", exodeService.GenerateToken)
	secured.Post("/exode/users/:id/resync",
		middleware.RequireRoles(string(models.RoleAdmin)), exodeService.ResyncUser)
}
