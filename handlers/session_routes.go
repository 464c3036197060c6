// handlers/session_routes.go
package handlers

import (
	"ambassador-platform/middleware"
	"ambassador-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSessionRoutes(app *fiber.App, sessionService *services.SessionService) {
	app.Get("/sessions", sessionService.ListSessions)
	app.Get("/sessions/:id", sessionService.GetSessionByID)

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/sessions", sessionService.CreateSession)
	secured.Put("/sessions/:id", sessionService.UpdateSession)
	secured.Delete("/sessions/:id", sessionService.CancelSession)

	// Attendance closes the session and fires the idempotent point batch.
	secured.Post("/sessions/:id/attendance", sessionService.RecordAttendance)
}
