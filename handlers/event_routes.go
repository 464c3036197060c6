// handlers/event_routes.go
package handlers

import (
	"ambassador-platform/middleware"
	"ambassador-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService) {
	app.Get("/events", eventService.ListEvents)
	app.Get("/events/:id", eventService.GetEventByID)

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/events", eventService.CreateEvent)
	secured.Post("/events/:id/publish", eventService.PublishEvent)
	secured.Post("/events/:id/join", eventService.JoinEvent)
	secured.Post("/events/:id/complete", eventService.CompleteEvent)
}
