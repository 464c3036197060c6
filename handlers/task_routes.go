// handlers/task_routes.go
package handlers

import (
	"ambassador-platform/middleware"
	"ambassador-platform/models"
	"ambassador-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, taskService *services.TaskService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/tasks", taskService.ListTasks)
	secured.Post("/tasks/:id/completions", taskService.SubmitCompletion)

	reviewer := middleware.RequireRoles(string(models.RoleRegionalLead), string(models.RoleAdmin))
	secured.Post("/tasks", reviewer, taskService.CreateTask)
	secured.Post("/tasks/completions/:completion_id/verify", reviewer, taskService.VerifyCompletion)
}
