// handlers/report_routes.go
package handlers

import (
	"errors"
	"strconv"

	"ambassador-platform/middleware"
	"ambassador-platform/models"
	"ambassador-platform/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupReportRoutes(app *fiber.App, reportService *services.ReportService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Ambassadors generate their own monthly snapshot.
	secured.Post("/reports", func(c *fiber.Ctx) error {
		var req struct {
			ClubID  string `json:"club_id"`
			Month   int    `json:"month"`
			Year    int    `json:"year"`
			Comment string `json:"comment"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.ClubID == "" || req.Month == 0 || req.Year == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "club_id, month and year are required"})
		}

		report, err := reportService.GenerateMonthlyReport(middleware.UserID(c), req.ClubID, req.Month, req.Year, req.Comment)
		if err != nil {
			if errors.Is(err, services.ErrReportExists) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
			}
			// Data-layer errors surface verbatim.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to generate report",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(report)
	})

	secured.Get("/reports", func(c *fiber.Ctx) error {
		ambassadorID := c.Query("ambassador_id")
		// Plain ambassadors only see their own reports.
		if !middleware.HasRole(c, string(models.RoleRegionalLead)) &&
			!middleware.HasRole(c, string(models.RoleAdmin)) {
			ambassadorID = middleware.UserID(c)
		}
		month, _ := strconv.Atoi(c.Query("month", "0"))
		year, _ := strconv.Atoi(c.Query("year", "0"))

		reports, err := reportService.List(ambassadorID, c.Query("club_id"),
			models.ReportStatus(c.Query("status")), month, year)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list reports", "cause": err.Error()})
		}
		return c.JSON(reports)
	})

	secured.Get("/reports/:id", func(c *fiber.Ctx) error {
		report, err := reportService.GetByID(c.Params("id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "report not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
		}
		if report.AmbassadorID != middleware.UserID(c) &&
			!middleware.HasRole(c, string(models.RoleRegionalLead)) &&
			!middleware.HasRole(c, string(models.RoleAdmin)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your report"})
		}
		return c.JSON(report)
	})

	// Supporting documents live on local disk and are served from /uploads.
	secured.Post("/reports/:id/attachment", func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("attachment")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "attachment file is required"})
		}

		report, err := reportService.AttachDocument(c.Params("id"), middleware.UserID(c), fileHeader)
		if err != nil {
			if errors.Is(err, services.ErrNotReportOwner) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "report not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store attachment", "cause": err.Error()})
		}
		return c.JSON(report)
	})

	reviewer := middleware.RequireRoles(string(models.RoleRegionalLead), string(models.RoleAdmin))

	secured.Post("/reports/:id/approve", reviewer, func(c *fiber.Ctx) error {
		return reviewReport(c, reportService, true)
	})
	secured.Post("/reports/:id/reject", reviewer, func(c *fiber.Ctx) error {
		return reviewReport(c, reportService, false)
	})

	secured.Delete("/reports/:id", middleware.RequireRoles(string(models.RoleAdmin)), func(c *fiber.Ctx) error {
		if err := reportService.Delete(c.Params("id")); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "report not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete report", "cause": err.Error()})
		}
		return c.JSON(fiber.Map{"deleted": true})
	})
}

func reviewReport(c *fiber.Ctx, reportService *services.ReportService, approve bool) error {
	var req struct {
		Comment string `json:"comment"`
	}
	_ = c.BodyParser(&req)

	var report *models.Report
	var err error
	if approve {
		report, err = reportService.Approve(c.Params("id"), middleware.UserID(c), req.Comment)
	} else {
		report, err = reportService.Reject(c.Params("id"), middleware.UserID(c), req.Comment)
	}
	if err != nil {
		if errors.Is(err, services.ErrReportNotReviewable) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "report not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "review failed", "cause": err.Error()})
	}
	return c.JSON(report)
}
