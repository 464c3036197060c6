package services

import (
	"errors"
	"fmt"
	"time"

	"ambassador-platform/middleware"
	"ambassador-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskService struct {
	DB     *gorm.DB
	Points *PointsService
}

func NewTaskService(db *gorm.DB, points *PointsService) *TaskService {
	return &TaskService{DB: db, Points: points}
}

// CreateTask creates a new task (admin/regional lead only, enforced at route).
func (s *TaskService) CreateTask(c *fiber.Ctx) error {
	var req struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Points      int64             `json:"points"`
		Deadline    *time.Time        `json:"deadline"`
		Status      models.TaskStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Title == "" || req.Points <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title and a positive points value are required"})
	}
	if req.Status == "" {
		req.Status = models.TaskStatusDraft
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Deadline:    req.Deadline,
		Status:      req.Status,
		CreatedByID: middleware.UserID(c),
	}
	if err := s.DB.Create(task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create task", "cause": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// ListTasks lists published tasks for ambassadors, everything for admins.
func (s *TaskService) ListTasks(c *fiber.Ctx) error {
	q := s.DB.Order("created_at DESC")
	if !middleware.HasRole(c, string(models.RoleAdmin)) {
		q = q.Where("status = ?", models.TaskStatusPublished)
	}
	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list tasks", "cause": err.Error()})
	}
	return c.JSON(tasks)
}

// SubmitCompletion files the calling user's completion claim for a task.
func (s *TaskService) SubmitCompletion(c *fiber.Ctx) error {
	taskID := c.Params("id")
	userID := middleware.UserID(c)

	var task models.Task
	if err := s.DB.Where("id = ? AND status = ?", taskID, models.TaskStatusPublished).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found or not published"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	if task.Deadline != nil && time.Now().After(*task.Deadline) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "task deadline has passed"})
	}

	var req struct {
		ProofURL string `json:"proof_url"`
		Comment  string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var existing int64
	s.DB.Model(&models.TaskCompletion{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&existing)
	if existing > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "completion already submitted for this task"})
	}

	completion := models.TaskCompletion{
		ID:       uuid.NewString(),
		TaskID:   taskID,
		UserID:   userID,
		ProofURL: req.ProofURL,
		Comment:  req.Comment,
		Status:   models.CompletionSubmitted,
	}
	if err := s.DB.Create(&completion).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to submit completion", "cause": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(completion)
}

// VerifyCompletion accepts or declines a submitted completion. Accepting
// issues a task-referenced grant for the task's fixed point value — once per
// (user, task), backed by the ledger's unique index.
func (s *TaskService) VerifyCompletion(c *fiber.Ctx) error {
	completionID := c.Params("completion_id")
	actorID := middleware.UserID(c)

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var completion models.TaskCompletion
	if err := s.DB.Where("id = ?", completionID).First(&completion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "completion not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	if completion.Status != models.CompletionSubmitted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "completion already reviewed"})
	}

	var task models.Task
	if err := s.DB.Where("id = ?", completion.TaskID).First(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}

	now := time.Now().UTC()
	completion.VerifiedBy = &actorID
	completion.VerifiedAt = &now
	if !req.Accept {
		completion.Status = models.CompletionDeclined
		if err := s.DB.Save(&completion).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to decline completion", "cause": err.Error()})
		}
		return c.JSON(completion)
	}

	completion.Status = models.CompletionVerified
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&completion).Error; err != nil {
			return err
		}
		ref := models.PointRefTask
		grant := models.PointGrant{
			ID:            uuid.NewString(),
			UserID:        completion.UserID,
			Amount:        task.Points,
			Reason:        fmt.Sprintf("Completed task: %s", task.Title),
			ReferenceType: &ref,
			ReferenceID:   &completion.TaskID,
			GrantedByID:   &actorID,
		}
		return tx.Create(&grant).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to verify completion", "cause": err.Error()})
	}
	return c.JSON(completion)
}
