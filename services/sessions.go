package services

import (
	"errors"
	"log"
	"time"

	"ambassador-platform/middleware"
	"ambassador-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionService struct {
	DB     *gorm.DB
	Points *PointsService
}

func NewSessionService(db *gorm.DB, points *PointsService) *SessionService {
	return &SessionService{DB: db, Points: points}
}

// CreateSession schedules a club session hosted by the calling ambassador.
func (s *SessionService) CreateSession(c *fiber.Ctx) error {
	var req struct {
		ClubID      string    `json:"club_id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Location    string    `json:"location"`
		StartsAt    time.Time `json:"starts_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ClubID == "" || req.Title == "" || req.StartsAt.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "club_id, title and starts_at are required"})
	}

	hostID := middleware.UserID(c)
	var approved int64
	s.DB.Model(&models.ClubMembership{}).
		Where("club_id = ? AND user_id = ? AND status = ?", req.ClubID, hostID, models.MembershipApproved).
		Count(&approved)
	if approved == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "host must be an approved member of the club"})
	}

	session := &models.Session{
		ID:          uuid.NewString(),
		ClubID:      req.ClubID,
		HostID:      hostID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		Status:      models.SessionScheduled,
	}
	if err := s.DB.Create(session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create session", "cause": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// GetSessionByID loads one session with attendance.
func (s *SessionService) GetSessionByID(c *fiber.Ctx) error {
	var session models.Session
	if err := s.DB.Preload("Attendance").Preload("Club").
		Where("id = ?", c.Params("id")).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	return c.JSON(session)
}

// ListSessions lists sessions for a club, newest first.
func (s *SessionService) ListSessions(c *fiber.Ctx) error {
	q := s.DB.Order("starts_at DESC")
	if clubID := c.Query("club_id"); clubID != "" {
		q = q.Where("club_id = ?", clubID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var sessions []models.Session
	if err := q.Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list sessions", "cause": err.Error()})
	}
	return c.JSON(sessions)
}

// UpdateSession edits a scheduled session. Host or admin only.
func (s *SessionService) UpdateSession(c *fiber.Ctx) error {
	session, errResp := s.loadSessionForActor(c)
	if session == nil {
		return errResp
	}
	if session.Status == models.SessionCompleted || session.Status == models.SessionCancelled {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "session is already closed"})
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Location    *string    `json:"location"`
		StartsAt    *time.Time `json:"starts_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.Description != nil {
		session.Description = *req.Description
	}
	if req.Location != nil {
		session.Location = *req.Location
	}
	if req.StartsAt != nil {
		session.StartsAt = *req.StartsAt
	}
	if err := s.DB.Save(session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update session", "cause": err.Error()})
	}
	return c.JSON(session)
}

// CancelSession cancels a session that has not been completed.
func (s *SessionService) CancelSession(c *fiber.Ctx) error {
	session, errResp := s.loadSessionForActor(c)
	if session == nil {
		return errResp
	}
	if session.Status == models.SessionCompleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "completed sessions cannot be cancelled"})
	}
	session.Status = models.SessionCancelled
	if err := s.DB.Save(session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to cancel session", "cause": err.Error()})
	}
	return c.JSON(session)
}

// RecordAttendance marks the given users present, completes the session, and
// awards attendance points through the idempotent batch path. Attendance rows
// upsert-skip duplicates, so re-submitting the same list is safe; the point
// batch excludes already-granted users on its own.
func (s *SessionService) RecordAttendance(c *fiber.Ctx) error {
	session, errResp := s.loadSessionForActor(c)
	if session == nil {
		return errResp
	}
	if session.Status == models.SessionCancelled {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "cancelled sessions cannot record attendance"})
	}

	var req struct {
		UserIDs []string `json:"user_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.UserIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_ids is required"})
	}

	actorID := middleware.UserID(c)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, userID := range req.UserIDs {
			var existing int64
			if err := tx.Model(&models.SessionAttendance{}).
				Where("session_id = ? AND user_id = ?", session.ID, userID).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			row := models.SessionAttendance{
				ID:         uuid.NewString(),
				SessionID:  session.ID,
				UserID:     userID,
				RecordedBy: actorID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		session.Status = models.SessionCompleted
		return tx.Save(session).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record attendance", "cause": err.Error()})
	}

	granted, err := s.Points.AwardSessionAttendance(session.ID, actorID, req.UserIDs)
	if err != nil {
		// Attendance itself is saved; the point batch failed as a whole and
		// can be retried (the exclusion check keeps the retry safe).
		log.Printf("❌ Attendance points failed for session %s: %v", session.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "attendance recorded but point batch failed",
			"cause": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"session_id":     session.ID,
		"attendees":      len(req.UserIDs),
		"points_granted": granted,
	})
}

func (s *SessionService) loadSessionForActor(c *fiber.Ctx) (*models.Session, error) {
	var session models.Session
	if err := s.DB.Where("id = ?", c.Params("id")).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	if session.HostID != middleware.UserID(c) && !middleware.HasRole(c, string(models.RoleAdmin)) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the session host or an admin may modify this session"})
	}
	return &session, nil
}
