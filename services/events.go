package services

import (
	"errors"
	"log"
	"path/filepath"
	"time"

	"ambassador-platform/middleware"
	"ambassador-platform/models"
	"ambassador-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventService struct {
	DB     *gorm.DB
	Points *PointsService
}

func NewEventService(db *gorm.DB, points *PointsService) *EventService {
	return &EventService{DB: db, Points: points}
}

// CreateEvent creates a draft event organized by the calling user.
func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	title := c.FormValue("title")
	startsAtRaw := c.FormValue("starts_at")
	if title == "" || startsAtRaw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title and starts_at are required"})
	}
	startsAt, err := time.Parse(time.RFC3339, startsAtRaw)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "starts_at must be RFC3339"})
	}

	organizerID := middleware.UserID(c)
	event := &models.Event{
		ID:          uuid.NewString(),
		Title:       title,
		Description: c.FormValue("description"),
		Location:    c.FormValue("location"),
		OrganizerID: organizerID,
		StartsAt:    startsAt,
		Status:      models.EventDraft,
	}
	if regionID := c.FormValue("region_id"); regionID != "" {
		event.RegionID = &regionID
	}
	if endsAtRaw := c.FormValue("ends_at"); endsAtRaw != "" {
		if endsAt, err := time.Parse(time.RFC3339, endsAtRaw); err == nil {
			event.EndsAt = &endsAt
		}
	}

	if coverFile, err := c.FormFile("cover"); err == nil && coverFile.Size > 0 {
		coverExt := filepath.Ext(coverFile.Filename)
		if coverExt == "" {
			coverExt = ".jpg"
		}
		coverKey := "event-covers/" + uuid.NewString() + coverExt
		coverURL, err := utils.UploadFileToR2(coverFile, coverKey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "failed to upload event cover", "cause": err.Error()})
		}
		event.CoverURL = coverURL
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		organizer := models.EventParticipant{
			ID:      uuid.NewString(),
			EventID: event.ID,
			UserID:  organizerID,
			Role:    models.EventRoleOrganizer,
		}
		return tx.Create(&organizer).Error
	})
	if err != nil {
		log.Printf("DB Error creating event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create event", "cause": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// ListEvents lists published and completed events, optionally by region.
func (s *EventService) ListEvents(c *fiber.Ctx) error {
	q := s.DB.Preload("Region").
		Where("status IN ?", []models.EventStatus{models.EventPublished, models.EventCompleted}).
		Order("starts_at DESC")
	if regionID := c.Query("region_id"); regionID != "" {
		q = q.Where("region_id = ?", regionID)
	}
	var events []models.Event
	if err := q.Find(&events).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list events", "cause": err.Error()})
	}
	return c.JSON(events)
}

// GetEventByID loads one event with participants.
func (s *EventService) GetEventByID(c *fiber.Ctx) error {
	var event models.Event
	if err := s.DB.Preload("Participants").Preload("Region").
		Where("id = ?", c.Params("id")).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	return c.JSON(event)
}

// PublishEvent moves a draft event to published. Organizer or admin.
func (s *EventService) PublishEvent(c *fiber.Ctx) error {
	event, errResp := s.loadEventForActor(c)
	if event == nil {
		return errResp
	}
	if event.Status != models.EventDraft {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "only draft events can be published"})
	}
	event.Status = models.EventPublished
	if err := s.DB.Save(event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to publish event", "cause": err.Error()})
	}
	return c.JSON(event)
}

// JoinEvent registers the calling user as a participant of a published event.
func (s *EventService) JoinEvent(c *fiber.Ctx) error {
	eventID := c.Params("id")
	userID := middleware.UserID(c)

	var event models.Event
	if err := s.DB.Where("id = ? AND status = ?", eventID, models.EventPublished).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not open for registration"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}

	var existing int64
	s.DB.Model(&models.EventParticipant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&existing)
	if existing > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already registered for this event"})
	}

	participant := models.EventParticipant{
		ID:      uuid.NewString(),
		EventID: eventID,
		UserID:  userID,
		Role:    models.EventRoleParticipant,
	}
	if err := s.DB.Create(&participant).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register", "cause": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(participant)
}

// CompleteEvent closes a published event and grants every participant their
// role-appropriate fixed award through the idempotent batch path.
func (s *EventService) CompleteEvent(c *fiber.Ctx) error {
	event, errResp := s.loadEventForActor(c)
	if event == nil {
		return errResp
	}
	if event.Status != models.EventPublished {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "only published events can be completed"})
	}

	var participants []models.EventParticipant
	if err := s.DB.Where("event_id = ?", event.ID).Find(&participants).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}

	event.Status = models.EventCompleted
	if err := s.DB.Save(event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to complete event", "cause": err.Error()})
	}

	granted, err := s.Points.AwardEventCompletion(event, participants)
	if err != nil {
		log.Printf("❌ Event points failed for %s: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "event completed but point batch failed",
			"cause": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"event_id":       event.ID,
		"participants":   len(participants),
		"points_granted": granted,
	})
}

func (s *EventService) loadEventForActor(c *fiber.Ctx) (*models.Event, error) {
	var event models.Event
	if err := s.DB.Where("id = ?", c.Params("id")).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	if event.OrganizerID != middleware.UserID(c) && !middleware.HasRole(c, string(models.RoleAdmin)) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the organizer or an admin may modify this event"})
	}
	return &event, nil
}
