package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"ambassador-platform/middleware"
	"ambassador-platform/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ExodeService links local users to the Exode learning platform and keeps
// their cached course-points balance fresh. The cache lives on the user row
// (exode_course_points / exode_points_synced_at) and is overwritten wholesale
// on every sync — it is never merged into the points ledger.
type ExodeService struct {
	DB     *gorm.DB
	Client *ExodeClient
}

func NewExodeService(db *gorm.DB, client *ExodeClient) *ExodeService {
	return &ExodeService{DB: db, Client: client}
}

// LinkUser finds or creates the calling user on the learning platform and
// stores the platform id locally.
func (s *ExodeService) LinkUser(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	if user.ExodeUserID != nil {
		return c.JSON(fiber.Map{"exode_user_id": *user.ExodeUserID, "already_linked": true})
	}

	exodeUser, err := s.Client.FindUser(user.Email)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "exode lookup failed", "cause": err.Error()})
	}
	if exodeUser == nil {
		exodeUser, err = s.Client.CreateUser(user.Email, user.FullName)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "exode registration failed", "cause": err.Error()})
		}
	}

	user.ExodeUserID = &exodeUser.ID
	if err := s.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store exode link", "cause": err.Error()})
	}
	return c.JSON(fiber.Map{"exode_user_id": exodeUser.ID, "already_linked": false})
}

// GenerateToken mints an SSO token for the calling user and kicks off a
// fire-and-forget balance refresh. The refresh's failure is logged and
// ignored — it never affects the token response.
func (s *ExodeService) GenerateToken(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	if user.ExodeUserID == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "user is not linked to the learning platform"})
	}

	token, err := s.Client.GenerateToken(*user.ExodeUserID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "token generation failed", "cause": err.Error()})
	}

	go func(u models.User) {
		if err := s.SyncUserBalance(&u); err != nil {
			log.Printf("⚠️ Background exode sync failed for %s: %v", u.ID, err)
		}
	}(user)

	return c.JSON(token)
}

// ResyncUser forces a balance refresh for one user (admin path).
func (s *ExodeService) ResyncUser(c *fiber.Ctx) error {
	var user models.User
	if err := s.DB.Where("id = ?", c.Params("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	if err := s.SyncUserBalance(&user); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "sync failed", "cause": err.Error()})
	}
	return c.JSON(fiber.Map{
		"user_id":             user.ID,
		"exode_course_points": user.ExodeCoursePoints,
		"synced_at":           user.ExodePointsSyncedAt,
	})
}

// SyncUserBalance overwrites the user's cached course points from the
// platform balance.
func (s *ExodeService) SyncUserBalance(user *models.User) error {
	if user.ExodeUserID == nil {
		return fmt.Errorf("user %s has no exode link", user.ID)
	}
	balance, err := s.Client.GetBalance(*user.ExodeUserID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return s.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"exode_course_points":    balance.Points,
			"exode_points_synced_at": now,
		}).Error
}

// SyncAllLinked refreshes every linked user's balance. Used by the nightly
// scheduler job; per-user failures are logged and skipped.
func (s *ExodeService) SyncAllLinked() (int, int) {
	var users []models.User
	if err := s.DB.Where("exode_user_id IS NOT NULL AND is_active = ?", true).Find(&users).Error; err != nil {
		log.Printf("❌ Exode full sync: failed to list linked users: %v", err)
		return 0, 0
	}
	synced, failed := 0, 0
	for i := range users {
		if err := s.SyncUserBalance(&users[i]); err != nil {
			log.Printf("⚠️ Exode sync failed for %s: %v", users[i].ID, err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed
}
