package services

import (
	"errors"
	"strconv"
	"strings"

	"ambassador-platform/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// SearchUsers searches the local ambassador directory.
func (s *UserService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Preload("Region").Where("is_active = ?", true).Limit(limit)
	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}
	if regionID := c.Query("region_id"); regionID != "" {
		db = db.Where("region_id = ?", regionID)
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search failed", "cause": err.Error()})
	}

	// Minimal response shape — don't leak the whole mirror row.
	type UserSummary struct {
		ID                string `json:"id"`
		ExternalUserID    string `json:"external_user_id"`
		Username          string `json:"username"`
		FullName          string `json:"full_name"`
		RegionName        string `json:"region_name,omitempty"`
		Role              string `json:"role"`
		ExodeCoursePoints int64  `json:"exode_course_points"`
	}
	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{
			ID:                u.ID,
			ExternalUserID:    u.ExternalUserID,
			Username:          u.Username,
			FullName:          u.FullName,
			Role:              string(u.Role),
			ExodeCoursePoints: u.ExodeCoursePoints,
		}
		if u.Region != nil {
			res[i].RegionName = u.Region.Name
		}
	}
	return c.JSON(res)
}

// GetUserByID loads one directory entry.
func (s *UserService) GetUserByID(c *fiber.Ctx) error {
	var user models.User
	if err := s.DB.Preload("Region").Where("id = ?", c.Params("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	return c.JSON(user)
}

// ListRegions lists all regions.
func (s *UserService) ListRegions(c *fiber.Ctx) error {
	var regions []models.Region
	if err := s.DB.Order("name ASC").Find(&regions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list regions", "cause": err.Error()})
	}
	return c.JSON(regions)
}
