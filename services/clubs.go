package services

import (
	"errors"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ambassador-platform/middleware"
	"ambassador-platform/models"
	"ambassador-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ClubService struct {
	DB *gorm.DB
}

func NewClubService(db *gorm.DB) *ClubService {
	return &ClubService{DB: db}
}

// CreateClub creates a new club led by the calling ambassador.
func (s *ClubService) CreateClub(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	club := &models.Club{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: c.FormValue("description"),
		LeaderID:    middleware.UserID(c),
		Status:      models.ClubStatusActive,
	}
	if regionID := c.FormValue("region_id"); regionID != "" {
		club.RegionID = &regionID
	}

	// Logo → R2 (small, public asset)
	if logoFile, err := c.FormFile("logo"); err == nil && logoFile.Size > 0 {
		logoExt := filepath.Ext(logoFile.Filename)
		if logoExt == "" {
			logoExt = ".png"
		}
		logoKey := "club-logos/" + uuid.NewString() + logoExt
		logoURL, err := utils.UploadFileToR2(logoFile, logoKey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "failed to upload club logo", "cause": err.Error()})
		}
		club.LogoURL = logoURL
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Slug collisions get a short random suffix rather than failing the create.
		var count int64
		if err := tx.Model(&models.Club{}).Where("slug = ?", club.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			club.Slug = club.Slug + "-" + uuid.NewString()[:8]
		}
		if err := tx.Create(club).Error; err != nil {
			return err
		}
		// The leader is an approved member from day one.
		now := time.Now().UTC()
		leaderMembership := models.ClubMembership{
			ID:         uuid.NewString(),
			ClubID:     club.ID,
			UserID:     club.LeaderID,
			Status:     models.MembershipApproved,
			ApprovedAt: &now,
		}
		return tx.Create(&leaderMembership).Error
	})
	if err != nil {
		log.Printf("DB Error creating club: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create club", "cause": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(club)
}

// GetAllClubs lists active clubs, optionally filtered by region.
func (s *ClubService) GetAllClubs(c *fiber.Ctx) error {
	q := s.DB.Preload("Region").Where("status = ?", models.ClubStatusActive)
	if regionID := c.Query("region_id"); regionID != "" {
		q = q.Where("region_id = ?", regionID)
	}
	var clubs []models.Club
	if err := q.Order("created_at DESC").Find(&clubs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list clubs", "cause": err.Error()})
	}
	return c.JSON(clubs)
}

// GetClubByID loads one club by id or slug, with members.
func (s *ClubService) GetClubByID(c *fiber.Ctx) error {
	id := c.Params("id")
	q := s.DB.Preload("Region").Preload("Members")
	if _, err := uuid.Parse(id); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", id)
	}
	var club models.Club
	if err := q.First(&club).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "club not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	return c.JSON(club)
}

// UpdateClub edits club fields. Leader or admin only.
func (s *ClubService) UpdateClub(c *fiber.Ctx) error {
	club, errResp := s.loadClubForActor(c)
	if club == nil {
		return errResp
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		RegionID    *string `json:"region_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		club.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		club.Description = *req.Description
	}
	if req.RegionID != nil {
		club.RegionID = req.RegionID
	}

	if err := s.DB.Save(club).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update club", "cause": err.Error()})
	}
	return c.JSON(club)
}

// ArchiveClub retires a club. Leader or admin only.
func (s *ClubService) ArchiveClub(c *fiber.Ctx) error {
	club, errResp := s.loadClubForActor(c)
	if club == nil {
		return errResp
	}
	club.Status = models.ClubStatusArchived
	if err := s.DB.Save(club).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to archive club", "cause": err.Error()})
	}
	return c.JSON(club)
}

// RequestMembership files a pending join request for the calling user.
func (s *ClubService) RequestMembership(c *fiber.Ctx) error {
	clubID := c.Params("id")
	userID := middleware.UserID(c)

	var club models.Club
	if err := s.DB.Where("id = ? AND status = ?", clubID, models.ClubStatusActive).First(&club).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "club not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}

	var existing int64
	s.DB.Model(&models.ClubMembership{}).
		Where("club_id = ? AND user_id = ?", clubID, userID).
		Count(&existing)
	if existing > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "membership request already exists"})
	}

	membership := models.ClubMembership{
		ID:     uuid.NewString(),
		ClubID: clubID,
		UserID: userID,
		Status: models.MembershipPending,
	}
	if err := s.DB.Create(&membership).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create membership request", "cause": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(membership)
}

// ReviewMembership approves or rejects a pending join request. Club leader,
// regional lead, or admin. Approval timestamps the row — that timestamp feeds
// the monthly report's new-member count.
func (s *ClubService) ReviewMembership(c *fiber.Ctx) error {
	membershipID := c.Params("membership_id")
	actorID := middleware.UserID(c)

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var membership models.ClubMembership
	if err := s.DB.Where("id = ?", membershipID).First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "membership request not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	if membership.Status != models.MembershipPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "membership request already reviewed"})
	}

	var club models.Club
	if err := s.DB.Where("id = ?", membership.ClubID).First(&club).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	if club.LeaderID != actorID &&
		!middleware.HasRole(c, string(models.RoleRegionalLead)) &&
		!middleware.HasRole(c, string(models.RoleAdmin)) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the club leader or a reviewer may review requests"})
	}

	membership.ReviewedBy = &actorID
	if req.Approve {
		now := time.Now().UTC()
		membership.Status = models.MembershipApproved
		membership.ApprovedAt = &now
	} else {
		membership.Status = models.MembershipRejected
	}
	if err := s.DB.Save(&membership).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to review membership", "cause": err.Error()})
	}
	return c.JSON(membership)
}

// ListMembers lists a club's memberships, optionally by status.
func (s *ClubService) ListMembers(c *fiber.Ctx) error {
	clubID := c.Params("id")
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.DB.Where("club_id = ?", clubID).Limit(limit).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var members []models.ClubMembership
	if err := q.Find(&members).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list members", "cause": err.Error()})
	}
	return c.JSON(members)
}

// loadClubForActor fetches the club in :id and authorizes the caller as its
// leader or an admin. Returns (nil, response) when the request was already
// answered.
func (s *ClubService) loadClubForActor(c *fiber.Ctx) (*models.Club, error) {
	id := c.Params("id")
	var club models.Club
	if err := s.DB.Where("id = ?", id).First(&club).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "club not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error", "cause": err.Error()})
	}
	if club.LeaderID != middleware.UserID(c) && !middleware.HasRole(c, string(models.RoleAdmin)) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the club leader or an admin may modify this club"})
	}
	return &club, nil
}
