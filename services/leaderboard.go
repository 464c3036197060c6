package services

import (
	"fmt"
	"sort"

	"ambassador-platform/models"

	"gorm.io/gorm"
)

// DefaultLeaderboardLimit caps the ranked view when callers don't ask for a
// specific size.
const DefaultLeaderboardLimit = 20

// LeaderboardService computes the ranked points view on every read. Nothing
// here is cached or persisted — the ledger is authoritative and immediate,
// the Exode course balance is a periodically refreshed cache, and the two are
// summed only at display time.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// GetLeaderboard ranks users by combined total (ledger sum + cached course
// points) descending, optionally restricted to one region, truncated to
// limit. Ties keep the deterministic relative order of the user directory.
//
// Fail-closed: any fetch error yields an empty list, never partial data.
func (s *LeaderboardService) GetLeaderboard(regionID string, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	// Stable directory order makes tie order deterministic across reads.
	userQuery := s.DB.Preload("Region").
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC")
	if regionID != "" {
		userQuery = userQuery.Where("region_id = ?", regionID)
	}
	var users []models.User
	if err := userQuery.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch user directory: %w", err)
	}
	if len(users) == 0 {
		return []models.LeaderboardEntry{}, nil
	}

	userIDs := make([]string, len(users))
	for i, u := range users {
		userIDs[i] = u.ID
	}

	var grants []models.PointGrant
	if err := s.DB.Where("user_id IN ?", userIDs).Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch points ledger: %w", err)
	}

	totals := make(map[string]int64, len(users))
	for _, g := range grants {
		totals[g.UserID] += g.Amount
	}

	// A user absent from the ledger contributes zero platform points but is
	// still ranked — course points alone can place them.
	entries := make([]models.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entry := models.LeaderboardEntry{
			UserID:            u.ID,
			FullName:          u.FullName,
			Username:          u.Username,
			TotalPoints:       totals[u.ID],
			ExodeCoursePoints: u.ExodeCoursePoints,
		}
		entry.CombinedPoints = entry.TotalPoints + entry.ExodeCoursePoints
		if u.AvatarURL != nil {
			entry.AvatarURL = *u.AvatarURL
		}
		if u.Region != nil {
			entry.RegionName = u.Region.Name
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CombinedPoints > entries[j].CombinedPoints
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// GetUserStanding returns one user's three numbers (platform, course,
// combined) without ranking the whole directory.
func (s *LeaderboardService) GetUserStanding(userID string) (*models.LeaderboardEntry, error) {
	var user models.User
	if err := s.DB.Preload("Region").Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}

	var total int64
	if err := s.DB.Model(&models.PointGrant{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to sum ledger for %s: %w", userID, err)
	}

	entry := &models.LeaderboardEntry{
		UserID:            user.ID,
		FullName:          user.FullName,
		Username:          user.Username,
		TotalPoints:       total,
		ExodeCoursePoints: user.ExodeCoursePoints,
		CombinedPoints:    total + user.ExodeCoursePoints,
	}
	if user.AvatarURL != nil {
		entry.AvatarURL = *user.AvatarURL
	}
	if user.Region != nil {
		entry.RegionName = user.Region.Name
	}
	return entry, nil
}
