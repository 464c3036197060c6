package services

import (
	"fmt"
	"log"

	"ambassador-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsService owns the append-only points ledger. Grants are never updated
// after insertion; the only delete path is the admin report-deletion cascade.
type PointsService struct {
	DB *gorm.DB
}

func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{DB: db}
}

// Grant appends one immutable ledger row. The ledger itself does not validate
// amount sign or magnitude — callers own their range checks (manual grants go
// through ManualGrant, automated grants use the fixed constants).
func (s *PointsService) Grant(userID string, amount int64, reason string, refType *models.PointReference, refID, grantedBy *string) (*models.PointGrant, error) {
	grant := &models.PointGrant{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        amount,
		Reason:        reason,
		ReferenceType: refType,
		ReferenceID:   refID,
		GrantedByID:   grantedBy,
	}
	if err := s.DB.Create(grant).Error; err != nil {
		return nil, err
	}
	return grant, nil
}

// ManualGrant issues a hand-awarded grant. Amount must be within
// [ManualGrantMin, ManualGrantMax]; anything outside is rejected before the
// ledger is touched.
func (s *PointsService) ManualGrant(actorID, userID string, amount int64, reason string) (*models.PointGrant, error) {
	if amount < models.ManualGrantMin || amount > models.ManualGrantMax {
		return nil, fmt.Errorf("manual grant amount must be between %d and %d, got %d",
			models.ManualGrantMin, models.ManualGrantMax, amount)
	}
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %s not found", userID)
		}
		return nil, err
	}
	ref := models.PointRefManual
	return s.Grant(userID, amount, reason, &ref, nil, &actorID)
}

// AwardSessionAttendance issues the fixed attendance award to every listed
// user for one session, at most once per (user, session).
//
// Users already holding a session grant for this session are excluded before
// inserting, so re-running the batch after a retry does not double-award. The
// composite unique index on point_grants backstops the remaining
// check-then-act window: a concurrent duplicate insert fails the whole batch
// instead of silently double-granting.
//
// The batch is all-or-nothing: a failed insert reports the entire batch as
// failed with nothing awarded.
func (s *PointsService) AwardSessionAttendance(sessionID, recordedBy string, userIDs []string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	var alreadyAwarded []string
	if err := s.DB.Model(&models.PointGrant{}).
		Where("reference_type = ? AND reference_id = ? AND user_id IN ?",
			models.PointRefSession, sessionID, userIDs).
		Pluck("user_id", &alreadyAwarded).Error; err != nil {
		return 0, fmt.Errorf("failed to check existing attendance grants: %w", err)
	}

	awarded := make(map[string]bool, len(alreadyAwarded))
	for _, id := range alreadyAwarded {
		awarded[id] = true
	}

	ref := models.PointRefSession
	refID := sessionID
	var grants []models.PointGrant
	for _, userID := range userIDs {
		if awarded[userID] {
			continue
		}
		grants = append(grants, models.PointGrant{
			ID:            uuid.NewString(),
			UserID:        userID,
			Amount:        models.SessionAttendancePoints,
			Reason:        "Session attendance",
			ReferenceType: &ref,
			ReferenceID:   &refID,
			GrantedByID:   &recordedBy,
		})
	}

	if len(grants) == 0 {
		return 0, nil
	}

	if err := s.DB.Create(&grants).Error; err != nil {
		log.Printf("❌ Attendance batch failed for session %s: %v", sessionID, err)
		return 0, fmt.Errorf("attendance point batch failed: %w", err)
	}
	return len(grants), nil
}

// AwardEventCompletion grants every participant of a completed event their
// role-appropriate fixed award, once per (user, event). Same exclusion +
// unique-index discipline as the attendance batch.
func (s *PointsService) AwardEventCompletion(event *models.Event, participants []models.EventParticipant) (int, error) {
	if len(participants) == 0 {
		return 0, nil
	}

	userIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}

	var alreadyAwarded []string
	if err := s.DB.Model(&models.PointGrant{}).
		Where("reference_type = ? AND reference_id = ? AND user_id IN ?",
			models.PointRefEvent, event.ID, userIDs).
		Pluck("user_id", &alreadyAwarded).Error; err != nil {
		return 0, fmt.Errorf("failed to check existing event grants: %w", err)
	}
	awarded := make(map[string]bool, len(alreadyAwarded))
	for _, id := range alreadyAwarded {
		awarded[id] = true
	}

	ref := models.PointRefEvent
	refID := event.ID
	var grants []models.PointGrant
	for _, p := range participants {
		if awarded[p.UserID] {
			continue
		}
		amount := int64(models.EventParticipantPoints)
		reason := fmt.Sprintf("Attended event: %s", event.Title)
		if p.Role == models.EventRoleOrganizer {
			amount = models.EventOrganizerPoints
			reason = fmt.Sprintf("Organized event: %s", event.Title)
		}
		grants = append(grants, models.PointGrant{
			ID:            uuid.NewString(),
			UserID:        p.UserID,
			Amount:        amount,
			Reason:        reason,
			ReferenceType: &ref,
			ReferenceID:   &refID,
		})
	}

	if len(grants) == 0 {
		return 0, nil
	}
	if err := s.DB.Create(&grants).Error; err != nil {
		return 0, fmt.Errorf("event point batch failed: %w", err)
	}
	return len(grants), nil
}

// TotalForUser sums the ledger for one user. A user with no grants totals
// zero — absence from the ledger is not an error.
func (s *PointsService) TotalForUser(userID string) (int64, error) {
	var total int64
	err := s.DB.Model(&models.PointGrant{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// GrantsForUser returns a user's ledger rows, newest first.
func (s *PointsService) GrantsForUser(userID string, limit int) ([]models.PointGrant, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	var grants []models.PointGrant
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&grants).Error
	return grants, err
}

// DeleteReportGrants removes grants issued against a deleted report. This is
// the admin report-deletion cascade — the only path that ever deletes ledger
// rows.
func (s *PointsService) DeleteReportGrants(tx *gorm.DB, reportID string) error {
	return tx.Where("reference_type = ? AND reference_id = ?", models.PointRefReport, reportID).
		Delete(&models.PointGrant{}).Error
}
