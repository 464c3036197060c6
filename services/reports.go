package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"ambassador-platform/models"
	"ambassador-platform/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReportNotReviewable = errors.New("report is not in submitted state")
	ErrReportExists        = errors.New("a report for this club and period already exists")
	ErrNotReportOwner      = errors.New("report belongs to another ambassador")
)

// ReportService builds and reviews frozen monthly activity snapshots. A
// report is computed once at creation and never recomputed: its embedded data
// arrays are historical record even if the underlying rows change later.
type ReportService struct {
	DB     *gorm.DB
	Points *PointsService
}

func NewReportService(db *gorm.DB, points *PointsService) *ReportService {
	return &ReportService{DB: db, Points: points}
}

// periodBounds returns [start, end) for a calendar month in UTC.
func periodBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// GenerateMonthlyReport captures one ambassador's activity for a club and
// month into a new submitted report. Data-layer failures surface verbatim —
// there is no compensating action, the report either exists or it doesn't.
func (s *ReportService) GenerateMonthlyReport(ambassadorID, clubID string, month, year int, comment string) (*models.Report, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	start, end := periodBounds(month, year)

	var existing int64
	if err := s.DB.Model(&models.Report{}).
		Where("ambassador_id = ? AND club_id = ? AND month = ? AND year = ?",
			ambassadorID, clubID, month, year).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrReportExists
	}

	var sessions []models.Session
	if err := s.DB.Preload("Attendance").
		Where("club_id = ? AND host_id = ? AND status = ? AND starts_at >= ? AND starts_at < ?",
			clubID, ambassadorID, models.SessionCompleted, start, end).
		Order("starts_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	var participations []models.EventParticipant
	if err := s.DB.Where("user_id = ?", ambassadorID).Find(&participations).Error; err != nil {
		return nil, err
	}

	var memberships []models.ClubMembership
	if err := s.DB.Where("club_id = ? AND status = ? AND approved_at >= ? AND approved_at < ?",
		clubID, models.MembershipApproved, start, end).
		Order("approved_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}

	var grants []models.PointGrant
	if err := s.DB.Where("user_id = ? AND created_at >= ? AND created_at < ?",
		ambassadorID, start, end).
		Order("created_at ASC").
		Find(&grants).Error; err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:           uuid.NewString(),
		AmbassadorID: ambassadorID,
		ClubID:       clubID,
		Month:        month,
		Year:         year,
		Status:       models.ReportStatusSubmitted,
		Comment:      comment,
	}

	for _, sess := range sessions {
		report.SessionsHeld++
		report.AttendanceRecorded += len(sess.Attendance)
		report.SessionsData = append(report.SessionsData, models.ReportSession{
			SessionID: sess.ID,
			Title:     sess.Title,
			HeldAt:    sess.StartsAt,
			Attendees: len(sess.Attendance),
		})
	}

	for _, p := range participations {
		var event models.Event
		if err := s.DB.Where("id = ? AND status = ? AND starts_at >= ? AND starts_at < ?",
			p.EventID, models.EventCompleted, start, end).
			First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		if p.Role == models.EventRoleOrganizer {
			report.EventsOrganized++
		} else {
			report.EventsAttended++
		}
		report.EventsData = append(report.EventsData, models.ReportEvent{
			EventID: event.ID,
			Title:   event.Title,
			HeldAt:  event.StartsAt,
			Role:    p.Role,
		})
	}

	for _, m := range memberships {
		report.NewMembers++
		var member models.User
		fullName := ""
		if err := s.DB.Where("id = ?", m.UserID).First(&member).Error; err == nil {
			fullName = member.FullName
		}
		report.MembersData = append(report.MembersData, models.ReportMember{
			UserID:     m.UserID,
			FullName:   fullName,
			ApprovedAt: *m.ApprovedAt,
		})
	}

	for _, g := range grants {
		report.PointsEarned += g.Amount
		report.PointsData = append(report.PointsData, models.ReportPoint{
			GrantID:   g.ID,
			Amount:    g.Amount,
			Reason:    g.Reason,
			GrantedAt: g.CreatedAt,
		})
	}

	if err := s.DB.Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

// Approve moves a submitted report to approved. Terminal — an approved
// report is never reopened, and its snapshot arrays are never regenerated.
func (s *ReportService) Approve(reportID, reviewerID, comment string) (*models.Report, error) {
	return s.review(reportID, reviewerID, comment, models.ReportStatusApproved)
}

// Reject moves a submitted report to rejected. Terminal — there is no
// resubmission path for a rejected report.
func (s *ReportService) Reject(reportID, reviewerID, comment string) (*models.Report, error) {
	return s.review(reportID, reviewerID, comment, models.ReportStatusRejected)
}

func (s *ReportService) review(reportID, reviewerID, comment string, verdict models.ReportStatus) (*models.Report, error) {
	var report models.Report
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", reportID).First(&report).Error; err != nil {
			return err
		}
		if report.Status != models.ReportStatusSubmitted {
			return ErrReportNotReviewable
		}
		now := time.Now().UTC()
		report.Status = verdict
		report.ReviewedBy = &reviewerID
		report.ReviewComment = comment
		report.ReviewedAt = &now
		return tx.Save(&report).Error
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Delete hard-removes a report and cascades away any grants issued against
// it. Admin only; the only path that deletes ledger rows. The removal frees
// the (ambassador, club, month, year) slot so the period can be regenerated.
func (s *ReportService) Delete(reportID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.Where("id = ?", reportID).First(&report).Error; err != nil {
			return err
		}
		if err := s.Points.DeleteReportGrants(tx, report.ID); err != nil {
			return err
		}
		return tx.Delete(&report).Error
	})
}

// AttachDocument stores a supporting document for a report on local disk and
// records its serving path. Attachments are supplementary — they never touch
// the frozen snapshot data, so they stay allowed after review.
func (s *ReportService) AttachDocument(reportID, actorID string, fileHeader *multipart.FileHeader) (*models.Report, error) {
	var report models.Report
	if err := s.DB.Where("id = ?", reportID).First(&report).Error; err != nil {
		return nil, err
	}
	if report.AmbassadorID != actorID {
		return nil, ErrNotReportOwner
	}

	filename := report.ID + filepath.Ext(fileHeader.Filename)
	if err := utils.SaveFile(fileHeader, utils.GetUploadPath(filepath.Join("reports", filename))); err != nil {
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	report.AttachmentURL = "/uploads/reports/" + filename
	if err := s.DB.Model(&models.Report{}).Where("id = ?", report.ID).
		Update("attachment_url", report.AttachmentURL).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// GetByID loads one report.
func (s *ReportService) GetByID(reportID string) (*models.Report, error) {
	var report models.Report
	if err := s.DB.Where("id = ?", reportID).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports filtered by ambassador, club, status, or period.
func (s *ReportService) List(ambassadorID, clubID string, status models.ReportStatus, month, year int) ([]models.Report, error) {
	q := s.DB.Order("year DESC, month DESC, created_at DESC")
	if ambassadorID != "" {
		q = q.Where("ambassador_id = ?", ambassadorID)
	}
	if clubID != "" {
		q = q.Where("club_id = ?", clubID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if month > 0 {
		q = q.Where("month = ?", month)
	}
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	var reports []models.Report
	err := q.Find(&reports).Error
	return reports, err
}
