package services

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ambassador-platform/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCompletedSession(t *testing.T, db *gorm.DB, clubID, hostID string, startsAt time.Time, attendees []string) *models.Session {
	t.Helper()
	session := &models.Session{
		ID:       uuid.NewString(),
		ClubID:   clubID,
		HostID:   hostID,
		Title:    "Weekly meetup",
		StartsAt: startsAt,
		Status:   models.SessionCompleted,
	}
	require.NoError(t, db.Create(session).Error)
	for _, userID := range attendees {
		row := &models.SessionAttendance{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			UserID:    userID,
			RecordedBy: hostID,
		}
		require.NoError(t, db.Create(row).Error)
	}
	return session
}

func TestGenerateMonthlyReportCounts(t *testing.T) {
	db := newTestDB(t)
	points := NewPointsService(db)
	svc := NewReportService(db, points)

	region := seedRegion(t, db, "North")
	amb := seedUser(t, db, "amb", &region.ID, 0)
	member := seedUser(t, db, "member", &region.ID, 0)
	club := seedClub(t, db, "go-club", amb.ID, &region.ID)

	march := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)

	// Two completed sessions in March, one outside the period.
	seedCompletedSession(t, db, club.ID, amb.ID, march, []string{member.ID})
	seedCompletedSession(t, db, club.ID, amb.ID, march.AddDate(0, 0, 7), []string{member.ID, amb.ID})
	seedCompletedSession(t, db, club.ID, amb.ID, march.AddDate(0, -2, 0), []string{member.ID})

	// One completed event organized by the ambassador in March.
	event := &models.Event{
		ID:          uuid.NewString(),
		Title:       "Regional meetup",
		OrganizerID: amb.ID,
		StartsAt:    march.AddDate(0, 0, 3),
		Status:      models.EventCompleted,
	}
	require.NoError(t, db.Create(event).Error)
	require.NoError(t, db.Create(&models.EventParticipant{
		ID: uuid.NewString(), EventID: event.ID, UserID: amb.ID, Role: models.EventRoleOrganizer,
	}).Error)

	// One member approved in March, one in February.
	approvedMarch := march.AddDate(0, 0, 1)
	approvedFeb := march.AddDate(0, -1, 0)
	require.NoError(t, db.Create(&models.ClubMembership{
		ID: uuid.NewString(), ClubID: club.ID, UserID: member.ID,
		Status: models.MembershipApproved, ApprovedAt: &approvedMarch,
	}).Error)
	old := seedUser(t, db, "old-member", &region.ID, 0)
	require.NoError(t, db.Create(&models.ClubMembership{
		ID: uuid.NewString(), ClubID: club.ID, UserID: old.ID,
		Status: models.MembershipApproved, ApprovedAt: &approvedFeb,
	}).Error)

	// Points: 30 + 45 in March, 99 in January.
	seedGrant(t, db, amb.ID, 30, "Attended X", march)
	seedGrant(t, db, amb.ID, 45, "Task", march.AddDate(0, 0, 5))
	seedGrant(t, db, amb.ID, 99, "Old", march.AddDate(0, -2, 0))

	report, err := svc.GenerateMonthlyReport(amb.ID, club.ID, 3, 2026, "march report")
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusSubmitted, report.Status)
	assert.Equal(t, 2, report.SessionsHeld)
	assert.Equal(t, 3, report.AttendanceRecorded)
	assert.Equal(t, 1, report.EventsOrganized)
	assert.Equal(t, 0, report.EventsAttended)
	assert.Equal(t, 1, report.NewMembers)
	assert.Equal(t, int64(75), report.PointsEarned)

	require.Len(t, report.SessionsData, 2)
	require.Len(t, report.EventsData, 1)
	require.Len(t, report.MembersData, 1)
	require.Len(t, report.PointsData, 2)
	assert.Equal(t, member.ID, report.MembersData[0].UserID)
}

func TestReportSnapshotIsFrozen(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, NewPointsService(db))

	amb := seedUser(t, db, "amb", nil, 0)
	club := seedClub(t, db, "club", amb.ID, nil)
	march := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	session := seedCompletedSession(t, db, club.ID, amb.ID, march, nil)

	report, err := svc.GenerateMonthlyReport(amb.ID, club.ID, 3, 2026, "")
	require.NoError(t, err)
	require.Len(t, report.SessionsData, 1)

	// The underlying session goes away; the snapshot must not.
	require.NoError(t, db.Delete(&models.Session{}, "id = ?", session.ID).Error)

	reloaded, err := svc.GetByID(report.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.SessionsData, 1)
	assert.Equal(t, session.ID, reloaded.SessionsData[0].SessionID)
	assert.Equal(t, "Weekly meetup", reloaded.SessionsData[0].Title)
	assert.Equal(t, 1, reloaded.SessionsHeld)
}

func TestReportReviewTransitionsAreTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, NewPointsService(db))

	amb := seedUser(t, db, "amb", nil, 0)
	reviewer := seedUser(t, db, "lead", nil, 0)
	club := seedClub(t, db, "club", amb.ID, nil)

	report, err := svc.GenerateMonthlyReport(amb.ID, club.ID, 3, 2026, "")
	require.NoError(t, err)

	approved, err := svc.Approve(report.ID, reviewer.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, reviewer.ID, *approved.ReviewedBy)

	// Approved is terminal — no second review, no flip to rejected.
	_, err = svc.Approve(report.ID, reviewer.ID, "again")
	assert.ErrorIs(t, err, ErrReportNotReviewable)
	_, err = svc.Reject(report.ID, reviewer.ID, "changed my mind")
	assert.ErrorIs(t, err, ErrReportNotReviewable)
}

func TestReportRejectIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, NewPointsService(db))

	amb := seedUser(t, db, "amb", nil, 0)
	club := seedClub(t, db, "club", amb.ID, nil)

	report, err := svc.GenerateMonthlyReport(amb.ID, club.ID, 4, 2026, "")
	require.NoError(t, err)

	rejected, err := svc.Reject(report.ID, "reviewer", "insufficient activity")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusRejected, rejected.Status)

	_, err = svc.Approve(report.ID, "reviewer", "")
	assert.ErrorIs(t, err, ErrReportNotReviewable)
}

func TestReportDuplicatePeriodRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, NewPointsService(db))

	amb := seedUser(t, db, "amb", nil, 0)
	club := seedClub(t, db, "club", amb.ID, nil)

	_, err := svc.GenerateMonthlyReport(amb.ID, club.ID, 3, 2026, "")
	require.NoError(t, err)
	_, err = svc.GenerateMonthlyReport(amb.ID, club.ID, 3, 2026, "again")
	assert.ErrorIs(t, err, ErrReportExists)

	// A different month is fine.
	_, err = svc.GenerateMonthlyReport(amb.ID, club.ID, 4, 2026, "")
	require.NoError(t, err)
}

func TestReportDeleteCascadesGrants(t *testing.T) {
	db := newTestDB(t)
	points := NewPointsService(db)
	svc := NewReportService(db, points)

	amb := seedUser(t, db, "amb", nil, 0)
	club := seedClub(t, db, "club", amb.ID, nil)

	report, err := svc.GenerateMonthlyReport(amb.ID, club.ID, 3, 2026, "")
	require.NoError(t, err)

	// A grant issued against the report (e.g., bonus for an approved report).
	ref := models.PointRefReport
	bonus := &models.PointGrant{
		ID: uuid.NewString(), UserID: amb.ID, Amount: 25,
		Reason: "Approved monthly report", ReferenceType: &ref, ReferenceID: &report.ID,
	}
	require.NoError(t, db.Create(bonus).Error)
	// Unrelated grant survives the cascade.
	seedGrant(t, db, amb.ID, 10, "manual", time.Now())

	require.NoError(t, svc.Delete(report.ID))

	var count int64
	require.NoError(t, db.Model(&models.PointGrant{}).
		Where("reference_type = ? AND reference_id = ?", models.PointRefReport, report.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)

	total, err := points.TotalForUser(amb.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)

	_, err = svc.GetByID(report.ID)
	assert.Error(t, err)
}

func TestReportDeleteFreesPeriodForRegeneration(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, NewPointsService(db))

	amb := seedUser(t, db, "amb", nil, 0)
	club := seedClub(t, db, "club", amb.ID, nil)

	first, err := svc.GenerateMonthlyReport(amb.ID, club.ID, 3, 2026, "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(first.ID))

	// The (ambassador, club, month, year) slot is free again after the delete.
	second, err := svc.GenerateMonthlyReport(amb.ID, club.ID, 3, 2026, "resubmitted")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.ReportStatusSubmitted, second.Status)
}

func uploadFileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File[field][0]
}

func TestAttachDocumentStoresFileAndURL(t *testing.T) {
	origWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	db := newTestDB(t)
	svc := NewReportService(db, NewPointsService(db))

	amb := seedUser(t, db, "amb", nil, 0)
	other := seedUser(t, db, "other", nil, 0)
	club := seedClub(t, db, "club", amb.ID, nil)

	report, err := svc.GenerateMonthlyReport(amb.ID, club.ID, 3, 2026, "")
	require.NoError(t, err)

	fileHeader := uploadFileHeader(t, "attachment", "summary.pdf", []byte("monthly summary"))

	// Only the report's ambassador may attach documents.
	_, err = svc.AttachDocument(report.ID, other.ID, fileHeader)
	assert.ErrorIs(t, err, ErrNotReportOwner)

	attached, err := svc.AttachDocument(report.ID, amb.ID, fileHeader)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/reports/"+report.ID+".pdf", attached.AttachmentURL)

	saved, err := os.ReadFile(filepath.Join("uploads", "reports", report.ID+".pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("monthly summary"), saved)

	reloaded, err := svc.GetByID(report.ID)
	require.NoError(t, err)
	assert.Equal(t, attached.AttachmentURL, reloaded.AttachmentURL)
}

func TestGenerateMonthlyReportInvalidMonth(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, NewPointsService(db))

	_, err := svc.GenerateMonthlyReport("amb", "club", 13, 2026, "")
	assert.Error(t, err)
	_, err = svc.GenerateMonthlyReport("amb", "club", 0, 2026, "")
	assert.Error(t, err)
}
