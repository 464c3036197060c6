package services

import (
	"testing"
	"time"

	"ambassador-platform/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualGrantBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	actor := seedUser(t, db, "lead", nil, 0)
	user := seedUser(t, db, "amb", nil, 0)

	cases := []struct {
		amount int64
		wantOK bool
	}{
		{0, false},
		{101, false},
		{-5, false},
		{1, true},
		{100, true},
		{50, true},
	}
	for _, tc := range cases {
		grant, err := svc.ManualGrant(actor.ID, user.ID, tc.amount, "community work")
		if tc.wantOK {
			require.NoError(t, err, "amount %d should be accepted", tc.amount)
			assert.Equal(t, tc.amount, grant.Amount)
			assert.Equal(t, models.PointRefManual, *grant.ReferenceType)
			assert.Nil(t, grant.ReferenceID)
		} else {
			assert.Error(t, err, "amount %d should be rejected", tc.amount)
		}
	}

	// Out-of-range attempts must not touch the ledger.
	total, err := svc.TotalForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(151), total)
}

func TestManualGrantUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	actor := seedUser(t, db, "lead", nil, 0)

	_, err := svc.ManualGrant(actor.ID, uuid.NewString(), 10, "ghost")
	assert.Error(t, err)
}

func TestTotalForUserOrderIndependent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	user := seedUser(t, db, "amb", nil, 0)

	now := time.Now().UTC()
	// Inserted out of chronological order on purpose.
	seedGrant(t, db, user.ID, 45, "Task", now)
	seedGrant(t, db, user.ID, 30, "Attended X", now.Add(-48*time.Hour))
	seedGrant(t, db, user.ID, 7, "Manual", now.Add(-12*time.Hour))

	total, err := svc.TotalForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(82), total)
}

func TestTotalForUserAbsentFromLedger(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	user := seedUser(t, db, "amb", nil, 0)

	total, err := svc.TotalForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestAwardSessionAttendanceIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	u1 := seedUser(t, db, "u1", nil, 0)
	u2 := seedUser(t, db, "u2", nil, 0)
	sessionID := uuid.NewString()

	granted, err := svc.AwardSessionAttendance(sessionID, "host", []string{u1.ID, u2.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, granted)

	// Same batch again — the exclusion check must award nothing.
	granted, err = svc.AwardSessionAttendance(sessionID, "host", []string{u1.ID, u2.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, granted)

	for _, u := range []*models.User{u1, u2} {
		var count int64
		require.NoError(t, db.Model(&models.PointGrant{}).
			Where("user_id = ? AND reference_type = ? AND reference_id = ?",
				u.ID, models.PointRefSession, sessionID).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)

		total, err := svc.TotalForUser(u.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(models.SessionAttendancePoints), total)
	}
}

func TestAwardSessionAttendancePartialOverlap(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	u1 := seedUser(t, db, "u1", nil, 0)
	u2 := seedUser(t, db, "u2", nil, 0)
	sessionID := uuid.NewString()

	granted, err := svc.AwardSessionAttendance(sessionID, "host", []string{u1.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, granted)

	// Retried batch with one new attendee — only the new one is awarded.
	granted, err = svc.AwardSessionAttendance(sessionID, "host", []string{u1.ID, u2.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, granted)
}

func TestSessionGrantUniqueIndexBackstop(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "u1", nil, 0)
	sessionID := uuid.NewString()
	ref := models.PointRefSession

	first := &models.PointGrant{
		ID: uuid.NewString(), UserID: user.ID, Amount: 10,
		ReferenceType: &ref, ReferenceID: &sessionID,
	}
	require.NoError(t, db.Create(first).Error)

	// A duplicate that slipped past the exclusion check loses at the index.
	dup := &models.PointGrant{
		ID: uuid.NewString(), UserID: user.ID, Amount: 10,
		ReferenceType: &ref, ReferenceID: &sessionID,
	}
	assert.Error(t, db.Create(dup).Error)
}

func TestManualGrantsNotBlockedByUniqueIndex(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	actor := seedUser(t, db, "lead", nil, 0)
	user := seedUser(t, db, "amb", nil, 0)

	// NULL reference rows never collide — repeated manual grants are fine.
	_, err := svc.ManualGrant(actor.ID, user.ID, 10, "first")
	require.NoError(t, err)
	_, err = svc.ManualGrant(actor.ID, user.ID, 10, "second")
	require.NoError(t, err)

	total, err := svc.TotalForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), total)
}

func TestAwardEventCompletionRoles(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db)
	org := seedUser(t, db, "org", nil, 0)
	att := seedUser(t, db, "att", nil, 0)

	event := &models.Event{
		ID:          uuid.NewString(),
		Title:       "Hack Night",
		OrganizerID: org.ID,
		StartsAt:    time.Now(),
		Status:      models.EventCompleted,
	}
	require.NoError(t, db.Create(event).Error)
	participants := []models.EventParticipant{
		{ID: uuid.NewString(), EventID: event.ID, UserID: org.ID, Role: models.EventRoleOrganizer},
		{ID: uuid.NewString(), EventID: event.ID, UserID: att.ID, Role: models.EventRoleParticipant},
	}

	granted, err := svc.AwardEventCompletion(event, participants)
	require.NoError(t, err)
	assert.Equal(t, 2, granted)

	orgTotal, _ := svc.TotalForUser(org.ID)
	attTotal, _ := svc.TotalForUser(att.ID)
	assert.Equal(t, int64(models.EventOrganizerPoints), orgTotal)
	assert.Equal(t, int64(models.EventParticipantPoints), attTotal)

	// Re-running the completion awards nothing new.
	granted, err = svc.AwardEventCompletion(event, participants)
	require.NoError(t, err)
	assert.Equal(t, 0, granted)
}
