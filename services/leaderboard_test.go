package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	now := time.Now().UTC()
	a := seedUser(t, db, "a", nil, 0)
	b := seedUser(t, db, "b", nil, 0)
	c := seedUser(t, db, "c", nil, 45)
	seedGrant(t, db, a.ID, 30, "x", now)
	seedGrant(t, db, b.ID, 50, "x", now)
	seedGrant(t, db, c.ID, 10, "x", now)

	entries, err := svc.GetLeaderboard("", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Combined: c=55, b=50, a=30.
	assert.Equal(t, c.ID, entries[0].UserID)
	assert.Equal(t, int64(55), entries[0].CombinedPoints)
	assert.Equal(t, int64(10), entries[0].TotalPoints)
	assert.Equal(t, int64(45), entries[0].ExodeCoursePoints)
	assert.Equal(t, 1, entries[0].Rank)

	assert.Equal(t, b.ID, entries[1].UserID)
	assert.Equal(t, int64(50), entries[1].CombinedPoints)
	assert.Equal(t, 2, entries[1].Rank)

	assert.Equal(t, a.ID, entries[2].UserID)
	assert.Equal(t, int64(30), entries[2].CombinedPoints)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestLeaderboardRegionFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	regionX := seedRegion(t, db, "X")
	regionY := seedRegion(t, db, "Y")
	inX := seedUser(t, db, "in-x", &regionX.ID, 0)
	inY := seedUser(t, db, "in-y", &regionY.ID, 0)
	seedGrant(t, db, inX.ID, 100, "x", time.Now())
	seedGrant(t, db, inY.ID, 5, "y", time.Now())

	entries, err := svc.GetLeaderboard(regionY.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, inY.ID, entries[0].UserID)
	assert.Equal(t, "Y", entries[0].RegionName)
}

func TestLeaderboardCoursePointsAloneRank(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	// No ledger rows at all — course points alone must still place the user.
	u := seedUser(t, db, "learner", nil, 120)

	entries, err := svc.GetLeaderboard("", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, u.ID, entries[0].UserID)
	assert.Equal(t, int64(0), entries[0].TotalPoints)
	assert.Equal(t, int64(120), entries[0].ExodeCoursePoints)
	assert.Equal(t, int64(120), entries[0].CombinedPoints)
}

func TestLeaderboardDefaultLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	for i := 0; i < 25; i++ {
		u := seedUser(t, db, fmt.Sprintf("user-%02d", i), nil, 0)
		seedGrant(t, db, u.ID, int64(i+1), "x", time.Now())
	}

	entries, err := svc.GetLeaderboard("", 0)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultLeaderboardLimit)
	// Top of the board is the biggest earner.
	assert.Equal(t, int64(25), entries[0].CombinedPoints)
}

func TestUserStandingCombined(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	now := time.Now().UTC()
	u1 := seedUser(t, db, "u1", nil, 20)
	seedGrant(t, db, u1.ID, 30, "Attended X", now)
	seedGrant(t, db, u1.ID, 45, "Task", now)

	standing, err := svc.GetUserStanding(u1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(75), standing.TotalPoints)
	assert.Equal(t, int64(20), standing.ExodeCoursePoints)
	assert.Equal(t, int64(95), standing.CombinedPoints)
}
