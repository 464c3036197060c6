package services

import (
	"testing"
	"time"

	"ambassador-platform/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. A single connection
// keeps every query on the same :memory: instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Region{},
		&models.User{},
		&models.Club{},
		&models.ClubMembership{},
		&models.Session{},
		&models.SessionAttendance{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Task{},
		&models.TaskCompletion{},
		&models.PointGrant{},
		&models.Report{},
	))
	return db
}

func seedRegion(t *testing.T, db *gorm.DB, name string) *models.Region {
	t.Helper()
	region := &models.Region{ID: uuid.NewString(), Name: name}
	require.NoError(t, db.Create(region).Error)
	return region
}

func seedUser(t *testing.T, db *gorm.DB, username string, regionID *string, coursePoints int64) *models.User {
	t.Helper()
	user := &models.User{
		ID:                uuid.NewString(),
		ExternalUserID:    uuid.NewString(),
		Username:          username,
		FullName:          username,
		Email:             username + "@example.com",
		Role:              models.RoleAmbassador,
		RegionID:          regionID,
		ExodeCoursePoints: coursePoints,
		IsActive:          true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedGrant(t *testing.T, db *gorm.DB, userID string, amount int64, reason string, createdAt time.Time) *models.PointGrant {
	t.Helper()
	grant := &models.PointGrant{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(grant).Error)
	return grant
}

func seedClub(t *testing.T, db *gorm.DB, name, leaderID string, regionID *string) *models.Club {
	t.Helper()
	club := &models.Club{
		ID:       uuid.NewString(),
		Name:     name,
		Slug:     name,
		LeaderID: leaderID,
		RegionID: regionID,
		Status:   models.ClubStatusActive,
	}
	require.NoError(t, db.Create(club).Error)
	return club
}
