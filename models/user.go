package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole determines what an actor may do inside the community service.
type UserRole string

const (
	RoleAmbassador   UserRole = "ambassador"
	RoleRegionalLead UserRole = "regional_lead"
	RoleAdmin        UserRole = "admin"
)

// User is a local snapshot of ambassador data needed by the community service.
// Owned and managed solely by this service; identity lives in the upstream
// profile service and is mirrored in via the user sync worker.
type User struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // the profile service's UUID
	Username       string  `gorm:"index;not null" json:"username"`
	Email          string  `json:"email,omitempty"`
	FullName       string  `json:"full_name"`
	AvatarURL      *string `json:"avatar_url,omitempty"`
	Phone          *string `json:"phone,omitempty"`

	Role     UserRole `gorm:"type:varchar(24);default:'ambassador';index" json:"role"`
	RegionID *string  `gorm:"type:uuid;index" json:"region_id,omitempty"`
	Region   *Region  `gorm:"foreignKey:RegionID" json:"region,omitempty"`

	// Cached balance from the Exode learning platform. Overwritten wholesale by
	// the sync worker; summed with the points ledger only at display time.
	ExodeUserID         *string    `gorm:"index" json:"exode_user_id,omitempty"`
	ExodeCoursePoints   int64      `gorm:"default:0" json:"exode_course_points"`
	ExodePointsSyncedAt *time.Time `json:"exode_points_synced_at,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Region groups ambassadors and clubs for leaderboard filtering and review scope.
type Region struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
