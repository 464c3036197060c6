package models

import (
	"time"

	"gorm.io/gorm"
)

// ClubStatus is the publishing state of a club.
type ClubStatus string

const (
	ClubStatusActive   ClubStatus = "active"
	ClubStatusArchived ClubStatus = "archived"
)

// MembershipStatus tracks a join request through approval.
type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipApproved MembershipStatus = "approved"
	MembershipRejected MembershipStatus = "rejected"
)

// Club is an ambassador-led community chapter.
type Club struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Description string     `gorm:"type:text" json:"description"`
	LogoURL     string     `gorm:"type:text" json:"logo_url"`
	LeaderID    string     `gorm:"type:uuid;index;not null" json:"leader_id"` // ambassador running the club
	RegionID    *string    `gorm:"type:uuid;index" json:"region_id,omitempty"`
	Region      *Region    `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	Status      ClubStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`

	Members []ClubMembership `gorm:"foreignKey:ClubID" json:"members,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ClubMembership is a join request and, once approved, the membership itself.
// ApprovedAt feeds the monthly report's new-member count.
type ClubMembership struct {
	ID         string           `gorm:"primaryKey;type:uuid" json:"id"`
	ClubID     string           `gorm:"type:uuid;not null;index;uniqueIndex:idx_club_member" json:"club_id"`
	UserID     string           `gorm:"type:uuid;not null;index;uniqueIndex:idx_club_member" json:"user_id"`
	Status     MembershipStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ReviewedBy *string          `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ApprovedAt *time.Time       `json:"approved_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}
