package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionStatus is the lifecycle of a club session.
type SessionStatus string

const (
	SessionScheduled      SessionStatus = "scheduled"
	SessionAwaitingReport SessionStatus = "awaiting_report" // past start time, attendance not yet recorded
	SessionCompleted      SessionStatus = "completed"
	SessionCancelled      SessionStatus = "cancelled"
)

// Session is a single club meeting run by an ambassador.
type Session struct {
	ID          string        `gorm:"primaryKey;type:uuid" json:"id"`
	ClubID      string        `gorm:"type:uuid;not null;index" json:"club_id"`
	Club        *Club         `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	HostID      string        `gorm:"type:uuid;not null;index" json:"host_id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Location    string        `json:"location"`
	StartsAt    time.Time     `gorm:"index;not null" json:"starts_at"`
	Status      SessionStatus `gorm:"type:varchar(24);not null;default:'scheduled';index" json:"status"`

	Attendance []SessionAttendance `gorm:"foreignKey:SessionID" json:"attendance,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SessionAttendance marks one user as present at one session.
type SessionAttendance struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	SessionID  string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_session_attendee" json:"session_id"`
	UserID     string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_session_attendee" json:"user_id"`
	RecordedBy string    `gorm:"type:uuid" json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
