package models

import (
	"time"

	"gorm.io/gorm"
)

// EventStatus is the lifecycle of a regional event.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// EventRole distinguishes organizers from attendees on the participant row.
type EventRole string

const (
	EventRoleOrganizer   EventRole = "organizer"
	EventRoleParticipant EventRole = "participant"
)

// Event is a regional community event (meetup, hackathon, workshop).
type Event struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	CoverURL    string      `gorm:"type:text" json:"cover_url"`
	Location    string      `json:"location"`
	RegionID    *string     `gorm:"type:uuid;index" json:"region_id,omitempty"`
	Region      *Region     `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	OrganizerID string      `gorm:"type:uuid;not null;index" json:"organizer_id"`
	StartsAt    time.Time   `gorm:"index;not null" json:"starts_at"`
	EndsAt      *time.Time  `json:"ends_at,omitempty"`
	Status      EventStatus `gorm:"type:varchar(16);not null;default:'draft';index" json:"status"`

	Participants []EventParticipant `gorm:"foreignKey:EventID" json:"participants,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// EventParticipant links one user to one event. A user holds exactly one row
// per event, so completion awards exactly one grant per participant.
type EventParticipant struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	EventID   string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_event_participant" json:"event_id"`
	UserID    string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_event_participant" json:"user_id"`
	Role      EventRole `gorm:"type:varchar(16);not null;default:'participant'" json:"role"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
