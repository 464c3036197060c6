package models

import (
	"time"
)

// ReportStatus is the review state machine of a monthly report.
// draft → submitted → {approved, rejected}; review transitions are terminal.
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusSubmitted ReportStatus = "submitted"
	ReportStatusApproved  ReportStatus = "approved"
	ReportStatusRejected  ReportStatus = "rejected"
)

// ReportSession is the frozen identifying data of one session at snapshot time.
type ReportSession struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	HeldAt    time.Time `json:"held_at"`
	Attendees int       `json:"attendees"`
}

// ReportEvent is the frozen identifying data of one event at snapshot time.
type ReportEvent struct {
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	HeldAt    time.Time `json:"held_at"`
	Role      EventRole `json:"role"`
}

// ReportMember is the frozen identifying data of one approved member.
type ReportMember struct {
	UserID     string    `json:"user_id"`
	FullName   string    `json:"full_name"`
	ApprovedAt time.Time `json:"approved_at"`
}

// ReportPoint is the frozen identifying data of one point grant in the period.
type ReportPoint struct {
	GrantID   string    `json:"grant_id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	GrantedAt time.Time `json:"granted_at"`
}

// Report is a frozen monthly activity snapshot for one ambassador and club.
// The embedded *_data arrays are copied from the live tables at creation and
// never regenerated afterwards — they are historical record, so editing or
// deleting the underlying sessions/events must not change an existing report.
type Report struct {
	ID           string       `gorm:"primaryKey;type:uuid" json:"id"`
	AmbassadorID string       `gorm:"type:uuid;not null;index;uniqueIndex:idx_report_period" json:"ambassador_id"`
	ClubID       string       `gorm:"type:uuid;not null;index;uniqueIndex:idx_report_period" json:"club_id"`
	Month        int          `gorm:"not null;uniqueIndex:idx_report_period" json:"month"` // 1–12
	Year         int          `gorm:"not null;uniqueIndex:idx_report_period" json:"year"`
	Status       ReportStatus `gorm:"type:varchar(16);not null;default:'submitted';index" json:"status"`

	// Period counts, denormalized at creation.
	SessionsHeld       int   `json:"sessions_held"`
	AttendanceRecorded int   `json:"attendance_recorded"`
	EventsOrganized    int   `json:"events_organized"`
	EventsAttended     int   `json:"events_attended"`
	NewMembers         int   `json:"new_members"`
	PointsEarned       int64 `json:"points_earned"`

	SessionsData []ReportSession `gorm:"type:jsonb;serializer:json" json:"sessions_data"`
	EventsData   []ReportEvent   `gorm:"type:jsonb;serializer:json" json:"events_data"`
	MembersData  []ReportMember  `gorm:"type:jsonb;serializer:json" json:"members_data"`
	PointsData   []ReportPoint   `gorm:"type:jsonb;serializer:json" json:"points_data"`

	Comment       string     `gorm:"type:text" json:"comment"`
	AttachmentURL string     `gorm:"type:text" json:"attachment_url,omitempty"`
	ReviewedBy    *string    `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewComment string     `gorm:"type:text" json:"review_comment"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`

	// No soft delete: an admin delete must hard-remove the row so the period
	// index frees up and the ambassador can submit that month again.
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
