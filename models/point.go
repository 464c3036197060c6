package models

import (
	"time"
)

// PointReference tags why a grant was issued and what entity it points at.
type PointReference string

const (
	PointRefSession PointReference = "session"
	PointRefEvent   PointReference = "event"
	PointRefManual  PointReference = "manual"
	PointRefTask    PointReference = "task"
	PointRefReport  PointReference = "report"
)

// Fixed award amounts for automated grants. These bypass the manual range
// check — only the manual-grant path validates amount bounds.
const (
	SessionAttendancePoints = 10
	EventOrganizerPoints    = 30
	EventParticipantPoints  = 15
)

// Manual grants must fall inside [ManualGrantMin, ManualGrantMax].
const (
	ManualGrantMin = 1
	ManualGrantMax = 100
)

// PointGrant is one immutable row in the points ledger. Rows are only ever
// inserted (and cascaded away on admin report deletion) — never updated.
//
// The composite unique index closes the duplicate-award race for automated
// grants: two concurrent attendance batches for the same session can both pass
// the pre-insert exclusion check, but only one insert wins. Manual grants
// carry a NULL reference_id and are exempt from the constraint.
type PointGrant struct {
	ID            string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string         `gorm:"not null;index;uniqueIndex:idx_grant_once" json:"user_id"`
	Amount        int64          `gorm:"not null" json:"amount"`
	Reason        string         `gorm:"type:text" json:"reason"`
	ReferenceType *PointReference `gorm:"type:varchar(16);uniqueIndex:idx_grant_once" json:"reference_type,omitempty"`
	ReferenceID   *string        `gorm:"type:uuid;uniqueIndex:idx_grant_once" json:"reference_id,omitempty"`
	GrantedByID   *string        `gorm:"type:uuid" json:"granted_by_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
}
