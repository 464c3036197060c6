package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus is the publishing status of a task.
type TaskStatus string

const (
	TaskStatusDraft     TaskStatus = "draft"
	TaskStatusPublished TaskStatus = "published"
	TaskStatusArchived  TaskStatus = "archived"
)

// CompletionStatus tracks a submitted task completion through verification.
type CompletionStatus string

const (
	CompletionSubmitted CompletionStatus = "submitted"
	CompletionVerified  CompletionStatus = "verified"
	CompletionDeclined  CompletionStatus = "declined"
)

// Task is an assignable activity worth a fixed number of points.
type Task struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Points      int64      `gorm:"not null" json:"points"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Status      TaskStatus `gorm:"type:varchar(16);not null;default:'draft'" json:"status"`
	CreatedByID string     `gorm:"type:uuid" json:"created_by_id"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TaskCompletion is one user's submission for one task. Verifying it issues a
// task-referenced grant for the task's point value.
type TaskCompletion struct {
	ID         string           `gorm:"primaryKey;type:uuid" json:"id"`
	TaskID     string           `gorm:"type:uuid;not null;index;uniqueIndex:idx_task_completion" json:"task_id"`
	UserID     string           `gorm:"type:uuid;not null;index;uniqueIndex:idx_task_completion" json:"user_id"`
	ProofURL   string           `gorm:"type:text" json:"proof_url"`
	Comment    string           `gorm:"type:text" json:"comment"`
	Status     CompletionStatus `gorm:"type:varchar(16);not null;default:'submitted';index" json:"status"`
	VerifiedBy *string          `gorm:"type:uuid" json:"verified_by,omitempty"`
	VerifiedAt *time.Time       `json:"verified_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}
