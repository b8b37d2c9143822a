package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TaskPriority is the closed set of task priorities
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// ParseTaskPriority accepts only the four known values and defaults
// everything else to MEDIUM
func ParseTaskPriority(s string) TaskPriority {
	switch TaskPriority(s) {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return TaskPriority(s)
	default:
		return TaskPriorityMedium
	}
}

// Task is an organization-scoped work item, optionally linked back to the
// meeting it was extracted from
type Task struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID uuid.UUID      `json:"organization_id" gorm:"type:uuid;not null;index"`
	CompanyID      *uuid.UUID     `json:"company_id,omitempty" gorm:"type:uuid;index"`
	AssignedToID   *uuid.UUID     `json:"assigned_to_id,omitempty" gorm:"type:uuid"`
	ReporterID     uuid.UUID      `json:"reporter_id" gorm:"type:uuid;not null"`
	MeetingID      *uuid.UUID     `json:"meeting_id,omitempty" gorm:"type:uuid;index"`
	Name           string         `json:"name" gorm:"type:varchar(500);not null"`
	Description    string         `json:"description,omitempty" gorm:"type:text"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	Priority       TaskPriority   `json:"priority" gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	Labels         datatypes.JSON `json:"labels,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// NewTask creates a task owned by an organization with a reporter
func NewTask(orgID, reporterID uuid.UUID, name string) *Task {
	return &Task{
		ID:             uuid.New(),
		OrganizationID: orgID,
		ReporterID:     reporterID,
		Name:           name,
		Priority:       TaskPriorityMedium,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}
