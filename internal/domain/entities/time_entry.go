package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MeetingTag returns the idempotency marker embedded in the notes of a
// meeting-derived time entry, e.g. "[meeting:6f1c…]". The unique meeting_id
// column is what the lookup uses; the tag stays in the notes so the entry is
// recognizable wherever notes are displayed or exported.
func MeetingTag(meetingID uuid.UUID) string {
	return fmt.Sprintf("[meeting:%s]", meetingID)
}

// TimeEntry is a logged block of work time. At most one meeting-derived
// entry exists per meeting.
type TimeEntry struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID  uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	CompanyID       *uuid.UUID `json:"company_id,omitempty" gorm:"type:uuid"`
	MeetingID       *uuid.UUID `json:"meeting_id,omitempty" gorm:"type:uuid;uniqueIndex"`
	Notes           string     `json:"notes,omitempty" gorm:"type:text"`
	DurationSeconds int        `json:"duration_seconds" gorm:"not null"`
	Billable        bool       `json:"billable" gorm:"not null;default:false"`
	StartedAt       time.Time  `json:"started_at"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (TimeEntry) TableName() string {
	return "time_entries"
}
