package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus tracks a meeting through the processing pipeline
type MeetingStatus string

const (
	MeetingStatusRecorded    MeetingStatus = "recorded"
	MeetingStatusTranscribed MeetingStatus = "transcribed"
	MeetingStatusProcessed   MeetingStatus = "processed"
	MeetingStatusFailed      MeetingStatus = "failed"
)

// Meeting is an organization-scoped recorded conversation.
// Status moves recorded -> transcribed -> processed; failed is a sink
// reachable while transcribing. Processed is re-enterable: committing an
// already-processed meeting again is legal.
type Meeting struct {
	ID                    uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID        uuid.UUID     `json:"organization_id" gorm:"type:uuid;not null;index"`
	CompanyID             *uuid.UUID    `json:"company_id,omitempty" gorm:"type:uuid;index"`
	CreatedBy             uuid.UUID     `json:"created_by" gorm:"type:uuid;not null"`
	Title                 string        `json:"title" gorm:"type:varchar(255)"`
	Status                MeetingStatus `json:"status" gorm:"type:varchar(20);not null;default:'recorded'"`
	RecordingURL          string        `json:"recording_url,omitempty" gorm:"type:text"`
	TranscriptionProvider string        `json:"transcription_provider,omitempty" gorm:"type:varchar(50)"`
	StartedAt             *time.Time    `json:"started_at,omitempty"`
	EndedAt               *time.Time    `json:"ended_at,omitempty"`
	CreatedAt             time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a new meeting in the recorded state
func NewMeeting(orgID, createdBy uuid.UUID, title string) *Meeting {
	return &Meeting{
		ID:             uuid.New(),
		OrganizationID: orgID,
		CreatedBy:      createdBy,
		Title:          title,
		Status:         MeetingStatusRecorded,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// DurationSeconds returns the explicit meeting span, or 0 when either
// timestamp is missing
func (m *Meeting) DurationSeconds() int {
	if m.StartedAt == nil || m.EndedAt == nil {
		return 0
	}
	d := int(m.EndedAt.Sub(*m.StartedAt).Seconds())
	if d < 0 {
		return 0
	}
	return d
}
