package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExtractionStatus distinguishes a preview generated right after
// transcription from the final committed extraction
type ExtractionStatus string

const (
	ExtractionStatusPreview ExtractionStatus = "preview"
	ExtractionStatusFinal   ExtractionStatus = "final"
)

// ExtractedTask is the transient task shape returned by the language model.
// Loose fields are validated and defaulted at the boundary; it only becomes
// a persisted Task after resolution.
type ExtractedTask struct {
	Name          string   `json:"name"`
	CompanyID     string   `json:"companyId,omitempty"`
	Description   string   `json:"description,omitempty"`
	DueDate       string   `json:"dueDate,omitempty"`
	AssigneeEmail string   `json:"assigneeEmail,omitempty"`
	Priority      string   `json:"priority,omitempty"`
	CompanySlug   string   `json:"companySlug,omitempty"`
	CompanyName   string   `json:"companyName,omitempty"`
	Labels        []string `json:"labels,omitempty"`
}

// ChunkExtraction is the structured output for one transcript chunk
type ChunkExtraction struct {
	Summary   string          `json:"summary"`
	Decisions []string        `json:"decisions"`
	Tasks     []ExtractedTask `json:"tasks"`
}

// AggregatedExtraction is the merged result across all chunks of a meeting
type AggregatedExtraction struct {
	Summary   string          `json:"summary"`
	Decisions []string        `json:"decisions"`
	Tasks     []ExtractedTask `json:"tasks"`
}

// MeetingExtraction is the stored extraction, at most one per meeting.
// Payload keeps the raw aggregated output for audit and replay.
type MeetingExtraction struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primary_key"`
	MeetingID uuid.UUID        `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex"`
	Summary   string           `json:"summary" gorm:"type:text"`
	Decisions string           `json:"decisions" gorm:"type:text"`
	Payload   datatypes.JSON   `json:"payload,omitempty" gorm:"type:jsonb"`
	Status    ExtractionStatus `json:"status" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (MeetingExtraction) TableName() string {
	return "meeting_extractions"
}

// NewMeetingExtraction creates an extraction row for a meeting
func NewMeetingExtraction(meetingID uuid.UUID, status ExtractionStatus) *MeetingExtraction {
	return &MeetingExtraction{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
