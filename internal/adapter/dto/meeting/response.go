package meeting

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

// MeetingResponse is the API representation of a meeting
type MeetingResponse struct {
	ID                    uuid.UUID         `json:"id"`
	CompanyID             *uuid.UUID        `json:"companyId,omitempty"`
	Title                 string            `json:"title"`
	Status                string            `json:"status"`
	RecordingURL          string            `json:"recordingUrl,omitempty"`
	TranscriptionProvider string            `json:"transcriptionProvider,omitempty"`
	StartedAt             *time.Time        `json:"startedAt,omitempty"`
	EndedAt               *time.Time        `json:"endedAt,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
	Segments              []SegmentResponse `json:"segments,omitempty"`
}

// SegmentResponse is one transcript segment in a meeting response
type SegmentResponse struct {
	Speaker  *string `json:"speaker,omitempty"`
	Text     string  `json:"text"`
	StartSec float64 `json:"startSec"`
	EndSec   float64 `json:"endSec"`
}

// NewMeetingResponse builds a meeting response, with segments when given
func NewMeetingResponse(m *entities.Meeting, segments []entities.TranscriptSegment) MeetingResponse {
	resp := MeetingResponse{
		ID:                    m.ID,
		CompanyID:             m.CompanyID,
		Title:                 m.Title,
		Status:                string(m.Status),
		RecordingURL:          m.RecordingURL,
		TranscriptionProvider: m.TranscriptionProvider,
		StartedAt:             m.StartedAt,
		EndedAt:               m.EndedAt,
		CreatedAt:             m.CreatedAt,
	}
	for _, s := range segments {
		resp.Segments = append(resp.Segments, SegmentResponse{
			Speaker:  s.Speaker,
			Text:     s.Text,
			StartSec: s.StartSec,
			EndSec:   s.EndSec,
		})
	}
	return resp
}

// ExtractionResponse is the stored extraction of a meeting
type ExtractionResponse struct {
	MeetingID uuid.UUID       `json:"meetingId"`
	Status    string          `json:"status"`
	Summary   string          `json:"summary"`
	Decisions string          `json:"decisions"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewExtractionResponse builds an extraction response
func NewExtractionResponse(e *entities.MeetingExtraction) ExtractionResponse {
	return ExtractionResponse{
		MeetingID: e.MeetingID,
		Status:    string(e.Status),
		Summary:   e.Summary,
		Decisions: e.Decisions,
		Payload:   json.RawMessage(e.Payload),
		UpdatedAt: e.UpdatedAt,
	}
}

// TaskResponse is one task created from a meeting
type TaskResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Priority     string          `json:"priority"`
	CompanyID    *uuid.UUID      `json:"companyId,omitempty"`
	AssignedToID *uuid.UUID      `json:"assignedToId,omitempty"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	Labels       json.RawMessage `json:"labels,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// NewTaskListResponse builds the task list of a meeting
func NewTaskListResponse(tasks []entities.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskResponse{
			ID:           t.ID,
			Name:         t.Name,
			Description:  t.Description,
			Priority:     string(t.Priority),
			CompanyID:    t.CompanyID,
			AssignedToID: t.AssignedToID,
			DueDate:      t.DueDate,
			Labels:       json.RawMessage(t.Labels),
			CreatedAt:    t.CreatedAt,
		})
	}
	return out
}

// PreviewResponse is a preview extraction with its degradation note
type PreviewResponse struct {
	Extraction *entities.AggregatedExtraction `json:"extraction"`
	Note       string                         `json:"note,omitempty"`
	Cached     bool                           `json:"cached"`
}
