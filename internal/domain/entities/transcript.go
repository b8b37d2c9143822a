package entities

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptSegment is one timestamped utterance of a meeting transcript.
// Segments are owned by exactly one meeting and are always replaced as a
// whole set on re-transcription, never mutated individually.
type TranscriptSegment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	MeetingID uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;index"`
	Speaker   *string   `json:"speaker,omitempty" gorm:"type:varchar(100)"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	StartSec  float64   `json:"start_sec" gorm:"not null"`
	EndSec    float64   `json:"end_sec" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptSegment) TableName() string {
	return "transcript_segments"
}

// NewTranscriptSegment creates a segment for a meeting
func NewTranscriptSegment(meetingID uuid.UUID, speaker *string, text string, startSec, endSec float64) *TranscriptSegment {
	return &TranscriptSegment{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Speaker:   speaker,
		Text:      text,
		StartSec:  startSec,
		EndSec:    endSec,
		CreatedAt: time.Now(),
	}
}
