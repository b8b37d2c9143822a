package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MatthijsVer/company-manager/internal/adapter/repository"
	"github.com/MatthijsVer/company-manager/internal/domain/entities"
	"github.com/MatthijsVer/company-manager/internal/usecase/extraction"
	pkgai "github.com/MatthijsVer/company-manager/pkg/ai"
)

type stubLLM struct {
	result entities.ChunkExtraction
	err    error
}

func (s *stubLLM) StructuredExtract(context.Context, string, string, map[string]interface{}, bool) (pkgai.Payload, error) {
	if s.err != nil {
		return pkgai.Payload{}, s.err
	}
	raw, _ := json.Marshal(s.result)
	return pkgai.Payload{Inline: raw}, nil
}

func (s *stubLLM) ChatExtract(context.Context, string, string, map[string]interface{}) (pkgai.Payload, error) {
	return s.StructuredExtract(context.Background(), "", "", nil, false)
}

type stubTranscriber struct {
	segments []entities.TranscriptSegment
	err      error
}

func (s *stubTranscriber) Provider() string { return "stub" }

func (s *stubTranscriber) Transcribe(context.Context, string) ([]entities.TranscriptSegment, error) {
	return s.segments, s.err
}

func newTestPipeline(db *gorm.DB, transcriber Transcriber, llm extraction.LLMClient) *Pipeline {
	return NewPipeline(
		repository.NewMeetingRepository(db),
		repository.NewExtractionRepository(db),
		extraction.NewService(llm, nil),
		transcriber,
		nil,
		nil,
	)
}

func speaker(name string) *string { return &name }

func TestTranscribe_StoresSegmentsAndPreview(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)
	meeting.Status = entities.MeetingStatusRecorded
	meeting.RecordingURL = "https://example.com/rec.mp3"
	require.NoError(t, db.Save(meeting).Error)

	transcriber := &stubTranscriber{segments: []entities.TranscriptSegment{
		{Speaker: speaker("A"), Text: "hello", StartSec: 0, EndSec: 2},
		{Speaker: speaker("B"), Text: "hi there", StartSec: 2, EndSec: 4},
	}}
	llm := &stubLLM{result: entities.ChunkExtraction{Summary: "greeting"}}

	updated, err := newTestPipeline(db, transcriber, llm).Transcribe(context.Background(), orgID, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.MeetingStatusTranscribed, updated.Status)
	assert.Equal(t, "stub", updated.TranscriptionProvider)

	var segCount int64
	require.NoError(t, db.Model(&entities.TranscriptSegment{}).Where("meeting_id = ?", meeting.ID).Count(&segCount).Error)
	assert.EqualValues(t, 2, segCount)

	// The post-transcription preview was stored.
	var ext entities.MeetingExtraction
	require.NoError(t, db.Where("meeting_id = ?", meeting.ID).First(&ext).Error)
	assert.Equal(t, entities.ExtractionStatusPreview, ext.Status)
	assert.Equal(t, "greeting", ext.Summary)
}

func TestTranscribe_ProviderFailureMarksMeetingFailed(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)
	meeting.Status = entities.MeetingStatusRecorded
	meeting.RecordingURL = "https://example.com/rec.mp3"
	require.NoError(t, db.Save(meeting).Error)

	transcriber := &stubTranscriber{err: errors.New("provider down")}

	_, err := newTestPipeline(db, transcriber, &stubLLM{}).Transcribe(context.Background(), orgID, meeting.ID)
	require.Error(t, err)

	var stored entities.Meeting
	require.NoError(t, db.First(&stored, "id = ?", meeting.ID).Error)
	assert.Equal(t, entities.MeetingStatusFailed, stored.Status)
}

func TestTranscribe_RejectsWrongState(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil) // transcribed
	meeting.RecordingURL = "https://example.com/rec.mp3"
	meeting.Status = entities.MeetingStatusProcessed
	require.NoError(t, db.Save(meeting).Error)

	_, err := newTestPipeline(db, &stubTranscriber{}, &stubLLM{}).Transcribe(context.Background(), orgID, meeting.ID)
	require.Error(t, err)
}

func TestPreview_NeverDowngradesFinalExtraction(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)
	seedSegments(t, db, meeting.ID, [2]float64{0, 10})

	final := entities.NewMeetingExtraction(meeting.ID, entities.ExtractionStatusFinal)
	final.Summary = "committed summary"
	require.NoError(t, db.Create(final).Error)

	llm := &stubLLM{result: entities.ChunkExtraction{Summary: "fresh preview"}}
	result, err := newTestPipeline(db, nil, llm).Preview(context.Background(), orgID, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh preview", result.Extraction.Summary)

	// The stored row keeps the committed extraction.
	var stored entities.MeetingExtraction
	require.NoError(t, db.Where("meeting_id = ?", meeting.ID).First(&stored).Error)
	assert.Equal(t, entities.ExtractionStatusFinal, stored.Status)
	assert.Equal(t, "committed summary", stored.Summary)
}

func TestGetExtraction_NotFound(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)

	_, err := newTestPipeline(db, nil, &stubLLM{}).GetExtraction(context.Background(), orgID, meeting.ID)
	require.Error(t, err)
}
