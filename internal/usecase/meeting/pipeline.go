package meeting

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/MatthijsVer/company-manager/errors"
	"github.com/MatthijsVer/company-manager/internal/adapter/repository"
	"github.com/MatthijsVer/company-manager/internal/domain/entities"
	"github.com/MatthijsVer/company-manager/internal/usecase/extraction"
)

// Transcriber converts a recording URL into timed transcript segments
type Transcriber interface {
	Provider() string
	Transcribe(ctx context.Context, audioURL string) ([]entities.TranscriptSegment, error)
}

// PreviewCache stores preview extractions so repeated preview requests for
// the same transcript skip the language model entirely. The Coordinator
// invalidates the entry when a commit makes the preview obsolete.
type PreviewCache interface {
	SetPreview(ctx context.Context, meetingID uuid.UUID, preview *entities.AggregatedExtraction, note string) error
	GetPreview(ctx context.Context, meetingID uuid.UUID) (*entities.AggregatedExtraction, string, error)
	InvalidatePreview(ctx context.Context, meetingID uuid.UUID) error
}

// PreviewResult is a preview extraction together with its degradation note
// and whether it was served from cache
type PreviewResult struct {
	Extraction *entities.AggregatedExtraction `json:"extraction"`
	Note       string                         `json:"note,omitempty"`
	Cached     bool                           `json:"cached"`
}

// Pipeline drives a meeting from its recording through transcription to a
// preview extraction. Committing the extraction is the Coordinator's job.
type Pipeline struct {
	meetings    *repository.MeetingRepository
	extractions *repository.ExtractionRepository
	extractor   *extraction.Service
	transcriber Transcriber
	cache       PreviewCache
	logger      *zap.Logger
}

// NewPipeline constructs the meeting pipeline. transcriber and cache may be
// nil when the corresponding integration is not configured.
func NewPipeline(
	meetings *repository.MeetingRepository,
	extractions *repository.ExtractionRepository,
	extractor *extraction.Service,
	transcriber Transcriber,
	cache PreviewCache,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		meetings:    meetings,
		extractions: extractions,
		extractor:   extractor,
		transcriber: transcriber,
		cache:       cache,
		logger:      logger,
	}
}

// Transcribe sends the meeting's recording to the transcription provider,
// replaces the meeting's segments and moves it to transcribed. A provider
// failure moves the meeting to failed; transcribing again from failed is
// allowed. After a successful transcription a preview extraction runs
// best-effort.
func (p *Pipeline) Transcribe(ctx context.Context, orgID, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := p.meetings.GetMeetingByID(ctx, orgID, meetingID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}
	if p.transcriber == nil {
		return nil, apperrors.ErrInvalidArgument("no transcription provider is configured")
	}
	if meeting.RecordingURL == "" {
		return nil, apperrors.ErrInvalidArgument("meeting has no recording URL")
	}
	if meeting.Status != entities.MeetingStatusRecorded && meeting.Status != entities.MeetingStatusFailed {
		return nil, apperrors.ErrMeetingInvalidState(meetingID.String(), string(meeting.Status), string(entities.MeetingStatusRecorded))
	}

	segments, err := p.transcriber.Transcribe(ctx, meeting.RecordingURL)
	if err != nil {
		if statusErr := p.meetings.UpdateMeetingStatus(ctx, meeting.ID, entities.MeetingStatusFailed); statusErr != nil && p.logger != nil {
			p.logger.Error("failed to mark meeting failed", zap.String("meeting_id", meeting.ID.String()), zap.Error(statusErr))
		}
		return nil, apperrors.ErrTranscriptionFailed(err)
	}
	if len(segments) == 0 {
		if statusErr := p.meetings.UpdateMeetingStatus(ctx, meeting.ID, entities.MeetingStatusFailed); statusErr != nil && p.logger != nil {
			p.logger.Error("failed to mark meeting failed", zap.String("meeting_id", meeting.ID.String()), zap.Error(statusErr))
		}
		return nil, apperrors.ErrEmptyTranscript(meetingID.String())
	}

	for i := range segments {
		segments[i].ID = uuid.New()
		segments[i].MeetingID = meeting.ID
	}
	if err := p.meetings.ReplaceSegments(ctx, meeting.ID, segments); err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	meeting.Status = entities.MeetingStatusTranscribed
	meeting.TranscriptionProvider = p.transcriber.Provider()
	if err := p.meetings.UpdateMeeting(ctx, meeting); err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	if p.logger != nil {
		p.logger.Info("meeting transcribed",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("provider", meeting.TranscriptionProvider),
			zap.Int("segments", len(segments)),
		)
	}

	// The preview is a convenience; its failure never fails transcription.
	if _, err := p.runPreview(ctx, meeting, segments); err != nil && p.logger != nil {
		p.logger.Warn("post-transcription preview failed",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
	}

	return meeting, nil
}

// Preview returns a preview extraction of the meeting's transcript, from
// cache when one is fresh, recomputing otherwise
func (p *Pipeline) Preview(ctx context.Context, orgID, meetingID uuid.UUID) (*PreviewResult, error) {
	meeting, err := p.meetings.GetMeetingByID(ctx, orgID, meetingID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}
	if meeting.Status != entities.MeetingStatusTranscribed && meeting.Status != entities.MeetingStatusProcessed {
		return nil, apperrors.ErrMeetingInvalidState(meetingID.String(), string(meeting.Status), string(entities.MeetingStatusTranscribed))
	}

	if p.cache != nil {
		if cached, note, err := p.cache.GetPreview(ctx, meetingID); err == nil && cached != nil {
			return &PreviewResult{Extraction: cached, Note: note, Cached: true}, nil
		}
	}

	segments, err := p.meetings.GetSegments(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if len(segments) == 0 {
		return nil, apperrors.ErrEmptyTranscript(meetingID.String())
	}

	return p.runPreview(ctx, meeting, segments)
}

// GetExtraction returns the stored extraction (preview or final) for a
// meeting
func (p *Pipeline) GetExtraction(ctx context.Context, orgID, meetingID uuid.UUID) (*entities.MeetingExtraction, error) {
	meeting, err := p.meetings.GetMeetingByID(ctx, orgID, meetingID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}

	ext, err := p.extractions.GetByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if ext == nil {
		return nil, apperrors.ErrNotFound("Extraction")
	}
	return ext, nil
}

// GetMeeting returns a meeting together with its transcript segments
func (p *Pipeline) GetMeeting(ctx context.Context, orgID, meetingID uuid.UUID) (*entities.Meeting, []entities.TranscriptSegment, error) {
	meeting, err := p.meetings.GetMeetingByID(ctx, orgID, meetingID)
	if err != nil {
		return nil, nil, apperrors.ErrInternal(err)
	}
	if meeting == nil {
		return nil, nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}

	segments, err := p.meetings.GetSegments(ctx, meetingID)
	if err != nil {
		return nil, nil, apperrors.ErrInternal(err)
	}
	return meeting, segments, nil
}

// runPreview executes the permissive extraction over the given segments,
// stores the result as the meeting's preview extraction (never overwriting a
// final one) and caches it
func (p *Pipeline) runPreview(ctx context.Context, meeting *entities.Meeting, segments []entities.TranscriptSegment) (*PreviewResult, error) {
	transcript := extraction.FlattenSegments(segments)
	preview, note := p.extractor.ExtractPreview(ctx, transcript)

	existing, err := p.extractions.GetByMeetingID(ctx, meeting.ID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	// A committed extraction is authoritative; previews never replace it.
	if existing == nil || existing.Status == entities.ExtractionStatusPreview {
		ext := entities.NewMeetingExtraction(meeting.ID, entities.ExtractionStatusPreview)
		ext.Summary = preview.Summary
		ext.Decisions = joinLines(preview.Decisions)
		if payload, err := marshalAggregate(preview); err == nil {
			ext.Payload = payload
		}
		if err := p.extractions.Upsert(ctx, ext); err != nil {
			return nil, apperrors.ErrInternal(err)
		}
	}

	if p.cache != nil {
		if err := p.cache.SetPreview(ctx, meeting.ID, preview, note); err != nil && p.logger != nil {
			p.logger.Warn("failed to cache preview",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err),
			)
		}
	}

	return &PreviewResult{Extraction: preview, Note: note}, nil
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func marshalAggregate(agg *entities.AggregatedExtraction) (datatypes.JSON, error) {
	raw, err := json.Marshal(agg)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
