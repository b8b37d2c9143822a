package transcription

import (
	"context"
	"fmt"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
	"github.com/MatthijsVer/company-manager/pkg/config"
)

// AssemblyAI transcribes meeting recordings through the official SDK and
// maps the returned utterances onto transcript segments
type AssemblyAI struct {
	client *aai.Client
	logger *zap.Logger
}

// NewAssemblyAI constructs the transcriber from configuration
func NewAssemblyAI(cfg *config.AssemblyAIConfig, logger *zap.Logger) *AssemblyAI {
	return &AssemblyAI{
		client: aai.NewClient(cfg.APIKey),
		logger: logger,
	}
}

// Provider names the transcription provider recorded on the meeting
func (a *AssemblyAI) Provider() string {
	return "assemblyai"
}

// Transcribe submits the recording URL and waits for the transcript.
// Submission is retried with exponential backoff; the provider call itself
// polls until the transcript completes.
func (a *AssemblyAI) Transcribe(ctx context.Context, audioURL string) ([]entities.TranscriptSegment, error) {
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}

	var transcript aai.Transcript
	submitFn := func() error {
		var err error
		transcript, err = a.client.Transcripts.TranscribeFromURL(ctx, audioURL, params)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("assemblyai transcription failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai transcription failed: %s", msg)
	}

	segments := mapUtterances(transcript)

	// No utterances but a transcript text: keep everything in one segment
	// so the pipeline still has something to extract from.
	if len(segments) == 0 && transcript.Text != nil && *transcript.Text != "" {
		segments = append(segments, entities.TranscriptSegment{
			Text: *transcript.Text,
		})
	}

	if a.logger != nil {
		a.logger.Info("transcription completed",
			zap.Int("segments", len(segments)),
		)
	}

	return segments, nil
}

// mapUtterances converts SDK utterances (millisecond timestamps) into
// transcript segments (second timestamps)
func mapUtterances(transcript aai.Transcript) []entities.TranscriptSegment {
	segments := make([]entities.TranscriptSegment, 0, len(transcript.Utterances))
	for _, utt := range transcript.Utterances {
		var seg entities.TranscriptSegment
		if utt.Text != nil {
			seg.Text = *utt.Text
		}
		if seg.Text == "" {
			continue
		}
		if utt.Speaker != nil && *utt.Speaker != "" {
			speaker := *utt.Speaker
			seg.Speaker = &speaker
		}
		if utt.Start != nil {
			seg.StartSec = float64(*utt.Start) / 1000.0
		}
		if utt.End != nil {
			seg.EndSec = float64(*utt.End) / 1000.0
		}
		segments = append(segments, seg)
	}
	return segments
}
