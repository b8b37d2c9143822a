package extraction

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
	pkgai "github.com/MatthijsVer/company-manager/pkg/ai"
)

// LLMClient is the slice of the extraction client this service needs
type LLMClient interface {
	StructuredExtract(ctx context.Context, instructions, input string, schema map[string]interface{}, strict bool) (pkgai.Payload, error)
	ChatExtract(ctx context.Context, instructions, input string, schema map[string]interface{}) (pkgai.Payload, error)
}

// Service turns a flattened transcript into one aggregated extraction.
// Chunk calls are issued sequentially: aggregation depends on stable chunk
// order and the service offers no batching guarantees.
type Service struct {
	llm    LLMClient
	logger *zap.Logger
}

// NewService constructs an extraction service
func NewService(llm LLMClient, logger *zap.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// ExtractStrict runs commit-time extraction. Any chunk failing — non-success
// response, unparsable body, schema violation — is fatal for the whole run;
// chunks after the failing one are never issued.
func (s *Service) ExtractStrict(ctx context.Context, transcript string) (*entities.AggregatedExtraction, error) {
	chunks := SplitIntoChunks(transcript, ChunkTokenBudget)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("transcript is empty")
	}

	schema := pkgai.ExtractionSchema(true)
	results := make([]entities.ChunkExtraction, 0, len(chunks))

	for i, chunk := range chunks {
		payload, err := s.llm.StructuredExtract(ctx, s.instructions(i+1, len(chunks)), chunk, schema, true)
		if err != nil {
			return nil, fmt.Errorf("extraction failed on chunk %d/%d: %w", i+1, len(chunks), err)
		}

		var result entities.ChunkExtraction
		if err := payload.Decode(&result); err != nil {
			return nil, fmt.Errorf("invalid extraction payload on chunk %d/%d: %w", i+1, len(chunks), err)
		}

		if s.logger != nil {
			s.logger.Info("chunk extracted",
				zap.Int("chunk", i+1),
				zap.Int("chunks", len(chunks)),
				zap.Int("tasks", len(result.Tasks)),
				zap.Int("decisions", len(result.Decisions)),
			)
		}
		results = append(results, result)
	}

	return Aggregate(results), nil
}

// ExtractPreview runs the permissive extraction used right after
// transcription, before the user commits. The transcript is first truncated
// to a fixed character ceiling by whole lines. Per chunk it attempts the
// structured endpoint with strict=false, then the chat-completions endpoint
// with a JSON-schema response format, and finally degrades to an empty
// result. Failures are absorbed into the returned diagnostic note, never
// surfaced as hard errors.
func (s *Service) ExtractPreview(ctx context.Context, transcript string) (*entities.AggregatedExtraction, string) {
	truncated := TruncateToChars(transcript, PreviewCharCeiling)
	chunks := SplitIntoChunks(truncated, ChunkTokenBudget)
	if len(chunks) == 0 {
		return &entities.AggregatedExtraction{}, "transcript is empty"
	}

	schema := pkgai.ExtractionSchema(false)
	results := make([]entities.ChunkExtraction, 0, len(chunks))
	var notes []string

	for i, chunk := range chunks {
		result, note := s.previewChunk(ctx, chunk, i+1, len(chunks), schema)
		if note != "" {
			notes = append(notes, note)
		}
		results = append(results, result)
	}

	return Aggregate(results), strings.Join(notes, "; ")
}

// previewChunk tries the structured endpoint, the chat fallback, and then
// gives up with an empty result and a note
func (s *Service) previewChunk(ctx context.Context, chunk string, index, total int, schema map[string]interface{}) (entities.ChunkExtraction, string) {
	instructions := s.instructions(index, total)

	payload, err := s.llm.StructuredExtract(ctx, instructions, chunk, schema, false)
	if err == nil {
		var result entities.ChunkExtraction
		if decodeErr := payload.Decode(&result); decodeErr == nil {
			return result, ""
		} else {
			err = decodeErr
		}
	}

	if s.logger != nil {
		s.logger.Warn("structured preview extraction failed, trying chat fallback",
			zap.Int("chunk", index),
			zap.Error(err),
		)
	}

	payload, chatErr := s.llm.ChatExtract(ctx, instructions, chunk, schema)
	if chatErr == nil {
		var result entities.ChunkExtraction
		if decodeErr := payload.Decode(&result); decodeErr == nil {
			return result, ""
		} else {
			chatErr = decodeErr
		}
	}

	if s.logger != nil {
		s.logger.Warn("preview extraction degraded to empty result",
			zap.Int("chunk", index),
			zap.NamedError("structured_error", err),
			zap.NamedError("chat_error", chatErr),
		)
	}

	note := fmt.Sprintf("chunk %d/%d could not be extracted (%v)", index, total, chatErr)
	return entities.ChunkExtraction{}, note
}

// instructions builds the natural-language instruction block with chunk
// position context
func (s *Service) instructions(index, total int) string {
	return fmt.Sprintf(`You are an assistant that extracts structured meeting outcomes from a transcript.
This is chunk %d/%d of the transcript.
Return a JSON object with:
- "summary": a concise summary of what was discussed in this chunk
- "decisions": decisions that were explicitly made, as plain sentences
- "tasks": action items with name, description, dueDate (ISO date or empty),
  assigneeEmail, priority (LOW|MEDIUM|HIGH|URGENT), companySlug, companyName
  and labels. Use empty strings, "MEDIUM" and [] when a field is unknown.
Only extract what is actually said; do not invent tasks or dates.`, index, total)
}
