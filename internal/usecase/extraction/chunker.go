package extraction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

const (
	// ChunkTokenBudget bounds the estimated token count of one extraction
	// request
	ChunkTokenBudget = 8000

	// PreviewCharCeiling bounds preview transcripts before extraction to
	// keep latency and cost down
	PreviewCharCeiling = 24000

	// charsPerToken is a cheap, stable approximation, not a real tokenizer.
	// It only needs to be monotonic so oversized requests are prevented.
	charsPerToken = 4
)

// EstimateTokens approximates the token count of s
func EstimateTokens(s string) int {
	return (len(s) + charsPerToken - 1) / charsPerToken
}

// FlattenSegments renders transcript segments as one "{speaker}: {text}"
// line each, sorted by start time. Segments without a speaker render as the
// bare text.
func FlattenSegments(segments []entities.TranscriptSegment) string {
	sorted := make([]entities.TranscriptSegment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartSec < sorted[j].StartSec
	})

	lines := make([]string, 0, len(sorted))
	for _, seg := range sorted {
		if seg.Speaker != nil && *seg.Speaker != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", *seg.Speaker, seg.Text))
		} else {
			lines = append(lines, seg.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// SplitIntoChunks splits text into ordered, non-overlapping chunks whose
// estimated token count stays within tokenBudget. Chunks accumulate whole
// lines and are never split mid-line; a single line that exceeds the budget
// on its own is still emitted as its own chunk rather than dropped or
// truncated. No empty chunk is ever emitted.
func SplitIntoChunks(text string, tokenBudget int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	var chunks []string
	var current []string
	currentLen := 0

	for _, line := range lines {
		candidate := currentLen
		if len(current) > 0 {
			candidate++ // joining newline
		}
		candidate += len(line)

		if len(current) > 0 && (candidate+charsPerToken-1)/charsPerToken > tokenBudget {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = current[:0]
			currentLen = 0
			candidate = len(line)
		}

		current = append(current, line)
		currentLen = candidate
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}

// TruncateToChars takes whole lines from text until adding the next line
// would exceed the character ceiling. The first line is always kept so a
// non-empty input never truncates to nothing.
func TruncateToChars(text string, ceiling int) string {
	if len(text) <= ceiling {
		return text
	}

	lines := strings.Split(text, "\n")
	var kept []string
	total := 0

	for _, line := range lines {
		candidate := total
		if len(kept) > 0 {
			candidate++
		}
		candidate += len(line)

		if candidate > ceiling && len(kept) > 0 {
			break
		}

		kept = append(kept, line)
		total = candidate
	}

	return strings.Join(kept, "\n")
}
