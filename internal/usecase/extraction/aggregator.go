package extraction

import (
	"strings"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

// Aggregate merges the ordered per-chunk extraction results into one
// summary, one ordered decision list and one deduplicated task list.
// Summaries are joined with blank lines in chunk order; decisions are
// concatenated in order and deliberately not deduplicated.
func Aggregate(chunks []entities.ChunkExtraction) *entities.AggregatedExtraction {
	var summaries []string
	var decisions []string
	var tasks []entities.ExtractedTask

	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Summary) != "" {
			summaries = append(summaries, strings.TrimSpace(chunk.Summary))
		}
		decisions = append(decisions, chunk.Decisions...)
		tasks = append(tasks, chunk.Tasks...)
	}

	return &entities.AggregatedExtraction{
		Summary:   strings.Join(summaries, "\n\n"),
		Decisions: decisions,
		Tasks:     DedupTasks(tasks),
	}
}

// DedupKey builds the identity tuple of an extracted task. The model gives
// no stable ids across chunks, so identity is the externally visible fields:
// name (trimmed, case preserved), assignee email, due date, company slug and
// company name, the latter three lowercased and missing fields normalized to
// the empty string.
func DedupKey(t entities.ExtractedTask) string {
	return strings.Join([]string{
		strings.TrimSpace(t.Name),
		strings.ToLower(t.AssigneeEmail),
		t.DueDate,
		strings.ToLower(t.CompanySlug),
		strings.ToLower(t.CompanyName),
	}, "\x1f")
}

// DedupTasks removes duplicate tasks, first occurrence wins, then drops
// tasks without a name — a task must have a name to exist. The same task is
// often mentioned in adjacent chunks, so this runs on every aggregation and
// again before commit.
func DedupTasks(tasks []entities.ExtractedTask) []entities.ExtractedTask {
	seen := make(map[string]struct{}, len(tasks))
	out := make([]entities.ExtractedTask, 0, len(tasks))

	for _, t := range tasks {
		key := DedupKey(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if strings.TrimSpace(t.Name) == "" {
			continue
		}
		out = append(out, t)
	}

	return out
}
