package extraction

import (
	"strings"
	"testing"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 8000), 2000},
	}
	for _, tc := range cases {
		if got := EstimateTokens(tc.input); got != tc.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tc.input), got, tc.want)
		}
	}
}

func TestFlattenSegments_SortsAndFormats(t *testing.T) {
	alice := "Alice"
	segments := []entities.TranscriptSegment{
		{Text: "second line", StartSec: 10},
		{Speaker: &alice, Text: "first line", StartSec: 1},
	}

	got := FlattenSegments(segments)
	want := "Alice: first line\nsecond line"
	if got != want {
		t.Fatalf("FlattenSegments = %q, want %q", got, want)
	}
}

func TestSplitIntoChunks_ConcatenationIsIdentity(t *testing.T) {
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, strings.Repeat("word ", 20))
	}
	text := strings.Join(lines, "\n")

	chunks := SplitIntoChunks(text, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if got := strings.Join(chunks, "\n"); got != text {
		t.Fatal("joining chunks does not reproduce the input")
	}
}

func TestSplitIntoChunks_RespectsBudget(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, strings.Repeat("a", 100))
	}
	text := strings.Join(lines, "\n")

	budget := 100 // 400 chars
	for i, chunk := range SplitIntoChunks(text, budget) {
		if EstimateTokens(chunk) > budget {
			t.Errorf("chunk %d exceeds budget: %d tokens", i, EstimateTokens(chunk))
		}
	}
}

func TestSplitIntoChunks_OversizedLineEmittedAlone(t *testing.T) {
	long := strings.Repeat("x", 1000)
	text := "short\n" + long + "\nshort again"

	chunks := SplitIntoChunks(text, 10) // 40 chars
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[1] != long {
		t.Fatal("oversized line was not emitted as its own chunk")
	}
}

func TestSplitIntoChunks_EmptyInput(t *testing.T) {
	if chunks := SplitIntoChunks("", 100); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
	if chunks := SplitIntoChunks("   \n  ", 100); chunks != nil {
		t.Fatalf("expected nil for blank input, got %v", chunks)
	}
}

func TestTruncateToChars_WholeLines(t *testing.T) {
	text := "aaaa\nbbbb\ncccc"

	got := TruncateToChars(text, 10)
	if got != "aaaa\nbbbb" {
		t.Fatalf("TruncateToChars = %q", got)
	}

	// Under the ceiling nothing changes.
	if got := TruncateToChars(text, 1000); got != text {
		t.Fatalf("expected input unchanged, got %q", got)
	}
}

func TestTruncateToChars_FirstLineAlwaysKept(t *testing.T) {
	long := strings.Repeat("x", 100)
	if got := TruncateToChars(long+"\nrest", 10); got != long {
		t.Fatalf("expected first line kept, got %q", got)
	}
}
