package subtitle

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00,000"},
		{1500 * time.Millisecond, "00:00:01,500"},
		{time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, "01:02:03,004"},
		{99*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond, "99:59:59,999"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.d); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	segments, err := Parse(sampleSRT)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	if got := Format(segments); got != sampleSRT {
		t.Errorf("round trip mismatch:\n got: %q\nwant: %q", got, sampleSRT)
	}
}

func TestReconstruct(t *testing.T) {
	segments, err := Parse(sampleSRT)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	out, err := Reconstruct(segments, map[int]string{
		3: "Sous-titre final.",
		1: "Bonjour, le monde !",
		2: "Ceci est un test.\r\nAvec plusieurs lignes.  ",
	})
	if err != nil {
		t.Fatalf("failed to reconstruct: %v", err)
	}

	want := `1
00:00:01,000 --> 00:00:04,000
Bonjour, le monde !

2
00:00:05,500 --> 00:00:08,200
Ceci est un test.
Avec plusieurs lignes.

3
01:02:10,000 --> 01:02:12,500
Sous-titre final.
`
	if out != want {
		t.Errorf("unexpected output:\n got: %q\nwant: %q", out, want)
	}

	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("reconstructed output does not parse: %v", err)
	}
	for i := range segments {
		if reparsed[i].Index != segments[i].Index ||
			reparsed[i].StartTime != segments[i].StartTime ||
			reparsed[i].EndTime != segments[i].EndTime {
			t.Errorf("cue %d changed index or timing", segments[i].Index)
		}
	}
}

func TestReconstructDropsBlankLines(t *testing.T) {
	segments := []Segment{{Index: 1, EndTime: time.Second, Text: "a"}}

	out, err := Reconstruct(segments, map[int]string{1: "first\n\n  \nsecond"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "first\nsecond\n") {
		t.Errorf("expected blank lines removed, got %q", out)
	}
	if strings.HasSuffix(out, "\n\n") {
		t.Errorf("expected single trailing newline, got %q", out)
	}
}

func TestReconstructErrors(t *testing.T) {
	segments := []Segment{
		{Index: 1, Text: "a"},
		{Index: 2, Text: "b"},
		{Index: 3, Text: "c"},
	}

	tests := []struct {
		name           string
		translations   map[int]string
		wantMissing    []int
		wantUnexpected []int
	}{
		{
			name:         "missing cue",
			translations: map[int]string{1: "x", 3: "z"},
			wantMissing:  []int{2},
		},
		{
			name:         "blank translation",
			translations: map[int]string{1: "x", 2: " \n ", 3: "z"},
			wantMissing:  []int{2},
		},
		{
			name:           "unknown cue",
			translations:   map[int]string{1: "x", 2: "y", 3: "z", 7: "?", 5: "?"},
			wantUnexpected: []int{5, 7},
		},
		{
			name:           "both",
			translations:   map[int]string{2: "y", 9: "?"},
			wantMissing:    []int{1, 3},
			wantUnexpected: []int{9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Reconstruct(segments, tt.translations)
			if err == nil {
				t.Fatal("expected error")
			}
			if out != "" {
				t.Errorf("expected no output, got %q", out)
			}
			var recErr *ReconstructionError
			if !errors.As(err, &recErr) {
				t.Fatalf("expected *ReconstructionError, got %T", err)
			}
			if !equalInts(recErr.Missing, tt.wantMissing) {
				t.Errorf("missing = %v, want %v", recErr.Missing, tt.wantMissing)
			}
			if !equalInts(recErr.Unexpected, tt.wantUnexpected) {
				t.Errorf("unexpected = %v, want %v", recErr.Unexpected, tt.wantUnexpected)
			}
		})
	}
}

func TestReconstructionErrorMessage(t *testing.T) {
	missing := make([]int, 12)
	for i := range missing {
		missing[i] = i + 1
	}
	err := &ReconstructionError{Missing: missing}

	msg := err.Error()
	if !strings.Contains(msg, "missing translation for cues 1, 2") {
		t.Errorf("unexpected message %q", msg)
	}
	if !strings.Contains(msg, "(2 more)") {
		t.Errorf("expected truncated list, got %q", msg)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
