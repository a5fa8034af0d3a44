package subtitle

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// renders cues in canonical SRT layout: index line, timing line, text lines,
// blank line between cues, single trailing newline
func Format(segments []Segment) string {
	var sb strings.Builder
	for i, seg := range segments {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(fmt.Sprintf("%d\n", seg.Index))

		// timestamps: 00:00:00,000 --> 00:00:00,000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			FormatTimestamp(seg.StartTime),
			FormatTimestamp(seg.EndTime)))

		sb.WriteString(seg.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Reconstruct replaces the text of every cue with its translation and renders
// the result. Cue order, indices and timestamps come from segments; the order
// in which translations were produced does not matter. Every cue needs a
// non-blank translation and every translation must belong to a cue.
func Reconstruct(
	segments []Segment,
	translations map[int]string,
) (string, error) {
	known := make(map[int]struct{}, len(segments))
	for _, seg := range segments {
		known[seg.Index] = struct{}{}
	}

	var unexpected []int
	for index := range translations {
		if _, ok := known[index]; !ok {
			unexpected = append(unexpected, index)
		}
	}
	sort.Ints(unexpected)

	var missing []int
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		text, ok := translations[seg.Index]
		if ok {
			text = normalizeText(text)
		}
		if text == "" {
			missing = append(missing, seg.Index)
			continue
		}
		out = append(out, seg.WithText(text))
	}

	if len(missing) > 0 || len(unexpected) > 0 {
		return "", &ReconstructionError{
			Missing:    missing,
			Unexpected: unexpected,
		}
	}

	return Format(out), nil
}

// a blank line inside cue text would end the cue early, so drop them
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func FormatTimestamp(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
