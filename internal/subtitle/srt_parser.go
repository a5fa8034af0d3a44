package subtitle

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// anything after the end timestamp (e.g. X1:.. Y1:.. coordinates) is ignored
var timestampRegex = regexp.MustCompile(
	`^(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})(?:\s.*)?$`,
)

// reads and parses an SRT file
func ParseFile(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SRT file: %w", err)
	}
	return Parse(string(data))
}

// Parse converts raw SRT content into cues in file order. Each cue is an
// index line, a timing line and at least one text line; cues are separated by
// blank lines. The last cue may end at EOF without a separator.
func Parse(content string) ([]Segment, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")

	var segments []Segment
	seen := make(map[int]int)

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}

		indexLine := i + 1
		index, err := strconv.Atoi(line)
		if err != nil || strconv.Itoa(index) != line {
			return nil, &ParseError{
				Line:   indexLine,
				Reason: fmt.Sprintf("expected cue index, got %q", line),
			}
		}
		if index <= 0 {
			return nil, &ParseError{
				Line:   indexLine,
				Reason: fmt.Sprintf("cue index must be positive, got %d", index),
			}
		}
		if first, dup := seen[index]; dup {
			return nil, &ParseError{
				Line: indexLine,
				Reason: fmt.Sprintf(
					"duplicate cue index %d (first seen at line %d)",
					index,
					first,
				),
			}
		}
		seen[index] = indexLine
		i++

		if i >= len(lines) || strings.TrimSpace(lines[i]) == "" {
			return nil, &ParseError{
				Line:   indexLine,
				Reason: fmt.Sprintf("cue %d has no timing line", index),
			}
		}
		start, end, err := parseTimingLine(strings.TrimSpace(lines[i]))
		if err != nil {
			return nil, &ParseError{Line: i + 1, Reason: err.Error()}
		}
		i++

		var textLines []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			textLines = append(textLines, strings.TrimRight(lines[i], " \t"))
			i++
		}
		if len(textLines) == 0 {
			return nil, &ParseError{
				Line:   indexLine,
				Reason: fmt.Sprintf("cue %d has no text", index),
			}
		}

		segments = append(segments, Segment{
			Index:     index,
			StartTime: start,
			EndTime:   end,
			Text:      strings.Join(textLines, "\n"),
		})
	}

	return segments, nil
}

func parseTimingLine(line string) (time.Duration, time.Duration, error) {
	matches := timestampRegex.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, fmt.Errorf(
			"expected timing line \"HH:MM:SS,mmm --> HH:MM:SS,mmm\", got %q",
			line,
		)
	}

	start, err := parseSRTTimestamp(
		matches[1], matches[2], matches[3], matches[4],
	)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start timestamp: %w", err)
	}
	end, err := parseSRTTimestamp(
		matches[5], matches[6], matches[7], matches[8],
	)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end timestamp: %w", err)
	}
	return start, end, nil
}

func parseSRTTimestamp(
	hours, minutes, seconds, millis string,
) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}
	if m >= 60 || s >= 60 {
		return 0, fmt.Errorf(
			"%s:%s:%s,%s out of range",
			hours, minutes, seconds, millis,
		)
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
