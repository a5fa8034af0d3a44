package subtitle

import (
	"fmt"
	"strings"
)

// malformed SRT input
type ParseError struct {
	Line   int // 1-based line number, 0 when not tied to a line
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid SRT at line %d: %s", e.Line, e.Reason)
	}
	return "invalid SRT: " + e.Reason
}

// translated text could not be matched with the parsed cues
type ReconstructionError struct {
	Missing    []int // cue indices without a usable translation
	Unexpected []int // translations for indices that are not in the file
}

func (e *ReconstructionError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing translation for cues %s", joinInts(e.Missing)))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, fmt.Sprintf("translation for unknown cues %s", joinInts(e.Unexpected)))
	}
	if len(parts) == 0 {
		return "failed to reconstruct subtitles"
	}
	return "failed to reconstruct subtitles: " + strings.Join(parts, "; ")
}

func joinInts(values []int) string {
	const limit = 10
	strs := make([]string, 0, min(len(values), limit))
	for i, v := range values {
		if i == limit {
			strs = append(strs, fmt.Sprintf("... (%d more)", len(values)-limit))
			break
		}
		strs = append(strs, fmt.Sprintf("%d", v))
	}
	return strings.Join(strs, ", ")
}
