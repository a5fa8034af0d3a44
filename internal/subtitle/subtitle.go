package subtitle

import (
	"time"
)

// single SRT cue. Index and timing never change once parsed; only Text is
// replaced, on a copy, when translations are merged back.
type Segment struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// returns a copy of the cue carrying different text
func (s Segment) WithText(text string) Segment {
	s.Text = text
	return s
}

// cue indices in sequence order
func Indices(segments []Segment) []int {
	indices := make([]int, len(segments))
	for i, seg := range segments {
		indices[i] = seg.Index
	}
	return indices
}
