package batch

import (
	"unicode/utf8"

	"github.com/mgpai22/subtrans/internal/subtitle"
)

const (
	DefaultTokenBudget        = 700
	DefaultCharsPerToken      = 4
	DefaultOverheadPerSegment = 1
)

// contiguous run of cues sent to the backend in a single request
type Batch struct {
	Number   int // 1-based, in sequence order
	Segments []subtitle.Segment
	Tokens   int // estimated
	// a single cue whose estimate alone exceeds the budget
	Oversized bool
}

// cue indices of the batch in order
func (b Batch) Indices() []int {
	return subtitle.Indices(b.Segments)
}

type Options struct {
	TokenBudget        int
	CharsPerToken      int
	OverheadPerSegment int
}

type Batcher struct {
	opts Options
}

// creates a batcher, replacing non-positive options with defaults
func New(opts Options) *Batcher {
	if opts.TokenBudget <= 0 {
		opts.TokenBudget = DefaultTokenBudget
	}
	if opts.CharsPerToken <= 0 {
		opts.CharsPerToken = DefaultCharsPerToken
	}
	if opts.OverheadPerSegment < 0 {
		opts.OverheadPerSegment = DefaultOverheadPerSegment
	}
	return &Batcher{opts: opts}
}

func (b *Batcher) Budget() int {
	return b.opts.TokenBudget
}

// Estimate approximates the tokens a cue costs inside a request. It is a
// character-count proxy and not a guaranteed upper bound for any backend.
func (b *Batcher) Estimate(seg subtitle.Segment) int {
	return utf8.RuneCountInString(seg.Text)/b.opts.CharsPerToken +
		1 + b.opts.OverheadPerSegment
}

// Make partitions segments into batches in sequence order. A batch is closed
// as soon as the next cue would push it over the budget; cues are never split
// or dropped, so an oversized cue travels alone.
func (b *Batcher) Make(segments []subtitle.Segment) []Batch {
	var batches []Batch
	var current []subtitle.Segment
	tokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, Batch{
			Number:    len(batches) + 1,
			Segments:  current,
			Tokens:    tokens,
			Oversized: len(current) == 1 && tokens > b.opts.TokenBudget,
		})
		current = nil
		tokens = 0
	}

	for _, seg := range segments {
		cost := b.Estimate(seg)
		if len(current) > 0 && tokens+cost > b.opts.TokenBudget {
			flush()
		}
		current = append(current, seg)
		tokens += cost
	}
	flush()

	return batches
}
