package translate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mgpai22/subtrans/internal/batch"
	"github.com/mgpai22/subtrans/internal/logging"
)

const (
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = time.Second
	DefaultRetryMaxDelay  = 10 * time.Second
)

// Client translates batches through a Backend, retrying failed or malformed
// answers with exponential backoff. It is safe for concurrent use.
type Client struct {
	backend     Backend
	options     Options
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleeper     func(time.Duration)
	logger      *logging.Logger

	requests atomic.Int64
	retries  atomic.Int64
}

// request counters of a client
type Stats struct {
	Requests int
	Retries  int
}

type ClientOption func(*Client)

// total attempts per batch, including the first
func WithMaxAttempts(attempts int) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// overrides the retry backoff delays
func WithBackoff(baseDelay, maxDelay time.Duration) ClientOption {
	return func(c *Client) {
		if baseDelay >= 0 {
			c.baseDelay = baseDelay
		}
		if maxDelay > 0 {
			c.maxDelay = maxDelay
		}
	}
}

// overrides how retry sleeps are performed (useful for tests)
func WithSleeper(sleeper func(time.Duration)) ClientOption {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(
	backend Backend,
	opts Options,
	clientOpts ...ClientOption,
) (*Client, error) {
	if backend == nil {
		return nil, fmt.Errorf("translation backend is required")
	}
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	c := &Client{
		backend:     backend,
		options:     opts,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultRetryBaseDelay,
		maxDelay:    DefaultRetryMaxDelay,
		logger:      logging.Nop(),
	}
	for _, opt := range clientOpts {
		opt(c)
	}
	return c, nil
}

// TranslateBatch returns one translation per cue of b, keyed by cue index.
// Transport errors and malformed answers are retried up to the attempt limit;
// context cancellation is returned immediately. The original text is never
// substituted for a failed translation.
func (c *Client) TranslateBatch(
	ctx context.Context,
	b batch.Batch,
) (map[int]string, error) {
	items := make([]TranslationItem, len(b.Segments))
	for i, seg := range b.Segments {
		items[i] = TranslationItem{Index: seg.Index, Text: seg.Text}
	}
	indices := b.Indices()
	req := Request{
		System: SystemPrompt(c.options),
		User:   BuildPrompt(c.options, items),
	}

	failure := func(attempts int, err error) error {
		return &TranslationFailure{
			Batch:    b.Number,
			Indices:  indices,
			Attempts: attempts,
			Err:      err,
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, failure(attempt-1, err)
		}

		c.requests.Add(1)
		result, err := c.attempt(ctx, req, indices)
		if err == nil {
			c.logger.Debugw(
				"Batch translated",
				"batch", b.Number,
				"cues", len(indices),
				"attempt", attempt,
			)
			return result, nil
		}
		lastErr = err

		if isContextError(ctx, err) {
			return nil, failure(attempt, err)
		}
		if attempt == c.maxAttempts {
			break
		}

		delay := c.BackoffDelay(attempt)
		c.logger.Warnw(
			"Translation attempt failed, retrying",
			"batch", b.Number,
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"delay", delay,
			"error", err,
		)
		c.retries.Add(1)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, failure(attempt, err)
		}
	}

	return nil, failure(c.maxAttempts, lastErr)
}

func (c *Client) attempt(
	ctx context.Context,
	req Request,
	indices []int,
) (map[int]string, error) {
	text, err := c.backend.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	return ParseResponse(text, indices)
}

// BackoffDelay is the pause after the given failed attempt (1-based):
// base, base*2, base*4, ... capped at the max delay.
func (c *Client) BackoffDelay(attempt int) time.Duration {
	if c.baseDelay <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}

	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		if delay > c.maxDelay/2 {
			delay = c.maxDelay
			break
		}
		delay *= 2
	}
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

func (c *Client) Stats() Stats {
	return Stats{
		Requests: int(c.requests.Load()),
		Retries:  int(c.retries.Load()),
	}
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isContextError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
