package translate

import (
	"fmt"
)

// model answer that could not be mapped onto the requested cues; retryable
type ResponseError struct {
	Reason  string
	Snippet string // start of the offending answer, for logs
}

func (e *ResponseError) Error() string {
	if e.Snippet == "" {
		return "invalid translation response: " + e.Reason
	}
	return fmt.Sprintf(
		"invalid translation response: %s (response: %s)",
		e.Reason,
		e.Snippet,
	)
}

// batch that still failed after every attempt
type TranslationFailure struct {
	Batch    int
	Indices  []int
	Attempts int
	Err      error // last attempt's error
}

func (e *TranslationFailure) Error() string {
	first, last := 0, 0
	if len(e.Indices) > 0 {
		first, last = e.Indices[0], e.Indices[len(e.Indices)-1]
	}
	return fmt.Sprintf(
		"failed to translate batch %d (cues %d-%d) after %d attempts: %v",
		e.Batch,
		first,
		last,
		e.Attempts,
		e.Err,
	)
}

func (e *TranslationFailure) Unwrap() error {
	return e.Err
}
