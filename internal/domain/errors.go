package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRender means the page loaded but is not what the adapter expects
	// (selector missing, 404). Usually frontend drift. Never retried.
	ErrRender = errors.New("render failed")
	// ErrTransient covers timeouts, connection resets and 5xx responses.
	ErrTransient = errors.New("transient network error")

	ErrExtraction  = errors.New("extraction failed")
	ErrRateLimited = errors.New("rate limited")
	ErrMalformed   = errors.New("malformed response")
	ErrAuth        = errors.New("authentication failed")
	ErrPersistence = errors.New("persistence failed")

	// ErrFiltered marks offers rejected by the keyword/location filters.
	ErrFiltered = errors.New("filtered out")
)

type RenderError struct {
	URL      string
	Selector string
	Err      error
}

func (e *RenderError) Error() string {
	switch {
	case e.Selector != "" && e.Err != nil:
		return fmt.Sprintf("render %s: selector %q: %v", e.URL, e.Selector, e.Err)
	case e.Selector != "":
		return fmt.Sprintf("render %s: selector %q not found", e.URL, e.Selector)
	case e.Err != nil:
		return fmt.Sprintf("render %s: %v", e.URL, e.Err)
	}
	return "render " + e.URL + ": failed"
}

func (e *RenderError) Unwrap() error        { return e.Err }
func (e *RenderError) Is(target error) bool { return target == ErrRender }

type ExtractionError struct {
	Field string
	Link  string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: missing %s", e.Link, e.Field)
}

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// RateLimitError carries the server's Retry-After hint, zero when absent.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s)", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// Kind buckets an error for run summaries and the drop ledger.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrRender):
		return "render"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.Is(err, ErrFiltered):
		return "filtered"
	}
	return "other"
}

// Fatal reports whether err must stop the whole run.
func Fatal(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrPersistence)
}
