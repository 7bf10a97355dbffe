package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&RenderError{URL: "https://x", Selector: "h1"}, "render"},
		{fmt.Errorf("fetch: %w", &RenderError{URL: "https://x", Err: errors.New("target closed")}), "render"},
		{fmt.Errorf("fetch: %w", ErrTransient), "transient"},
		{&ExtractionError{Field: "title", Link: "https://x"}, "extraction"},
		{&RateLimitError{RetryAfter: time.Second}, "rate_limit"},
		{fmt.Errorf("score: %w", ErrMalformed), "malformed"},
		{fmt.Errorf("score: %w", ErrAuth), "auth"},
		{fmt.Errorf("upsert: %w", ErrPersistence), "persistence"},
		{ErrFiltered, "filtered"},
		{errors.New("boom"), "other"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Kind(tc.err), "%v", tc.err)
	}
}

func TestFatal(t *testing.T) {
	assert.True(t, Fatal(fmt.Errorf("x: %w", ErrAuth)))
	assert.True(t, Fatal(fmt.Errorf("x: %w", ErrPersistence)))
	assert.False(t, Fatal(&RenderError{URL: "u"}))
	assert.False(t, Fatal(&RateLimitError{}))
}

func TestRateLimitErrorMessage(t *testing.T) {
	assert.Equal(t, "rate limited", (&RateLimitError{}).Error())
	assert.Contains(t, (&RateLimitError{RetryAfter: 2 * time.Second}).Error(), "2s")
}
