package match

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/domain"
)

const goodAnswer = `{"profile_score": 82, "expectations_score": 64, "rationale": "Strong Python.", "missing": ["kubernetes"]}`

type reply struct {
	raw string
	err error
}

// scriptClient returns replies in order and repeats the last one.
type scriptClient struct {
	mu      sync.Mutex
	replies []reply
	calls   int
	last    Request
}

func (c *scriptClient) Complete(_ context.Context, r Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = r
	i := c.calls
	if i >= len(c.replies) {
		i = len(c.replies) - 1
	}
	c.calls++
	return c.replies[i].raw, c.replies[i].err
}

func quiet() Option { return WithLogger(log.New(io.Discard, "", 0)) }

var testOffer = domain.Offer{
	Fingerprint: "0123456789abcdef",
	Title:       "QA Automation Engineer",
	Company:     "Acme",
	SourceURL:   "https://example.com/o/1",
	Description: "Selenium, Python",
}

func TestScoreRetriesRateLimits(t *testing.T) {
	rl := reply{err: &domain.RateLimitError{}}
	c := &scriptClient{replies: []reply{rl, rl, rl, {raw: goodAnswer}}}

	var delays []time.Duration
	m := New(c, Prompts{}, Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Second}, quiet(),
		OnRetry(func(_ int, d time.Duration, err error) {
			assert.ErrorIs(t, err, domain.ErrRateLimited)
			delays = append(delays, d)
		}))

	res, err := m.Score(context.Background(), testOffer)
	require.NoError(t, err)
	assert.Equal(t, 4, c.calls)
	assert.Equal(t, 82.0, res.ProfileScore)
	assert.Equal(t, 64.0, res.ExpectationsScore)
	assert.Equal(t, testOffer.Fingerprint, res.OfferFingerprint)
	assert.Equal(t, []string{"kubernetes"}, res.Missing)
	assert.False(t, res.EvaluatedAt.IsZero())

	require.Len(t, delays, 3)
	for i := 1; i < len(delays); i++ {
		assert.Greater(t, delays[i], delays[i-1])
	}
}

func TestScoreHonorsRetryAfter(t *testing.T) {
	c := &scriptClient{replies: []reply{{err: &domain.RateLimitError{RetryAfter: 20 * time.Millisecond}}, {raw: goodAnswer}}}
	var delays []time.Duration
	m := New(c, Prompts{}, Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, quiet(),
		OnRetry(func(_ int, d time.Duration, _ error) { delays = append(delays, d) }))

	_, err := m.Score(context.Background(), testOffer)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{20 * time.Millisecond}, delays)
}

func TestScoreGivesUpAfterMaxAttempts(t *testing.T) {
	c := &scriptClient{replies: []reply{{err: &domain.RateLimitError{}}}}
	m := New(c, Prompts{}, ZeroPolicy(), quiet())

	_, err := m.Score(context.Background(), testOffer)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 5, c.calls)
}

func TestScoreErrorClasses(t *testing.T) {
	cases := map[string]struct {
		replies []reply
		calls   int
		want    error
	}{
		"auth is not retried": {
			replies: []reply{{err: domain.ErrAuth}},
			calls:   1,
			want:    domain.ErrAuth,
		},
		"malformed retried once": {
			replies: []reply{{raw: "I cannot help"}, {raw: `{"profile_score": 500}`}},
			calls:   2,
			want:    domain.ErrMalformed,
		},
		"malformed then good": {
			replies: []reply{{raw: "oops"}, {raw: goodAnswer}},
			calls:   2,
		},
		"transient then good": {
			replies: []reply{{err: domain.ErrTransient}, {err: domain.ErrTransient}, {raw: goodAnswer}},
			calls:   3,
		},
		"client error not retried": {
			replies: []reply{{err: errors.New("chat API status 400: bad request")}},
			calls:   1,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := &scriptClient{replies: tc.replies}
			m := New(c, Prompts{}, ZeroPolicy(), quiet())
			_, err := m.Score(context.Background(), testOffer)
			assert.Equal(t, tc.calls, c.calls)
			switch {
			case tc.want != nil:
				assert.ErrorIs(t, err, tc.want)
			case name == "client error not retried":
				require.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestScoreStopsOnCancel(t *testing.T) {
	c := &scriptClient{replies: []reply{{err: domain.ErrTransient}}}
	ctx, cancel := context.WithCancel(context.Background())
	m := New(c, Prompts{}, Policy{MaxAttempts: 5, BaseDelay: time.Hour}, quiet(),
		OnRetry(func(int, time.Duration, error) { cancel() }))

	_, err := m.Score(ctx, testOffer)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, c.calls)
}

func TestScoreSendsPrompts(t *testing.T) {
	c := &scriptClient{replies: []reply{{raw: goodAnswer}}}
	p := Prompts{Profile: "5 years of Python test automation", Expectations: "remote, 20k PLN"}
	m := New(c, p, ZeroPolicy(), quiet())

	_, err := m.Score(context.Background(), testOffer)
	require.NoError(t, err)
	assert.Contains(t, c.last.System, p.Profile)
	assert.Contains(t, c.last.System, p.Expectations)
	assert.Contains(t, c.last.User, testOffer.SourceURL)
	assert.Contains(t, c.last.User, "Selenium, Python")
}

func TestPolicyBackoff(t *testing.T) {
	b := Policy{BaseDelay: 10 * time.Millisecond, MaxDelay: 25 * time.Millisecond}.backoff()
	var got []time.Duration
	for i := 0; i < 3; i++ {
		d, stop := b.Next()
		require.False(t, stop)
		got = append(got, d)
	}
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond}, got)

	d, stop := ZeroPolicy().backoff().Next()
	assert.False(t, stop)
	assert.Zero(t, d)
}
