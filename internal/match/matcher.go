package match

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"jobscout-engine/internal/domain"
)

type Matcher struct {
	client  Client
	prompts Prompts
	policy  Policy
	limiter *rate.Limiter
	onRetry func(attempt int, delay time.Duration, err error)
	log     *log.Logger
	now     func() time.Time
}

type Option func(*Matcher)

// WithRateLimit spaces requests to the model API.
func WithRateLimit(l *rate.Limiter) Option { return func(m *Matcher) { m.limiter = l } }

// OnRetry observes every scheduled retry.
func OnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(m *Matcher) { m.onRetry = fn }
}

func WithLogger(l *log.Logger) Option { return func(m *Matcher) { m.log = l } }

func WithClock(now func() time.Time) Option { return func(m *Matcher) { m.now = now } }

func New(client Client, prompts Prompts, policy Policy, opts ...Option) *Matcher {
	m := &Matcher{
		client:  client,
		prompts: prompts,
		policy:  policy,
		log:     log.Default(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Score evaluates one offer. Rate limits and transient failures are retried
// within the policy, a malformed answer is retried once and an auth failure is
// returned at once.
func (m *Matcher) Score(ctx context.Context, o domain.Offer) (domain.MatchResult, error) {
	req := m.prompts.Request(o)

	b := &budget{
		next: m.policy.backoff(),
		left: m.policy.attempts() - 1,
		onRetry: func(attempt int, delay time.Duration, err error) {
			m.log.Printf("[match] retry fp=%s attempt=%d delay=%s err=%v", short(o.Fingerprint), attempt, delay, err)
			if m.onRetry != nil {
				m.onRetry(attempt, delay, err)
			}
		},
	}

	var ev Evaluation
	malformed := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if m.limiter != nil {
			if err := m.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		raw, err := m.client.Complete(ctx, req)
		if err == nil {
			ev, err = ParseResponse(raw)
		}
		if err == nil {
			return nil
		}

		b.lastErr = err
		var rl *domain.RateLimitError
		switch {
		case errors.As(err, &rl):
			b.hint = rl.RetryAfter
			return retry.RetryableError(err)
		case errors.Is(err, domain.ErrTransient):
			return retry.RetryableError(err)
		case errors.Is(err, domain.ErrMalformed):
			malformed++
			if malformed == 1 {
				return retry.RetryableError(err)
			}
		}
		return err
	})
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("score %s: %w", short(o.Fingerprint), err)
	}

	return domain.MatchResult{
		OfferFingerprint:  o.Fingerprint,
		ProfileScore:      ev.ProfileScore,
		ExpectationsScore: ev.ExpectationsScore,
		Rationale:         ev.Rationale,
		Missing:           ev.Missing,
		EvaluatedAt:       m.now().UTC(),
	}, nil
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
