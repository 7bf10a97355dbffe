package match

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds how a single offer's scoring call is retried.
type Policy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	JitterPercent int
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: time.Minute, JitterPercent: 10}
}

// ZeroPolicy retries like DefaultPolicy without sleeping.
func ZeroPolicy() Policy {
	return Policy{MaxAttempts: 5}
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// backoff is exponential from BaseDelay, jittered and capped. It does not
// bound attempts; the budget wrapper does.
func (p Policy) backoff() retry.Backoff {
	if p.BaseDelay <= 0 {
		return retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	}
	b := retry.NewExponential(p.BaseDelay)
	if p.JitterPercent > 0 {
		b = retry.WithJitterPercent(uint64(p.JitterPercent), b)
	}
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return b
}

// budget stops after the policy's attempts, raises the next delay to the
// server's Retry-After hint and reports each scheduled retry.
type budget struct {
	next    retry.Backoff
	left    int
	attempt int
	hint    time.Duration
	lastErr error
	onRetry func(attempt int, delay time.Duration, err error)
}

func (b *budget) Next() (time.Duration, bool) {
	if b.left <= 0 {
		return 0, true
	}
	b.left--
	d, stop := b.next.Next()
	if stop {
		return 0, true
	}
	if b.hint > d {
		d = b.hint
	}
	b.hint = 0
	b.attempt++
	if b.onRetry != nil {
		b.onRetry(b.attempt, d, b.lastErr)
	}
	return d, false
}
