package util

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sethvargo/go-retry"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/render"
)

// Fetcher wraps a Renderer with per-site politeness and a small, fixed retry
// budget for transient failures. Render (drift) errors are returned at once.
type Fetcher struct {
	Renderer render.Renderer
	Limiter  *HostLimiter
	Attempts int           // total tries per URL, default 3
	Delay    time.Duration // constant pause between tries
	Log      *log.Logger
}

func (f *Fetcher) Logf(format string, args ...any) {
	if f.Log != nil {
		f.Log.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (f *Fetcher) backoff() retry.Backoff {
	attempts := f.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	var b retry.Backoff
	if f.Delay > 0 {
		b = retry.NewConstant(f.Delay)
	} else {
		b = retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	}
	return retry.WithMaxRetries(uint64(attempts-1), b)
}

// Visit opens url, waits for ready (when set) and hands the page to fn. The
// page is closed on every path.
func (f *Fetcher) Visit(ctx context.Context, url, ready string, fn func(render.Page) error) error {
	attempt := 0
	err := retry.Do(ctx, f.backoff(), func(ctx context.Context) error {
		attempt++
		err := f.visitOnce(ctx, url, ready, fn)
		if err != nil && errors.Is(err, domain.ErrTransient) && !errors.Is(err, domain.ErrRender) {
			f.Logf("[fetch] transient url=%q attempt=%d err=%v", url, attempt, err)
			return retry.RetryableError(err)
		}
		return err
	})
	return err
}

func (f *Fetcher) visitOnce(ctx context.Context, url, ready string, fn func(render.Page) error) (err error) {
	if err := f.Limiter.WaitURL(ctx, url); err != nil {
		return err
	}
	page, err := f.Renderer.Open(ctx, url)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			f.Logf("[fetch] close url=%q err=%v", url, cerr)
		}
	}()

	if ready != "" {
		if err := page.WaitFor(ready); err != nil {
			return err
		}
	}
	if fn == nil {
		return nil
	}
	return fn(page)
}

// Snapshot returns the page HTML once ready is attached.
func (f *Fetcher) Snapshot(ctx context.Context, url, ready string, prepare func(render.Page)) (string, error) {
	var html string
	err := f.Visit(ctx, url, ready, func(p render.Page) error {
		if prepare != nil {
			prepare(p)
		}
		var err error
		html, err = p.Content()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	return html, nil
}

// DismissCookies clicks the first consent button that is present. Missing
// banners are fine.
func DismissCookies(p render.Page, selectors ...string) {
	for _, sel := range selectors {
		if ok, _ := p.Exists(sel); ok {
			_ = p.Click(sel)
			return
		}
	}
}
