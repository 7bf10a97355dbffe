package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/playwright-community/playwright-go"

	"jobscout-engine/internal/domain"
)

type Options struct {
	Headless  bool
	Timeout   time.Duration // navigation and selector waits
	UserAgent string
	Locale    string
}

// Playwright shares one Chromium across all pages; each Open gets its own
// browser context so cookies never leak between offers.
type Playwright struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

func NewPlaywright(opts Options) (*Playwright, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &Playwright{pw: pw, browser: browser, opts: opts}, nil
}

func (p *Playwright) timeoutMS() *float64 {
	return playwright.Float(float64(p.opts.Timeout.Milliseconds()))
}

func (p *Playwright) Open(ctx context.Context, url string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if p.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(p.opts.UserAgent)
	}
	if p.opts.Locale != "" {
		ctxOpts.Locale = playwright.String(p.opts.Locale)
	}
	bctx, err := p.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	pg := &pwPage{url: url, page: page, bctx: bctx, timeout: p.timeoutMS()}
	// playwright calls take no context; closing the page unblocks them.
	pg.stop = context.AfterFunc(ctx, func() { _ = page.Close() })

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   p.timeoutMS(),
	})
	if err != nil {
		_ = pg.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("open %s: %w: %w", url, err, domain.ErrTransient)
	}
	if resp != nil {
		if err := ClassifyStatus(url, resp.Status()); err != nil {
			_ = pg.Close()
			return nil, err
		}
	}
	return pg, nil
}

func (p *Playwright) Close() error {
	var errs []error
	if p.browser != nil {
		errs = append(errs, p.browser.Close())
	}
	if p.pw != nil {
		errs = append(errs, p.pw.Stop())
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("[render] close: %v", err)
		return err
	}
	return nil
}

type pwPage struct {
	url     string
	page    playwright.Page
	bctx    playwright.BrowserContext
	timeout *float64
	stop    func() bool
	closed  bool
}

func (p *pwPage) URL() string { return p.url }

func (p *pwPage) Content() (string, error) {
	html, err := p.page.Content()
	if err != nil {
		return "", &domain.RenderError{URL: p.url, Err: err}
	}
	return html, nil
}

func (p *pwPage) WaitFor(selector string) error {
	err := p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: p.timeout,
	})
	if err != nil {
		return &domain.RenderError{URL: p.url, Selector: selector, Err: err}
	}
	return nil
}

func (p *pwPage) Exists(selector string) (bool, error) {
	n, err := p.page.Locator(selector).Count()
	if err != nil {
		return false, &domain.RenderError{URL: p.url, Selector: selector, Err: err}
	}
	return n > 0, nil
}

func (p *pwPage) Click(selector string) error {
	err := p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: p.timeout,
	})
	if err != nil {
		return &domain.RenderError{URL: p.url, Selector: selector, Err: err}
	}
	return nil
}

const scrollJS = `(dy) => {
  const before = window.scrollY;
  window.scrollBy(0, dy);
  return window.scrollY !== before;
}`

func (p *pwPage) ScrollBy(px int) (bool, error) {
	v, err := p.page.Evaluate(scrollJS, px)
	if err != nil {
		return false, &domain.RenderError{URL: p.url, Err: err}
	}
	moved, _ := v.(bool)
	return moved, nil
}

func (p *pwPage) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.stop != nil {
		p.stop()
	}
	err := p.page.Close()
	if errors.Is(err, playwright.ErrTargetClosed) {
		err = nil
	}
	return errors.Join(err, p.bctx.Close())
}
