// Package render is the browser boundary. Adapters only see Renderer and
// Page; everything that talks to a real browser lives in playwright.go.
//
// Failures are classified here, and only here:
//
//   - domain.ErrTransient: navigation did not complete (timeout, connection
//     reset, DNS) or the server answered 429/5xx. Worth retrying.
//   - domain.ErrRender (*domain.RenderError): the page loaded but the
//     expected selector never appeared, or the server answered 404/410.
//     Retrying returns the same page, so callers skip instead.
package render

import (
	"context"
	"fmt"
	"net/http"

	"jobscout-engine/internal/domain"
)

type Renderer interface {
	// Open navigates a fresh page to url. The caller must Close the page.
	Open(ctx context.Context, url string) (Page, error)
}

type Page interface {
	URL() string
	// Content returns the current DOM serialized as HTML.
	Content() (string, error)
	// WaitFor blocks until selector is attached or the renderer's own
	// timeout fires, which yields a *domain.RenderError.
	WaitFor(selector string) error
	// Exists checks for selector without waiting.
	Exists(selector string) (bool, error)
	Click(selector string) error
	// ScrollBy scrolls the viewport and reports whether it moved.
	ScrollBy(px int) (bool, error)
	Close() error
}

// ClassifyStatus maps an HTTP status of a navigation response onto the error
// taxonomy. 2xx/3xx return nil.
func ClassifyStatus(url string, status int) error {
	switch {
	case status == 0 || status < 400:
		return nil
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("open %s: status %d: %w", url, status, domain.ErrTransient)
	default:
		return &domain.RenderError{URL: url, Err: fmt.Errorf("status %d", status)}
	}
}
