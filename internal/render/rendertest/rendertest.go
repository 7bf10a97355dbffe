// Package rendertest provides an in-memory Renderer for adapter and pipeline
// tests. Selectors are matched with goquery against scripted HTML.
package rendertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/render"
)

type Renderer struct {
	mu     sync.Mutex
	pages  map[string][]string
	errs   map[string][]error
	visits map[string]int
	clicks []string
	opened int
	closed int
}

func New() *Renderer {
	return &Renderer{
		pages:  map[string][]string{},
		errs:   map[string][]error{},
		visits: map[string]int{},
	}
}

// Add scripts url. Each frame is a DOM snapshot; a successful ScrollBy moves
// to the next one.
func (r *Renderer) Add(url string, frames ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[url] = frames
}

// FailOpen queues errors returned by the next Open calls for url, in order.
func (r *Renderer) FailOpen(url string, errs ...error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[url] = append(r.errs[url], errs...)
}

func (r *Renderer) Open(ctx context.Context, url string) (render.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.visits[url]++
	if q := r.errs[url]; len(q) > 0 {
		r.errs[url] = q[1:]
		return nil, q[0]
	}
	frames, ok := r.pages[url]
	if !ok {
		return nil, render.ClassifyStatus(url, 404)
	}
	r.opened++
	return &page{r: r, url: url, frames: frames}, nil
}

func (r *Renderer) Visits(url string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visits[url]
}

// Opened and Closed count pages handed out and pages released.
func (r *Renderer) Opened() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opened
}

func (r *Renderer) Closed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Renderer) Clicks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.clicks...)
}

type page struct {
	r      *Renderer
	url    string
	frames []string
	frame  int
	closed bool
}

func (p *page) URL() string { return p.url }

func (p *page) current() string {
	if len(p.frames) == 0 {
		return "<html><body></body></html>"
	}
	return p.frames[p.frame]
}

func (p *page) Content() (string, error) {
	if p.closed {
		return "", &domain.RenderError{URL: p.url, Err: fmt.Errorf("page closed")}
	}
	return p.current(), nil
}

func (p *page) has(selector string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.current()))
	if err != nil {
		return false
	}
	return doc.Find(selector).Length() > 0
}

func (p *page) WaitFor(selector string) error {
	if p.closed || !p.has(selector) {
		return &domain.RenderError{URL: p.url, Selector: selector}
	}
	return nil
}

func (p *page) Exists(selector string) (bool, error) {
	if p.closed {
		return false, &domain.RenderError{URL: p.url, Err: fmt.Errorf("page closed")}
	}
	return p.has(selector), nil
}

func (p *page) Click(selector string) error {
	if p.closed || !p.has(selector) {
		return &domain.RenderError{URL: p.url, Selector: selector}
	}
	p.r.mu.Lock()
	p.r.clicks = append(p.r.clicks, selector)
	p.r.mu.Unlock()
	return nil
}

func (p *page) ScrollBy(int) (bool, error) {
	if p.frame+1 < len(p.frames) {
		p.frame++
		return true, nil
	}
	return false, nil
}

func (p *page) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.r.mu.Lock()
	p.r.closed++
	p.r.mu.Unlock()
	return nil
}
