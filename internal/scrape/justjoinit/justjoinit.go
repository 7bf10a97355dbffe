// Package justjoinit lists offers from the justjoin.it infinite-scroll search.
// Links are yielded round by round while the listing page stays open, so
// detail fetches overlap scrolling.
//
// The offer slug (/job-offer/<slug>) is the site id used for fingerprints.
// The slug is derived from company and title, so an employer renaming a
// posting yields a new fingerprint and the offer is scored again.
package justjoinit

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"path"
	"strings"
	"time"

	"jobscout-engine/internal/render"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
)

const (
	SiteID  = "justjoinit"
	BaseURL = "https://justjoin.it"

	cardSelector   = "a.offer-card"
	detailSelector = "h1"
	scrollStep     = 1600
	defaultScrolls = 20
)

var cookieButtons = []string{
	"#cookiescript_accept",
	"button:has-text('Accept all')",
	"button:has-text('Akceptuj wszystkie')",
}

var fields = types.FieldSelectors{
	Title:    []string{"h1"},
	Company:  []string{"[data-testid='company-name']", "a[href^='/brands/'] h2"},
	Location: []string{"[data-testid='offer-location']", "[data-testid='location']"},
	Salary:   []string{"[data-testid='salary']", "div:has(> h2:contains('Salary')) span"},
	TechStack: []string{
		"div:has(> h2:contains('Tech stack')) h4",
		"[data-testid='tech-stack'] li",
	},
	Description: []string{
		"div:has(> h2:contains('Job description'))",
		"[data-testid='job-description']",
	},
}

// Adapter lists one search page. Search.MaxPages caps the number of scroll
// rounds.
type Adapter struct {
	f *util.Fetcher
}

func New(f *util.Fetcher) *Adapter {
	return &Adapter{f: f}
}

func (a *Adapter) Name() string { return SiteID }

func (a *Adapter) ListOffers(ctx context.Context, search types.Search) iter.Seq2[types.RawOffer, error] {
	return func(yield func(types.RawOffer, error) bool) {
		n := 0
		err := a.scroll(ctx, search, func(link string) bool {
			n++
			return yield(types.RawOffer{Link: link, SiteID: SiteID, SourceID: sourceID(link)}, nil)
		})
		if errors.Is(err, errStop) {
			return
		}
		if err != nil {
			yield(types.RawOffer{}, fmt.Errorf("justjoinit list %s: %w", search.URL, err))
			return
		}
		a.f.Logf("[justjoinit] listed %d offers url=%q", n, search.URL)
	}
}

// errStop ends the scroll loop when the consumer stops ranging.
var errStop = errors.New("justjoinit: listing stopped")

// scroll hands each new card link to emit as soon as its round is read. It
// stops when a round adds nothing, the page stops moving or the scroll cap is
// reached. Links already emitted are not emitted again if the page is
// reopened after a transient failure.
func (a *Adapter) scroll(ctx context.Context, search types.Search, emit func(string) bool) error {
	rounds := search.MaxPages
	if rounds <= 0 {
		rounds = defaultScrolls
	}

	seen := map[string]bool{}
	return a.f.Visit(ctx, search.URL, cardSelector, func(p render.Page) error {
		util.DismissCookies(p, cookieButtons...)
		for round := 0; round < rounds; round++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			html, err := p.Content()
			if err != nil {
				return err
			}
			hrefs, err := util.Hrefs(html, cardSelector, BaseURL)
			if err != nil {
				return err
			}
			added := 0
			for _, h := range hrefs {
				c := util.CanonicalURL(h)
				if seen[c] || !util.SameSite(c, BaseURL) {
					continue
				}
				seen[c] = true
				added++
				if !emit(c) {
					return errStop
				}
			}
			if added == 0 && round > 0 {
				return nil
			}
			moved, err := p.ScrollBy(scrollStep)
			if err != nil {
				return err
			}
			if !moved {
				return nil
			}
		}
		return nil
	})
}

func (a *Adapter) FetchDetail(ctx context.Context, raw types.RawOffer) (types.RawOfferDetail, error) {
	html, err := a.f.Snapshot(ctx, raw.Link, detailSelector, func(p render.Page) {
		util.DismissCookies(p, cookieButtons...)
	})
	if err != nil {
		return types.RawOfferDetail{}, fmt.Errorf("justjoinit detail: %w", err)
	}
	return types.RawOfferDetail{
		Link:      raw.Link,
		SiteID:    SiteID,
		SourceID:  raw.SourceID,
		HTML:      html,
		Fields:    fields,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// sourceID is the offer slug: /job-offer/<slug>.
func sourceID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	dir, slug := path.Split(strings.TrimRight(u.Path, "/"))
	if !strings.HasSuffix(dir, "/job-offer/") || slug == "" {
		return ""
	}
	return slug
}
