package hexagon

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"jobscout-engine/internal/render"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
)

const (
	SiteID     = "hexagon"
	BaseURL    = "https://hexagon.com"
	DefaultURL = "https://hexagon.com/company/careers/job-listings#jl_country=Poland&jl_e=0"

	jobSelector    = "div.job-url a"
	detailSelector = "h1"
)

var cookieButtons = []string{
	"#onetrust-accept-btn-handler",
	"button:has-text('Accept all')",
}

// Hexagon postings are served by an external ATS, so links may leave
// hexagon.com and the company is fixed.
var fields = types.FieldSelectors{
	Title:    []string{"h1[itemprop='title']", "h1"},
	Location: []string{"[itemprop='jobLocation']", ".job-location"},
	Salary:   []string{"[itemprop='baseSalary']"},
	Description: []string{
		"span[itemprop=description]",
		"div[data-reach-tab-panels]",
		"div.ng-scope[ng-repeat*='JobDetailQuestions']",
	},
	CompanyFromMeta: true,
	DefaultCompany:  "Hexagon",
}

type Adapter struct {
	f *util.Fetcher
}

func New(f *util.Fetcher) *Adapter {
	return &Adapter{f: f}
}

func (a *Adapter) Name() string { return SiteID }

func (a *Adapter) ListOffers(ctx context.Context, search types.Search) iter.Seq2[types.RawOffer, error] {
	return func(yield func(types.RawOffer, error) bool) {
		target := search.URL
		if target == "" {
			target = DefaultURL
		}
		html, err := a.f.Snapshot(ctx, target, jobSelector, func(p render.Page) {
			util.DismissCookies(p, cookieButtons...)
		})
		if err != nil {
			yield(types.RawOffer{}, fmt.Errorf("hexagon list %s: %w", target, err))
			return
		}
		hrefs, err := util.Hrefs(html, jobSelector, BaseURL)
		if err != nil {
			yield(types.RawOffer{}, fmt.Errorf("hexagon list %s: %w", target, err))
			return
		}

		seen := map[string]bool{}
		var links []string
		for _, h := range hrefs {
			link := util.CanonicalURL(strings.Replace(h, "/c/new", "", 1))
			if seen[link] {
				continue
			}
			seen[link] = true
			links = append(links, link)
		}
		a.f.Logf("[hexagon] listed %d offers url=%q", len(links), target)
		for _, link := range links {
			if !yield(types.RawOffer{Link: link, SiteID: SiteID}, nil) {
				return
			}
		}
	}
}

func (a *Adapter) FetchDetail(ctx context.Context, raw types.RawOffer) (types.RawOfferDetail, error) {
	html, err := a.f.Snapshot(ctx, raw.Link, detailSelector, nil)
	if err != nil {
		return types.RawOfferDetail{}, fmt.Errorf("hexagon detail: %w", err)
	}
	return types.RawOfferDetail{
		Link:      raw.Link,
		SiteID:    SiteID,
		HTML:      html,
		Fields:    fields,
		FetchedAt: time.Now().UTC(),
	}, nil
}
