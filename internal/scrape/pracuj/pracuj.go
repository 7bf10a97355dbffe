// Package pracuj lists offers from the pracuj.pl paginated search. Every
// page is read before the first offer is yielded: a reposted offer can show
// up under an older id on page 1 and a newer one on a later page, and only
// the newest id is kept.
package pracuj

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobscout-engine/internal/render"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
)

const (
	SiteID  = "pracuj"
	BaseURL = "https://www.pracuj.pl"

	listSelector    = "div[data-test='section-offers']"
	offerSelector   = "a[data-test='link-offer']"
	maxPageSelector = "span[data-test='top-pagination-max-page-number']"
	detailSelector  = "h1"
)

var cookieButtons = []string{
	"button[data-test='button-submitCookie']",
	"button:has-text('Akceptuj wszystkie')",
}

var fields = types.FieldSelectors{
	Title:    []string{"h1[data-test='text-positionName']", "h1"},
	Company:  []string{"h2[data-test='text-employerName']", "[data-test='text-employerName']"},
	Location: []string{"[data-test='sections-benefit-workplaces'] [data-test='offer-badge-title']", "[data-test='offer-badge-title']"},
	Salary:   []string{"[data-test='text-earningAmount']", "[data-test='section-salary']"},
	TechStack: []string{
		"div[data-scroll-id='technologies-expected-1'] li",
		"div[data-scroll-id='technologies-optional-1'] li",
	},
	Description: []string{
		"ul[data-test='text-about-project']",
		"section[data-test='section-responsibilities']",
		"section[data-test='section-requirements']",
		"section[data-test='section-offered']",
		"section[data-test='section-benefits']",
	},
}

var offerIDRe = regexp.MustCompile(`(?i),oferta,(\d+)$`)

// Adapter walks the paginated search (pn=1..N). Reposted offers appear under
// several ids; only the newest id per posting is listed.
type Adapter struct {
	f *util.Fetcher
}

func New(f *util.Fetcher) *Adapter {
	return &Adapter{f: f}
}

func (a *Adapter) Name() string { return SiteID }

func (a *Adapter) ListOffers(ctx context.Context, search types.Search) iter.Seq2[types.RawOffer, error] {
	return func(yield func(types.RawOffer, error) bool) {
		links, err := a.collect(ctx, search)
		if err != nil {
			yield(types.RawOffer{}, fmt.Errorf("pracuj list %s: %w", search.URL, err))
			return
		}
		links = DedupeByOfferID(links)
		a.f.Logf("[pracuj] listed %d offers url=%q", len(links), search.URL)
		for _, link := range links {
			id, _ := offerID(link)
			raw := types.RawOffer{Link: link, SiteID: SiteID, SourceID: id}
			if !yield(raw, nil) {
				return
			}
		}
	}
}

func (a *Adapter) collect(ctx context.Context, search types.Search) ([]string, error) {
	var links []string
	seen := map[string]bool{}

	last := 1
	for pn := 1; pn <= last; pn++ {
		pageURL, err := withPage(search.URL, pn)
		if err != nil {
			return nil, err
		}
		html, err := a.f.Snapshot(ctx, pageURL, listSelector, func(p render.Page) {
			util.DismissCookies(p, cookieButtons...)
		})
		if err != nil {
			return nil, err
		}
		if pn == 1 {
			last = pageLimit(util.Text(html, maxPageSelector), search.MaxPages)
		}

		hrefs, err := util.Hrefs(html, offerSelector, BaseURL)
		if err != nil {
			return nil, err
		}
		added := 0
		for _, h := range hrefs {
			link := util.StripQuery(h)
			if seen[link] || !util.SameSite(link, BaseURL) {
				continue
			}
			seen[link] = true
			links = append(links, link)
			added++
		}
		if added == 0 {
			break
		}
	}
	return links, nil
}

func (a *Adapter) FetchDetail(ctx context.Context, raw types.RawOffer) (types.RawOfferDetail, error) {
	html, err := a.f.Snapshot(ctx, raw.Link, detailSelector, func(p render.Page) {
		util.DismissCookies(p, cookieButtons...)
	})
	if err != nil {
		return types.RawOfferDetail{}, fmt.Errorf("pracuj detail: %w", err)
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

func pageLimit(maxText string, capPages int) int {
	n, err := strconv.Atoi(strings.TrimSpace(maxText))
	if err != nil || n < 1 {
		n = 1
	}
	if capPages > 0 && n > capPages {
		n = capPages
	}
	return n
}

func withPage(raw string, pn int) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("search url %q: %w", raw, err)
	}
	q := u.Query()
	q.Set("pn", strconv.Itoa(pn))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// offerID returns the numeric id of a ",oferta,<id>" link.
func offerID(link string) (string, int64) {
	u, err := url.Parse(link)
	if err != nil {
		return "", 0
	}
	m := offerIDRe.FindStringSubmatch(strings.TrimRight(u.Path, "/"))
	if m == nil {
		return "", 0
	}
	n, _ := strconv.ParseInt(m[1], 10, 64)
	return m[1], n
}

// postingKey is host plus path without the offer id.
func postingKey(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	p := strings.TrimRight(u.Path, "/")
	p = offerIDRe.ReplaceAllString(p, "")
	return strings.ToLower(u.Host) + strings.ToLower(p)
}

// DedupeByOfferID keeps one link per posting, the one with the highest offer
// id, in order of first appearance.
func DedupeByOfferID(links []string) []string {
	type pick struct {
		idx  int
		link string
		id   int64
	}
	selected := map[string]*pick{}
	var order []string
	for i, l := range links {
		key := postingKey(l)
		_, id := offerID(l)
		cur, ok := selected[key]
		if !ok {
			selected[key] = &pick{idx: i, link: l, id: id}
			order = append(order, key)
			continue
		}
		if id > cur.id {
			cur.link, cur.id = l, id
		}
	}
	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, selected[k].link)
	}
	return out
}
