package pracuj

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/render/rendertest"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
)

const searchURL = "https://it.pracuj.pl/praca/python;kw?sc=0&wm=hybrid%2Chome-office"

func listingPage(maxPage int, hrefs ...string) string {
	html := `<html><body>`
	if maxPage > 0 {
		html += fmt.Sprintf(`<span data-test="top-pagination-max-page-number">%d</span>`, maxPage)
	}
	html += `<div data-test="section-offers">`
	for _, h := range hrefs {
		html += `<a data-test="link-offer" href="` + h + `">offer</a>`
	}
	return html + `</div></body></html>`
}

func pageURL(t *testing.T, pn int) string {
	t.Helper()
	u, err := withPage(searchURL, pn)
	require.NoError(t, err)
	return u
}

func newAdapter(r *rendertest.Renderer) *Adapter {
	return New(&util.Fetcher{Renderer: r, Log: log.New(io.Discard, "", 0)})
}

func collectAll(t *testing.T, a *Adapter, s types.Search) ([]types.RawOffer, error) {
	t.Helper()
	var out []types.RawOffer
	for raw, err := range a.ListOffers(context.Background(), s) {
		if err != nil {
			return out, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func TestListOffersPaginatesUpToCap(t *testing.T) {
	r := rendertest.New()
	r.Add(pageURL(t, 1), listingPage(5,
		"https://www.pracuj.pl/praca/python-developer-warszawa,oferta,1001?s=abc",
		"https://www.pracuj.pl/praca/qa-engineer-krakow,oferta,1002",
	))
	r.Add(pageURL(t, 2), listingPage(5,
		"https://www.pracuj.pl/praca/python-developer-warszawa,oferta,1009",
		"https://www.pracuj.pl/praca/data-engineer-gdansk,oferta,1003",
	))
	r.Add(pageURL(t, 3), listingPage(5, "https://www.pracuj.pl/praca/never,oferta,1"))

	offers, err := collectAll(t, newAdapter(r), types.Search{URL: searchURL, MaxPages: 2})
	require.NoError(t, err)

	var links, ids []string
	for _, o := range offers {
		links = append(links, o.Link)
		ids = append(ids, o.SourceID)
	}
	assert.Equal(t, []string{
		"https://www.pracuj.pl/praca/python-developer-warszawa,oferta,1009",
		"https://www.pracuj.pl/praca/qa-engineer-krakow,oferta,1002",
		"https://www.pracuj.pl/praca/data-engineer-gdansk,oferta,1003",
	}, links)
	assert.Equal(t, []string{"1009", "1002", "1003"}, ids)
	assert.Equal(t, 0, r.Visits(pageURL(t, 3)))
	assert.Equal(t, r.Opened(), r.Closed())
}

func TestListOffersStopsOnEmptyPage(t *testing.T) {
	r := rendertest.New()
	r.Add(pageURL(t, 1), listingPage(3, "https://www.pracuj.pl/praca/a,oferta,1"))
	r.Add(pageURL(t, 2), listingPage(3))
	r.Add(pageURL(t, 3), listingPage(3, "https://www.pracuj.pl/praca/c,oferta,3"))

	offers, err := collectAll(t, newAdapter(r), types.Search{URL: searchURL})
	require.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Equal(t, 0, r.Visits(pageURL(t, 3)))
}

func TestListOffersWithoutPaginationReadsOnePage(t *testing.T) {
	r := rendertest.New()
	r.Add(pageURL(t, 1), listingPage(0, "https://www.pracuj.pl/praca/a,oferta,1"))

	offers, err := collectAll(t, newAdapter(r), types.Search{URL: searchURL})
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestListOffersRenderErrorIsFatal(t *testing.T) {
	r := rendertest.New()
	r.Add(pageURL(t, 1), `<html><body><h1>Coś poszło nie tak</h1></body></html>`)

	_, err := collectAll(t, newAdapter(r), types.Search{URL: searchURL})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRender)
}

func TestDedupeByOfferID(t *testing.T) {
	in := []string{
		"https://www.pracuj.pl/praca/data-engineer-warszawa-pulawska-2,oferta,1004285879",
		"https://www.pracuj.pl/praca/other,oferta,5",
		"https://www.pracuj.pl/praca/data-engineer-warszawa-pulawska-2,oferta,1004285880",
		"https://www.pracuj.pl/praca/data-engineer-warszawa-pulawska-2,oferta,1000000000",
	}
	assert.Equal(t, []string{
		"https://www.pracuj.pl/praca/data-engineer-warszawa-pulawska-2,oferta,1004285880",
		"https://www.pracuj.pl/praca/other,oferta,5",
	}, DedupeByOfferID(in))
}

func TestPageLimit(t *testing.T) {
	assert.Equal(t, 1, pageLimit("", 0))
	assert.Equal(t, 7, pageLimit(" 7 ", 0))
	assert.Equal(t, 3, pageLimit("7", 3))
	assert.Equal(t, 1, pageLimit("abc", 3))
}

func TestFetchDetail(t *testing.T) {
	r := rendertest.New()
	link := "https://www.pracuj.pl/praca/qa-engineer-krakow,oferta,1002"
	r.Add(link, `<html><body><h1 data-test="text-positionName">QA Engineer</h1></body></html>`)

	d, err := newAdapter(r).FetchDetail(context.Background(), types.RawOffer{Link: link, SiteID: SiteID, SourceID: "1002"})
	require.NoError(t, err)
	assert.Equal(t, "1002", d.SourceID)
	assert.Contains(t, d.Fields.TechStack, "div[data-scroll-id='technologies-expected-1'] li")
	assert.Equal(t, 1, r.Closed())
}
