package hexagon

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/render/rendertest"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
)

func newAdapter(r *rendertest.Renderer) *Adapter {
	return New(&util.Fetcher{Renderer: r, Log: log.New(io.Discard, "", 0)})
}

func TestListOffers(t *testing.T) {
	r := rendertest.New()
	r.Add(DefaultURL, `<html><body>
<div class="job-url"><a href="/c/new/company/careers/job/123-test-engineer">Test Engineer</a></div>
<div class="job-url"><a href="https://jobs.smartrecruiters.com/Hexagon/456-python-dev">Python Dev</a></div>
<div class="job-url"><a href="/company/careers/job/123-test-engineer">Test Engineer</a></div>
<div class="job-url"><a>no link</a></div>
</body></html>`)

	var links []string
	for raw, err := range newAdapter(r).ListOffers(context.Background(), types.Search{}) {
		require.NoError(t, err)
		assert.Equal(t, SiteID, raw.SiteID)
		assert.Empty(t, raw.SourceID)
		links = append(links, raw.Link)
	}
	assert.Equal(t, []string{
		"https://hexagon.com/company/careers/job/123-test-engineer",
		"https://jobs.smartrecruiters.com/Hexagon/456-python-dev",
	}, links)
	assert.Equal(t, 1, r.Closed())
}

func TestFetchDetailFixesCompany(t *testing.T) {
	r := rendertest.New()
	link := "https://hexagon.com/company/careers/job/123-test-engineer"
	r.Add(link, `<html><body><h1>Test Engineer</h1></body></html>`)

	d, err := newAdapter(r).FetchDetail(context.Background(), types.RawOffer{Link: link, SiteID: SiteID})
	require.NoError(t, err)
	assert.Equal(t, "Hexagon", d.Fields.DefaultCompany)
	assert.True(t, d.Fields.CompanyFromMeta)
}
