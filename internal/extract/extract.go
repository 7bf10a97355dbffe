// Package extract turns rendered offer pages into domain.Offer values. It does
// no I/O.
package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
)

// maxDescription bounds the text kept for the scoring prompt.
const maxDescription = 20000

// Extract parses d.HTML with the adapter's selectors. A missing title, company
// or link is an *domain.ExtractionError.
func Extract(d types.RawOfferDetail) (domain.Offer, error) {
	link := strings.TrimSpace(d.Link)
	if link == "" {
		return domain.Offer{}, &domain.ExtractionError{Field: "link", Link: d.Link}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.HTML))
	if err != nil {
		return domain.Offer{}, &domain.ExtractionError{Field: "html", Link: link}
	}

	title := first(doc, d.Fields.Title)
	if title == "" {
		title = meta(doc, "og:title")
	}
	if title == "" {
		return domain.Offer{}, &domain.ExtractionError{Field: "title", Link: link}
	}

	company := first(doc, d.Fields.Company)
	if company == "" && d.Fields.CompanyFromMeta {
		company = meta(doc, "og:site_name")
	}
	if company == "" {
		company = d.Fields.DefaultCompany
	}
	if company == "" {
		return domain.Offer{}, &domain.ExtractionError{Field: "company", Link: link}
	}

	location := util.NormalizeLocation(first(doc, d.Fields.Location))
	if location == "" {
		location = util.FindLocation(doc)
	}

	description := strings.Join(all(doc, d.Fields.Description), "\n")
	if description == "" {
		description = util.CleanText(doc.Find("body").Text())
	}
	if len(description) > maxDescription {
		description = truncate(description, maxDescription)
	}

	scrapedAt := d.FetchedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now().UTC()
	}

	return domain.Offer{
		Fingerprint: Fingerprint(d.SiteID, d.SourceID, link),
		SiteID:      d.SiteID,
		Title:       title,
		Company:     company,
		Location:    location,
		Remote:      util.IsRemote(location, title, description),
		Salary:      ParseSalary(first(doc, d.Fields.Salary)),
		TechStack:   NormalizeTechStack(all(doc, d.Fields.TechStack)...),
		SourceURL:   util.CanonicalURL(link),
		Description: description,
		ScrapedAt:   scrapedAt.UTC(),
	}, nil
}

// first returns the text of the first selector that yields non-empty text.
func first(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if t := util.CleanText(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// all returns the text of every element matched by any selector.
func all(doc *goquery.Document, selectors []string) []string {
	var out []string
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if t := util.CleanText(s.Text()); t != "" {
				out = append(out, t)
			}
		})
	}
	return out
}

func meta(doc *goquery.Document, property string) string {
	v, _ := doc.Find(`meta[property="` + property + `"]`).Attr("content")
	return util.CleanText(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// back up to a rune boundary
	for n > 0 && (s[n]&0xC0) == 0x80 {
		n--
	}
	return s[:n]
}
