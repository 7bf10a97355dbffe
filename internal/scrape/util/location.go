package util

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindLocation is the fallback used when an adapter's location selectors all
// miss: common markup first, then labelled text in meta/body.
func FindLocation(doc *goquery.Document) string {
	candidates := []string{
		"[data-test='offer-badge-title']",
		"[data-testid='job-location']",
		"[data-testid='location']",
		"[itemprop='jobLocation']",
		".job__location",
		".location",
	}

	for _, sel := range candidates {
		if t := CleanText(doc.Find(sel).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}

	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if loc := labelledLocation(v); loc != "" {
			return NormalizeLocation(loc)
		}
	}

	body := doc.Find("body").Text()
	if loc := labelledLocation(body); loc != "" {
		return NormalizeLocation(loc)
	}

	return ""
}

// labelRe matches the location label forms seen on the supported boards.
var labelRe = regexp.MustCompile(`(?i)(?:job\s+)?(?:locations?|lokalizacja|miejsce\s+pracy)\s*:\s*`)

// labelledLocation returns the text after the first location label, cut at
// the first line or list separator.
func labelledLocation(s string) string {
	loc := labelRe.FindStringIndex(s)
	if loc == nil {
		return ""
	}
	rest := s[loc[1]:]
	if j := strings.IndexAny(rest, "\n\r|·"); j >= 0 {
		rest = rest[:j]
	}
	rest = CleanText(rest)
	if len(rest) > 80 {
		return ""
	}
	return rest
}
