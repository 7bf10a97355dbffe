package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Hrefs returns the href of every element matching sel, resolved against
// base, in document order. Empty and javascript: links are skipped.
func Hrefs(html, sel, base string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	var out []string
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		if abs := Resolve(base, href); abs != "" {
			out = append(out, abs)
		}
	})
	return out, nil
}

// Text returns the cleaned text of the first element matching sel.
func Text(html, sel string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return CleanText(doc.Find(sel).First().Text())
}
