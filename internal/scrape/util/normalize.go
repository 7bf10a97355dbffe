package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\u202f", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Fold lowercases s and strips combining marks ("Zdalna Praca" -> "zdalna praca",
// "Kraków" -> "krakow"). "ł" has no decomposition and is mapped explicitly.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.NewReplacer("ł", "l", "Ł", "l").Replace(out)
	return strings.ToLower(out)
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	for _, p := range []string{"Location:", "LOCATIONS:", "Lokalizacja:", "Siedziba firmy:"} {
		loc = strings.TrimPrefix(loc, p)
	}
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

var remoteMarkers = []string{
	"remote",
	"zdalna",
	"zdalnie",
	"home office",
	"home-office",
	"praca zdalna",
}

// IsRemote looks for remote-work markers in any of the given texts.
func IsRemote(texts ...string) bool {
	blob := Fold(strings.Join(texts, " "))
	for _, m := range remoteMarkers {
		if strings.Contains(blob, m) {
			return true
		}
	}
	return false
}
