package pipeline

import (
	"fmt"
	"strings"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"
)

// Filters are cheap keyword rules applied before an offer reaches the Scorer.
// The zero value keeps everything.
type Filters struct {
	RequireAny []string // at least one must appear in title, description or tech stack
	BlockAny   []string // none may appear in title, company or location
	Locations  []string // if set, the location must mention one (remote offers pass)
	RemoteOnly bool
}

// Check returns an error wrapping domain.ErrFiltered when o should be skipped.
func (f Filters) Check(o domain.Offer) error {
	if ok, reason := f.keep(o); !ok {
		return fmt.Errorf("%s: %w", reason, domain.ErrFiltered)
	}
	return nil
}

func (f Filters) keep(o domain.Offer) (bool, string) {
	head := util.Fold(o.Title + " " + o.Company + " " + o.Location)

	// Blocklist wins
	for _, b := range f.BlockAny {
		b = util.Fold(strings.TrimSpace(b))
		if b != "" && strings.Contains(head, b) {
			return false, "blocked keyword " + b
		}
	}

	if f.RemoteOnly && !o.Remote {
		return false, "not remote"
	}

	if !o.Remote && len(f.Locations) > 0 && !containsAny(util.Fold(o.Location), f.Locations) {
		return false, "location"
	}

	if len(f.RequireAny) > 0 {
		body := util.Fold(o.Title + " " + o.Description + " " + strings.Join(o.TechStack, " "))
		if !containsAny(body, f.RequireAny) {
			return false, "no keyword match"
		}
	}
	return true, ""
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		n = util.Fold(strings.TrimSpace(n))
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}
