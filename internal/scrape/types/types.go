package types

import (
	"context"
	"iter"
	"time"
)

// Search is the per-site listing configuration.
type Search struct {
	URL      string
	MaxPages int
}

type RawOffer struct {
	Link     string
	SiteID   string
	SourceID string // site offer id when the URL carries one
}

// FieldSelectors lists candidate CSS selectors per field. Scalar fields take
// the first non-empty match; TechStack and Description are the union of all
// matches.
type FieldSelectors struct {
	Title       []string
	Company     []string
	Location    []string
	Salary      []string
	TechStack   []string
	Description []string

	// CompanyFromMeta lets og:site_name stand in for the company and
	// DefaultCompany is the last resort, for single-employer career sites.
	CompanyFromMeta bool
	DefaultCompany  string
}

type RawOfferDetail struct {
	Link      string
	SiteID    string
	SourceID  string
	HTML      string
	Fields    FieldSelectors
	FetchedAt time.Time
}

// Adapter is implemented once per source site.
type Adapter interface {
	Name() string
	// ListOffers renders the search pages lazily. A yielded error ends the
	// sequence.
	ListOffers(ctx context.Context, search Search) iter.Seq2[RawOffer, error]
	FetchDetail(ctx context.Context, raw RawOffer) (RawOfferDetail, error)
}
