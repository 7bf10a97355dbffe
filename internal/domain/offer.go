package domain

import "time"

// Salary is the advertised pay range. Min and Max are nil when the offer
// does not state an amount.
type Salary struct {
	Min      *float64
	Max      *float64
	Currency string // PLN, EUR, USD, ...
	Period   string // hour, day, month, year
}

func (s Salary) Known() bool { return s.Min != nil || s.Max != nil }

type Offer struct {
	Fingerprint string
	SiteID      string
	Title       string
	Company     string
	Location    string
	Remote      bool
	Salary      Salary
	TechStack   []string // sorted, unique
	SourceURL   string
	Description string
	ScrapedAt   time.Time
}

type MatchResult struct {
	OfferFingerprint  string
	ProfileScore      float64
	ExpectationsScore float64
	Rationale         string
	Missing           []string
	EvaluatedAt       time.Time
}

// Drop records an offer the pipeline gave up on, for later inspection.
type Drop struct {
	Fingerprint string
	Link        string
	SiteID      string
	Kind        string
	Reason      string
	At          time.Time
}
