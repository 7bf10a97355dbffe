package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"iter"
	"time"

	"jobscout-engine/internal/domain"
)

const offerColumns = `o.fingerprint, o.site_id, o.title, o.company, o.location, o.remote,
       o.salary_min, o.salary_max, o.salary_currency, o.salary_period,
       o.tech_stack, o.source_url, o.description, o.scraped_at`

// offerRow holds the scan targets for offerColumns.
type offerRow struct {
	o        *domain.Offer
	remote   int
	min, max sql.NullFloat64
	tech     string
	scraped  string
}

func (r *offerRow) dest() []any {
	return []any{
		&r.o.Fingerprint, &r.o.SiteID, &r.o.Title, &r.o.Company, &r.o.Location, &r.remote,
		&r.min, &r.max, &r.o.Salary.Currency, &r.o.Salary.Period,
		&r.tech, &r.o.SourceURL, &r.o.Description, &r.scraped,
	}
}

func (r *offerRow) finish() {
	r.o.Remote = r.remote != 0
	if r.min.Valid {
		v := r.min.Float64
		r.o.Salary.Min = &v
	}
	if r.max.Valid {
		v := r.max.Float64
		r.o.Salary.Max = &v
	}
	r.o.TechStack = decodeList(r.tech)
	r.o.ScrapedAt = parseStamp(r.scraped)
}

func (d *DB) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := d.Pool.QueryRowContext(ctx, `SELECT 1 FROM offers WHERE fingerprint = ? LIMIT 1;`, fingerprint).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, persistErr("offer exists", err)
	}
	return true, nil
}

// UpsertOffer inserts o or, when the fingerprint is already stored, only
// refreshes scraped_at. Stored offers are otherwise immutable.
func (d *DB) UpsertOffer(ctx context.Context, o domain.Offer) error {
	tech, err := json.Marshal(nonNil(o.TechStack))
	if err != nil {
		return persistErr("encode tech stack", err)
	}
	scraped := o.ScrapedAt
	if scraped.IsZero() {
		scraped = time.Now()
	}
	remote := 0
	if o.Remote {
		remote = 1
	}

	_, err = d.Pool.ExecContext(ctx, `
INSERT INTO offers (fingerprint, site_id, title, company, location, remote,
  salary_min, salary_max, salary_currency, salary_period,
  tech_stack, source_url, description, first_seen_at, scraped_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(fingerprint) DO UPDATE SET scraped_at = excluded.scraped_at;`,
		o.Fingerprint, o.SiteID, o.Title, o.Company, o.Location, remote,
		nullFloat(o.Salary.Min), nullFloat(o.Salary.Max), o.Salary.Currency, o.Salary.Period,
		string(tech), o.SourceURL, o.Description, stamp(scraped), stamp(scraped),
	)
	if err != nil {
		return persistErr("upsert offer", err)
	}
	return nil
}

// Unscored yields stored offers that have no match row, oldest first. Rows are
// read fully before the first yield so the caller may write while iterating.
func (d *DB) Unscored(ctx context.Context) iter.Seq2[domain.Offer, error] {
	return func(yield func(domain.Offer, error) bool) {
		offers, err := d.unscored(ctx)
		if err != nil {
			yield(domain.Offer{}, err)
			return
		}
		for _, o := range offers {
			if !yield(o, nil) {
				return
			}
		}
	}
}

func (d *DB) unscored(ctx context.Context) ([]domain.Offer, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT `+offerColumns+`
FROM offers o
LEFT JOIN matches m ON m.fingerprint = o.fingerprint
WHERE m.fingerprint IS NULL
ORDER BY o.first_seen_at ASC, o.fingerprint ASC;
`)
	if err != nil {
		return nil, persistErr("list unscored", err)
	}
	defer rows.Close()

	var out []domain.Offer
	for rows.Next() {
		var o domain.Offer
		r := offerRow{o: &o}
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, persistErr("scan unscored", err)
		}
		r.finish()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list unscored", err)
	}
	return out, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func decodeList(s string) []string {
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

// fixed width so stored stamps compare correctly as text
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(stampLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t.UTC()
}
