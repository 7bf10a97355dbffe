package store

import (
	"context"
	"database/sql"
	"time"

	"jobscout-engine/internal/domain"
)

// Scored is one offer with its match, as listed in the report.
type Scored struct {
	Offer domain.Offer
	Match domain.MatchResult
}

type Counts struct {
	Offers  int
	Matches int
	Drops   int
}

func Migrate(db *sql.DB) error {
	if err := migrate(db); err != nil {
		return persistErr("migrate", err)
	}
	return nil
}

func migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS offers (
  fingerprint TEXT PRIMARY KEY,
  site_id TEXT NOT NULL,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  remote INTEGER NOT NULL DEFAULT 0,
  salary_min REAL,
  salary_max REAL,
  salary_currency TEXT NOT NULL DEFAULT '',
  salary_period TEXT NOT NULL DEFAULT '',
  tech_stack TEXT NOT NULL DEFAULT '[]',
  source_url TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  first_seen_at TEXT NOT NULL,
  scraped_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS matches (
  fingerprint TEXT PRIMARY KEY REFERENCES offers(fingerprint) ON DELETE CASCADE,
  profile_score REAL NOT NULL,
  expectations_score REAL NOT NULL,
  rationale TEXT NOT NULL DEFAULT '',
  missing TEXT NOT NULL DEFAULT '[]',
  evaluated_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS drops (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  fingerprint TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL,
  site_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  reason TEXT NOT NULL,
  dropped_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_offers_first_seen
ON offers(first_seen_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_matches_evaluated
ON matches(evaluated_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_drops_dropped_at
ON drops(dropped_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

// Scored lists offers evaluated at or after since, best profile fit first.
func (d *DB) Scored(ctx context.Context, since time.Time) ([]Scored, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT `+offerColumns+`,
       m.profile_score, m.expectations_score, m.rationale, m.missing, m.evaluated_at
FROM offers o
JOIN matches m ON m.fingerprint = o.fingerprint
WHERE m.evaluated_at >= ?
ORDER BY m.profile_score DESC, m.expectations_score DESC, o.title ASC;
`, stamp(since))
	if err != nil {
		return nil, persistErr("list scored", err)
	}
	defer rows.Close()

	var out []Scored
	for rows.Next() {
		var s Scored
		var missingJSON, evaluated string
		r := offerRow{o: &s.Offer}
		dest := append(r.dest(),
			&s.Match.ProfileScore,
			&s.Match.ExpectationsScore,
			&s.Match.Rationale,
			&missingJSON,
			&evaluated,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, persistErr("scan scored", err)
		}
		r.finish()
		s.Match.OfferFingerprint = s.Offer.Fingerprint
		s.Match.Missing = decodeList(missingJSON)
		s.Match.EvaluatedAt = parseStamp(evaluated)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list scored", err)
	}
	return out, nil
}

func (d *DB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := d.Pool.QueryRowContext(ctx, `
SELECT (SELECT COUNT(*) FROM offers),
       (SELECT COUNT(*) FROM matches),
       (SELECT COUNT(*) FROM drops);
`).Scan(&c.Offers, &c.Matches, &c.Drops)
	if err != nil {
		return Counts{}, persistErr("counts", err)
	}
	return c, nil
}
