package store

import (
	"context"
	"encoding/json"
	"time"

	"jobscout-engine/internal/domain"
)

// UpsertMatch stores (or overwrites) the evaluation of the offer with the given
// fingerprint. The offer must already be stored.
func (d *DB) UpsertMatch(ctx context.Context, fingerprint string, m domain.MatchResult) error {
	missing, err := json.Marshal(nonNil(m.Missing))
	if err != nil {
		return persistErr("encode missing", err)
	}
	evaluated := m.EvaluatedAt
	if evaluated.IsZero() {
		evaluated = time.Now()
	}

	_, err = d.Pool.ExecContext(ctx, `
INSERT INTO matches (fingerprint, profile_score, expectations_score, rationale, missing, evaluated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(fingerprint) DO UPDATE SET
  profile_score = excluded.profile_score,
  expectations_score = excluded.expectations_score,
  rationale = excluded.rationale,
  missing = excluded.missing,
  evaluated_at = excluded.evaluated_at;`,
		fingerprint, m.ProfileScore, m.ExpectationsScore, m.Rationale, string(missing), stamp(evaluated),
	)
	if err != nil {
		return persistErr("upsert match", err)
	}
	return nil
}
