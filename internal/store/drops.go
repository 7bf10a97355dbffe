package store

import (
	"context"
	"time"

	"jobscout-engine/internal/domain"
)

// RecordDrop appends one entry to the drop ledger.
func (d *DB) RecordDrop(ctx context.Context, dr domain.Drop) error {
	at := dr.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO drops (fingerprint, link, site_id, kind, reason, dropped_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		dr.Fingerprint, dr.Link, dr.SiteID, dr.Kind, dr.Reason, stamp(at),
	)
	if err != nil {
		return persistErr("record drop", err)
	}
	return nil
}

// Drops lists ledger entries recorded at or after since, newest first.
func (d *DB) Drops(ctx context.Context, since time.Time) ([]domain.Drop, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT fingerprint, link, site_id, kind, reason, dropped_at
FROM drops
WHERE dropped_at >= ?
ORDER BY dropped_at DESC, id DESC;`, stamp(since))
	if err != nil {
		return nil, persistErr("list drops", err)
	}
	defer rows.Close()

	var out []domain.Drop
	for rows.Next() {
		var dr domain.Drop
		var at string
		if err := rows.Scan(&dr.Fingerprint, &dr.Link, &dr.SiteID, &dr.Kind, &dr.Reason, &at); err != nil {
			return nil, persistErr("scan drop", err)
		}
		dr.At = parseStamp(at)
		out = append(out, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list drops", err)
	}
	return out, nil
}

// PruneDrops deletes ledger entries older than before.
func (d *DB) PruneDrops(ctx context.Context, before time.Time) (deleted int64, err error) {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM drops WHERE dropped_at < ?;`, stamp(before))
	if err != nil {
		return 0, persistErr("prune drops", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
