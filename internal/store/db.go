// Package store persists offers, match results and the drop ledger in SQLite.
// Every error it returns wraps domain.ErrPersistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"jobscout-engine/internal/domain"
)

type DB struct {
	Pool *sql.DB
	lock *flock.Flock
}

// Open opens (creating if needed) the database at path and takes an exclusive
// lock on path+".lock" so two runs never share one database.
func Open(path string) (*DB, error) {
	lk := flock.New(path + ".lock")
	ok, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w: %w", path, err, domain.ErrPersistence)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: held by another run: %w", path, domain.ErrPersistence)
	}

	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = lk.Unlock()
		return nil, fmt.Errorf("open %s: %w: %w", path, err, domain.ErrPersistence)
	}

	pool.SetMaxOpenConns(1) // single writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		_ = lk.Unlock()
		return nil, fmt.Errorf("ping %s: %w: %w", path, err, domain.ErrPersistence)
	}

	return &DB{Pool: pool, lock: lk}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	err := d.Pool.Close()
	if d.lock != nil {
		_ = d.lock.Unlock()
	}
	return err
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, err, domain.ErrPersistence)
}
