package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/i474232898/swim-conditions/internal/conditions"
)

// One row per site. The service observes a single site, so the table holds a
// single row that every refresh overwrites.
const snapshotSchema = `
CREATE TABLE IF NOT EXISTS condition_snapshots (
	site     TEXT PRIMARY KEY,
	id       TEXT NOT NULL,
	taken_at TIMESTAMPTZ NOT NULL,
	payload  JSONB NOT NULL
)`

// PostgresStore persists the latest snapshot as a JSONB payload so it
// survives restarts.
type PostgresStore struct {
	db   *sql.DB
	site string
}

// NewPostgresStore opens the database, verifies connectivity, and ensures the
// snapshot table exists.
func NewPostgresStore(ctx context.Context, dsn, site string, maxConns int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return &PostgresStore{db: db, site: site}, nil
}

// Save upserts the site's snapshot row.
func (s *PostgresStore) Save(ctx context.Context, snap conditions.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO condition_snapshots (site, id, taken_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (site) DO UPDATE
			SET id = EXCLUDED.id, taken_at = EXCLUDED.taken_at, payload = EXCLUDED.payload`,
		s.site, snap.ID, snap.Timestamp, payload)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Latest loads the site's snapshot row.
func (s *PostgresStore) Latest(ctx context.Context) (conditions.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM condition_snapshots WHERE site = $1`, s.site).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return conditions.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return conditions.Snapshot{}, fmt.Errorf("query latest snapshot: %w", err)
	}

	var snap conditions.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return conditions.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
