// internal/infra/database/postgres_state_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStateStore persists per-scope engine state (ledger, seen-state,
// dismissed-set) as opaque documents in a single key/value table.
type PostgresStateStore struct {
	db *sql.DB
}

func NewPostgresStateStore(db *sql.DB) *PostgresStateStore {
	return &PostgresStateStore{db: db}
}

// EnsureSchema creates the backing table if it does not exist yet.
func (s *PostgresStateStore) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS engine_state (
                scope_key  VARCHAR(512) PRIMARY KEY,
                doc        TEXT NOT NULL,
                updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
              )`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error ensuring engine_state schema: %w", err)
	}
	return nil
}

// Get returns the stored document for a scope key. A missing row is not an
// error; callers treat it as empty state.
func (s *PostgresStateStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT doc FROM engine_state WHERE scope_key = $1`
	var doc string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error getting engine state for key %q: %w", key, err)
	}
	return doc, true, nil
}

// Set upserts the document for a scope key, refreshing its updated_at so
// the retention sweep keeps live scopes.
func (s *PostgresStateStore) Set(ctx context.Context, key string, value string) error {
	query := `INSERT INTO engine_state (scope_key, doc, updated_at)
               VALUES ($1, $2, NOW())
               ON CONFLICT (scope_key)
               DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("error setting engine state for key %q: %w", key, err)
	}
	return nil
}

// DeleteStale removes scope rows not touched since the cutoff. Used by the
// retention sweep to drop state of long-abandoned identities.
func (s *PostgresStateStore) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM engine_state WHERE updated_at < $1`
	res, err := s.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("error deleting stale engine state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading affected rows for stale delete: %w", err)
	}
	return affected, nil
}
