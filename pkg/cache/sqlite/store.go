package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists small JSON records keyed by name in a SQLite database. It
// backs the membership record and the exchange-rate snapshot. Freshness is a
// property of the stored value, not the store: readers validate timestamps
// inside the decoded record before trusting it, so concurrent refresh flows
// degrade to last-write-wins without locking.
type Store struct {
	db     *sql.DB
	hits   atomic.Int64
	misses atomic.Int64
}

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS records (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	stored_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Open creates a Store at the given database path.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open record db: %w", err)
	}

	if _, err := db.Exec(createRecordsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate record db: %w", err)
	}

	return &Store{db: db}, nil
}

// Get decodes the record stored under key into dest. It returns false on a
// miss or when the stored bytes no longer decode (treated as a miss, never
// an error, so a schema change cannot wedge a refresh).
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		s.misses.Add(1)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("record get: %w", err)
	}

	if err := json.Unmarshal(value, dest); err != nil {
		s.misses.Add(1)
		return false, nil
	}
	s.hits.Add(1)
	return true, nil
}

// Put stores val under key, replacing any previous record.
func (s *Store) Put(ctx context.Context, key string, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("record encode: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO records (key, value, stored_at) VALUES (?, ?, ?)`,
		key, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record put: %w", err)
	}
	return nil
}

// Delete removes the record stored under key, if any.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("record delete: %w", err)
	}
	return nil
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("record clear: %w", err)
	}
	return nil
}

// Stats reports record count and hit/miss counters.
func (s *Store) Stats(ctx context.Context) (entries, hits, misses int64, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&entries); err != nil {
		return 0, 0, 0, fmt.Errorf("record stats: %w", err)
	}
	return entries, s.hits.Load(), s.misses.Load(), nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
