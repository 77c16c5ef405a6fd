package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is the condensed result of one refresh cycle.
type Entry struct {
	CycleID         string    `json:"cycle_id"`
	FetchedAt       time.Time `json:"fetched_at"`
	Month           int       `json:"month"`
	Year            int       `json:"year"`
	PremiumUsed     int       `json:"premium_used"`
	PremiumLimit    int       `json:"premium_limit"`
	MonthSpendCents int64     `json:"month_spend_cents"`
	ItemCount       int       `json:"item_count"`
}

// Store records refresh snapshots so spend can be compared across time.
type Store struct {
	db *sql.DB
}

const createRefreshTable = `
CREATE TABLE IF NOT EXISTS refreshes (
	cycle_id TEXT PRIMARY KEY,
	fetched_at DATETIME NOT NULL,
	month INTEGER NOT NULL,
	year INTEGER NOT NULL,
	premium_used INTEGER NOT NULL,
	premium_limit INTEGER NOT NULL,
	month_spend_cents INTEGER NOT NULL,
	item_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_refreshes_time ON refreshes(fetched_at);
`

// Open creates a Store and runs auto-migration.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(createRefreshTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return &Store{db: db}, nil
}

// Record stores one refresh entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO refreshes
		 (cycle_id, fetched_at, month, year, premium_used, premium_limit, month_spend_cents, item_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CycleID, e.FetchedAt.UTC(), e.Month, e.Year,
		e.PremiumUsed, e.PremiumLimit, e.MonthSpendCents, e.ItemCount,
	)
	if err != nil {
		return fmt.Errorf("record refresh: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT cycle_id, fetched_at, month, year, premium_used, premium_limit, month_spend_cents, item_count
		 FROM refreshes ORDER BY fetched_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list refreshes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.CycleID, &e.FetchedAt, &e.Month, &e.Year,
			&e.PremiumUsed, &e.PremiumLimit, &e.MonthSpendCents, &e.ItemCount); err != nil {
			return nil, fmt.Errorf("scan refresh: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
