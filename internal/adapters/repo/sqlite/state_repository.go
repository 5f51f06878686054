// Package sqlite persists slideshow state in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/mmwall/internal/domain"
	"github.com/bnema/mmwall/internal/ports"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

type StateRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ ports.StateRepository = (*StateRepository)(nil)

// Open creates the database at path if needed. File databases run in WAL mode.
func Open(path string) (*StateRepository, error) {
	connStr := path
	if path == memoryPath {
		connStr = "file::memory:?cache=shared"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == memoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != memoryPath {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	r := &StateRepository{db: db}
	if err := r.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return r, nil
}

func (r *StateRepository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS slideshow_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		collection_fingerprint TEXT NOT NULL,
		ledger_fingerprint TEXT NOT NULL,
		pool_fingerprint TEXT NOT NULL,
		pool_bucket INTEGER NOT NULL,
		current_index INTEGER NOT NULL,
		current_url TEXT NOT NULL,
		history_cursor INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pool_members (
		position INTEGER PRIMARY KEY,
		url TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS navigation_history (
		position INTEGER PRIMARY KEY,
		pool_index INTEGER NOT NULL,
		url TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recent_shown (
		position INTEGER PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		shown_at INTEGER NOT NULL
	);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

func (r *StateRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.Close()
}

func (r *StateRepository) Load(ctx context.Context) (domain.SlideshowState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		state     domain.SlideshowState
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT collection_fingerprint, ledger_fingerprint, pool_fingerprint, pool_bucket,
			current_index, current_url, history_cursor, updated_at
		FROM slideshow_state WHERE id = 1
	`).Scan(
		&state.CollectionFingerprint, &state.LedgerFingerprint, &state.PoolFingerprint, &state.PoolBucket,
		&state.CurrentIndex, &state.CurrentURL, &state.HistoryCursor, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SlideshowState{}, domain.ErrStateNotFound
	}
	if err != nil {
		return domain.SlideshowState{}, fmt.Errorf("query slideshow state: %w", err)
	}
	state.UpdatedAt = fromUnixNano(updatedAt)

	if state.PoolURLs, err = r.loadPool(ctx); err != nil {
		return domain.SlideshowState{}, err
	}
	if state.History, err = r.loadHistory(ctx); err != nil {
		return domain.SlideshowState{}, err
	}
	if state.Recent, err = r.loadRecent(ctx); err != nil {
		return domain.SlideshowState{}, err
	}

	return state, nil
}

func (r *StateRepository) loadPool(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT url FROM pool_members ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query pool members: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan pool member: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

func (r *StateRepository) loadHistory(ctx context.Context) ([]domain.NavigationEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT pool_index, url, recorded_at FROM navigation_history ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query navigation history: %w", err)
	}
	defer rows.Close()

	var entries []domain.NavigationEntry
	for rows.Next() {
		var (
			entry      domain.NavigationEntry
			recordedAt int64
		)
		if err := rows.Scan(&entry.Index, &entry.URL, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan navigation entry: %w", err)
		}
		entry.RecordedAt = fromUnixNano(recordedAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *StateRepository) loadRecent(ctx context.Context) ([]domain.RecencyEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT url, shown_at FROM recent_shown ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query recently shown: %w", err)
	}
	defer rows.Close()

	var entries []domain.RecencyEntry
	for rows.Next() {
		var (
			entry   domain.RecencyEntry
			shownAt int64
		)
		if err := rows.Scan(&entry.URL, &shownAt); err != nil {
			return nil, fmt.Errorf("scan recently shown: %w", err)
		}
		entry.ShownAt = fromUnixNano(shownAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Save replaces the stored snapshot in a single transaction.
func (r *StateRepository) Save(ctx context.Context, state domain.SlideshowState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO slideshow_state (
			id, collection_fingerprint, ledger_fingerprint, pool_fingerprint, pool_bucket,
			current_index, current_url, history_cursor, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		state.CollectionFingerprint, state.LedgerFingerprint, state.PoolFingerprint, state.PoolBucket,
		state.CurrentIndex, state.CurrentURL, state.HistoryCursor, toUnixNano(state.UpdatedAt),
	); err != nil {
		return fmt.Errorf("save slideshow state: %w", err)
	}

	for _, table := range []string{"pool_members", "navigation_history", "recent_shown"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, url := range state.PoolURLs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO pool_members (position, url) VALUES (?, ?)`, i, url); err != nil {
			return fmt.Errorf("save pool member: %w", err)
		}
	}
	for i, entry := range state.History {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO navigation_history (position, pool_index, url, recorded_at) VALUES (?, ?, ?, ?)`,
			i, entry.Index, entry.URL, toUnixNano(entry.RecordedAt),
		); err != nil {
			return fmt.Errorf("save navigation entry: %w", err)
		}
	}
	for i, entry := range state.Recent {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO recent_shown (position, url, shown_at) VALUES (?, ?, ?)`,
			i, entry.URL, toUnixNano(entry.ShownAt),
		); err != nil {
			return fmt.Errorf("save recently shown: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
