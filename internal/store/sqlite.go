package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/no2-dashboard/internal/dashboard"
)

// SQLiteStore is a series cache that survives restarts.
type SQLiteStore struct {
	db         *sql.DB
	maxEntries int
	maxAge     time.Duration
	now        func() time.Time
}

// OpenSQLite opens or creates the cache database at path.
func OpenSQLite(path string, maxEntries int, maxAge time.Duration) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer; the scheduler and request handlers save concurrently.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS series_cache (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		saved_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_series_cache_saved_at ON series_cache(saved_at);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db, maxEntries: maxEntries, maxAge: maxAge, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSeries upserts the series for key and enforces retention.
func (s *SQLiteStore) SaveSeries(key string, result dashboard.SeriesResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode series: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	if _, err := tx.Exec(`
		INSERT INTO series_cache(key, payload, saved_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, saved_at=excluded.saved_at`,
		key, string(payload), now.UnixNano()); err != nil {
		return fmt.Errorf("save series %s: %w", key, err)
	}

	if s.maxAge > 0 {
		if _, err := tx.Exec(`DELETE FROM series_cache WHERE saved_at < ?`, now.Add(-s.maxAge).UnixNano()); err != nil {
			return fmt.Errorf("expire series: %w", err)
		}
	}
	if s.maxEntries > 0 {
		if _, err := tx.Exec(`
			DELETE FROM series_cache WHERE key NOT IN (
				SELECT key FROM series_cache ORDER BY saved_at DESC LIMIT ?
			)`, s.maxEntries); err != nil {
			return fmt.Errorf("trim series: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetLatest returns the cached series for key if it has not expired.
func (s *SQLiteStore) GetLatest(key string) (dashboard.SeriesResult, error) {
	var payload string
	var savedAt int64
	err := s.db.QueryRow(`SELECT payload, saved_at FROM series_cache WHERE key = ?`, key).Scan(&payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return dashboard.SeriesResult{}, ErrNotFound
	}
	if err != nil {
		return dashboard.SeriesResult{}, fmt.Errorf("load series %s: %w", key, err)
	}

	if s.maxAge > 0 && s.now().Sub(time.Unix(0, savedAt)) > s.maxAge {
		return dashboard.SeriesResult{}, ErrNotFound
	}

	var result dashboard.SeriesResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return dashboard.SeriesResult{}, fmt.Errorf("decode series %s: %w", key, err)
	}
	return result, nil
}
