package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache implements the key-value cache port over a local sqlite
// file. Entries carry an absolute expiry; expired rows read as misses.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (and if needed initializes) the cache database
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS analysis_cache (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expires_at ON analysis_cache(expires_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// Get returns the cached value for key, or ok=false on miss or expiry
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64

	row := c.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM analysis_cache WHERE key = ?`, key)
	if err := row.Scan(&value, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache read failed: %w", err)
	}

	if time.Now().Unix() >= expiresAt {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM analysis_cache WHERE key = ?`, key)
		return nil, false, nil
	}

	return value, true, nil
}

// SetWithTTL stores value under key for the given lifetime
func (c *SQLiteCache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).Unix()

	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO analysis_cache (key, value, expires_at) VALUES (?, ?, ?)`,
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

// Close releases the database handle
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
