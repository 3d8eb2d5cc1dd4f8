// Copyright International Livestock Research Institute, 2026.

package enrich

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache is a durable store of raw service responses keyed by
// (service, query key). A hit short-circuits the network call; a miss
// stores the raw body before any field extraction, so response shaping
// can change without re-querying. Not-found responses (HTTP 404) are
// cached too, since "this DOI is not registered" is as stable an
// answer as any.
//
// The cache is safe for concurrent use: all access goes through one
// *sql.DB and writes are idempotent upserts, so a race between two
// workers resolving the same key loses one update but never tears a row.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the request cache at path, creating
// parent directories as needed.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening request cache: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		service    TEXT NOT NULL,
		key        TEXT NOT NULL,
		status     INTEGER NOT NULL,
		body       BLOB,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (service, key)
	)`)
	return err
}

// Get returns the cached response for (service, key), if any.
func (c *Cache) Get(ctx context.Context, service, key string) (body []byte, status int, ok bool, err error) {
	err = c.db.QueryRowContext(ctx,
		`SELECT status, body FROM responses WHERE service = ? AND key = ?`,
		service, key,
	).Scan(&status, &body)
	if err == sql.ErrNoRows {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("reading cache entry %s/%s: %w", service, key, err)
	}
	return body, status, true, nil
}

// Put stores a raw response, replacing any previous entry for the key.
func (c *Cache) Put(ctx context.Context, service, key string, status int, body []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO responses (service, key, status, body, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(service, key) DO UPDATE SET
			status=excluded.status, body=excluded.body, fetched_at=excluded.fetched_at`,
		service, key, status, body, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %s/%s: %w", service, key, err)
	}
	return nil
}

// Counts returns the number of cached responses per service.
func (c *Cache) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT service, count(*) FROM responses GROUP BY service ORDER BY service`)
	if err != nil {
		return nil, fmt.Errorf("counting cache entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var service string
		var n int
		if err := rows.Scan(&service, &n); err != nil {
			return nil, err
		}
		counts[service] = n
	}
	return counts, rows.Err()
}

// Prune deletes entries fetched more than maxAge ago and returns the
// number removed. External metadata drifts slowly; thirty days is a
// reasonable maxAge.
func (c *Cache) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM responses WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
