// Package cache persists successful fetch results in a local SQLite database
// so repeated report runs can skip the remote API.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/logger"
	_ "modernc.org/sqlite"
)

const (
	// DefaultTTL is how long a stored response stays valid.
	DefaultTTL = time.Hour
	// FileName is the database file name inside the cache directory.
	FileName = "responses.db"
	// FilePermissions restricts the database to its owner.
	FilePermissions = 0o600
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("cache store is closed")

// Store keeps the raw items of fetched targets keyed by api, path and query.
// Each entry also records the endpoint that served it; a lookup for another
// endpoint misses and the next Put replaces the entry.
type Store struct {
	db    *sql.DB
	path  string
	ttl   time.Duration
	now   func() time.Time
	stats *Stats
}

// DefaultPath returns the database path under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}

	return filepath.Join(dir, "netscope", FileName), nil
}

// Open opens or creates the database at path and brings its schema up to
// date. A non-positive ttl selects DefaultTTL.
func Open(path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := prepare(db); err != nil {
		_ = db.Close()

		return nil, err
	}

	if err := os.Chmod(path, FilePermissions); err != nil {
		logger.Log.Debugf("Failed to restrict cache file permissions: %v", err)
	}

	logger.Log.Debugf("Response cache opened at %s (ttl %s)", path, ttl)

	return &Store{db: db, path: path, ttl: ttl, now: time.Now, stats: &Stats{}}, nil
}

// TTL returns how long entries stay fresh.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Stats returns the hit and miss counters of the store.
func (s *Store) Stats() *Stats {
	return s.stats
}

// Get returns the items stored for target by the public endpoint when they
// are younger than the TTL.
func (s *Store) Get(ctx context.Context, target gcp.Target) ([]gcp.RawItem, bool, error) {
	return s.get(ctx, "", target)
}

func (s *Store) get(ctx context.Context, endpoint string, target gcp.Target) ([]gcp.RawItem, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, ErrClosed
	}

	var (
		payload  []byte
		storedAt int64
	)

	query := `SELECT items_json, stored_at FROM responses
		WHERE api = ? AND path = ? AND query = ? AND endpoint = ?`
	logSQL(query, target.API, target.Path, target.Query, endpoint)

	err := s.db.QueryRowContext(ctx, query, target.API, target.Path, target.Query, endpoint).Scan(&payload, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		s.stats.recordMiss()

		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached response: %w", err)
	}

	age := s.now().Sub(time.Unix(storedAt, 0))
	if age > s.ttl {
		logger.Log.Tracef("Cached response for %s expired (age %s)", target, age.Round(time.Second))
		s.stats.recordMiss()

		return nil, false, nil
	}

	var items []gcp.RawItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached response: %w", err)
	}

	s.stats.recordHit()

	return items, true, nil
}

// Put stores the items of target as served by the public endpoint, replacing
// any previous entry.
func (s *Store) Put(ctx context.Context, target gcp.Target, items []gcp.RawItem, runID string) error {
	return s.put(ctx, "", target, items, runID)
}

func (s *Store) put(ctx context.Context, endpoint string, target gcp.Target, items []gcp.RawItem, runID string) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}

	if items == nil {
		items = []gcp.RawItem{}
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	query := `INSERT OR REPLACE INTO responses (api, path, query, kind, items_json, item_count, stored_at, run_id, endpoint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	logSQL(query, target.API, target.Path, target.Query, target.Kind, "<items>", len(items), s.now().Unix(), runID, endpoint)

	if _, err := s.db.ExecContext(ctx, query, target.API, target.Path, target.Query, string(target.Kind),
		payload, len(items), s.now().Unix(), runID, endpoint); err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}

	return nil
}

// Prune deletes expired entries and returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}

	cutoff := s.now().Add(-s.ttl).Unix()
	query := `DELETE FROM responses WHERE stored_at < ?`
	logSQL(query, cutoff)

	res, err := s.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}

	removed, _ := res.RowsAffected()
	logger.Log.Debugf("Pruned %d expired cache entries", removed)

	return removed, nil
}

// Clear removes every stored response.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}

	query := `DELETE FROM responses`
	logSQL(query)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	return nil
}

// Count returns the number of stored responses, expired ones included.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached responses: %w", err)
	}

	return n, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	logger.Log.Debug(s.stats.String())

	err := s.db.Close()
	s.db = nil

	return err
}

func logSQL(query string, args ...any) {
	logger.Log.Tracef("SQL: %s %v", query, args)
}
