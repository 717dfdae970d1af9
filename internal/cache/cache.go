// Package cache provides a small TTL key-value cache used to short-circuit
// leaderboard recomputation. The cache is an optimization only: every caller
// must be correct with the Noop implementation, which always misses.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// KV is a get/set/delete cache keyed by string. GetJSON reports a miss with
// ok=false rather than an error; expired rows count as misses.
type KV interface {
	GetJSON(key string, dest any) (bool, error)
	SetJSON(key string, value any, ttl time.Duration) error
	Del(key string) error
}

type store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a KV backed by the kv_cache table.
func New(db *sql.DB) KV {
	return &store{db: db}
}

func (s *store) GetJSON(key string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	var expiresAt int64
	err := s.db.QueryRow(`SELECT value, expires_at FROM kv_cache WHERE key = ?`, key).Scan(&value, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	if time.Now().Unix() >= expiresAt {
		// Lazy expiry: drop the stale row and report a miss.
		if _, err := s.db.Exec(`DELETE FROM kv_cache WHERE key = ?`, key); err != nil {
			log.Warn("Failed to evict expired cache row", "key", key, "error", err)
		}
		return false, nil
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

func (s *store) SetJSON(key string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO kv_cache (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, string(raw), time.Now().Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (s *store) Del(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM kv_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache key %s: %w", key, err)
	}
	return nil
}

// Noop is the degraded mode used when caching is disabled or unconfigured:
// every read misses, every write succeeds silently.
type Noop struct{}

// NewNoop creates a KV that never hits.
func NewNoop() KV {
	return Noop{}
}

func (Noop) GetJSON(string, any) (bool, error) { return false, nil }

func (Noop) SetJSON(string, any, time.Duration) error { return nil }

func (Noop) Del(string) error { return nil }
