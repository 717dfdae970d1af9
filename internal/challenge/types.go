package challenge

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// store handles all database operations for challenges and entries.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// AllSlug is the sentinel challenge scope meaning "all challenges combined".
const AllSlug = "all"

// Challenge is a named, possibly time-bounded competition with its own entry
// pool and leaderboard.
type Challenge struct {
	ID       string     `json:"id"`
	Slug     string     `json:"slug"`
	Name     string     `json:"name"`
	Status   string     `json:"status"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

// ErrNotFound means the referenced challenge does not exist.
var ErrNotFound = errors.New("challenge not found")
