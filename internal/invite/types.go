package invite

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// store handles all database operations for invites.
type store struct {
	db *sql.DB
	mu sync.Mutex
}

// Status is the lifecycle state of an invite link.
type Status string

const (
	StatusPending   Status = "pending"
	StatusClaimed   Status = "claimed"
	StatusCompleted Status = "completed"
)

// Invite is a one-shot onboarding link issued for a named friend.
type Invite struct {
	ID          string     `json:"id"`
	Token       string     `json:"token"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email,omitempty"`
	Status      Status     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

var (
	// ErrNotFound means no invite exists for the token.
	ErrNotFound = errors.New("invite not found")
	// ErrExpired means the invite's expiry has passed.
	ErrExpired = errors.New("invite has expired")
	// ErrUsed means the invite was already consumed.
	ErrUsed = errors.New("invite has already been used")
	// ErrInvalidInput covers malformed claim fields.
	ErrInvalidInput = errors.New("invalid invite input")
)

// Usable reports whether the invite can still be claimed at the given time.
func (i *Invite) Usable(now time.Time) error {
	if now.After(i.ExpiresAt) {
		return ErrExpired
	}
	if i.Status == StatusCompleted {
		return ErrUsed
	}
	return nil
}
