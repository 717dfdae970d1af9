package duel

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// store handles all database operations for duels.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// ScoringType decides how a completed duel determines its winner.
type ScoringType string

const (
	ScoringWinLoss    ScoringType = "win_loss"
	ScoringScoreBased ScoringType = "score_based"
)

// Valid reports whether the scoring type is one of the known values.
func (s ScoringType) Valid() bool {
	return s == ScoringWinLoss || s == ScoringScoreBased
}

// Status is the lifecycle state of a duel. Declined, cancelled and completed
// are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Action is a requested transition on a duel.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionDecline  Action = "decline"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

// Duel is a bilateral head-to-head challenge between two users.
type Duel struct {
	ID              string      `json:"id"`
	ChallengeID     string      `json:"challenge_id,omitempty"`
	ChallengerID    string      `json:"challenger_id"`
	ChallengedID    string      `json:"challenged_id"`
	ChallengerName  string      `json:"challenger_name,omitempty"`
	ChallengedName  string      `json:"challenged_name,omitempty"`
	ScoringType     ScoringType `json:"scoring_type"`
	Status          Status      `json:"status"`
	WinnerID        string      `json:"winner_id,omitempty"`
	ChallengerScore *int        `json:"challenger_score,omitempty"`
	ChallengedScore *int        `json:"challenged_score,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
}

// Participant reports whether the user is either side of the duel.
func (d *Duel) Participant(userID string) bool {
	return userID == d.ChallengerID || userID == d.ChallengedID
}

// CompleteInput carries the fields a complete action may require, depending
// on the duel's scoring type.
type CompleteInput struct {
	WinnerID        string
	ChallengerScore *int
	ChallengedScore *int
}

var (
	// ErrNotFound means the referenced duel does not exist.
	ErrNotFound = errors.New("duel not found")
	// ErrWrongActor means the requesting user may not perform this transition.
	ErrWrongActor = errors.New("actor not allowed for this transition")
	// ErrWrongState means the duel is not in a state the transition accepts.
	// The conditional store update also reports it when a concurrent
	// transition won the race.
	ErrWrongState = errors.New("duel is not in the required state")
	// ErrInvalidInput covers missing or malformed transition fields.
	ErrInvalidInput = errors.New("invalid duel input")
)
