package challenge

import (
	"time"

	"github.com/jvossman/gloat/internal/ranking"
)

// ChallengeStore defines the interface for interacting with challenges,
// memberships and entries.
type ChallengeStore interface {
	GetBySlug(slug string) (*Challenge, error)
	ListActive() ([]Challenge, error)
	ListByIDs(ids []string) ([]Challenge, error)
	// Join records the user as a participant. Joining twice is not an error;
	// the boolean reports whether a new membership row was created.
	Join(challengeID, userID string) (bool, error)
	IsParticipant(challengeID, userID string) (bool, error)
	ParticipantChallengeIDs(userID string) ([]string, error)
	InsertEntry(e *ranking.Entry) error
	// GetEntries returns entries scoped to one challenge, or to all
	// challenges when challengeID is empty. A zero from/to leaves that side
	// of the [from, to) window unbounded.
	GetEntries(challengeID string, from, to time.Time) ([]ranking.Entry, error)
}
