package challenge

import (
	"sync"
	"time"

	"github.com/jvossman/gloat/internal/ranking"
)

// MockStore is a mock implementation of the ChallengeStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetBySlugFunc               func(slug string) (*Challenge, error)
	ListActiveFunc              func() ([]Challenge, error)
	ListByIDsFunc               func(ids []string) ([]Challenge, error)
	JoinFunc                    func(challengeID, userID string) (bool, error)
	IsParticipantFunc           func(challengeID, userID string) (bool, error)
	ParticipantChallengeIDsFunc func(userID string) ([]string, error)
	InsertEntryFunc             func(e *ranking.Entry) error
	GetEntriesFunc              func(challengeID string, from, to time.Time) ([]ranking.Entry, error)

	// Call records
	JoinCalls []struct {
		ChallengeID string
		UserID      string
	}
	InsertEntryCalls []*ranking.Entry
	GetEntriesCalls  []struct {
		ChallengeID string
		From, To    time.Time
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) GetBySlug(slug string) (*Challenge, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(slug)
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListActive() ([]Challenge, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc()
	}
	return nil, nil
}

func (m *MockStore) ListByIDs(ids []string) ([]Challenge, error) {
	if m.ListByIDsFunc != nil {
		return m.ListByIDsFunc(ids)
	}
	return nil, nil
}

func (m *MockStore) Join(challengeID, userID string) (bool, error) {
	m.mu.Lock()
	m.JoinCalls = append(m.JoinCalls, struct {
		ChallengeID string
		UserID      string
	}{challengeID, userID})
	m.mu.Unlock()
	if m.JoinFunc != nil {
		return m.JoinFunc(challengeID, userID)
	}
	return true, nil
}

func (m *MockStore) IsParticipant(challengeID, userID string) (bool, error) {
	if m.IsParticipantFunc != nil {
		return m.IsParticipantFunc(challengeID, userID)
	}
	return false, nil
}

func (m *MockStore) ParticipantChallengeIDs(userID string) ([]string, error) {
	if m.ParticipantChallengeIDsFunc != nil {
		return m.ParticipantChallengeIDsFunc(userID)
	}
	return nil, nil
}

func (m *MockStore) InsertEntry(e *ranking.Entry) error {
	m.mu.Lock()
	m.InsertEntryCalls = append(m.InsertEntryCalls, e)
	m.mu.Unlock()
	if m.InsertEntryFunc != nil {
		return m.InsertEntryFunc(e)
	}
	return nil
}

func (m *MockStore) GetEntries(challengeID string, from, to time.Time) ([]ranking.Entry, error) {
	m.mu.Lock()
	m.GetEntriesCalls = append(m.GetEntriesCalls, struct {
		ChallengeID string
		From, To    time.Time
	}{challengeID, from, to})
	m.mu.Unlock()
	if m.GetEntriesFunc != nil {
		return m.GetEntriesFunc(challengeID, from, to)
	}
	return nil, nil
}
