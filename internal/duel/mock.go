package duel

import "sync"

// MockStore is a mock implementation of the DuelStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateFunc      func(challengeID, challengerID, challengedID string, scoring ScoringType, notes string) (*Duel, error)
	GetFunc         func(duelID string) (*Duel, error)
	ListForUserFunc func(userID string, limit int) ([]*Duel, error)
	TransitionFunc  func(d *Duel, prev Status) error

	// Call records
	CreateCalls []struct {
		ChallengeID  string
		ChallengerID string
		ChallengedID string
		Scoring      ScoringType
		Notes        string
	}
	GetCalls        []string
	TransitionCalls []struct {
		Duel *Duel
		Prev Status
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Create(challengeID, challengerID, challengedID string, scoring ScoringType, notes string) (*Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, struct {
		ChallengeID  string
		ChallengerID string
		ChallengedID string
		Scoring      ScoringType
		Notes        string
	}{challengeID, challengerID, challengedID, scoring, notes})
	if m.CreateFunc != nil {
		return m.CreateFunc(challengeID, challengerID, challengedID, scoring, notes)
	}
	return &Duel{}, nil
}

func (m *MockStore) Get(duelID string) (*Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls = append(m.GetCalls, duelID)
	if m.GetFunc != nil {
		return m.GetFunc(duelID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListForUser(userID string, limit int) ([]*Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(userID, limit)
	}
	return nil, nil
}

func (m *MockStore) Transition(d *Duel, prev Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TransitionCalls = append(m.TransitionCalls, struct {
		Duel *Duel
		Prev Status
	}{d, prev})
	if m.TransitionFunc != nil {
		return m.TransitionFunc(d, prev)
	}
	return nil
}
