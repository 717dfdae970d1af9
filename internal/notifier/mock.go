package notifier

import (
	"sync"

	"github.com/jvossman/gloat/internal/duel"
	"github.com/jvossman/gloat/internal/leaderboard"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendDuelResultCalls  []*duel.Duel
	SendLeaderboardCalls []struct {
		ChallengeName string
		Rows          []leaderboard.Row
	}

	// Optional error injection
	SendDuelResultErr  error
	SendLeaderboardErr error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDuelResultCalls = nil
	m.SendLeaderboardCalls = nil
}

func (m *Mock) SendDuelResult(d *duel.Duel, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDuelResultCalls = append(m.SendDuelResultCalls, d)
	return m.SendDuelResultErr
}

func (m *Mock) SendLeaderboard(challengeName string, rows []leaderboard.Row, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, struct {
		ChallengeName string
		Rows          []leaderboard.Row
	}{challengeName, rows})
	return m.SendLeaderboardErr
}
