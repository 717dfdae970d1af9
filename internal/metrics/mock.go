package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a no-op Metrics implementation that records call counts for tests.
type Mock struct {
	mu sync.Mutex

	LeaderboardRequestCount int
	CacheHitCount           int
	CacheMissCount          int
	EntryLoggedCount        int
	DuelTransitionCounts    map[string]int
	NotifSentCount          int
	NotifFailedCount        int
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{DuelTransitionCounts: make(map[string]int)}
}

func (m *Mock) IncLeaderboardRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LeaderboardRequestCount++
}

func (m *Mock) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHitCount++
}

func (m *Mock) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMissCount++
}

func (m *Mock) IncEntriesLogged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntryLoggedCount++
}

func (m *Mock) IncDuelTransitions(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuelTransitionCounts[action]++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifSentCount++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifFailedCount++
}

func (m *Mock) ObserveRequestDuration(float64) {}

func (m *Mock) SetStartupTime(float64) {}
