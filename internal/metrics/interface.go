package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncLeaderboardRequests()
	IncCacheHits()
	IncCacheMisses()
	IncEntriesLogged()
	IncDuelTransitions(action string)
	IncNotifSent()
	IncNotifFailed()
	ObserveRequestDuration(seconds float64)
	SetStartupTime(seconds float64)
}
