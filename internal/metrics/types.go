package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	LeaderboardRequests prometheus.Counter
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	EntriesLogged       prometheus.Counter
	DuelTransitions     *prometheus.CounterVec
	NotifSent           prometheus.Counter
	NotifFailed         prometheus.Counter
	RequestDuration     prometheus.Histogram
	StartupTimeSeconds  prometheus.Gauge
}
