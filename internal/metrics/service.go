package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		LeaderboardRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gloat_leaderboard_requests_total",
			Help: "The total number of leaderboard requests served.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gloat_cache_hits_total",
			Help: "The total number of leaderboard cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gloat_cache_misses_total",
			Help: "The total number of leaderboard cache misses.",
		}),
		EntriesLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gloat_entries_logged_total",
			Help: "The total number of challenge entries logged.",
		}),
		DuelTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gloat_duel_transitions_total",
			Help: "The total number of duel state transitions, by action.",
		}, []string{"action"}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gloat_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gloat_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gloat_request_duration_seconds",
			Help:    "The duration of individual HTTP requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gloat_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.LeaderboardRequests,
		s.CacheHits,
		s.CacheMisses,
		s.EntriesLogged,
		s.DuelTransitions,
		s.NotifSent,
		s.NotifFailed,
		s.RequestDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncLeaderboardRequests() {
	s.LeaderboardRequests.Inc()
}

func (s *Service) IncCacheHits() {
	s.CacheHits.Inc()
}

func (s *Service) IncCacheMisses() {
	s.CacheMisses.Inc()
}

func (s *Service) IncEntriesLogged() {
	s.EntriesLogged.Inc()
}

func (s *Service) IncDuelTransitions(action string) {
	s.DuelTransitions.WithLabelValues(action).Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) ObserveRequestDuration(seconds float64) {
	s.RequestDuration.Observe(seconds)
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
