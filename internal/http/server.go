package http

import (
	"net/http"

	"github.com/jvossman/gloat/internal/cache"
	"github.com/jvossman/gloat/internal/challenge"
	"github.com/jvossman/gloat/internal/config"
	"github.com/jvossman/gloat/internal/duel"
	"github.com/jvossman/gloat/internal/identity"
	"github.com/jvossman/gloat/internal/invite"
	"github.com/jvossman/gloat/internal/leaderboard"
	"github.com/jvossman/gloat/internal/metrics"
	"github.com/jvossman/gloat/internal/notifier"
	"github.com/jvossman/gloat/internal/pubsub"
)

func NewServer(
	challenges challenge.ChallengeStore,
	duels duel.DuelStore,
	invites invite.InviteStore,
	board *leaderboard.Service,
	verifier identity.Verifier,
	kv cache.KV,
	metricsSvc metrics.Metrics,
	metricsHandler http.Handler,
	cfg config.Config,
	notifier notifier.Notifier,
	pubsub pubsub.PubSubClient,
) *Server {
	server := &Server{
		Challenges:     challenges,
		Duels:          duels,
		Invites:        invites,
		Leaderboard:    board,
		Verifier:       verifier,
		KV:             kv,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Authenticated routes add the auth middleware, which resolves the bearer
	// token to a user id before the handler runs.
	auth := authMiddleware(s.Verifier)
	timed := metricsMiddleware(s.Metrics)

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("GET /api/challenges", Chain(s.ListChallengesHandler(), paramsMiddleware, timed, auth))
	s.Router.Handle("POST /api/challenges/join", Chain(s.JoinChallengeHandler(), paramsMiddleware, timed, auth))
	s.Router.Handle("GET /api/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware, timed, auth))
	s.Router.Handle("POST /api/entries", Chain(s.CreateEntryHandler(), paramsMiddleware, timed, auth))
	s.Router.Handle("GET /api/duels", Chain(s.ListDuelsHandler(), paramsMiddleware, timed, auth))
	s.Router.Handle("POST /api/duels", Chain(s.CreateDuelHandler(), paramsMiddleware, timed, auth))
	s.Router.Handle("GET /api/duels/{id}", Chain(s.GetDuelHandler(), paramsMiddleware, timed, auth))
	s.Router.Handle("PATCH /api/duels/{id}", Chain(s.DuelActionHandler(), paramsMiddleware, timed, auth))
	s.Router.Handle("GET /api/participants/{userId}", Chain(s.ParticipantDetailHandler(), paramsMiddleware, timed, auth))

	// Invite routes are public: the whole point is that the holder has no
	// account yet.
	s.Router.Handle("GET /api/invites/{token}", Chain(s.GetInviteHandler(), paramsMiddleware))
	s.Router.Handle("POST /api/invites/{token}/claim", Chain(s.ClaimInviteHandler(), paramsMiddleware))

	// Pub/Sub push subscriptions deliver here.
	s.Router.Handle("POST /pubsub/events", Chain(s.PubSubEventsHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
