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

type Server struct {
	Challenges     challenge.ChallengeStore
	Duels          duel.DuelStore
	Invites        invite.InviteStore
	Leaderboard    *leaderboard.Service
	Verifier       identity.Verifier
	KV             cache.KV
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
