package leaderboard

import (
	"errors"
	"time"

	"github.com/jvossman/gloat/internal/cache"
	"github.com/jvossman/gloat/internal/challenge"
	"github.com/jvossman/gloat/internal/metrics"
	"github.com/jvossman/gloat/internal/profile"
	"github.com/jvossman/gloat/internal/ranking"
)

// Service orchestrates the ranking engine with profile lookups and the cache
// layer. It holds no mutable state of its own; every request recomputes from
// the stores unless a fresh cached response exists.
type Service struct {
	challenges challenge.ChallengeStore
	profiles   profile.ProfileStore
	kv         cache.KV
	metrics    metrics.Metrics
	now        func() time.Time
}

// ErrForbidden means the requester is not a participant of the challenge.
var ErrForbidden = errors.New("not a participant of this challenge")

// CacheTTL bounds leaderboard staleness together with eager invalidation on
// every entry log and first join.
const CacheTTL = 30 * time.Second

// Row is one display-ready leaderboard line: ranked stats joined with the
// user's profile. The store's native row shapes never cross this boundary.
type Row struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	AvatarPath  string  `json:"avatar_path,omitempty"`
	Rank        int     `json:"rank"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
	Top25Rate   float64 `json:"top25_rate"`
	Top50Rate   float64 `json:"top50_rate"`
}

// Response is the leaderboard payload for one challenge scope.
type Response struct {
	Challenge ChallengeRef `json:"challenge"`
	Rows      []Row        `json:"rows"`
}

// ChallengeRef identifies the challenge a response was computed for.
type ChallengeRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// HistoryItem is one cross-challenge rank record in a participant's history.
type HistoryItem struct {
	Rank          int    `json:"rank"`
	ChallengeName string `json:"challenge_name"`
	Date          string `json:"date,omitempty"`
}

// ParticipantDetail is the full profile view for one user in one scope.
type ParticipantDetail struct {
	UserID           string          `json:"user_id"`
	Name             string          `json:"name"`
	AvatarPath       string          `json:"avatar_path,omitempty"`
	Rank             int             `json:"rank"`
	Wins             int             `json:"wins"`
	WinRate          float64         `json:"win_rate"`
	Top25Rate        float64         `json:"top25_rate"`
	Top50Rate        float64         `json:"top50_rate"`
	RankingHistory   []ranking.Point `json:"ranking_history"`
	ChallengeHistory []HistoryItem   `json:"challenge_history"`
}
