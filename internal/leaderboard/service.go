package leaderboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jvossman/gloat/internal/cache"
	"github.com/jvossman/gloat/internal/challenge"
	"github.com/jvossman/gloat/internal/metrics"
	"github.com/jvossman/gloat/internal/profile"
	"github.com/jvossman/gloat/internal/ranking"
)

const (
	trendMonths   = 5
	historyLimit  = 5
	historyDateFm = "Jan 2, 2006"
)

// New creates a leaderboard Service.
func New(challenges challenge.ChallengeStore, profiles profile.ProfileStore, kv cache.KV, m metrics.Metrics) *Service {
	return &Service{
		challenges: challenges,
		profiles:   profiles,
		kv:         kv,
		metrics:    m,
		now:        time.Now,
	}
}

func cacheKey(slug string) string {
	return "leaderboard:" + slug
}

// Leaderboard returns the ranked board for one challenge scope. Only
// participants of the challenge may read it; the "all" scope is open to any
// authenticated user.
func (s *Service) Leaderboard(slug, requesterID string) (*Response, error) {
	s.metrics.IncLeaderboardRequests()

	ch, err := s.challenges.GetBySlug(slug)
	if err != nil {
		return nil, err
	}

	if slug != challenge.AllSlug {
		ok, err := s.challenges.IsParticipant(ch.ID, requesterID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	}

	var cached Response
	hit, err := s.kv.GetJSON(cacheKey(slug), &cached)
	if err != nil {
		log.Warn("Leaderboard cache read failed", "slug", slug, "error", err)
	}
	if hit {
		s.metrics.IncCacheHits()
		return &cached, nil
	}
	s.metrics.IncCacheMisses()

	rows, err := s.compute(ch)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Challenge: ChallengeRef{Slug: ch.Slug, Name: ch.Name},
		Rows:      rows,
	}
	if err := s.kv.SetJSON(cacheKey(slug), resp, CacheTTL); err != nil {
		// A failed cache write only costs the next request a recompute.
		log.Warn("Leaderboard cache write failed", "slug", slug, "error", err)
	}
	return resp, nil
}

// Invalidate drops the cached board for one scope plus the combined "all"
// scope, which aggregates every challenge and is stale whenever any of them
// changes.
func (s *Service) Invalidate(slug string) {
	for _, key := range []string{cacheKey(slug), cacheKey(challenge.AllSlug)} {
		if err := s.kv.Del(key); err != nil {
			log.Warn("Failed to invalidate leaderboard cache", "key", key, "error", err)
		}
	}
}

func (s *Service) compute(ch *challenge.Challenge) ([]Row, error) {
	scope := ch.ID
	if ch.Slug == challenge.AllSlug {
		scope = ""
	}
	entries, err := s.challenges.GetEntries(scope, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for %s: %w", ch.Slug, err)
	}

	stats := ranking.Compute(entries)

	userIDs := make([]string, len(stats))
	for i, st := range stats {
		userIDs[i] = st.UserID
	}
	profiles, err := s.profiles.GetMany(userIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(stats))
	for i, st := range stats {
		p := profiles[st.UserID]
		name := p.DisplayName
		if name == "" {
			name = "Participant"
		}
		rows[i] = Row{
			UserID:      st.UserID,
			DisplayName: name,
			AvatarPath:  p.AvatarPath,
			Rank:        st.Rank,
			Wins:        st.Wins,
			WinRate:     st.WinRate,
			Top25Rate:   st.Top25Rate,
			Top50Rate:   st.Top50Rate,
		}
	}
	return rows, nil
}

// ParticipantDetail returns one user's current stats in the given scope, a
// five month rank trend, and their recent ranks across the challenges the
// requester also belongs to.
func (s *Service) ParticipantDetail(slug, targetID, requesterID string) (*ParticipantDetail, error) {
	ch, err := s.challenges.GetBySlug(slug)
	if err != nil {
		return nil, err
	}

	scope := ch.ID
	if ch.Slug == challenge.AllSlug {
		scope = ""
	}

	p, err := s.profiles.Get(targetID)
	if err != nil && err != profile.ErrNotFound {
		return nil, err
	}

	detail := &ParticipantDetail{
		UserID:           targetID,
		Name:             "Participant",
		RankingHistory:   []ranking.Point{},
		ChallengeHistory: []HistoryItem{},
	}
	if p != nil {
		if p.DisplayName != "" {
			detail.Name = p.DisplayName
		}
		detail.AvatarPath = p.AvatarPath
	}

	entries, err := s.challenges.GetEntries(scope, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	stats := ranking.Compute(entries)
	st := ranking.StatOf(stats, targetID)
	detail.Rank = st.Rank
	detail.Wins = st.Wins
	detail.WinRate = st.WinRate
	detail.Top25Rate = st.Top25Rate
	detail.Top50Rate = st.Top50Rate

	buckets := ranking.MonthBuckets(s.now(), trendMonths)
	trendEntries, err := s.challenges.GetEntries(scope, buckets[0].Start, time.Time{})
	if err != nil {
		return nil, err
	}
	detail.RankingHistory = ranking.History(trendEntries, targetID, buckets)

	history, err := s.challengeHistory(targetID, requesterID)
	if err != nil {
		return nil, err
	}
	detail.ChallengeHistory = history

	return detail, nil
}

// challengeHistory collects the target's rank in each challenge shared with
// the requester. Sharing a challenge is what makes someone's record visible;
// ranks in challenges the requester never joined stay private.
func (s *Service) challengeHistory(targetID, requesterID string) ([]HistoryItem, error) {
	ids, err := s.challenges.ParticipantChallengeIDs(requesterID)
	if err != nil {
		return nil, err
	}
	shared, err := s.challenges.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	// Most recently ended first; open-ended challenges sort ahead of closed
	// ones so an active season always shows.
	sort.SliceStable(shared, func(i, j int) bool {
		a, b := shared[i].EndsAt, shared[j].EndsAt
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return a.After(*b)
		}
	})

	items := make([]HistoryItem, 0, historyLimit)
	for _, ch := range shared {
		if len(items) == historyLimit {
			break
		}
		entries, err := s.challenges.GetEntries(ch.ID, time.Time{}, time.Time{})
		if err != nil {
			return nil, err
		}
		rank := ranking.RankOf(ranking.Compute(entries), targetID)
		if rank == 0 {
			continue
		}
		item := HistoryItem{Rank: rank, ChallengeName: ch.Name}
		if ch.EndsAt != nil {
			item.Date = ch.EndsAt.Format(historyDateFm)
		}
		items = append(items, item)
	}
	return items, nil
}
