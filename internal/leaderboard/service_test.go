package leaderboard_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jvossman/gloat/internal/cache"
	"github.com/jvossman/gloat/internal/challenge"
	"github.com/jvossman/gloat/internal/database"
	"github.com/jvossman/gloat/internal/leaderboard"
	"github.com/jvossman/gloat/internal/metrics"
	"github.com/jvossman/gloat/internal/profile"
	"github.com/jvossman/gloat/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc        *leaderboard.Service
	challenges challenge.ChallengeStore
	metrics    *metrics.Mock
	db         *sql.DB
}

// setupService wires a Service against a temporary in-memory database with
// two challenges and three seeded users.
func setupService(t *testing.T, kv cache.KV) (*fixture, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO profiles (id, display_name) VALUES
		('u1', 'Austin'),
		('u2', 'Justin'),
		('u3', 'Ivan')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT OR REPLACE INTO challenges (id, slug, name, status, ends_at) VALUES
		('c-all', 'all', 'All Time', 'active', NULL),
		('c-spring', 'spring-2024', 'Spring 2024', 'active', NULL),
		('c-winter', 'winter-2023', 'Winter 2023', 'archived', 1703980800)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO challenge_participants (challenge_id, user_id) VALUES
		('c-spring', 'u1'),
		('c-spring', 'u2'),
		('c-winter', 'u1'),
		('c-winter', 'u2')`)
	require.NoError(t, err)

	challenges := challenge.New(db)
	profiles := profile.New(db)
	m := metrics.NewMock()
	if kv == nil {
		kv = cache.New(db)
	}

	return &fixture{
		svc:        leaderboard.New(challenges, profiles, kv, m),
		challenges: challenges,
		metrics:    m,
		db:         db,
	}, dbTeardown
}

func seedEntry(t *testing.T, f *fixture, challengeID, userID string, isWin bool, percentile int) {
	t.Helper()
	require.NoError(t, f.challenges.InsertEntry(&ranking.Entry{
		ChallengeID: challengeID,
		UserID:      userID,
		OccurredAt:  time.Now(),
		IsWin:       isWin,
		Percentile:  percentile,
	}))
}

func TestLeaderboardJoinsProfiles(t *testing.T) {
	f, teardown := setupService(t, nil)
	defer teardown()

	seedEntry(t, f, "c-spring", "u1", true, 10)
	seedEntry(t, f, "c-spring", "u1", true, 40)
	seedEntry(t, f, "c-spring", "u2", true, 60)

	resp, err := f.svc.Leaderboard("spring-2024", "u1")
	require.NoError(t, err)

	assert.Equal(t, "spring-2024", resp.Challenge.Slug)
	assert.Equal(t, "Spring 2024", resp.Challenge.Name)
	require.Len(t, resp.Rows, 2)

	assert.Equal(t, 1, resp.Rows[0].Rank)
	assert.Equal(t, "Austin", resp.Rows[0].DisplayName)
	assert.Equal(t, 2, resp.Rows[0].Wins)
	assert.Equal(t, 2, resp.Rows[1].Rank)
	assert.Equal(t, "Justin", resp.Rows[1].DisplayName)
}

func TestLeaderboardRequiresMembership(t *testing.T) {
	f, teardown := setupService(t, nil)
	defer teardown()

	_, err := f.svc.Leaderboard("spring-2024", "u3")
	assert.ErrorIs(t, err, leaderboard.ErrForbidden)

	// The combined board has no membership gate.
	_, err = f.svc.Leaderboard("all", "u3")
	assert.NoError(t, err)
}

func TestLeaderboardUnknownChallenge(t *testing.T) {
	f, teardown := setupService(t, nil)
	defer teardown()

	_, err := f.svc.Leaderboard("nope", "u1")
	assert.ErrorIs(t, err, challenge.ErrNotFound)
}

func TestLeaderboardServesCachedCopyUntilInvalidated(t *testing.T) {
	f, teardown := setupService(t, nil)
	defer teardown()

	seedEntry(t, f, "c-spring", "u1", true, 10)

	resp, err := f.svc.Leaderboard("spring-2024", "u1")
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, 1, f.metrics.CacheMissCount)

	// New data is not visible through the cached copy.
	seedEntry(t, f, "c-spring", "u2", true, 20)

	resp, err = f.svc.Leaderboard("spring-2024", "u1")
	require.NoError(t, err)
	assert.Len(t, resp.Rows, 1)
	assert.Equal(t, 1, f.metrics.CacheHitCount)

	f.svc.Invalidate("spring-2024")

	resp, err = f.svc.Leaderboard("spring-2024", "u1")
	require.NoError(t, err)
	assert.Len(t, resp.Rows, 2)
	assert.Equal(t, 2, f.metrics.CacheMissCount)
}

func TestInvalidateAlsoDropsCombinedBoard(t *testing.T) {
	f, teardown := setupService(t, nil)
	defer teardown()

	seedEntry(t, f, "c-spring", "u1", true, 10)

	_, err := f.svc.Leaderboard("all", "u3")
	require.NoError(t, err)

	seedEntry(t, f, "c-winter", "u2", true, 20)
	f.svc.Invalidate("winter-2023")

	resp, err := f.svc.Leaderboard("all", "u3")
	require.NoError(t, err)
	assert.Len(t, resp.Rows, 2)
}

func TestLeaderboardWorksWithNoopCache(t *testing.T) {
	f, teardown := setupService(t, cache.NewNoop())
	defer teardown()

	seedEntry(t, f, "c-spring", "u1", true, 10)

	resp, err := f.svc.Leaderboard("spring-2024", "u1")
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)

	// Every read recomputes, so new entries show immediately.
	seedEntry(t, f, "c-spring", "u2", true, 20)
	resp, err = f.svc.Leaderboard("spring-2024", "u1")
	require.NoError(t, err)
	assert.Len(t, resp.Rows, 2)
}

func TestParticipantDetail(t *testing.T) {
	f, teardown := setupService(t, cache.NewNoop())
	defer teardown()

	seedEntry(t, f, "c-spring", "u1", true, 10)
	seedEntry(t, f, "c-spring", "u2", true, 5)
	seedEntry(t, f, "c-spring", "u2", true, 15)
	seedEntry(t, f, "c-winter", "u1", true, 20)

	detail, err := f.svc.ParticipantDetail("spring-2024", "u1", "u2")
	require.NoError(t, err)

	assert.Equal(t, "u1", detail.UserID)
	assert.Equal(t, "Austin", detail.Name)
	assert.Equal(t, 2, detail.Rank)
	assert.Equal(t, 1, detail.Wins)
	require.Len(t, detail.RankingHistory, 5)
	assert.Equal(t, 2, detail.RankingHistory[4].Position)

	// u2 shares both challenges with u1, so both ranks are visible.
	require.Len(t, detail.ChallengeHistory, 2)
	names := []string{detail.ChallengeHistory[0].ChallengeName, detail.ChallengeHistory[1].ChallengeName}
	assert.ElementsMatch(t, []string{"Spring 2024", "Winter 2023"}, names)
}

func TestParticipantDetailHistoryScopedToRequester(t *testing.T) {
	f, teardown := setupService(t, cache.NewNoop())
	defer teardown()

	seedEntry(t, f, "c-spring", "u1", true, 10)
	seedEntry(t, f, "c-winter", "u1", true, 20)

	// u3 shares no challenges with u1; nothing is visible.
	detail, err := f.svc.ParticipantDetail("all", "u1", "u3")
	require.NoError(t, err)
	assert.Empty(t, detail.ChallengeHistory)
}

func TestParticipantDetailUnknownUser(t *testing.T) {
	f, teardown := setupService(t, cache.NewNoop())
	defer teardown()

	detail, err := f.svc.ParticipantDetail("all", "ghost", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Participant", detail.Name)
	assert.Equal(t, 0, detail.Rank)
	assert.Empty(t, detail.ChallengeHistory)
}
