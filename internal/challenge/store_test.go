package challenge_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jvossman/gloat/internal/challenge"
	"github.com/jvossman/gloat/internal/database"
	"github.com/jvossman/gloat/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (challenge.ChallengeStore, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO profiles (id, display_name) VALUES
		('u1', 'User One'),
		('u2', 'User Two')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT OR REPLACE INTO challenges (id, slug, name, status) VALUES
		('c-all', 'all', 'All Time', 'active'),
		('c-spring', 'spring', 'Spring Shred', 'active'),
		('c-old', 'winter', 'Winter Warrior', 'archived')`)
	require.NoError(t, err)

	return challenge.New(db), db, dbTeardown
}

func TestAllChallengeExistsOnFreshDatabase(t *testing.T) {
	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer dbTeardown()

	// Migrations alone must provide the combined scope; a fresh
	// deployment serves the default leaderboard without seeding.
	c, err := challenge.New(db).GetBySlug(challenge.AllSlug)
	require.NoError(t, err)
	assert.Equal(t, "All Time", c.Name)
	assert.Equal(t, "active", c.Status)
}

func TestGetBySlug(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	c, err := store.GetBySlug("spring")
	require.NoError(t, err)
	assert.Equal(t, "c-spring", c.ID)
	assert.Equal(t, "Spring Shred", c.Name)

	_, err = store.GetBySlug("nope")
	assert.ErrorIs(t, err, challenge.ErrNotFound)
}

func TestListActive(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	challenges, err := store.ListActive()
	require.NoError(t, err)
	assert.Len(t, challenges, 2)
	for _, c := range challenges {
		assert.Equal(t, "active", c.Status)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	created, err := store.Join("c-spring", "u1")
	require.NoError(t, err)
	assert.True(t, created)

	// Joining again is not an error and creates no second row.
	created, err = store.Join("c-spring", "u1")
	require.NoError(t, err)
	assert.False(t, created)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM challenge_participants WHERE challenge_id = 'c-spring' AND user_id = 'u1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ok, err := store.IsParticipant("c-spring", "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsParticipant("c-spring", "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParticipantChallengeIDs(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	_, err := store.Join("c-spring", "u1")
	require.NoError(t, err)
	_, err = store.Join("c-all", "u1")
	require.NoError(t, err)

	ids, err := store.ParticipantChallengeIDs("u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c-spring", "c-all"}, ids)
}

func TestInsertAndGetEntries(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	occurred := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	e := &ranking.Entry{
		ChallengeID: "c-spring",
		UserID:      "u1",
		OccurredAt:  occurred,
		IsWin:       true,
		Percentile:  12,
		Notes:       "morning session",
	}
	require.NoError(t, store.InsertEntry(e))
	assert.NotEmpty(t, e.ID)

	entries, err := store.GetEntries("c-spring", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].UserID)
	assert.True(t, entries[0].IsWin)
	assert.Equal(t, 12, entries[0].Percentile)
	assert.Equal(t, occurred.Unix(), entries[0].OccurredAt.Unix())
	assert.Equal(t, "morning session", entries[0].Notes)
}

func TestGetEntriesWindowIsClosedOpen(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		id string
		at time.Time
	}{
		{"before", start.Add(-time.Second)},
		{"at-start", start},
		{"inside", start.AddDate(0, 0, 15)},
		{"at-end", end},
	} {
		require.NoError(t, store.InsertEntry(&ranking.Entry{
			ID:          tc.id,
			ChallengeID: "c-spring",
			UserID:      "u1",
			OccurredAt:  tc.at,
			Percentile:  50,
		}))
	}

	entries, err := store.GetEntries("c-spring", start, end)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "at-start", entries[0].ID)
	assert.Equal(t, "inside", entries[1].ID)
}

func TestGetEntriesAllChallenges(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.InsertEntry(&ranking.Entry{ChallengeID: "c-spring", UserID: "u1", Percentile: 10}))
	require.NoError(t, store.InsertEntry(&ranking.Entry{ChallengeID: "c-old", UserID: "u2", Percentile: 20}))

	entries, err := store.GetEntries("", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
