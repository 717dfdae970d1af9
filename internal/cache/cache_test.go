package cache_test

import (
	"testing"
	"time"

	"github.com/jvossman/gloat/internal/cache"
	"github.com/jvossman/gloat/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupKV(t *testing.T) (cache.KV, func()) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	return cache.New(db), teardown
}

func TestSetGetDel(t *testing.T) {
	kv, teardown := setupKV(t)
	defer teardown()

	require.NoError(t, kv.SetJSON("k", payload{Name: "spring", Count: 3}, time.Minute))

	var got payload
	hit, err := kv.GetJSON("k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{Name: "spring", Count: 3}, got)

	require.NoError(t, kv.Del("k"))
	hit, err = kv.GetJSON("k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMissOnUnknownKey(t *testing.T) {
	kv, teardown := setupKV(t)
	defer teardown()

	var got payload
	hit, err := kv.GetJSON("absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestExpiredKeyMisses(t *testing.T) {
	kv, teardown := setupKV(t)
	defer teardown()

	require.NoError(t, kv.SetJSON("k", payload{Name: "old"}, -time.Second))

	var got payload
	hit, err := kv.GetJSON("k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSetOverwrites(t *testing.T) {
	kv, teardown := setupKV(t)
	defer teardown()

	require.NoError(t, kv.SetJSON("k", payload{Count: 1}, time.Minute))
	require.NoError(t, kv.SetJSON("k", payload{Count: 2}, time.Minute))

	var got payload
	hit, err := kv.GetJSON("k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, got.Count)
}

func TestNoopAlwaysMisses(t *testing.T) {
	kv := cache.NewNoop()
	require.NoError(t, kv.SetJSON("k", payload{Count: 1}, time.Minute))

	var got payload
	hit, err := kv.GetJSON("k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, kv.Del("k"))
}
