package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/adapters/cache"
	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/test/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	client := mocks.NewMockRedisClient()
	store := cache.NewRedisSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "abc", "user-1", time.Hour))
	assert.True(t, client.HasKey("session:abc"))
	assert.InDelta(t, time.Hour.Seconds(), client.TTL("session:abc").Seconds(), 5)

	ok, err := store.Exists(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Revoke(ctx, "abc"))
	ok, err = store.Exists(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, client.Calls["exists"])
}

func TestRedisSessionStore_UnknownSession(t *testing.T) {
	store := cache.NewRedisSessionStore(mocks.NewMockRedisClient())

	ok, err := store.Exists(context.Background(), "never-issued")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSessionStore_ExistsError(t *testing.T) {
	client := mocks.NewMockRedisClient()
	client.ExistsError = errors.New("connection refused")
	store := cache.NewRedisSessionStore(client)

	ok, err := store.Exists(context.Background(), "abc")

	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisStatsCache_MissThenHit(t *testing.T) {
	client := mocks.NewMockRedisClient()
	c := cache.NewRedisStatsCache(client)
	ctx := context.Background()

	stats, err := c.GetStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, stats)

	want := &domain.DashboardStats{
		TotalBooks:       12,
		AvailableBooks:   9,
		ActiveLoans:      3,
		PendingFines:     1,
		TotalFinesAmount: decimal.RequireFromString("2.50"),
	}
	require.NoError(t, c.SetStats(ctx, want, 30*time.Second))

	got, err := c.GetStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.TotalBooks, got.TotalBooks)
	assert.Equal(t, want.ActiveLoans, got.ActiveLoans)
	assert.True(t, want.TotalFinesAmount.Equal(got.TotalFinesAmount))
}

func TestRedisStatsCache_CorruptValue(t *testing.T) {
	client := mocks.NewMockRedisClient()
	client.SetKey("stats:dashboard", "{not json", time.Minute)
	c := cache.NewRedisStatsCache(client)

	stats, err := c.GetStats(context.Background())

	assert.Error(t, err)
	assert.Nil(t, stats)
}

func TestRedisStatsCache_GetError(t *testing.T) {
	client := mocks.NewMockRedisClient()
	client.GetError = errors.New("timeout")
	c := cache.NewRedisStatsCache(client)

	_, err := c.GetStats(context.Background())

	assert.Error(t, err)
}

func TestRedisSessionStore_RevokeUser(t *testing.T) {
	client := mocks.NewMockRedisClient()
	store := cache.NewRedisSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "a1", "user-a", time.Hour))
	require.NoError(t, store.Create(ctx, "a2", "user-a", time.Hour))
	require.NoError(t, store.Create(ctx, "b1", "user-b", time.Hour))
	assert.True(t, client.HasKey("user-sessions:user-a"))
	assert.InDelta(t, time.Hour.Seconds(), client.TTL("user-sessions:user-a").Seconds(), 5)

	require.NoError(t, store.RevokeUser(ctx, "user-a"))

	for _, id := range []string{"a1", "a2"} {
		ok, err := store.Exists(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok, id)
	}
	ok, err := store.Exists(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, client.HasKey("user-sessions:user-a"))

	// nothing issued
	require.NoError(t, store.RevokeUser(ctx, "user-c"))
}

func TestRedisSessionStore_RevokeUserError(t *testing.T) {
	client := mocks.NewMockRedisClient()
	store := cache.NewRedisSessionStore(client)
	require.NoError(t, store.Create(context.Background(), "a1", "user-a", time.Hour))
	client.DelError = errors.New("connection reset")

	err := store.RevokeUser(context.Background(), "user-a")

	assert.Error(t, err)
}
