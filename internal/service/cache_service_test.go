package service

import (
	"context"
	"testing"

	"evote-api/internal/domain"
	"evote-api/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *CacheService) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "development", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewCacheService(client, zap.NewNop())
}

func TestGetResultsWithCache_FallbackThenHit(t *testing.T) {
	_, cache := setupCache(t)
	ctx := context.Background()

	calls := 0
	fallback := func(ctx context.Context) (*domain.ElectionResults, error) {
		calls++
		return &domain.ElectionResults{ElectionID: "e1", TotalVotes: 7}, nil
	}

	results, err := cache.GetResultsWithCache(ctx, "e1", fallback)
	require.NoError(t, err)
	assert.Equal(t, 7, results.TotalVotes)
	assert.Equal(t, 1, calls)

	// Second read is served from the cache
	results, err = cache.GetResultsWithCache(ctx, "e1", fallback)
	require.NoError(t, err)
	assert.Equal(t, 7, results.TotalVotes)
	assert.Equal(t, 1, calls)
}

func TestGetResultsWithCache_ExpiryRefetches(t *testing.T) {
	mr, cache := setupCache(t)
	ctx := context.Background()

	calls := 0
	fallback := func(ctx context.Context) (*domain.ElectionResults, error) {
		calls++
		return &domain.ElectionResults{ElectionID: "e1"}, nil
	}

	_, err := cache.GetResultsWithCache(ctx, "e1", fallback)
	require.NoError(t, err)

	mr.FastForward(redis.TTLResults * 2)

	_, err = cache.GetResultsWithCache(ctx, "e1", fallback)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestHasVotedWithCache_OnlyCachesPositive(t *testing.T) {
	_, cache := setupCache(t)
	ctx := context.Background()

	voted := false
	calls := 0
	fallback := func(ctx context.Context) (bool, error) {
		calls++
		return voted, nil
	}

	// Negative results bypass the cache every time
	got, err := cache.HasVotedWithCache(ctx, "e1", "u1", fallback)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = cache.HasVotedWithCache(ctx, "e1", "u1", fallback)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, 2, calls)

	// A positive result sticks
	voted = true
	got, err = cache.HasVotedWithCache(ctx, "e1", "u1", fallback)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, 3, calls)

	got, err = cache.HasVotedWithCache(ctx, "e1", "u1", fallback)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, 3, calls, "positive result must come from the cache")
}

func TestMarkVoted_VisibleToHasVoted(t *testing.T) {
	_, cache := setupCache(t)
	ctx := context.Background()

	cache.MarkVoted(ctx, "e1", "u1")

	got, err := cache.HasVotedWithCache(ctx, "e1", "u1", func(ctx context.Context) (bool, error) {
		t.Fatal("fallback must not run after MarkVoted")
		return false, nil
	})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestInvalidateElectionResults(t *testing.T) {
	_, cache := setupCache(t)
	ctx := context.Background()

	calls := 0
	fallback := func(ctx context.Context) (*domain.ElectionResults, error) {
		calls++
		return &domain.ElectionResults{ElectionID: "e1"}, nil
	}

	_, err := cache.GetResultsWithCache(ctx, "e1", fallback)
	require.NoError(t, err)

	cache.InvalidateElectionResults(ctx, "e1")

	_, err = cache.GetResultsWithCache(ctx, "e1", fallback)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCacheService_NilClientDegrades(t *testing.T) {
	cache := NewCacheService(nil, zap.NewNop())
	ctx := context.Background()

	results, err := cache.GetResultsWithCache(ctx, "e1", func(ctx context.Context) (*domain.ElectionResults, error) {
		return &domain.ElectionResults{ElectionID: "e1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", results.ElectionID)

	voted, err := cache.HasVotedWithCache(ctx, "e1", "u1", func(ctx context.Context) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, voted)

	// Invalidation and marking are no-ops without Redis
	cache.MarkVoted(ctx, "e1", "u1")
	cache.InvalidateElections(ctx, "e1")
	cache.InvalidateElectionResults(ctx, "e1")
	cache.InvalidateEligibleCount(ctx, "e1")
}
