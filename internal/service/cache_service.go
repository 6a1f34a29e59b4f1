package service

import (
	"context"
	"encoding/json"

	"evote-api/internal/domain"
	"evote-api/pkg/redis"

	"go.uber.org/zap"
)

// CacheService provides cache-aside helpers for the voting read paths.
// All methods are safe to call with a nil redis client; they degrade to the
// database fallback so the platform runs without Redis.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// GetResultsWithCache retrieves a full tally with the cache-aside pattern
func (c *CacheService) GetResultsWithCache(ctx context.Context, electionID string, dbFallback func(ctx context.Context) (*domain.ElectionResults, error)) (*domain.ElectionResults, error) {
	if c.redis == nil {
		return dbFallback(ctx)
	}

	cacheKey := c.redis.KeyBuilder.KeyElectionResults(electionID)

	cachedData, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cachedData != "" {
		var results domain.ElectionResults
		if marshalErr := json.Unmarshal([]byte(cachedData), &results); marshalErr == nil {
			c.logger.Debug("Results cache hit", zap.String("election_id", electionID))
			return &results, nil
		}
		c.logger.Warn("Results cache corrupted, falling back to database",
			zap.String("election_id", electionID))
	}

	results, err := dbFallback(ctx)
	if err != nil {
		return nil, err
	}

	if data, marshalErr := json.Marshal(results); marshalErr == nil {
		_ = c.redis.Set(ctx, cacheKey, string(data), redis.TTLResults)
	}

	return results, nil
}

// HasVotedWithCache checks whether a voter already voted, cache first
func (c *CacheService) HasVotedWithCache(ctx context.Context, electionID, voterID string, dbFallback func(ctx context.Context) (bool, error)) (bool, error) {
	if c.redis == nil {
		return dbFallback(ctx)
	}

	cacheKey := c.redis.KeyBuilder.KeyUserVoted(electionID, voterID)

	exists, err := c.redis.Exists(ctx, cacheKey)
	if err == nil && exists > 0 {
		return true, nil
	}
	if err != nil {
		c.logger.Warn("Vote status cache error, falling back to database",
			zap.String("election_id", electionID),
			zap.Error(err))
	}

	voted, err := dbFallback(ctx)
	if err != nil {
		return false, err
	}

	// Only a positive result is cacheable: votes are immutable once cast,
	// while "has not voted" can change at any moment.
	if voted {
		_ = c.redis.Set(ctx, cacheKey, "1", redis.TTLUserVote)
	}

	return voted, nil
}

// MarkVoted records a cast vote in the cache
func (c *CacheService) MarkVoted(ctx context.Context, electionID, voterID string) {
	if c.redis == nil {
		return
	}
	cacheKey := c.redis.KeyBuilder.KeyUserVoted(electionID, voterID)
	if err := c.redis.Set(ctx, cacheKey, "1", redis.TTLUserVote); err != nil {
		c.logger.Warn("Failed to cache vote status",
			zap.String("election_id", electionID),
			zap.Error(err))
	}
}

// InvalidateElectionResults drops the cached tallies for one election
func (c *CacheService) InvalidateElectionResults(ctx context.Context, electionID string) {
	if c.redis == nil {
		return
	}
	err := c.redis.Delete(ctx,
		c.redis.KeyBuilder.KeyElectionResults(electionID),
		c.redis.KeyBuilder.KeyLiveResults(electionID),
	)
	if err != nil {
		c.logger.Warn("Failed to invalidate results cache",
			zap.String("election_id", electionID),
			zap.Error(err))
	}
}

// InvalidateElections drops election list and per-election caches after a
// status transition or an admin edit
func (c *CacheService) InvalidateElections(ctx context.Context, electionIDs ...string) {
	if c.redis == nil {
		return
	}
	keys := []string{c.redis.KeyBuilder.KeyElectionsAll()}
	for _, id := range electionIDs {
		keys = append(keys, c.redis.KeyBuilder.KeyElectionByID(id))
	}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		c.logger.Warn("Failed to invalidate election caches", zap.Error(err))
	}
}

// InvalidateEligibleCount drops the cached eligible-voter count after an
// assignment change
func (c *CacheService) InvalidateEligibleCount(ctx context.Context, electionID string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Delete(ctx, c.redis.KeyBuilder.KeyEligibleCount(electionID)); err != nil {
		c.logger.Warn("Failed to invalidate eligible count cache",
			zap.String("election_id", electionID),
			zap.Error(err))
	}
}
