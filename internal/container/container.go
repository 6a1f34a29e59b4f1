package container

import (
	"context"
	"fmt"

	"evote-api/internal/config"
	"evote-api/internal/repository"
	"evote-api/internal/service"
	"evote-api/internal/service/auth"
	"evote-api/pkg/database"
	"evote-api/pkg/logger"
	"evote-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Repositories *repository.Repositories
	Services     *service.Services
}

// New creates the dependency injection container. Postgres is required;
// Redis is optional and the platform degrades to uncached reads without it.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	repos := &repository.Repositories{
		User:      repository.NewUserRepository(db),
		Election:  repository.NewElectionRepository(db),
		Candidate: repository.NewCandidateRepository(db),
		Vote:      repository.NewVoteRepository(db),
	}

	cache := service.NewCacheService(redisClient, log.Logger)

	services := &service.Services{
		Auth:      auth.NewService(repos.User, cfg.JWTSecret, cfg.TokenTTL, log),
		Users:     service.NewUserService(repos.User, repos.Election, repos.Candidate, repos.Vote, cache, log),
		Elections: service.NewElectionService(repos.Election, repos.Vote, cache, log),
		Lifecycle: service.NewLifecycleService(repos.Election, cache, log, cfg.SweepInterval),
		Candidacy: service.NewCandidateService(repos.Candidate, repos.Election, repos.Vote, log),
		Voting:    service.NewVotingService(repos.Vote, repos.Election, repos.Candidate, repos.User, cache, log),
		Admin:     service.NewAdminService(repos, redisClient, log),
	}

	return &Container{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		RedisClient:  redisClient,
		Repositories: repos,
		Services:     services,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if the Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// Close releases the container's connections
func (c *Container) Close(ctx context.Context) {
	if err := c.Services.Lifecycle.Stop(ctx); err != nil {
		c.Logger.WithError(err).Warn("Lifecycle sweeper did not stop cleanly")
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close Redis client")
		}
	}

	c.DB.Close()
}
