package service

import (
	"context"
	"sync"
	"time"

	"evote-api/internal/repository"
	"evote-api/pkg/logger"
)

// LifecycleService owns election status transitions. It is the only writer
// of the status field besides the manual-end operation: a bulk sweep moves
// Upcoming elections to Ongoing once their start date passes and Ongoing
// elections to Ended once their end date passes. Ended is absorbing.
//
// The sweep runs once at Start and then on every tick. Between ticks a
// displayed status can lag wall-clock time by up to the interval; request
// paths read the persisted field and never recompute it.
type LifecycleService struct {
	elections repository.ElectionRepository
	cache     *CacheService
	logger    *logger.Logger
	interval  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewLifecycleService creates a lifecycle service. now is injectable so tests
// can drive the sweep with a fixed clock.
func NewLifecycleService(elections repository.ElectionRepository, cache *CacheService, logger *logger.Logger, interval time.Duration) *LifecycleService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &LifecycleService{
		elections: elections,
		cache:     cache,
		logger:    logger,
		interval:  interval,
		now:       time.Now,
	}
}

// WithClock overrides the clock, for tests
func (s *LifecycleService) WithClock(now func() time.Time) *LifecycleService {
	s.now = now
	return s
}

// ReconcileElectionStatuses runs one sweep pass at the given instant.
// Running it repeatedly with the same now is a no-op after the first pass.
func (s *LifecycleService) ReconcileElectionStatuses(ctx context.Context, now time.Time) error {
	started, err := s.elections.MarkOngoing(ctx, now)
	if err != nil {
		return err
	}

	ended, err := s.elections.MarkEnded(ctx, now)
	if err != nil {
		return err
	}

	if started > 0 || ended > 0 {
		s.cache.InvalidateElections(ctx)
		s.logger.WithFields(map[string]interface{}{
			"started": started,
			"ended":   ended,
		}).Info("Election statuses updated")
	}

	return nil
}

// Start runs a sweep immediately, then on every tick until Stop
func (s *LifecycleService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	if err := s.ReconcileElectionStatuses(ctx, s.now()); err != nil {
		// A failed initial sweep is not fatal; the next tick retries.
		s.logger.WithError(err).Error("Initial election status sweep failed")
	}

	go s.run(runCtx)

	s.logger.WithField("interval", s.interval.String()).Info("Election lifecycle sweeper started")
	return nil
}

// Stop halts the ticker and waits for the sweep goroutine to exit
func (s *LifecycleService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	s.cancel()

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("Election lifecycle sweeper stopped")
	return nil
}

func (s *LifecycleService) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := s.ReconcileElectionStatuses(sweepCtx, s.now()); err != nil {
				// Log and keep going; the next tick retries unconditionally.
				s.logger.WithError(err).Error("Election status sweep failed")
			}
			cancel()
		}
	}
}
