package service

import (
	"context"
	"strings"
	"time"

	"evote-api/internal/domain"
	"evote-api/internal/repository"
	"evote-api/pkg/errors"
	"evote-api/pkg/logger"

	"github.com/google/uuid"
)

// ElectionService manages elections: CRUD, the manual-end override and the
// guard rails around deletion
type ElectionService struct {
	elections repository.ElectionRepository
	votes     repository.VoteRepository
	cache     *CacheService
	logger    *logger.Logger
	now       func() time.Time
}

// NewElectionService creates a new election service
func NewElectionService(elections repository.ElectionRepository, votes repository.VoteRepository, cache *CacheService, logger *logger.Logger) *ElectionService {
	return &ElectionService{
		elections: elections,
		votes:     votes,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the clock, for tests
func (s *ElectionService) WithClock(now func() time.Time) *ElectionService {
	s.now = now
	return s
}

// List returns all elections, newest start date first
func (s *ElectionService) List(ctx context.Context) ([]*domain.Election, error) {
	elections, err := s.elections.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list elections", err)
	}
	return elections, nil
}

// Get returns one election
func (s *ElectionService) Get(ctx context.Context, id string) (*domain.Election, error) {
	election, err := s.elections.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load election", err)
	}
	if election == nil {
		return nil, errors.NewNotFoundError("Election not found")
	}
	return election, nil
}

// ListEligible returns the elections a user may vote in
func (s *ElectionService) ListEligible(ctx context.Context, userID string) ([]*domain.Election, error) {
	elections, err := s.elections.ListEligibleForUser(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list eligible elections", err)
	}
	return elections, nil
}

// Create creates an election. Status is derived from the dates once, here;
// every later transition belongs to the lifecycle sweep or the manual end.
func (s *ElectionService) Create(ctx context.Context, creatorID string, req *domain.CreateElectionRequest) (*domain.Election, error) {
	if err := validateElectionRequest(req.Title, req.Description, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	now := s.now()
	election := &domain.Election{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      domain.StatusForDates(now, req.StartDate, req.EndDate),
		CreatedBy:   creatorID,
	}

	if err := s.elections.Create(ctx, election); err != nil {
		return nil, errors.NewInternalError("Failed to create election", err)
	}

	s.cache.InvalidateElections(ctx, election.ID)
	s.logger.WithFields(map[string]interface{}{
		"election_id": election.ID,
		"status":      election.Status,
	}).Info("Election created")

	return election, nil
}

// Update rewrites title, description and dates. Ended elections are frozen.
func (s *ElectionService) Update(ctx context.Context, id string, req *domain.UpdateElectionRequest) (*domain.Election, error) {
	if err := validateElectionRequest(req.Title, req.Description, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	election, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if election.Status == domain.StatusEnded {
		return nil, errors.NewInvalidStateError("Cannot update an election that has already ended")
	}

	election.Title = strings.TrimSpace(req.Title)
	election.Description = strings.TrimSpace(req.Description)
	election.StartDate = req.StartDate
	election.EndDate = req.EndDate

	if err := s.elections.Update(ctx, election); err != nil {
		return nil, errors.NewInternalError("Failed to update election", err)
	}

	s.cache.InvalidateElections(ctx, election.ID)
	return election, nil
}

// End forcibly ends an election now, regardless of its end date. The sweep
// never reverts this: its predicates only move Upcoming and Ongoing forward.
func (s *ElectionService) End(ctx context.Context, id string) (*domain.Election, error) {
	election, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.elections.SetEnded(ctx, id, now); err != nil {
		return nil, errors.NewInternalError("Failed to end election", err)
	}

	election.Status = domain.StatusEnded
	election.EndDate = now

	s.cache.InvalidateElections(ctx, id)
	s.cache.InvalidateElectionResults(ctx, id)
	s.logger.WithField("election_id", id).Info("Election ended manually")

	return election, nil
}

// Delete removes an election. Elections with recorded votes cannot be
// deleted; candidates and eligibility rows cascade.
func (s *ElectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	voteCount, err := s.votes.CountByElection(ctx, id)
	if err != nil {
		return errors.NewInternalError("Failed to count votes", err)
	}
	if voteCount > 0 {
		return errors.NewConflictError("Cannot delete election with existing votes")
	}

	if err := s.elections.Delete(ctx, id); err != nil {
		return errors.NewInternalError("Failed to delete election", err)
	}

	s.cache.InvalidateElections(ctx, id)
	s.cache.InvalidateElectionResults(ctx, id)
	s.cache.InvalidateEligibleCount(ctx, id)
	s.logger.WithField("election_id", id).Info("Election deleted")

	return nil
}

func validateElectionRequest(title, description string, start, end time.Time) error {
	if strings.TrimSpace(title) == "" {
		return errors.NewValidationError("Title is required", nil)
	}
	if strings.TrimSpace(description) == "" {
		return errors.NewValidationError("Description is required", nil)
	}
	if start.IsZero() || end.IsZero() {
		return errors.NewValidationError("Start date and end date are required", nil)
	}
	if !end.After(start) {
		return errors.NewValidationError("End date must be after start date", nil)
	}
	return nil
}
