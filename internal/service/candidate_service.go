package service

import (
	"context"
	"strings"

	"evote-api/internal/domain"
	"evote-api/internal/repository"
	"evote-api/pkg/errors"
	"evote-api/pkg/logger"

	"github.com/google/uuid"
)

// CandidateService manages candidacy applications and their verification
type CandidateService struct {
	candidates repository.CandidateRepository
	elections  repository.ElectionRepository
	votes      repository.VoteRepository
	logger     *logger.Logger
}

// NewCandidateService creates a new candidate service
func NewCandidateService(candidates repository.CandidateRepository, elections repository.ElectionRepository, votes repository.VoteRepository, logger *logger.Logger) *CandidateService {
	return &CandidateService{
		candidates: candidates,
		elections:  elections,
		votes:      votes,
		logger:     logger,
	}
}

// Apply submits a candidacy application. One application per user per
// election; applications close when the election ends.
func (s *CandidateService) Apply(ctx context.Context, userID string, req *domain.ApplyRequest) (*domain.Candidate, error) {
	if strings.TrimSpace(req.Manifesto) == "" {
		return nil, errors.NewValidationError("Manifesto is required", nil)
	}
	if req.ElectionID == "" {
		return nil, errors.NewValidationError("Election ID is required", nil)
	}

	election, err := s.elections.GetByID(ctx, req.ElectionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load election", err)
	}
	if election == nil {
		return nil, errors.NewNotFoundError("Election not found")
	}
	if election.Status == domain.StatusEnded {
		return nil, errors.NewInvalidStateError("This election has ended and is not accepting applications")
	}

	existing, err := s.candidates.GetByUserAndElection(ctx, userID, req.ElectionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to check existing application", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("You have already applied for this election")
	}

	candidate := &domain.Candidate{
		ID:           uuid.NewString(),
		UserID:       userID,
		ElectionID:   req.ElectionID,
		Manifesto:    strings.TrimSpace(req.Manifesto),
		ProfileImage: req.ProfileImage,
		Status:       domain.CandidatePending,
	}

	if err := s.candidates.Create(ctx, candidate); err != nil {
		// The candidates(user_id, election_id) unique constraint closes the
		// race the pre-check above leaves open.
		if repository.IsUniqueViolation(err, "user_id") {
			return nil, errors.NewConflictError("You have already applied for this election")
		}
		return nil, errors.NewInternalError("Failed to create application", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"candidate_id": candidate.ID,
		"election_id":  candidate.ElectionID,
	}).Info("Candidacy application submitted")

	return candidate, nil
}

// Verify sets a candidate's verification status. The transition is
// unconditional: an admin may re-verify or flip a rejected candidate.
func (s *CandidateService) Verify(ctx context.Context, id string, status domain.CandidateStatus) (*domain.Candidate, error) {
	if status != domain.CandidateVerified && status != domain.CandidateRejected {
		return nil, errors.NewValidationError("Status must be Verified or Rejected", nil)
	}

	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.candidates.UpdateStatus(ctx, id, status); err != nil {
		return nil, errors.NewInternalError("Failed to update candidate status", err)
	}
	candidate.Status = status

	s.logger.WithFields(map[string]interface{}{
		"candidate_id": id,
		"status":       status,
	}).Info("Candidate verification updated")

	return candidate, nil
}

// Remove deletes an application. Allowed for admins and the owning user;
// refused once the candidate has received votes.
func (s *CandidateService) Remove(ctx context.Context, id string, requester *domain.Principal) error {
	candidate, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if !requester.IsAdmin() && candidate.UserID != requester.UserID {
		return errors.NewAuthorizationError("Not authorized to delete this application")
	}

	voteCount, err := s.votes.CountByCandidate(ctx, id)
	if err != nil {
		return errors.NewInternalError("Failed to count votes", err)
	}
	if voteCount > 0 {
		return errors.NewConflictError("Cannot remove a candidate who has received votes")
	}

	if err := s.candidates.Delete(ctx, id); err != nil {
		return errors.NewInternalError("Failed to delete candidate", err)
	}

	s.logger.WithField("candidate_id", id).Info("Candidacy application removed")
	return nil
}

// Get returns one candidate with user and election fields joined
func (s *CandidateService) Get(ctx context.Context, id string) (*domain.Candidate, error) {
	candidate, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load candidate", err)
	}
	if candidate == nil {
		return nil, errors.NewNotFoundError("Candidate not found")
	}
	return candidate, nil
}

// List returns candidates matching the filter. The result is unbounded,
// which is acceptable at this platform's scale.
func (s *CandidateService) List(ctx context.Context, filter domain.CandidateFilter) ([]*domain.Candidate, error) {
	if filter.Status != "" {
		switch filter.Status {
		case domain.CandidatePending, domain.CandidateVerified, domain.CandidateRejected:
		default:
			return nil, errors.NewValidationError("Invalid candidate status filter", nil)
		}
	}

	candidates, err := s.candidates.List(ctx, filter)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list candidates", err)
	}
	return candidates, nil
}
