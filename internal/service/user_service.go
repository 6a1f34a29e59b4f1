package service

import (
	"context"
	"strings"

	"evote-api/internal/domain"
	"evote-api/internal/repository"
	"evote-api/pkg/errors"
	"evote-api/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService implements the admin-facing user management operations
type UserService struct {
	users      repository.UserRepository
	elections  repository.ElectionRepository
	candidates repository.CandidateRepository
	votes      repository.VoteRepository
	cache      *CacheService
	logger     *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, elections repository.ElectionRepository, candidates repository.CandidateRepository, votes repository.VoteRepository, cache *CacheService, logger *logger.Logger) *UserService {
	return &UserService{
		users:      users,
		elections:  elections,
		candidates: candidates,
		votes:      votes,
		cache:      cache,
		logger:     logger,
	}
}

// List returns all users
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list users", err)
	}
	return users, nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load user", err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("User not found")
	}
	return user, nil
}

// Create creates a user with an explicit role. Unlike self-registration the
// caller chooses the role, so only admins reach this.
func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.NewValidationError("Name is required", nil)
	}
	if !strings.Contains(req.Email, "@") {
		return nil, errors.NewValidationError("Please include a valid email", nil)
	}
	if len(req.Password) < 6 {
		return nil, errors.NewValidationError("Password must be at least 6 characters", nil)
	}
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, errors.NewValidationError("Invalid role", nil)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewInternalError("Failed to check existing user", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternalError("Failed to hash password", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err, "email") {
			return nil, errors.NewConflictError("User already exists")
		}
		return nil, errors.NewInternalError("Failed to create user", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User created")

	return user, nil
}

// Update changes name, email and role. Empty request fields keep the
// current value.
func (s *UserService) Update(ctx context.Context, id string, req *domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Email != "" {
		if !strings.Contains(req.Email, "@") {
			return nil, errors.NewValidationError("Please include a valid email", nil)
		}
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Role != "" {
		if !req.Role.Valid() {
			return nil, errors.NewValidationError("Invalid role", nil)
		}
		user.Role = req.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err, "email") {
			return nil, errors.NewConflictError("Email already in use")
		}
		return nil, errors.NewInternalError("Failed to update user", err)
	}

	return user, nil
}

// Delete removes a user. Admins cannot delete themselves, and users who
// already voted are kept so the tallies they contributed to stay auditable.
func (s *UserService) Delete(ctx context.Context, id string, requester *domain.Principal) error {
	if requester != nil && requester.UserID == id {
		return errors.NewValidationError("You cannot delete your own account", nil)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	voteCount, err := s.votes.CountByVoter(ctx, id)
	if err != nil {
		return errors.NewInternalError("Failed to check user votes", err)
	}
	if voteCount > 0 {
		return errors.NewConflictError("Cannot delete a user who has cast votes")
	}

	// Vote-less candidacies are removed with the user, but recorded votes
	// must keep pointing at a real candidate.
	candidacies, err := s.candidates.List(ctx, domain.CandidateFilter{UserID: id})
	if err != nil {
		return errors.NewInternalError("Failed to check user candidacies", err)
	}
	for _, candidate := range candidacies {
		received, err := s.votes.CountByCandidate(ctx, candidate.ID)
		if err != nil {
			return errors.NewInternalError("Failed to check candidate votes", err)
		}
		if received > 0 {
			return errors.NewConflictError("Cannot delete a user whose candidacy has received votes")
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return errors.NewInternalError("Failed to delete user", err)
	}

	s.logger.WithField("user_id", id).Info("User deleted")

	return nil
}

// AssignElection adds an election to a user's eligibility set
func (s *UserService) AssignElection(ctx context.Context, userID, electionID string) (*domain.User, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load election", err)
	}
	if election == nil {
		return nil, errors.NewNotFoundError("Election not found")
	}

	if err := s.users.AssignElection(ctx, userID, electionID); err != nil {
		// user_eligible_elections has a composite primary key
		if repository.IsUniqueViolation(err, "user_eligible_elections") {
			return nil, errors.NewConflictError("User is already assigned to this election")
		}
		return nil, errors.NewInternalError("Failed to assign election", err)
	}

	s.cache.InvalidateEligibleCount(ctx, electionID)

	return s.Get(ctx, userID)
}

// RemoveElection removes an election from a user's eligibility set. A user
// who already voted in the election stays assigned.
func (s *UserService) RemoveElection(ctx context.Context, userID, electionID string) (*domain.User, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	voted, err := s.votes.HasVoted(ctx, electionID, userID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to check existing vote", err)
	}
	if voted {
		return nil, errors.NewConflictError("Cannot remove eligibility after the user has voted")
	}

	if err := s.users.RemoveElection(ctx, userID, electionID); err != nil {
		return nil, errors.NewInternalError("Failed to remove election", err)
	}

	s.cache.InvalidateEligibleCount(ctx, electionID)

	return s.Get(ctx, userID)
}
