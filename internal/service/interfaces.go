package service

import (
	"context"

	"evote-api/internal/domain"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Register creates a user account with the user role and issues a token
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)

	// Login verifies credentials and issues a token
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)

	// ValidateToken resolves a bearer token to the calling principal
	ValidateToken(ctx context.Context, token string) (*domain.Principal, error)

	// GetUser loads the full user record behind a principal
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// Services aggregates the service layer for the container
type Services struct {
	Auth      AuthService
	Users     *UserService
	Elections *ElectionService
	Lifecycle *LifecycleService
	Candidacy *CandidateService
	Voting    *VotingService
	Admin     *AdminService
}
