package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"evote-api/internal/domain"
	"evote-api/internal/repository"
	"evote-api/internal/service"
	"evote-api/pkg/errors"
	"evote-api/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service implements the AuthService interface with HS256 JWTs and bcrypt
// password hashing
type Service struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *logger.Logger
}

// NewService creates a new auth service
func NewService(users repository.UserRepository, secret string, tokenTTL time.Duration, logger *logger.Logger) service.AuthService {
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

type claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Register creates a user account with the user role and issues a token
func (s *Service) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
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
		Role:         domain.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The users(email) unique constraint backs the pre-check above
		if repository.IsUniqueViolation(err, "email") {
			return nil, errors.NewConflictError("User already exists")
		}
		return nil, errors.NewInternalError("Failed to create user", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")

	return s.issueToken(user)
}

// Login verifies credentials and issues a token
func (s *Service) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewInternalError("Failed to look up user", err)
	}
	if user == nil {
		return nil, errors.NewAuthenticationError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.NewAuthenticationError("Invalid credentials")
	}

	s.logger.WithField("user_id", user.ID).Debug("User logged in")

	return s.issueToken(user)
}

// ValidateToken resolves a bearer token to the calling principal
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.Subject == "" {
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	return &domain.Principal{UserID: c.Subject, Role: c.Role}, nil
}

// GetUser loads the full user record behind a principal
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load user", err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("User not found")
	}
	return user, nil
}

func (s *Service) issueToken(user *domain.User) (*domain.AuthResponse, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, errors.NewInternalError("Failed to sign token", err)
	}

	return &domain.AuthResponse{Token: signed, User: user.Public()}, nil
}

func validateRegistration(req *domain.RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.NewValidationError("Name is required", nil)
	}
	if !strings.Contains(req.Email, "@") {
		return errors.NewValidationError("Please include a valid email", nil)
	}
	if len(req.Password) < 6 {
		return errors.NewValidationError("Password must be at least 6 characters", nil)
	}
	return nil
}
