package repository

import (
	"context"
	"time"

	"evote-api/internal/domain"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID, nil when absent
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email, nil when absent
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*domain.User, error)

	// Update updates name, email and role
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user together with their eligibility rows
	Delete(ctx context.Context, id string) error

	// AssignElection adds an election to a user's eligibility set
	AssignElection(ctx context.Context, userID, electionID string) error

	// RemoveElection removes an election from a user's eligibility set
	RemoveElection(ctx context.Context, userID, electionID string) error

	// IsEligible reports whether a user may vote in an election
	IsEligible(ctx context.Context, userID, electionID string) (bool, error)

	// CountEligible counts the users eligible for an election
	CountEligible(ctx context.Context, electionID string) (int, error)

	// Count counts all users
	Count(ctx context.Context) (int, error)
}

// ElectionRepository defines the interface for election data operations
type ElectionRepository interface {
	Create(ctx context.Context, election *domain.Election) error

	// GetByID retrieves an election with the creator's name joined, nil when absent
	GetByID(ctx context.Context, id string) (*domain.Election, error)

	// List retrieves all elections, newest start date first
	List(ctx context.Context) ([]*domain.Election, error)

	// ListEligibleForUser retrieves the elections in a user's eligibility set
	ListEligibleForUser(ctx context.Context, userID string) ([]*domain.Election, error)

	// Update writes title, description and dates. Status is not touched here;
	// the sweep and SetEnded are the only status writers.
	Update(ctx context.Context, election *domain.Election) error

	// SetEnded forcibly ends an election, setting end date to now
	SetEnded(ctx context.Context, id string, now time.Time) error

	// Delete removes an election with its candidates and eligibility rows
	Delete(ctx context.Context, id string) error

	// MarkOngoing transitions Upcoming elections whose start date has passed
	MarkOngoing(ctx context.Context, now time.Time) (int64, error)

	// MarkEnded transitions Ongoing elections whose end date has passed
	MarkEnded(ctx context.Context, now time.Time) (int64, error)

	// CountByStatus counts elections in the given status
	CountByStatus(ctx context.Context, status domain.ElectionStatus) (int, error)

	// Count counts all elections
	Count(ctx context.Context) (int, error)

	// ListRecent retrieves up to limit elections, newest start date first
	ListRecent(ctx context.Context, limit int) ([]*domain.Election, error)

	// ListRecentlyCreated retrieves up to limit elections, newest created first
	ListRecentlyCreated(ctx context.Context, limit int) ([]*domain.Election, error)
}

// CandidateRepository defines the interface for candidate data operations
type CandidateRepository interface {
	Create(ctx context.Context, candidate *domain.Candidate) error

	// GetByID retrieves a candidate with user and election fields joined,
	// nil when absent
	GetByID(ctx context.Context, id string) (*domain.Candidate, error)

	// GetByUserAndElection retrieves a user's application for an election,
	// nil when absent
	GetByUserAndElection(ctx context.Context, userID, electionID string) (*domain.Candidate, error)

	// List retrieves candidates matching the filter, joined with user and
	// election display fields
	List(ctx context.Context, filter domain.CandidateFilter) ([]*domain.Candidate, error)

	// UpdateStatus sets the verification status
	UpdateStatus(ctx context.Context, id string, status domain.CandidateStatus) error

	// Delete removes a candidate application
	Delete(ctx context.Context, id string) error

	// ListVerified retrieves the verified candidates for an election in
	// creation order
	ListVerified(ctx context.Context, electionID string) ([]*domain.Candidate, error)

	// CountByStatus counts candidates in the given status
	CountByStatus(ctx context.Context, status domain.CandidateStatus) (int, error)

	// ListRecent retrieves the latest applications with display fields joined
	ListRecent(ctx context.Context, limit int) ([]*domain.Candidate, error)
}

// VoteRepository defines the interface for vote data operations
type VoteRepository interface {
	// Create inserts a vote. The votes(election_id, voter_id) unique
	// constraint is the authority on double votes; callers map the resulting
	// constraint violation to a conflict.
	Create(ctx context.Context, vote *domain.Vote) error

	// HasVoted reports whether a voter already voted in an election
	HasVoted(ctx context.Context, electionID, voterID string) (bool, error)

	// CountsByElection aggregates votes per candidate for one election
	CountsByElection(ctx context.Context, electionID string) ([]domain.VoteCount, error)

	// CountByElection counts votes in one election
	CountByElection(ctx context.Context, electionID string) (int, error)

	// CountByCandidate counts votes referencing one candidate
	CountByCandidate(ctx context.Context, candidateID string) (int, error)

	// CountByVoter counts votes cast by one user
	CountByVoter(ctx context.Context, voterID string) (int, error)

	// Count counts all votes
	Count(ctx context.Context) (int, error)

	// CountDistinctVoters counts users who cast at least one vote
	CountDistinctVoters(ctx context.Context) (int, error)

	// ListByVoter retrieves a user's votes with election and candidate
	// names joined
	ListByVoter(ctx context.Context, voterID string) ([]*domain.UserVote, error)

	// HourlyHistogram buckets all votes by hour of day (0-23)
	HourlyHistogram(ctx context.Context) ([24]int, error)

	// CountsByElectionAndCandidate aggregates votes per (election, candidate)
	// across all elections
	CountsByElectionAndCandidate(ctx context.Context) ([]domain.ElectionCandidateCount, error)

	// ListRecent retrieves the latest votes with display names joined
	ListRecent(ctx context.Context, limit int) ([]*domain.RecentVote, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	User      UserRepository
	Election  ElectionRepository
	Candidate CandidateRepository
	Vote      VoteRepository
}
