package service

import (
	"context"
	"fmt"
	"sort"

	"evote-api/internal/domain"
	"evote-api/internal/repository"
	"evote-api/pkg/errors"
	"evote-api/pkg/logger"

	"github.com/google/uuid"
)

// VotingService enforces the vote-casting invariants and computes tallies
type VotingService struct {
	votes      repository.VoteRepository
	elections  repository.ElectionRepository
	candidates repository.CandidateRepository
	users      repository.UserRepository
	cache      *CacheService
	logger     *logger.Logger
}

// NewVotingService creates a new voting service
func NewVotingService(votes repository.VoteRepository, elections repository.ElectionRepository, candidates repository.CandidateRepository, users repository.UserRepository, cache *CacheService, logger *logger.Logger) *VotingService {
	return &VotingService{
		votes:      votes,
		elections:  elections,
		candidates: candidates,
		users:      users,
		cache:      cache,
		logger:     logger,
	}
}

// CastVote casts one vote. Checks run in a fixed order and abort at the
// first failure: election exists, election ongoing, voter eligible,
// candidate verified and in this election, voter has not voted yet. The
// final uniqueness check is advisory only; the votes(election_id, voter_id)
// unique constraint is what actually prevents a concurrent double vote.
func (s *VotingService) CastVote(ctx context.Context, voterID string, req *domain.CastVoteRequest) (*domain.CastVoteResponse, error) {
	if req.ElectionID == "" || req.CandidateID == "" {
		return nil, errors.NewValidationError("Election ID and candidate ID are required", nil)
	}

	election, err := s.elections.GetByID(ctx, req.ElectionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load election", err)
	}
	if election == nil {
		return nil, errors.NewNotFoundError("Election not found")
	}

	if election.Status != domain.StatusOngoing {
		return nil, errors.NewInvalidStateError("Voting is only allowed during ongoing elections")
	}

	eligible, err := s.users.IsEligible(ctx, voterID, req.ElectionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to check eligibility", err)
	}
	if !eligible {
		return nil, errors.NewAuthorizationError("You are not eligible to vote in this election")
	}

	candidate, err := s.candidates.GetByID(ctx, req.CandidateID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load candidate", err)
	}
	if candidate == nil || candidate.Status != domain.CandidateVerified || candidate.ElectionID != req.ElectionID {
		return nil, errors.NewValidationError("Invalid candidate", nil)
	}

	voted, err := s.cache.HasVotedWithCache(ctx, req.ElectionID, voterID, func(ctx context.Context) (bool, error) {
		return s.votes.HasVoted(ctx, req.ElectionID, voterID)
	})
	if err != nil {
		return nil, errors.NewInternalError("Failed to check existing vote", err)
	}
	if voted {
		return nil, errors.NewConflictError("You have already voted in this election")
	}

	vote := &domain.Vote{
		ID:          uuid.NewString(),
		ElectionID:  req.ElectionID,
		VoterID:     voterID,
		CandidateID: req.CandidateID,
	}

	if err := s.votes.Create(ctx, vote); err != nil {
		if repository.IsUniqueViolation(err, "voter_id") {
			return nil, errors.NewConflictError("You have already voted in this election")
		}
		return nil, errors.NewInternalError("Failed to save vote", err)
	}

	s.cache.MarkVoted(ctx, req.ElectionID, voterID)
	s.cache.InvalidateElectionResults(ctx, req.ElectionID)

	s.logger.WithFields(map[string]interface{}{
		"vote_id":     vote.ID,
		"election_id": vote.ElectionID,
	}).Info("Vote cast")

	return &domain.CastVoteResponse{
		VoteID:     vote.ID,
		ElectionID: vote.ElectionID,
		Timestamp:  vote.CreatedAt,
		Message:    "Vote cast successfully",
	}, nil
}

// Tally returns the full results for an election. Results for elections
// that have not ended are restricted to admins. requester may be nil for
// unauthenticated callers.
func (s *VotingService) Tally(ctx context.Context, electionID string, requester *domain.Principal) (*domain.ElectionResults, error) {
	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load election", err)
	}
	if election == nil {
		return nil, errors.NewNotFoundError("Election not found")
	}

	if election.Status != domain.StatusEnded && (requester == nil || !requester.IsAdmin()) {
		return nil, errors.NewAuthorizationError("Results are only available after the election has ended")
	}

	return s.cache.GetResultsWithCache(ctx, electionID, func(ctx context.Context) (*domain.ElectionResults, error) {
		return s.computeResults(ctx, election)
	})
}

// LiveTally returns the in-progress counts for an election regardless of
// status. Admin-only; routing enforces the role. Counts are not isolated
// from concurrent inserts, so a burst of votes may briefly undercount.
func (s *VotingService) LiveTally(ctx context.Context, electionID string) (*domain.LiveResults, error) {
	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load election", err)
	}
	if election == nil {
		return nil, errors.NewNotFoundError("Election not found")
	}

	results, totalVotes, err := s.rankedResults(ctx, electionID)
	if err != nil {
		return nil, err
	}

	return &domain.LiveResults{
		ElectionID:    electionID,
		ElectionTitle: election.Title,
		TotalVotes:    totalVotes,
		Results:       results,
	}, nil
}

// ListUserVotes returns a voter's own vote history
func (s *VotingService) ListUserVotes(ctx context.Context, voterID string) ([]*domain.UserVote, error) {
	votes, err := s.votes.ListByVoter(ctx, voterID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list votes", err)
	}
	return votes, nil
}

func (s *VotingService) computeResults(ctx context.Context, election *domain.Election) (*domain.ElectionResults, error) {
	results, totalVotes, err := s.rankedResults(ctx, election.ID)
	if err != nil {
		return nil, err
	}

	eligibleCount, err := s.users.CountEligible(ctx, election.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count eligible voters", err)
	}

	out := &domain.ElectionResults{
		ElectionID:          election.ID,
		ElectionTitle:       election.Title,
		ElectionStatus:      election.Status,
		StartDate:           election.StartDate,
		EndDate:             election.EndDate,
		TotalVotes:          totalVotes,
		TotalEligibleVoters: eligibleCount,
		TurnoutPercentage:   FormatTurnout(totalVotes, eligibleCount),
		Results:             results,
	}

	if len(results) > 0 {
		winner := results[0]
		out.Winner = &winner
	}

	return out, nil
}

func (s *VotingService) rankedResults(ctx context.Context, electionID string) ([]domain.CandidateResult, int, error) {
	candidates, err := s.candidates.ListVerified(ctx, electionID)
	if err != nil {
		return nil, 0, errors.NewInternalError("Failed to list candidates", err)
	}

	counts, err := s.votes.CountsByElection(ctx, electionID)
	if err != nil {
		return nil, 0, errors.NewInternalError("Failed to aggregate votes", err)
	}

	return RankCandidates(candidates, counts), totalOf(counts), nil
}

// RankCandidates merges verified candidates with their vote counts and sorts
// descending. Candidates without votes appear with count 0. Ties keep the
// candidates' creation order, which the repository guarantees as input order.
func RankCandidates(candidates []*domain.Candidate, counts []domain.VoteCount) []domain.CandidateResult {
	byCandidate := make(map[string]int, len(counts))
	for _, c := range counts {
		byCandidate[c.CandidateID] = c.Count
	}

	results := make([]domain.CandidateResult, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, domain.CandidateResult{
			CandidateID:   candidate.ID,
			CandidateName: candidate.UserName,
			Manifesto:     candidate.Manifesto,
			ProfileImage:  candidate.ProfileImage,
			Votes:         byCandidate[candidate.ID],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Votes > results[j].Votes
	})

	return results
}

// FormatTurnout renders totalVotes/eligibleCount as a percentage with two
// decimals, "0%" when nobody is eligible
func FormatTurnout(totalVotes, eligibleCount int) string {
	if eligibleCount == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(totalVotes)/float64(eligibleCount)*100)
}

func totalOf(counts []domain.VoteCount) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}
