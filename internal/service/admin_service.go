package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"evote-api/internal/domain"
	"evote-api/internal/repository"
	"evote-api/pkg/errors"
	"evote-api/pkg/logger"
	"evote-api/pkg/redis"
)

const (
	recentActivityLimit   = 10
	recentPerSourceLimit  = 5
	recentElectionsInFeed = 3
	statsElectionLimit    = 5
)

// AdminService builds the dashboard views: platform totals, per-election
// stats, the recent-activity feed and analytics
type AdminService struct {
	users      repository.UserRepository
	elections  repository.ElectionRepository
	candidates repository.CandidateRepository
	votes      repository.VoteRepository
	redis      *redis.Client
	logger     *logger.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(repos *repository.Repositories, redisClient *redis.Client, logger *logger.Logger) *AdminService {
	return &AdminService{
		users:      repos.User,
		elections:  repos.Election,
		candidates: repos.Candidate,
		votes:      repos.Vote,
		redis:      redisClient,
		logger:     logger,
	}
}

// Stats returns platform-wide totals, cached briefly since every admin page
// load requests them
func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	if s.redis != nil {
		cacheKey := s.redis.KeyBuilder.KeyAdminStats()
		if cached, err := s.redis.Get(ctx, cacheKey); err == nil && cached != "" {
			var stats domain.AdminStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.computeStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			_ = s.redis.Set(ctx, s.redis.KeyBuilder.KeyAdminStats(), string(data), redis.TTLAdminStats)
		}
	}

	return stats, nil
}

func (s *AdminService) computeStats(ctx context.Context) (*domain.AdminStats, error) {
	stats := &domain.AdminStats{}

	var err error
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, errors.NewInternalError("Failed to count users", err)
	}
	if stats.TotalElections, err = s.elections.Count(ctx); err != nil {
		return nil, errors.NewInternalError("Failed to count elections", err)
	}
	if stats.TotalVotes, err = s.votes.Count(ctx); err != nil {
		return nil, errors.NewInternalError("Failed to count votes", err)
	}
	if stats.TotalCandidates, err = s.candidates.CountByStatus(ctx, domain.CandidateVerified); err != nil {
		return nil, errors.NewInternalError("Failed to count candidates", err)
	}
	if stats.OngoingElections, err = s.elections.CountByStatus(ctx, domain.StatusOngoing); err != nil {
		return nil, errors.NewInternalError("Failed to count ongoing elections", err)
	}
	if stats.PendingApplications, err = s.candidates.CountByStatus(ctx, domain.CandidatePending); err != nil {
		return nil, errors.NewInternalError("Failed to count pending applications", err)
	}

	return stats, nil
}

// ElectionStats returns status counts, vote totals for the most recent
// elections and the platform-wide turnout
func (s *AdminService) ElectionStats(ctx context.Context) (*domain.ElectionStats, error) {
	stats := &domain.ElectionStats{}

	var err error
	if stats.Upcoming, err = s.elections.CountByStatus(ctx, domain.StatusUpcoming); err != nil {
		return nil, errors.NewInternalError("Failed to count upcoming elections", err)
	}
	if stats.Ongoing, err = s.elections.CountByStatus(ctx, domain.StatusOngoing); err != nil {
		return nil, errors.NewInternalError("Failed to count ongoing elections", err)
	}
	if stats.Ended, err = s.elections.CountByStatus(ctx, domain.StatusEnded); err != nil {
		return nil, errors.NewInternalError("Failed to count ended elections", err)
	}

	recent, err := s.elections.ListRecent(ctx, statsElectionLimit)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list recent elections", err)
	}

	stats.VotesPerElection = make([]domain.ElectionVotes, 0, len(recent))
	for _, election := range recent {
		count, err := s.votes.CountByElection(ctx, election.ID)
		if err != nil {
			return nil, errors.NewInternalError("Failed to count election votes", err)
		}
		stats.VotesPerElection = append(stats.VotesPerElection, domain.ElectionVotes{
			Name:  election.Title,
			Votes: count,
		})
	}

	voters, err := s.votes.CountDistinctVoters(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count voters", err)
	}
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count users", err)
	}
	stats.VoterTurnout = formatRate(voters, totalUsers)

	return stats, nil
}

// RecentActivity merges the latest votes, candidate applications and
// elections into one feed, newest first
func (s *AdminService) RecentActivity(ctx context.Context) ([]domain.Activity, error) {
	votes, err := s.votes.ListRecent(ctx, recentPerSourceLimit)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list recent votes", err)
	}
	candidates, err := s.candidates.ListRecent(ctx, recentPerSourceLimit)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list recent applications", err)
	}
	elections, err := s.elections.ListRecentlyCreated(ctx, recentElectionsInFeed)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list recent elections", err)
	}

	activities := make([]domain.Activity, 0, len(votes)+len(candidates)+len(elections))
	for _, v := range votes {
		activities = append(activities, domain.Activity{
			Type:      "vote",
			Message:   fmt.Sprintf("%s voted for %s in %s", v.VoterName, v.CandidateName, v.ElectionTitle),
			Timestamp: v.CreatedAt,
		})
	}
	for _, c := range candidates {
		activities = append(activities, domain.Activity{
			Type:      "candidate",
			Message:   fmt.Sprintf("%s applied as a candidate for %s", c.UserName, c.ElectionTitle),
			Timestamp: c.CreatedAt,
		})
	}
	for _, e := range elections {
		activities = append(activities, domain.Activity{
			Type:      "election",
			Message:   fmt.Sprintf("New election %q was created by %s", e.Title, e.CreatorName),
			Timestamp: e.CreatedAt,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})

	if len(activities) > recentActivityLimit {
		activities = activities[:recentActivityLimit]
	}

	return activities, nil
}

// Analytics returns participation, the hourly voting histogram and a
// per-election competitiveness score
func (s *AdminService) Analytics(ctx context.Context) (*domain.Analytics, error) {
	voters, err := s.votes.CountDistinctVoters(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count voters", err)
	}
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count users", err)
	}

	histogram, err := s.votes.HourlyHistogram(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to build voting histogram", err)
	}

	elections, err := s.elections.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list elections", err)
	}
	counts, err := s.votes.CountsByElectionAndCandidate(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to aggregate votes", err)
	}

	return &domain.Analytics{
		VoterEngagement: domain.VoterEngagement{
			ParticipationRate: formatRate(voters, totalUsers),
			TotalVoters:       voters,
			TotalEligible:     totalUsers,
		},
		HourlyVotes:             histogram,
		ElectionCompetitiveness: competitivenessScores(elections, counts),
	}, nil
}

// competitivenessScores scores how close each race is: 1 - margin/totalVotes
// between the two leading candidates, rounded to two decimals. Elections
// with fewer than two voted candidates are left out of the list.
func competitivenessScores(elections []*domain.Election, counts []domain.ElectionCandidateCount) []domain.ElectionCompetitiveness {
	perElection := make(map[string][]int)
	for _, c := range counts {
		perElection[c.ElectionID] = append(perElection[c.ElectionID], c.Count)
	}

	scores := make([]domain.ElectionCompetitiveness, 0, len(elections))
	for _, election := range elections {
		votes := perElection[election.ID]
		if len(votes) < 2 {
			continue
		}

		total := 0
		for _, v := range votes {
			total += v
		}

		score := 0.0
		if total > 0 {
			sort.Sort(sort.Reverse(sort.IntSlice(votes)))
			margin := votes[0] - votes[1]
			score = math.Round((1-float64(margin)/float64(total))*100) / 100
		}

		scores = append(scores, domain.ElectionCompetitiveness{
			ElectionID:           election.ID,
			Title:                election.Title,
			Status:               election.Status,
			TotalVotes:           total,
			CompetitivenessScore: score,
		})
	}

	return scores
}

// formatRate renders voters/total as a percentage with one decimal,
// "0%" when total is zero
func formatRate(voters, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(voters)/float64(total)*100)
}
