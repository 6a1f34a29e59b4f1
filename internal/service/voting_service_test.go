package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"evote-api/internal/domain"
	"evote-api/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type votingFixture struct {
	users      *fakeUserRepo
	elections  *fakeElectionRepo
	candidates *fakeCandidateRepo
	votes      *fakeVoteRepo
	service    *VotingService
}

func newVotingFixture(t *testing.T) *votingFixture {
	t.Helper()

	f := &votingFixture{
		users:      newFakeUserRepo(),
		elections:  newFakeElectionRepo(),
		candidates: newFakeCandidateRepo(),
		votes:      newFakeVoteRepo(),
	}
	f.service = NewVotingService(f.votes, f.elections, f.candidates, f.users, testCache(), testLogger())
	return f
}

func (f *votingFixture) addElection(id string, status domain.ElectionStatus) {
	f.elections.put(&domain.Election{
		ID:        id,
		Title:     "Test Election",
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(time.Hour),
		Status:    status,
	})
}

func (f *votingFixture) addVerifiedCandidate(id, electionID string) {
	_ = f.candidates.Create(context.Background(), &domain.Candidate{
		ID:         id,
		UserID:     "candidate-user-" + id,
		ElectionID: electionID,
		Manifesto:  "manifesto",
		Status:     domain.CandidateVerified,
	})
}

func (f *votingFixture) makeEligible(userID, electionID string) {
	_ = f.users.AssignElection(context.Background(), userID, electionID)
}

func assertErrorType(t *testing.T, err error, want errors.ErrorType) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, want, appErr.Type)
}

func TestCastVote_Success(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusOngoing)
	f.addVerifiedCandidate("c1", "e1")
	f.makeEligible("voter", "e1")

	resp, err := f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
		ElectionID:  "e1",
		CandidateID: "c1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.VoteID)
	assert.Equal(t, "e1", resp.ElectionID)

	count, err := f.votes.CountByCandidate(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCastVote_ElectionNotFound(t *testing.T) {
	f := newVotingFixture(t)

	_, err := f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
		ElectionID:  "missing",
		CandidateID: "c1",
	})

	assertErrorType(t, err, errors.ErrorTypeNotFound)
}

func TestCastVote_ElectionNotOngoing(t *testing.T) {
	for _, status := range []domain.ElectionStatus{domain.StatusUpcoming, domain.StatusEnded} {
		t.Run(string(status), func(t *testing.T) {
			f := newVotingFixture(t)
			f.addElection("e1", status)
			f.addVerifiedCandidate("c1", "e1")
			f.makeEligible("voter", "e1")

			_, err := f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
				ElectionID:  "e1",
				CandidateID: "c1",
			})

			assertErrorType(t, err, errors.ErrorTypeInvalidState)
		})
	}
}

func TestCastVote_NotEligible(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusOngoing)
	f.addVerifiedCandidate("c1", "e1")

	_, err := f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
		ElectionID:  "e1",
		CandidateID: "c1",
	})

	assertErrorType(t, err, errors.ErrorTypeAuthorization)
}

func TestCastVote_InvalidCandidate(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusOngoing)
	f.addElection("e2", domain.StatusOngoing)
	f.makeEligible("voter", "e1")

	// Unverified candidate in the right election
	_ = f.candidates.Create(context.Background(), &domain.Candidate{
		ID: "pending", UserID: "u1", ElectionID: "e1", Status: domain.CandidatePending,
	})
	// Verified candidate in a different election
	f.addVerifiedCandidate("other", "e2")

	for _, candidateID := range []string{"pending", "other", "missing"} {
		t.Run(candidateID, func(t *testing.T) {
			_, err := f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
				ElectionID:  "e1",
				CandidateID: candidateID,
			})
			assertErrorType(t, err, errors.ErrorTypeValidation)
		})
	}
}

func TestCastVote_SecondVoteConflicts(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusOngoing)
	f.addVerifiedCandidate("c1", "e1")
	f.addVerifiedCandidate("c2", "e1")
	f.makeEligible("voter", "e1")

	_, err := f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
		ElectionID: "e1", CandidateID: "c1",
	})
	require.NoError(t, err)

	// Same candidate and a different candidate both conflict
	for _, candidateID := range []string{"c1", "c2"} {
		_, err = f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
			ElectionID: "e1", CandidateID: candidateID,
		})
		assertErrorType(t, err, errors.ErrorTypeConflict)
	}

	total, err := f.votes.CountByElection(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCastVote_SameVoterOtherElectionAllowed(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusOngoing)
	f.addElection("e2", domain.StatusOngoing)
	f.addVerifiedCandidate("c1", "e1")
	f.addVerifiedCandidate("c2", "e2")
	f.makeEligible("voter", "e1")
	f.makeEligible("voter", "e2")

	_, err := f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
		ElectionID: "e1", CandidateID: "c1",
	})
	require.NoError(t, err)

	_, err = f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
		ElectionID: "e2", CandidateID: "c2",
	})
	require.NoError(t, err)
}

// Concurrent duplicate submissions race past the has-voted pre-check; the
// storage uniqueness rule must let exactly one through.
func TestCastVote_ConcurrentDuplicates(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusOngoing)
	f.addVerifiedCandidate("c1", "e1")
	f.makeEligible("voter", "e1")

	const attempts = 20

	var wg sync.WaitGroup
	var successes, conflicts int64

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
				ElectionID: "e1", CandidateID: "c1",
			})
			if err == nil {
				atomic.AddInt64(&successes, 1)
				return
			}
			if appErr, ok := errors.AsAppError(err); ok && appErr.Type == errors.ErrorTypeConflict {
				atomic.AddInt64(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), successes)
	assert.Equal(t, int64(attempts-1), conflicts)

	total, err := f.votes.CountByElection(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestTally_GatedUntilEnded(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusOngoing)

	_, err := f.service.Tally(context.Background(), "e1", nil)
	assertErrorType(t, err, errors.ErrorTypeAuthorization)

	_, err = f.service.Tally(context.Background(), "e1", &domain.Principal{UserID: "u1", Role: domain.RoleUser})
	assertErrorType(t, err, errors.ErrorTypeAuthorization)

	_, err = f.service.Tally(context.Background(), "e1", &domain.Principal{UserID: "a1", Role: domain.RoleAdmin})
	require.NoError(t, err, "admins may view results before the election ends")
}

func TestTally_PublicOnceEnded(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusEnded)

	results, err := f.service.Tally(context.Background(), "e1", nil)
	require.NoError(t, err)
	assert.Equal(t, "e1", results.ElectionID)
}

func TestTally_CountsWinnerAndTurnout(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusOngoing)
	f.addVerifiedCandidate("c1", "e1")
	f.addVerifiedCandidate("c2", "e1")
	f.addVerifiedCandidate("c3", "e1")

	voters := []string{"v1", "v2", "v3", "v4"}
	for _, v := range voters {
		f.makeEligible(v, "e1")
	}
	ballots := map[string]string{"v1": "c2", "v2": "c2", "v3": "c1"}
	for voter, candidate := range ballots {
		_, err := f.service.CastVote(context.Background(), voter, &domain.CastVoteRequest{
			ElectionID: "e1", CandidateID: candidate,
		})
		require.NoError(t, err)
	}

	f.elections.put(&domain.Election{
		ID: "e1", Title: "Test Election", Status: domain.StatusEnded,
	})

	results, err := f.service.Tally(context.Background(), "e1", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, results.TotalVotes)
	assert.Equal(t, 4, results.TotalEligibleVoters)
	assert.Equal(t, "75.00%", results.TurnoutPercentage)

	require.Len(t, results.Results, 3, "zero-vote candidates are included")
	assert.Equal(t, "c2", results.Results[0].CandidateID)
	assert.Equal(t, 2, results.Results[0].Votes)
	assert.Equal(t, "c1", results.Results[1].CandidateID)
	assert.Equal(t, "c3", results.Results[2].CandidateID)
	assert.Equal(t, 0, results.Results[2].Votes)

	require.NotNil(t, results.Winner)
	assert.Equal(t, "c2", results.Winner.CandidateID)
}

func TestTally_NoEligibleVoters(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusEnded)

	results, err := f.service.Tally(context.Background(), "e1", nil)
	require.NoError(t, err)

	assert.Equal(t, "0%", results.TurnoutPercentage)
	assert.Nil(t, results.Winner)
	assert.Empty(t, results.Results)
}

func TestRankCandidates_TieKeepsCreationOrder(t *testing.T) {
	candidates := []*domain.Candidate{
		{ID: "first", UserName: "First"},
		{ID: "second", UserName: "Second"},
		{ID: "third", UserName: "Third"},
	}
	counts := []domain.VoteCount{
		{CandidateID: "second", Count: 5},
		{CandidateID: "first", Count: 5},
		{CandidateID: "third", Count: 2},
	}

	results := RankCandidates(candidates, counts)

	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].CandidateID, "oldest application wins the tie-break")
	assert.Equal(t, "second", results[1].CandidateID)
	assert.Equal(t, "third", results[2].CandidateID)
}

func TestFormatTurnout(t *testing.T) {
	tests := []struct {
		name     string
		votes    int
		eligible int
		want     string
	}{
		{"zero eligible", 0, 0, "0%"},
		{"full turnout", 10, 10, "100.00%"},
		{"partial", 1, 3, "33.33%"},
		{"none voted", 0, 5, "0.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTurnout(tt.votes, tt.eligible))
		})
	}
}

func TestLiveTally(t *testing.T) {
	f := newVotingFixture(t)
	f.addElection("e1", domain.StatusOngoing)
	f.addVerifiedCandidate("c1", "e1")
	f.makeEligible("voter", "e1")

	_, err := f.service.CastVote(context.Background(), "voter", &domain.CastVoteRequest{
		ElectionID: "e1", CandidateID: "c1",
	})
	require.NoError(t, err)

	live, err := f.service.LiveTally(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 1, live.TotalVotes)
	require.Len(t, live.Results, 1)
	assert.Equal(t, "c1", live.Results[0].CandidateID)

	_, err = f.service.LiveTally(context.Background(), "missing")
	assertErrorType(t, err, errors.ErrorTypeNotFound)
}
