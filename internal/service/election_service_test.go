package service

import (
	"context"
	"testing"
	"time"

	"evote-api/internal/domain"
	"evote-api/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func electionFixture(now time.Time) (*fakeElectionRepo, *fakeVoteRepo, *ElectionService) {
	elections := newFakeElectionRepo()
	votes := newFakeVoteRepo()
	svc := NewElectionService(elections, votes, testCache(), testLogger())
	svc.WithClock(func() time.Time { return now })
	return elections, votes, svc
}

func TestCreateElection_DerivesStatusFromDates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  domain.ElectionStatus
	}{
		{"future window", now.Add(time.Hour), now.Add(2 * time.Hour), domain.StatusUpcoming},
		{"open window", now.Add(-time.Hour), now.Add(time.Hour), domain.StatusOngoing},
		{"past window", now.Add(-2 * time.Hour), now.Add(-time.Hour), domain.StatusEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := electionFixture(now)

			election, err := svc.Create(context.Background(), "admin", &domain.CreateElectionRequest{
				Title:       "Board Election",
				Description: "Annual board election",
				StartDate:   tt.start,
				EndDate:     tt.end,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, election.Status)
			assert.Equal(t, "admin", election.CreatedBy)
		})
	}
}

func TestCreateElection_Validation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, _, svc := electionFixture(now)

	tests := []struct {
		name string
		req  *domain.CreateElectionRequest
	}{
		{"missing title", &domain.CreateElectionRequest{
			Description: "d", StartDate: now, EndDate: now.Add(time.Hour),
		}},
		{"missing description", &domain.CreateElectionRequest{
			Title: "t", StartDate: now, EndDate: now.Add(time.Hour),
		}},
		{"missing dates", &domain.CreateElectionRequest{Title: "t", Description: "d"}},
		{"end before start", &domain.CreateElectionRequest{
			Title: "t", Description: "d", StartDate: now.Add(time.Hour), EndDate: now,
		}},
		{"end equals start", &domain.CreateElectionRequest{
			Title: "t", Description: "d", StartDate: now, EndDate: now,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "admin", tt.req)
			assertErrorType(t, err, errors.ErrorTypeValidation)
		})
	}
}

func TestUpdateElection_RefusedOnceEnded(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	elections, _, svc := electionFixture(now)

	elections.put(&domain.Election{
		ID: "e1", Title: "t", Description: "d",
		StartDate: now.Add(-2 * time.Hour), EndDate: now.Add(-time.Hour),
		Status: domain.StatusEnded,
	})

	_, err := svc.Update(context.Background(), "e1", &domain.UpdateElectionRequest{
		Title: "new", Description: "new", StartDate: now, EndDate: now.Add(time.Hour),
	})

	assertErrorType(t, err, errors.ErrorTypeInvalidState)
}

func TestEndElection_SetsEndedNow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	elections, _, svc := electionFixture(now)

	elections.put(&domain.Election{
		ID: "e1", Title: "t", Description: "d",
		StartDate: now.Add(-time.Hour), EndDate: now.Add(24 * time.Hour),
		Status: domain.StatusOngoing,
	})

	election, err := svc.End(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, election.Status)
	assert.Equal(t, now, election.EndDate)

	stored, err := elections.GetByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, stored.Status)
}

func TestEndElection_AlreadyEndedIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	elections, _, svc := electionFixture(now)

	elections.put(&domain.Election{
		ID: "e1", Title: "t", Description: "d",
		StartDate: now.Add(-2 * time.Hour), EndDate: now.Add(-time.Hour),
		Status: domain.StatusEnded,
	})

	election, err := svc.End(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, election.Status)
}

func TestDeleteElection_RefusedWithVotes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	elections, votes, svc := electionFixture(now)

	elections.put(&domain.Election{ID: "e1", Title: "t", Status: domain.StatusOngoing})
	require.NoError(t, votes.Create(context.Background(), &domain.Vote{
		ID: "v1", ElectionID: "e1", VoterID: "u1", CandidateID: "c1",
	}))

	err := svc.Delete(context.Background(), "e1")
	assertErrorType(t, err, errors.ErrorTypeConflict)

	stored, err := elections.GetByID(context.Background(), "e1")
	require.NoError(t, err)
	require.NotNil(t, stored, "election must survive a refused delete")
}

func TestDeleteElection_WithoutVotes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	elections, _, svc := electionFixture(now)

	elections.put(&domain.Election{ID: "e1", Title: "t", Status: domain.StatusUpcoming})

	require.NoError(t, svc.Delete(context.Background(), "e1"))

	stored, err := elections.GetByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestGetElection_NotFound(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, _, svc := electionFixture(now)

	_, err := svc.Get(context.Background(), "missing")
	assertErrorType(t, err, errors.ErrorTypeNotFound)
}
