package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"evote-api/internal/domain"
	"evote-api/pkg/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// In-memory repository fakes. They enforce the same uniqueness rules as the
// Postgres schema, surfacing violations as pgconn errors so the services'
// constraint mapping is exercised for real.

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func testCache() *CacheService {
	return NewCacheService(nil, zap.NewNop())
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	eligibility map[string]map[string]bool // electionID -> userID set
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       make(map[string]*domain.User),
		eligibility: make(map[string]map[string]bool),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return uniqueViolation("users_email_key")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if id != user.ID && u.Email == user.Email {
			return uniqueViolation("users_email_key")
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	for _, set := range f.eligibility {
		delete(set, id)
	}
	return nil
}

func (f *fakeUserRepo) AssignElection(_ context.Context, userID, electionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.eligibility[electionID]
	if set == nil {
		set = make(map[string]bool)
		f.eligibility[electionID] = set
	}
	if set[userID] {
		return uniqueViolation("user_eligible_elections_pkey")
	}
	set[userID] = true
	return nil
}

func (f *fakeUserRepo) RemoveElection(_ context.Context, userID, electionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.eligibility[electionID], userID)
	return nil
}

func (f *fakeUserRepo) IsEligible(_ context.Context, userID, electionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eligibility[electionID][userID], nil
}

func (f *fakeUserRepo) CountEligible(_ context.Context, electionID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.eligibility[electionID]), nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

type fakeElectionRepo struct {
	mu        sync.Mutex
	elections map[string]*domain.Election
}

func newFakeElectionRepo() *fakeElectionRepo {
	return &fakeElectionRepo{elections: make(map[string]*domain.Election)}
}

func (f *fakeElectionRepo) put(e *domain.Election) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.elections[e.ID] = &cp
}

func (f *fakeElectionRepo) Create(_ context.Context, election *domain.Election) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	election.CreatedAt = time.Now()
	election.UpdatedAt = election.CreatedAt
	cp := *election
	f.elections[election.ID] = &cp
	return nil
}

func (f *fakeElectionRepo) GetByID(_ context.Context, id string) (*domain.Election, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.elections[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeElectionRepo) List(_ context.Context) ([]*domain.Election, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Election, 0, len(f.elections))
	for _, e := range f.elections {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (f *fakeElectionRepo) ListEligibleForUser(_ context.Context, _ string) ([]*domain.Election, error) {
	return nil, nil
}

func (f *fakeElectionRepo) Update(_ context.Context, election *domain.Election) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.elections[election.ID]
	if !ok {
		return nil
	}
	stored.Title = election.Title
	stored.Description = election.Description
	stored.StartDate = election.StartDate
	stored.EndDate = election.EndDate
	return nil
}

func (f *fakeElectionRepo) SetEnded(_ context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.elections[id]; ok {
		e.Status = domain.StatusEnded
		e.EndDate = now
	}
	return nil
}

func (f *fakeElectionRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.elections, id)
	return nil
}

func (f *fakeElectionRepo) MarkOngoing(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.elections {
		if e.Status == domain.StatusUpcoming && !now.Before(e.StartDate) {
			e.Status = domain.StatusOngoing
			n++
		}
	}
	return n, nil
}

func (f *fakeElectionRepo) MarkEnded(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.elections {
		if e.Status == domain.StatusOngoing && !now.Before(e.EndDate) {
			e.Status = domain.StatusEnded
			n++
		}
	}
	return n, nil
}

func (f *fakeElectionRepo) CountByStatus(_ context.Context, status domain.ElectionStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.elections {
		if e.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeElectionRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.elections), nil
}

func (f *fakeElectionRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Election, error) {
	all, _ := f.List(ctx)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeElectionRepo) ListRecentlyCreated(ctx context.Context, limit int) ([]*domain.Election, error) {
	all, _ := f.List(ctx)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type fakeCandidateRepo struct {
	mu         sync.Mutex
	candidates []*domain.Candidate
}

func newFakeCandidateRepo() *fakeCandidateRepo {
	return &fakeCandidateRepo{}
}

func (f *fakeCandidateRepo) Create(_ context.Context, candidate *domain.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.UserID == candidate.UserID && c.ElectionID == candidate.ElectionID {
			return uniqueViolation("candidates_user_id_election_id_key")
		}
	}
	candidate.CreatedAt = time.Now()
	candidate.UpdatedAt = candidate.CreatedAt
	cp := *candidate
	f.candidates = append(f.candidates, &cp)
	return nil
}

func (f *fakeCandidateRepo) GetByID(_ context.Context, id string) (*domain.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCandidateRepo) GetByUserAndElection(_ context.Context, userID, electionID string) (*domain.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.UserID == userID && c.ElectionID == electionID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCandidateRepo) List(_ context.Context, filter domain.CandidateFilter) ([]*domain.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Candidate
	for _, c := range f.candidates {
		if filter.ElectionID != "" && c.ElectionID != filter.ElectionID {
			continue
		}
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeCandidateRepo) UpdateStatus(_ context.Context, id string, status domain.CandidateStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.ID == id {
			c.Status = status
		}
	}
	return nil
}

func (f *fakeCandidateRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.candidates {
		if c.ID == id {
			f.candidates = append(f.candidates[:i], f.candidates[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeCandidateRepo) ListVerified(_ context.Context, electionID string) ([]*domain.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Candidate
	for _, c := range f.candidates {
		if c.ElectionID == electionID && c.Status == domain.CandidateVerified {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCandidateRepo) CountByStatus(_ context.Context, status domain.CandidateStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.candidates {
		if c.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeCandidateRepo) ListRecent(_ context.Context, limit int) ([]*domain.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Candidate, 0, len(f.candidates))
	for _, c := range f.candidates {
		cp := *c
		out = append(out, &cp)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeVoteRepo struct {
	mu    sync.Mutex
	votes []*domain.Vote
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{}
}

func (f *fakeVoteRepo) Create(_ context.Context, vote *domain.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes {
		if v.ElectionID == vote.ElectionID && v.VoterID == vote.VoterID {
			return uniqueViolation("votes_election_id_voter_id_key")
		}
	}
	vote.CreatedAt = time.Now()
	cp := *vote
	f.votes = append(f.votes, &cp)
	return nil
}

func (f *fakeVoteRepo) HasVoted(_ context.Context, electionID, voterID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes {
		if v.ElectionID == electionID && v.VoterID == voterID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVoteRepo) CountsByElection(_ context.Context, electionID string) ([]domain.VoteCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byCandidate := make(map[string]int)
	var order []string
	for _, v := range f.votes {
		if v.ElectionID != electionID {
			continue
		}
		if _, seen := byCandidate[v.CandidateID]; !seen {
			order = append(order, v.CandidateID)
		}
		byCandidate[v.CandidateID]++
	}
	out := make([]domain.VoteCount, 0, len(order))
	for _, id := range order {
		out = append(out, domain.VoteCount{CandidateID: id, Count: byCandidate[id]})
	}
	return out, nil
}

func (f *fakeVoteRepo) CountByElection(_ context.Context, electionID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.votes {
		if v.ElectionID == electionID {
			n++
		}
	}
	return n, nil
}

func (f *fakeVoteRepo) CountByCandidate(_ context.Context, candidateID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.votes {
		if v.CandidateID == candidateID {
			n++
		}
	}
	return n, nil
}

func (f *fakeVoteRepo) CountByVoter(_ context.Context, voterID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.votes {
		if v.VoterID == voterID {
			n++
		}
	}
	return n, nil
}

func (f *fakeVoteRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.votes), nil
}

func (f *fakeVoteRepo) CountDistinctVoters(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	voters := make(map[string]bool)
	for _, v := range f.votes {
		voters[v.VoterID] = true
	}
	return len(voters), nil
}

func (f *fakeVoteRepo) ListByVoter(_ context.Context, voterID string) ([]*domain.UserVote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.UserVote
	for _, v := range f.votes {
		if v.VoterID == voterID {
			out = append(out, &domain.UserVote{Vote: *v})
		}
	}
	return out, nil
}

func (f *fakeVoteRepo) HourlyHistogram(_ context.Context) ([24]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var histogram [24]int
	for _, v := range f.votes {
		histogram[v.CreatedAt.Hour()]++
	}
	return histogram, nil
}

func (f *fakeVoteRepo) CountsByElectionAndCandidate(_ context.Context) ([]domain.ElectionCandidateCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	type key struct{ election, candidate string }
	counts := make(map[key]int)
	var order []key
	for _, v := range f.votes {
		k := key{v.ElectionID, v.CandidateID}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	out := make([]domain.ElectionCandidateCount, 0, len(order))
	for _, k := range order {
		out = append(out, domain.ElectionCandidateCount{
			ElectionID:  k.election,
			CandidateID: k.candidate,
			Count:       counts[k],
		})
	}
	return out, nil
}

func (f *fakeVoteRepo) ListRecent(_ context.Context, limit int) ([]*domain.RecentVote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RecentVote
	for _, v := range f.votes {
		out = append(out, &domain.RecentVote{
			VoterName:     v.VoterID,
			CandidateName: v.CandidateID,
			ElectionTitle: v.ElectionID,
			CreatedAt:     v.CreatedAt,
		})
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
