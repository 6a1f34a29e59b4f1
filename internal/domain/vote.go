package domain

import "time"

// Vote is an immutable fact: one voter chose one candidate in one election.
// The store enforces at most one vote per (election, voter).
type Vote struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	VoterID     string    `json:"voter_id"`
	CandidateID string    `json:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CastVoteRequest represents a vote submission
type CastVoteRequest struct {
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
}

// CastVoteResponse is returned after a successful vote
type CastVoteResponse struct {
	VoteID     string    `json:"vote_id"`
	ElectionID string    `json:"election_id"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
}

// UserVote is a vote joined with display fields for the voter's history
type UserVote struct {
	Vote
	ElectionTitle string `json:"election_title"`
	CandidateName string `json:"candidate_name"`
}
