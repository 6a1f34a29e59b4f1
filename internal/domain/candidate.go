package domain

import "time"

// CandidateStatus is the verification state of a candidate application
type CandidateStatus string

const (
	CandidatePending  CandidateStatus = "Pending"
	CandidateVerified CandidateStatus = "Verified"
	CandidateRejected CandidateStatus = "Rejected"
)

// Candidate represents one user's application to run in one election.
// At most one candidate exists per (user, election) pair.
type Candidate struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	ElectionID   string          `json:"election_id"`
	Manifesto    string          `json:"manifesto"`
	ProfileImage string          `json:"profile_image,omitempty"`
	Status       CandidateStatus `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Joined fields for list/detail views
	UserName      string `json:"user_name,omitempty"`
	UserEmail     string `json:"user_email,omitempty"`
	ElectionTitle string `json:"election_title,omitempty"`
}

// ApplyRequest represents a candidacy application
type ApplyRequest struct {
	ElectionID   string `json:"election_id"`
	Manifesto    string `json:"manifesto"`
	ProfileImage string `json:"profile_image"`
}

// VerifyRequest represents an admin verification decision
type VerifyRequest struct {
	Status CandidateStatus `json:"status"`
}

// CandidateFilter narrows candidate listings
type CandidateFilter struct {
	ElectionID string
	UserID     string
	Status     CandidateStatus
}
