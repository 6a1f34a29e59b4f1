package domain

import "time"

// CandidateResult is one row of a tally: a verified candidate and their
// vote count. Candidates with zero votes are included.
type CandidateResult struct {
	CandidateID   string `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	Manifesto     string `json:"manifesto,omitempty"`
	ProfileImage  string `json:"profile_image,omitempty"`
	Votes         int    `json:"votes"`
}

// ElectionResults is the full tally for one election
type ElectionResults struct {
	ElectionID          string            `json:"election_id"`
	ElectionTitle       string            `json:"election_title"`
	ElectionStatus      ElectionStatus    `json:"election_status"`
	StartDate           time.Time         `json:"start_date"`
	EndDate             time.Time         `json:"end_date"`
	TotalVotes          int               `json:"total_votes"`
	TotalEligibleVoters int               `json:"total_eligible_voters"`
	TurnoutPercentage   string            `json:"turnout_percentage"`
	Winner              *CandidateResult  `json:"winner,omitempty"`
	Results             []CandidateResult `json:"results"`
}

// LiveResults is the in-progress tally exposed to admins for monitoring.
// Counts may lag concurrent vote inserts by a moment; they are not a
// transactionally isolated snapshot.
type LiveResults struct {
	ElectionID    string            `json:"election_id"`
	ElectionTitle string            `json:"election_title"`
	TotalVotes    int               `json:"total_votes"`
	Results       []CandidateResult `json:"results"`
}

// VoteCount is a raw (candidate, count) aggregation row
type VoteCount struct {
	CandidateID string
	Count       int
}

// ElectionCandidateCount is a raw (election, candidate, count) aggregation row
type ElectionCandidateCount struct {
	ElectionID  string
	CandidateID string
	Count       int
}

// AdminStats holds dashboard totals
type AdminStats struct {
	TotalUsers          int `json:"total_users"`
	TotalElections      int `json:"total_elections"`
	TotalVotes          int `json:"total_votes"`
	TotalCandidates     int `json:"total_candidates"`
	OngoingElections    int `json:"ongoing_elections"`
	PendingApplications int `json:"pending_applications"`
}

// ElectionVotes pairs an election title with its vote count
type ElectionVotes struct {
	Name  string `json:"name"`
	Votes int    `json:"votes"`
}

// ElectionStats summarises elections for the admin dashboard
type ElectionStats struct {
	Upcoming         int             `json:"upcoming"`
	Ongoing          int             `json:"ongoing"`
	Ended            int             `json:"ended"`
	VotesPerElection []ElectionVotes `json:"votes_per_election"`
	VoterTurnout     string          `json:"voter_turnout"`
}

// RecentVote is a vote row joined with display names for the activity feed
type RecentVote struct {
	VoterName     string    `json:"voter_name"`
	CandidateName string    `json:"candidate_name"`
	ElectionTitle string    `json:"election_title"`
	CreatedAt     time.Time `json:"created_at"`
}

// Activity is one entry in the recent-activity feed
type Activity struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ElectionCompetitiveness scores how close a race is: 1 - margin/totalVotes
// between the top two candidates. Higher means closer.
type ElectionCompetitiveness struct {
	ElectionID           string         `json:"election_id"`
	Title                string         `json:"title"`
	Status               ElectionStatus `json:"status"`
	TotalVotes           int            `json:"total_votes"`
	CompetitivenessScore float64        `json:"competitiveness_score"`
}

// VoterEngagement summarises platform-wide participation
type VoterEngagement struct {
	ParticipationRate string `json:"participation_rate"`
	TotalVoters       int    `json:"total_voters"`
	TotalEligible     int    `json:"total_eligible_users"`
}

// Analytics is the admin analytics payload
type Analytics struct {
	VoterEngagement         VoterEngagement           `json:"voter_engagement"`
	HourlyVotes             [24]int                   `json:"hourly_votes"`
	ElectionCompetitiveness []ElectionCompetitiveness `json:"election_competitiveness"`
}
