package domain

import "time"

// ElectionStatus is the lifecycle state of an election
type ElectionStatus string

const (
	StatusUpcoming ElectionStatus = "Upcoming"
	StatusOngoing  ElectionStatus = "Ongoing"
	StatusEnded    ElectionStatus = "Ended"
)

// Election represents one election. The persisted status field is the single
// source of truth; only the lifecycle sweep and the manual-end operation
// write it after creation.
type Election struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Status      ElectionStatus `json:"status"`
	CreatedBy   string         `json:"created_by"`
	CreatorName string         `json:"creator_name,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// StatusForDates derives the lifecycle state for a fresh election. Used once
// at creation; afterwards the sweep owns all transitions.
func StatusForDates(now, start, end time.Time) ElectionStatus {
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.Before(end):
		return StatusOngoing
	default:
		return StatusEnded
	}
}

// CreateElectionRequest represents an election creation request
type CreateElectionRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// UpdateElectionRequest represents an election update request
type UpdateElectionRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}
