package repository

import (
	"context"
	"fmt"

	"evote-api/internal/domain"
	"evote-api/pkg/database"
)

type PostgresVoteRepository struct {
	db *database.PostgresDB
}

func NewVoteRepository(db *database.PostgresDB) *PostgresVoteRepository {
	return &PostgresVoteRepository{db: db}
}

// Create inserts a vote. Double votes surface here as a unique violation on
// votes_election_id_voter_id_key, not as an application-level race.
func (r *PostgresVoteRepository) Create(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (id, election_id, voter_id, candidate_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		vote.ID,
		vote.ElectionID,
		vote.VoterID,
		vote.CandidateID,
	).Scan(&vote.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}

	return nil
}

func (r *PostgresVoteRepository) HasVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM votes WHERE election_id = $1 AND voter_id = $2
		)
	`

	var voted bool
	if err := r.db.Pool.QueryRow(ctx, query, electionID, voterID).Scan(&voted); err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return voted, nil
}

func (r *PostgresVoteRepository) CountsByElection(ctx context.Context, electionID string) ([]domain.VoteCount, error) {
	query := `
		SELECT candidate_id, count(*)
		FROM votes
		WHERE election_id = $1
		GROUP BY candidate_id
	`

	rows, err := r.db.Pool.Query(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate votes: %w", err)
	}
	defer rows.Close()

	var counts []domain.VoteCount
	for rows.Next() {
		var vc domain.VoteCount
		if err := rows.Scan(&vc.CandidateID, &vc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts = append(counts, vc)
	}

	return counts, rows.Err()
}

func (r *PostgresVoteRepository) CountByElection(ctx context.Context, electionID string) (int, error) {
	return r.scalarCount(ctx, `SELECT count(*) FROM votes WHERE election_id = $1`, electionID)
}

func (r *PostgresVoteRepository) CountByCandidate(ctx context.Context, candidateID string) (int, error) {
	return r.scalarCount(ctx, `SELECT count(*) FROM votes WHERE candidate_id = $1`, candidateID)
}

func (r *PostgresVoteRepository) CountByVoter(ctx context.Context, voterID string) (int, error) {
	return r.scalarCount(ctx, `SELECT count(*) FROM votes WHERE voter_id = $1`, voterID)
}

func (r *PostgresVoteRepository) Count(ctx context.Context) (int, error) {
	return r.scalarCount(ctx, `SELECT count(*) FROM votes`)
}

func (r *PostgresVoteRepository) CountDistinctVoters(ctx context.Context) (int, error) {
	return r.scalarCount(ctx, `SELECT count(DISTINCT voter_id) FROM votes`)
}

func (r *PostgresVoteRepository) ListByVoter(ctx context.Context, voterID string) ([]*domain.UserVote, error) {
	query := `
		SELECT v.id, v.election_id, v.voter_id, v.candidate_id, v.created_at,
		       e.title, cu.name
		FROM votes v
		JOIN elections e ON e.id = v.election_id
		JOIN candidates c ON c.id = v.candidate_id
		JOIN users cu ON cu.id = c.user_id
		WHERE v.voter_id = $1
		ORDER BY v.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []*domain.UserVote
	for rows.Next() {
		var uv domain.UserVote
		if err := rows.Scan(
			&uv.ID,
			&uv.ElectionID,
			&uv.VoterID,
			&uv.CandidateID,
			&uv.CreatedAt,
			&uv.ElectionTitle,
			&uv.CandidateName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, &uv)
	}

	return votes, rows.Err()
}

func (r *PostgresVoteRepository) HourlyHistogram(ctx context.Context) ([24]int, error) {
	var histogram [24]int

	query := `
		SELECT extract(hour FROM created_at)::int, count(*)
		FROM votes
		GROUP BY 1
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return histogram, fmt.Errorf("failed to build hourly histogram: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return histogram, fmt.Errorf("failed to scan histogram row: %w", err)
		}
		if hour >= 0 && hour < 24 {
			histogram[hour] = count
		}
	}

	return histogram, rows.Err()
}

func (r *PostgresVoteRepository) CountsByElectionAndCandidate(ctx context.Context) ([]domain.ElectionCandidateCount, error) {
	query := `
		SELECT election_id, candidate_id, count(*)
		FROM votes
		GROUP BY election_id, candidate_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate votes by election: %w", err)
	}
	defer rows.Close()

	var counts []domain.ElectionCandidateCount
	for rows.Next() {
		var ecc domain.ElectionCandidateCount
		if err := rows.Scan(&ecc.ElectionID, &ecc.CandidateID, &ecc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan aggregation row: %w", err)
		}
		counts = append(counts, ecc)
	}

	return counts, rows.Err()
}

func (r *PostgresVoteRepository) ListRecent(ctx context.Context, limit int) ([]*domain.RecentVote, error) {
	query := `
		SELECT vu.name, cu.name, e.title, v.created_at
		FROM votes v
		JOIN users vu ON vu.id = v.voter_id
		JOIN elections e ON e.id = v.election_id
		JOIN candidates c ON c.id = v.candidate_id
		JOIN users cu ON cu.id = c.user_id
		ORDER BY v.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent votes: %w", err)
	}
	defer rows.Close()

	var votes []*domain.RecentVote
	for rows.Next() {
		var rv domain.RecentVote
		if err := rows.Scan(&rv.VoterName, &rv.CandidateName, &rv.ElectionTitle, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent vote: %w", err)
		}
		votes = append(votes, &rv)
	}

	return votes, rows.Err()
}

func (r *PostgresVoteRepository) scalarCount(ctx context.Context, query string, args ...interface{}) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}
