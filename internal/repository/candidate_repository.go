package repository

import (
	"context"
	"fmt"

	"evote-api/internal/domain"
	"evote-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PostgresCandidateRepository struct {
	db *database.PostgresDB
}

func NewCandidateRepository(db *database.PostgresDB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

const candidateColumns = `
	c.id, c.user_id, c.election_id, c.manifesto, c.profile_image, c.status,
	c.created_at, c.updated_at, u.name, u.email, e.title
`

func (r *PostgresCandidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	query := `
		INSERT INTO candidates (id, user_id, election_id, manifesto, profile_image, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		candidate.ID,
		candidate.UserID,
		candidate.ElectionID,
		candidate.Manifesto,
		candidate.ProfileImage,
		candidate.Status,
	).Scan(&candidate.CreatedAt, &candidate.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	return nil
}

func (r *PostgresCandidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates c
		JOIN users u ON u.id = c.user_id
		JOIN elections e ON e.id = c.election_id
		WHERE c.id = $1
	`

	return scanCandidate(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *PostgresCandidateRepository) GetByUserAndElection(ctx context.Context, userID, electionID string) (*domain.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates c
		JOIN users u ON u.id = c.user_id
		JOIN elections e ON e.id = c.election_id
		WHERE c.user_id = $1 AND c.election_id = $2
	`

	return scanCandidate(r.db.Pool.QueryRow(ctx, query, userID, electionID))
}

func (r *PostgresCandidateRepository) List(ctx context.Context, filter domain.CandidateFilter) ([]*domain.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates c
		JOIN users u ON u.id = c.user_id
		JOIN elections e ON e.id = c.election_id
		WHERE ($1 = '' OR c.election_id::text = $1)
		  AND ($2 = '' OR c.user_id::text = $2)
		  AND ($3 = '' OR c.status = $3)
		ORDER BY c.created_at
	`

	return r.queryCandidates(ctx, query, filter.ElectionID, filter.UserID, string(filter.Status))
}

func (r *PostgresCandidateRepository) UpdateStatus(ctx context.Context, id string, status domain.CandidateStatus) error {
	query := `
		UPDATE candidates
		SET status = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update candidate status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresCandidateRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresCandidateRepository) ListVerified(ctx context.Context, electionID string) ([]*domain.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates c
		JOIN users u ON u.id = c.user_id
		JOIN elections e ON e.id = c.election_id
		WHERE c.election_id = $1 AND c.status = $2
		ORDER BY c.created_at, c.id
	`

	return r.queryCandidates(ctx, query, electionID, domain.CandidateVerified)
}

func (r *PostgresCandidateRepository) CountByStatus(ctx context.Context, status domain.CandidateStatus) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM candidates WHERE status = $1`, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return count, nil
}

func (r *PostgresCandidateRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates c
		JOIN users u ON u.id = c.user_id
		JOIN elections e ON e.id = c.election_id
		ORDER BY c.created_at DESC
		LIMIT $1
	`

	return r.queryCandidates(ctx, query, limit)
}

func (r *PostgresCandidateRepository) queryCandidates(ctx context.Context, query string, args ...interface{}) ([]*domain.Candidate, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*domain.Candidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}

	return candidates, rows.Err()
}

func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var candidate domain.Candidate
	err := row.Scan(
		&candidate.ID,
		&candidate.UserID,
		&candidate.ElectionID,
		&candidate.Manifesto,
		&candidate.ProfileImage,
		&candidate.Status,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
		&candidate.UserName,
		&candidate.UserEmail,
		&candidate.ElectionTitle,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidate: %w", err)
	}
	return &candidate, nil
}
