package repository

import (
	"context"
	"fmt"
	"time"

	"evote-api/internal/domain"
	"evote-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PostgresElectionRepository struct {
	db *database.PostgresDB
}

func NewElectionRepository(db *database.PostgresDB) *PostgresElectionRepository {
	return &PostgresElectionRepository{db: db}
}

const electionColumns = `
	e.id, e.title, e.description, e.start_date, e.end_date, e.status,
	e.created_by, u.name, e.created_at, e.updated_at
`

func (r *PostgresElectionRepository) Create(ctx context.Context, election *domain.Election) error {
	query := `
		INSERT INTO elections (id, title, description, start_date, end_date, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		election.ID,
		election.Title,
		election.Description,
		election.StartDate,
		election.EndDate,
		election.Status,
		election.CreatedBy,
	).Scan(&election.CreatedAt, &election.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create election: %w", err)
	}

	return nil
}

func (r *PostgresElectionRepository) GetByID(ctx context.Context, id string) (*domain.Election, error) {
	query := `
		SELECT ` + electionColumns + `
		FROM elections e
		JOIN users u ON u.id = e.created_by
		WHERE e.id = $1
	`

	return scanElection(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *PostgresElectionRepository) List(ctx context.Context) ([]*domain.Election, error) {
	query := `
		SELECT ` + electionColumns + `
		FROM elections e
		JOIN users u ON u.id = e.created_by
		ORDER BY e.start_date DESC
	`

	return r.queryElections(ctx, query)
}

func (r *PostgresElectionRepository) ListEligibleForUser(ctx context.Context, userID string) ([]*domain.Election, error) {
	query := `
		SELECT ` + electionColumns + `
		FROM user_eligible_elections ee
		JOIN elections e ON e.id = ee.election_id
		JOIN users u ON u.id = e.created_by
		WHERE ee.user_id = $1
		ORDER BY e.start_date DESC
	`

	return r.queryElections(ctx, query, userID)
}

func (r *PostgresElectionRepository) Update(ctx context.Context, election *domain.Election) error {
	query := `
		UPDATE elections
		SET title = $2, description = $3, start_date = $4, end_date = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		election.ID,
		election.Title,
		election.Description,
		election.StartDate,
		election.EndDate,
	).Scan(&election.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update election: %w", err)
	}

	return nil
}

func (r *PostgresElectionRepository) SetEnded(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE elections
		SET status = $2, end_date = $3, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, domain.StatusEnded, now)
	if err != nil {
		return fmt.Errorf("failed to end election: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresElectionRepository) Delete(ctx context.Context, id string) error {
	// Candidates and eligibility rows cascade via FK. Votes block deletion
	// at the service layer before this runs.
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM elections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete election: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkOngoing is one half of the lifecycle sweep. The predicate only ever
// moves Upcoming forward, so repeated runs are idempotent and a manually
// ended election is never touched.
func (r *PostgresElectionRepository) MarkOngoing(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE elections
		SET status = $1, updated_at = now()
		WHERE status = $2 AND start_date <= $3
	`

	tag, err := r.db.Pool.Exec(ctx, query, domain.StatusOngoing, domain.StatusUpcoming, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark elections ongoing: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresElectionRepository) MarkEnded(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE elections
		SET status = $1, updated_at = now()
		WHERE status = $2 AND end_date <= $3
	`

	tag, err := r.db.Pool.Exec(ctx, query, domain.StatusEnded, domain.StatusOngoing, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark elections ended: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresElectionRepository) CountByStatus(ctx context.Context, status domain.ElectionStatus) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM elections WHERE status = $1`, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count elections by status: %w", err)
	}
	return count, nil
}

func (r *PostgresElectionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM elections`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count elections: %w", err)
	}
	return count, nil
}

func (r *PostgresElectionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Election, error) {
	query := `
		SELECT ` + electionColumns + `
		FROM elections e
		JOIN users u ON u.id = e.created_by
		ORDER BY e.start_date DESC
		LIMIT $1
	`

	return r.queryElections(ctx, query, limit)
}

func (r *PostgresElectionRepository) ListRecentlyCreated(ctx context.Context, limit int) ([]*domain.Election, error) {
	query := `
		SELECT ` + electionColumns + `
		FROM elections e
		JOIN users u ON u.id = e.created_by
		ORDER BY e.created_at DESC
		LIMIT $1
	`

	return r.queryElections(ctx, query, limit)
}

func (r *PostgresElectionRepository) queryElections(ctx context.Context, query string, args ...interface{}) ([]*domain.Election, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	var elections []*domain.Election
	for rows.Next() {
		election, err := scanElection(rows)
		if err != nil {
			return nil, err
		}
		elections = append(elections, election)
	}

	return elections, rows.Err()
}

func scanElection(row pgx.Row) (*domain.Election, error) {
	var election domain.Election
	err := row.Scan(
		&election.ID,
		&election.Title,
		&election.Description,
		&election.StartDate,
		&election.EndDate,
		&election.Status,
		&election.CreatedBy,
		&election.CreatorName,
		&election.CreatedAt,
		&election.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan election: %w", err)
	}
	return &election, nil
}
