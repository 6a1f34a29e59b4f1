package repository

import (
	"context"
	"fmt"

	"evote-api/internal/domain"
	"evote-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PostgresUserRepository struct {
	db *database.PostgresDB
}

func NewUserRepository(db *database.PostgresDB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := r.scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	if err := r.loadEligibleElections(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user, err := r.scanUser(r.db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	if err := r.loadEligibleElections(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.created_at, u.updated_at,
		       COALESCE(array_agg(e.election_id) FILTER (WHERE e.election_id IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_eligible_elections e ON e.user_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.EligibleElections,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, role = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
	).Scan(&user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	// Eligibility rows cascade via FK; votes and candidacies are guarded by
	// the service before this is called.
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresUserRepository) AssignElection(ctx context.Context, userID, electionID string) error {
	query := `
		INSERT INTO user_eligible_elections (user_id, election_id)
		VALUES ($1, $2)
	`

	if _, err := r.db.Pool.Exec(ctx, query, userID, electionID); err != nil {
		return fmt.Errorf("failed to assign election: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) RemoveElection(ctx context.Context, userID, electionID string) error {
	query := `
		DELETE FROM user_eligible_elections
		WHERE user_id = $1 AND election_id = $2
	`

	if _, err := r.db.Pool.Exec(ctx, query, userID, electionID); err != nil {
		return fmt.Errorf("failed to remove election: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) IsEligible(ctx context.Context, userID, electionID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_eligible_elections
			WHERE user_id = $1 AND election_id = $2
		)
	`

	var eligible bool
	if err := r.db.Pool.QueryRow(ctx, query, userID, electionID).Scan(&eligible); err != nil {
		return false, fmt.Errorf("failed to check eligibility: %w", err)
	}
	return eligible, nil
}

func (r *PostgresUserRepository) CountEligible(ctx context.Context, electionID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM user_eligible_elections WHERE election_id = $1`,
		electionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count eligible users: %w", err)
	}
	return count, nil
}

func (r *PostgresUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *PostgresUserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) loadEligibleElections(ctx context.Context, user *domain.User) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT election_id FROM user_eligible_elections WHERE user_id = $1 ORDER BY assigned_at`,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load eligible elections: %w", err)
	}
	defer rows.Close()

	user.EligibleElections = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan eligible election: %w", err)
		}
		user.EligibleElections = append(user.EligibleElections, id)
	}

	return rows.Err()
}
