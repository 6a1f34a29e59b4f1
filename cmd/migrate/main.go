package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS votes CASCADE`,
		`DROP TABLE IF EXISTS candidates CASCADE`,
		`DROP TABLE IF EXISTS user_eligible_elections CASCADE`,
		`DROP TABLE IF EXISTS elections CASCADE`,
		`DROP TABLE IF EXISTS users CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS elections (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'Upcoming',
			created_by UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS user_eligible_elections (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			election_id UUID NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
			assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, election_id)
		)`,

		`CREATE TABLE IF NOT EXISTS candidates (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			election_id UUID NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
			manifesto TEXT NOT NULL,
			profile_image TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'Pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, election_id)
		)`,

		// The (election_id, voter_id) constraint is the single authority on
		// "one vote per user per election"
		`CREATE TABLE IF NOT EXISTS votes (
			id UUID PRIMARY KEY,
			election_id UUID NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
			voter_id UUID NOT NULL REFERENCES users(id),
			candidate_id UUID NOT NULL REFERENCES candidates(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (election_id, voter_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_elections_status ON elections(status)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_election ON candidates(election_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_election_candidate ON votes(election_id, candidate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_voter ON votes(voter_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_created_at ON votes(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
		}
		fmt.Printf("  Created: %s\n", shorten(query))
	}

	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := []struct {
		id, name, email, role string
	}{
		{"11111111-1111-1111-1111-111111111111", "Admin", "admin@example.com", "admin"},
		{"22222222-2222-2222-2222-222222222222", "Alice Voter", "alice@example.com", "user"},
		{"33333333-3333-3333-3333-333333333333", "Bob Voter", "bob@example.com", "user"},
		{"44444444-4444-4444-4444-444444444444", "Carol Candidate", "carol@example.com", "user"},
	}

	for _, u := range users {
		_, err := conn.Exec(ctx, `
			INSERT INTO users (id, name, email, password_hash, role)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO NOTHING
		`, u.id, u.name, u.email, string(hash), u.role)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.email, err)
		}
	}
	fmt.Printf("  Seeded %d users (password: password123)\n", len(users))

	electionID := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	now := time.Now()
	_, err = conn.Exec(ctx, `
		INSERT INTO elections (id, title, description, start_date, end_date, status, created_by)
		VALUES ($1, 'Student Council 2026', 'Annual student council election', $2, $3, 'Ongoing', $4)
		ON CONFLICT (id) DO NOTHING
	`, electionID, now.Add(-24*time.Hour), now.Add(6*24*time.Hour), users[0].id)
	if err != nil {
		return fmt.Errorf("failed to seed election: %w", err)
	}

	for _, u := range users[1:] {
		_, err := conn.Exec(ctx, `
			INSERT INTO user_eligible_elections (user_id, election_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, u.id, electionID)
		if err != nil {
			return fmt.Errorf("failed to seed eligibility: %w", err)
		}
	}

	_, err = conn.Exec(ctx, `
		INSERT INTO candidates (id, user_id, election_id, manifesto, status)
		VALUES ('bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb', $1, $2, 'Better campus food and longer library hours', 'Verified')
		ON CONFLICT (user_id, election_id) DO NOTHING
	`, users[3].id, electionID)
	if err != nil {
		return fmt.Errorf("failed to seed candidate: %w", err)
	}

	fmt.Println("  Seeded 1 ongoing election with 1 verified candidate")

	return nil
}

func shorten(query string) string {
	if len(query) > 50 {
		return query[:50] + "..."
	}
	return query
}
