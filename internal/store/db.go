package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

// Init connects to Postgres and runs migrations
func Init(connString string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	DB, err = pgxpool.New(ctx, connString)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := DB.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return runMigrations(ctx)
}

// runMigrations creates the necessary tables if they don't exist
func runMigrations(ctx context.Context) error {
	// Table: scan_jobs (tracks bulk upload batches)
	queryJobs := `
	CREATE TABLE IF NOT EXISTS scan_jobs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		total_count INT DEFAULT 0,
		processed_count INT DEFAULT 0,
		created_at TIMESTAMP DEFAULT NOW(),
		completed_at TIMESTAMP
	);`

	// Table: verdicts (one row per scanned URL)
	// The full verdict snapshot is stored as JSONB so it can be re-read or
	// re-analyzed later without schema churn; score and tier are lifted
	// into columns for filtering.
	queryVerdicts := `
	CREATE TABLE IF NOT EXISTS verdicts (
		id SERIAL PRIMARY KEY,
		job_id TEXT NOT NULL REFERENCES scan_jobs(id),
		url TEXT NOT NULL,
		score INT NOT NULL,
		tier TEXT NOT NULL,
		data JSONB NOT NULL
	);`

	if _, err := DB.Exec(ctx, queryJobs); err != nil {
		return fmt.Errorf("migration failed (scan_jobs): %w", err)
	}
	if _, err := DB.Exec(ctx, queryVerdicts); err != nil {
		return fmt.Errorf("migration failed (verdicts): %w", err)
	}

	return nil
}
