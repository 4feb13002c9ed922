package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS printers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'Idle',
		progress INT NOT NULL DEFAULT 0,
		time_left TEXT NOT NULL DEFAULT '0h 0m',
		temp_bed DOUBLE PRECISION NOT NULL DEFAULT 25,
		temp_nozzle DOUBLE PRECISION NOT NULL DEFAULT 25,
		job TEXT NOT NULL DEFAULT 'None',
		material TEXT NOT NULL DEFAULT 'None',
		start_time TEXT NOT NULL DEFAULT 'N/A',
		estimated_end TEXT NOT NULL DEFAULT 'N/A',
		current_job_id TEXT NOT NULL DEFAULT '',
		last_maintenance TIMESTAMPTZ NOT NULL,
		next_maintenance TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS print_jobs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		printer TEXT NOT NULL,
		material TEXT NOT NULL,
		estimated_time TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Queued',
		progress INT NOT NULL DEFAULT 0,
		start_time TIMESTAMPTZ,
		end_time TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS maintenance_records (
		id TEXT PRIMARY KEY,
		printer TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		technician TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_print_jobs_status ON print_jobs (status)`,
	`CREATE INDEX IF NOT EXISTS idx_printers_next_maintenance ON printers (next_maintenance)`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_printer ON maintenance_records (printer)`,
}

// Migrate applies the schema DDL. Every statement is idempotent, so the
// runner is safe to call on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
