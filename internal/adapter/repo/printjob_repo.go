package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"printfleet/internal/domain"
)

const jobColumns = `id, name, printer, material, estimated_time, status, progress,
start_time, end_time, created_at, updated_at`

// PrintJobRepositoryPG implements domain.PrintJobRepository.
type PrintJobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPrintJobRepository creates a print job repository backed by PostgreSQL.
func NewPrintJobRepository(pool *pgxpool.Pool) *PrintJobRepositoryPG {
	return &PrintJobRepositoryPG{pool: pool}
}

// Create inserts a new job record, assigning its id.
func (r *PrintJobRepositoryPG) Create(ctx context.Context, job *domain.PrintJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `
INSERT INTO print_jobs (id, name, printer, material, estimated_time, status, progress,
	start_time, end_time, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID, job.Name, job.Printer, job.Material, job.EstimatedTime,
		job.Status, job.Progress, job.StartTime, job.EndTime,
		job.CreatedAt, job.UpdatedAt,
	)
	return err
}

// GetByID fetches a job by its identifier.
func (r *PrintJobRepositoryPG) GetByID(ctx context.Context, id string) (*domain.PrintJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM print_jobs WHERE id = $1;`, id)
	return scanJob(row)
}

// List returns all jobs, newest first.
func (r *PrintJobRepositoryPG) List(ctx context.Context) ([]domain.PrintJob, error) {
	return r.query(ctx, `SELECT `+jobColumns+` FROM print_jobs ORDER BY created_at DESC;`)
}

// ListQueued returns queued jobs, oldest first.
func (r *PrintJobRepositoryPG) ListQueued(ctx context.Context) ([]domain.PrintJob, error) {
	return r.query(ctx, `SELECT `+jobColumns+` FROM print_jobs WHERE status = 'Queued' ORDER BY created_at;`)
}

// ListActive returns printing/paused jobs, most recently started first.
func (r *PrintJobRepositoryPG) ListActive(ctx context.Context) ([]domain.PrintJob, error) {
	return r.query(ctx, `SELECT `+jobColumns+` FROM print_jobs
WHERE status IN ('Printing', 'Paused') ORDER BY start_time DESC NULLS LAST;`)
}

// ListCompleted returns terminal-state jobs, most recently finished first.
func (r *PrintJobRepositoryPG) ListCompleted(ctx context.Context) ([]domain.PrintJob, error) {
	return r.query(ctx, `SELECT `+jobColumns+` FROM print_jobs
WHERE status IN ('Completed', 'Failed', 'Cancelled') ORDER BY end_time DESC NULLS LAST;`)
}

// Update persists every mutable job field.
func (r *PrintJobRepositoryPG) Update(ctx context.Context, job *domain.PrintJob) error {
	job.UpdatedAt = time.Now()
	query := `
UPDATE print_jobs
SET name = $2, printer = $3, material = $4, estimated_time = $5,
    status = $6, progress = $7, start_time = $8, end_time = $9, updated_at = $10
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query,
		job.ID, job.Name, job.Printer, job.Material, job.EstimatedTime,
		job.Status, job.Progress, job.StartTime, job.EndTime, job.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a job by id.
func (r *PrintJobRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM print_jobs WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindByNameAndStatus resolves the job matching a printer's denormalized job
// name in one of the given statuses. With duplicate job names the oldest
// match wins, mirroring the store's original first-match behavior.
func (r *PrintJobRepositoryPG) FindByNameAndStatus(ctx context.Context, name string, statuses ...domain.JobStatus) (*domain.PrintJob, error) {
	set := make([]string, len(statuses))
	for i, s := range statuses {
		set[i] = string(s)
	}
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM print_jobs
WHERE name = $1 AND status = ANY($2) ORDER BY created_at LIMIT 1;`, name, set)
	return scanJob(row)
}

// ReassignQueued resets printer to "Any" on queued jobs targeting printerName.
func (r *PrintJobRepositoryPG) ReassignQueued(ctx context.Context, printerName string) error {
	_, err := r.pool.Exec(ctx, `UPDATE print_jobs SET printer = 'Any', updated_at = NOW()
WHERE printer = $1 AND status = 'Queued';`, printerName)
	return err
}

func (r *PrintJobRepositoryPG) query(ctx context.Context, query string) ([]domain.PrintJob, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.PrintJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*domain.PrintJob, error) {
	var job domain.PrintJob
	if err := row.Scan(
		&job.ID, &job.Name, &job.Printer, &job.Material, &job.EstimatedTime,
		&job.Status, &job.Progress, &job.StartTime, &job.EndTime,
		&job.CreatedAt, &job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}
