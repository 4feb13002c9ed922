package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"printfleet/internal/domain"
)

const printerColumns = `id, name, status, progress, time_left, temp_bed, temp_nozzle,
job, material, start_time, estimated_end, current_job_id,
last_maintenance, next_maintenance, created_at, updated_at`

// PrinterRepositoryPG implements domain.PrinterRepository.
type PrinterRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPrinterRepository creates a printer repository backed by PostgreSQL.
func NewPrinterRepository(pool *pgxpool.Pool) *PrinterRepositoryPG {
	return &PrinterRepositoryPG{pool: pool}
}

// Create inserts a new printer record, assigning its id.
func (r *PrinterRepositoryPG) Create(ctx context.Context, p *domain.Printer) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
INSERT INTO printers (id, name, status, progress, time_left, temp_bed, temp_nozzle,
	job, material, start_time, estimated_end, current_job_id,
	last_maintenance, next_maintenance, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Status, p.Progress, p.TimeLeft,
		p.Temperature.Bed, p.Temperature.Nozzle,
		p.Job, p.Material, p.StartTime, p.EstimatedEnd, p.CurrentJobID,
		p.LastMaintenance, p.NextMaintenance, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateName
	}
	return err
}

// GetByID fetches a printer by its identifier.
func (r *PrinterRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Printer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+printerColumns+` FROM printers WHERE id = $1;`, id)
	return scanPrinter(row)
}

// GetByName fetches a printer by its unique name.
func (r *PrinterRepositoryPG) GetByName(ctx context.Context, name string) (*domain.Printer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+printerColumns+` FROM printers WHERE name = $1;`, name)
	return scanPrinter(row)
}

// List returns all printers ordered by name.
func (r *PrinterRepositoryPG) List(ctx context.Context) ([]domain.Printer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+printerColumns+` FROM printers ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPrinters(rows)
}

// Update persists every mutable printer field.
func (r *PrinterRepositoryPG) Update(ctx context.Context, p *domain.Printer) error {
	p.UpdatedAt = time.Now()
	query := `
UPDATE printers
SET name = $2, status = $3, progress = $4, time_left = $5,
    temp_bed = $6, temp_nozzle = $7, job = $8, material = $9,
    start_time = $10, estimated_end = $11, current_job_id = $12,
    last_maintenance = $13, next_maintenance = $14, updated_at = $15
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Status, p.Progress, p.TimeLeft,
		p.Temperature.Bed, p.Temperature.Nozzle, p.Job, p.Material,
		p.StartTime, p.EstimatedEnd, p.CurrentJobID,
		p.LastMaintenance, p.NextMaintenance, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateName
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a printer by id.
func (r *PrinterRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM printers WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListMaintenanceDue returns printers whose next maintenance falls between
// the given bounds, ascending by due date. Nil bounds are open.
func (r *PrinterRepositoryPG) ListMaintenanceDue(ctx context.Context, from, to *time.Time) ([]domain.Printer, error) {
	query := `SELECT ` + printerColumns + ` FROM printers WHERE 1=1`
	args := []any{}
	if from != nil {
		args = append(args, *from)
		query += ` AND next_maintenance >= $1`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND next_maintenance <= $2`
		} else {
			query += ` AND next_maintenance < $1`
		}
	}
	query += ` ORDER BY next_maintenance;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPrinters(rows)
}

func scanPrinter(row pgx.Row) (*domain.Printer, error) {
	var p domain.Printer
	if err := row.Scan(
		&p.ID, &p.Name, &p.Status, &p.Progress, &p.TimeLeft,
		&p.Temperature.Bed, &p.Temperature.Nozzle,
		&p.Job, &p.Material, &p.StartTime, &p.EstimatedEnd, &p.CurrentJobID,
		&p.LastMaintenance, &p.NextMaintenance, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func collectPrinters(rows pgx.Rows) ([]domain.Printer, error) {
	var printers []domain.Printer
	for rows.Next() {
		p, err := scanPrinter(rows)
		if err != nil {
			return nil, err
		}
		printers = append(printers, *p)
	}
	return printers, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
