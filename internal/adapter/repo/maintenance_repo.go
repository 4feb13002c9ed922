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

const maintenanceColumns = `id, printer, date, type, description, status, technician, notes,
created_at, updated_at`

// MaintenanceRepositoryPG implements domain.MaintenanceRepository.
type MaintenanceRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewMaintenanceRepository creates a maintenance repository backed by PostgreSQL.
func NewMaintenanceRepository(pool *pgxpool.Pool) *MaintenanceRepositoryPG {
	return &MaintenanceRepositoryPG{pool: pool}
}

// Create inserts a new maintenance record, assigning its id.
func (r *MaintenanceRepositoryPG) Create(ctx context.Context, rec *domain.MaintenanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `
INSERT INTO maintenance_records (id, printer, date, type, description, status, technician, notes,
	created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.Printer, rec.Date, rec.Type, rec.Description,
		rec.Status, rec.Technician, rec.Notes, rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

// GetByID fetches a record by its identifier.
func (r *MaintenanceRepositoryPG) GetByID(ctx context.Context, id string) (*domain.MaintenanceRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_records WHERE id = $1;`, id)
	return scanMaintenance(row)
}

// List returns all records, newest service date first.
func (r *MaintenanceRepositoryPG) List(ctx context.Context) ([]domain.MaintenanceRecord, error) {
	return r.query(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_records ORDER BY date DESC;`)
}

// ListByPrinter returns a printer's service history, newest first.
func (r *MaintenanceRepositoryPG) ListByPrinter(ctx context.Context, printerID string) ([]domain.MaintenanceRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_records
WHERE printer = $1 ORDER BY date DESC;`, printerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMaintenance(rows)
}

// Update persists every mutable record field.
func (r *MaintenanceRepositoryPG) Update(ctx context.Context, rec *domain.MaintenanceRecord) error {
	rec.UpdatedAt = time.Now()
	query := `
UPDATE maintenance_records
SET printer = $2, date = $3, type = $4, description = $5,
    status = $6, technician = $7, notes = $8, updated_at = $9
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query,
		rec.ID, rec.Printer, rec.Date, rec.Type, rec.Description,
		rec.Status, rec.Technician, rec.Notes, rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a record by id.
func (r *MaintenanceRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM maintenance_records WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByPrinter removes every record owned by the printer. Part of the
// printer-deletion cascade.
func (r *MaintenanceRepositoryPG) DeleteByPrinter(ctx context.Context, printerID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM maintenance_records WHERE printer = $1;`, printerID)
	return err
}

func (r *MaintenanceRepositoryPG) query(ctx context.Context, query string) ([]domain.MaintenanceRecord, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMaintenance(rows)
}

func collectMaintenance(rows pgx.Rows) ([]domain.MaintenanceRecord, error) {
	var records []domain.MaintenanceRecord
	for rows.Next() {
		rec, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanMaintenance(row pgx.Row) (*domain.MaintenanceRecord, error) {
	var rec domain.MaintenanceRecord
	if err := row.Scan(
		&rec.ID, &rec.Printer, &rec.Date, &rec.Type, &rec.Description,
		&rec.Status, &rec.Technician, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
