package domain

import (
	"context"
	"time"
)

// PrinterRepository defines persistence for printers.
type PrinterRepository interface {
	Create(ctx context.Context, printer *Printer) error
	GetByID(ctx context.Context, id string) (*Printer, error)
	GetByName(ctx context.Context, name string) (*Printer, error)
	List(ctx context.Context) ([]Printer, error)
	Update(ctx context.Context, printer *Printer) error
	Delete(ctx context.Context, id string) error
	// ListMaintenanceDue returns printers whose nextMaintenance falls in
	// [from, to], ascending by nextMaintenance. A nil bound is open.
	ListMaintenanceDue(ctx context.Context, from, to *time.Time) ([]Printer, error)
}

// PrintJobRepository defines persistence for print jobs.
type PrintJobRepository interface {
	Create(ctx context.Context, job *PrintJob) error
	GetByID(ctx context.Context, id string) (*PrintJob, error)
	List(ctx context.Context) ([]PrintJob, error)
	ListQueued(ctx context.Context) ([]PrintJob, error)
	ListActive(ctx context.Context) ([]PrintJob, error)
	ListCompleted(ctx context.Context) ([]PrintJob, error)
	Update(ctx context.Context, job *PrintJob) error
	Delete(ctx context.Context, id string) error
	// FindByNameAndStatus resolves the job matching a printer's denormalized
	// job name in one of the given statuses. Returns ErrNotFound when no row
	// matches.
	FindByNameAndStatus(ctx context.Context, name string, statuses ...JobStatus) (*PrintJob, error)
	// ReassignQueued resets printer to "Any" on every queued job targeting
	// printerName. Part of the printer-deletion cascade.
	ReassignQueued(ctx context.Context, printerName string) error
}

// MaintenanceRepository defines persistence for maintenance records.
type MaintenanceRepository interface {
	Create(ctx context.Context, record *MaintenanceRecord) error
	GetByID(ctx context.Context, id string) (*MaintenanceRecord, error)
	List(ctx context.Context) ([]MaintenanceRecord, error)
	ListByPrinter(ctx context.Context, printerID string) ([]MaintenanceRecord, error)
	Update(ctx context.Context, record *MaintenanceRecord) error
	Delete(ctx context.Context, id string) error
	DeleteByPrinter(ctx context.Context, printerID string) error
}
