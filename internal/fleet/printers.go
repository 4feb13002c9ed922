package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"printfleet/internal/domain"
)

// Printers manages printer records and the cascade triggered by deletion.
type Printers struct {
	printers    domain.PrinterRepository
	jobs        domain.PrintJobRepository
	maintenance domain.MaintenanceRepository
	notify      Notifier
	logger      zerolog.Logger
	now         func() time.Time
}

// NewPrinters constructs the printer manager.
func NewPrinters(printers domain.PrinterRepository, jobs domain.PrintJobRepository, maintenance domain.MaintenanceRepository, notify Notifier, logger zerolog.Logger) *Printers {
	return &Printers{
		printers:    printers,
		jobs:        jobs,
		maintenance: maintenance,
		notify:      notify,
		logger:      logger,
		now:         time.Now,
	}
}

// PrinterUpdate carries the optional fields of a direct printer edit.
type PrinterUpdate struct {
	Name       *string
	Status     *domain.PrinterStatus
	Progress   *int
	TimeLeft   *string
	TempBed    *float64
	TempNozzle *float64
	Job        *string
	Material   *string
}

// Create stores a new printer with idle defaults. The first maintenance is
// due thirty days after creation.
func (p *Printers) Create(ctx context.Context, printer *domain.Printer) error {
	now := p.now()
	if printer.Status == "" {
		printer.Status = domain.PrinterIdle
	}
	if printer.TimeLeft == "" {
		printer.TimeLeft = domain.TimeLeftZero
	}
	if printer.Job == "" {
		printer.Job = domain.JobNone
	}
	if printer.Material == "" {
		printer.Material = domain.MaterialNone
	}
	if printer.StartTime == "" {
		printer.StartTime = domain.TimeNA
	}
	if printer.EstimatedEnd == "" {
		printer.EstimatedEnd = domain.TimeNA
	}
	if printer.LastMaintenance.IsZero() {
		printer.LastMaintenance = now
	}
	if printer.NextMaintenance.IsZero() {
		printer.NextMaintenance = now.AddDate(0, 0, 30)
	}

	if err := p.printers.Create(ctx, printer); err != nil {
		return err
	}
	p.logger.Info().Str("printer", printer.Name).Msg("printer registered")
	return nil
}

// Get fetches a printer by id.
func (p *Printers) Get(ctx context.Context, id string) (*domain.Printer, error) {
	printer, err := p.printers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	return printer, nil
}

// List returns all printers.
func (p *Printers) List(ctx context.Context) ([]domain.Printer, error) {
	return p.printers.List(ctx)
}

// Update applies a direct field edit and pushes the new state to observers.
func (p *Printers) Update(ctx context.Context, id string, upd PrinterUpdate) (*domain.Printer, error) {
	printer, err := p.printers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}

	if upd.Name != nil {
		printer.Name = *upd.Name
	}
	if upd.Status != nil {
		printer.Status = *upd.Status
	}
	if upd.Progress != nil {
		printer.Progress = *upd.Progress
	}
	if upd.TimeLeft != nil {
		printer.TimeLeft = *upd.TimeLeft
	}
	if upd.TempBed != nil {
		printer.Temperature.Bed = *upd.TempBed
	}
	if upd.TempNozzle != nil {
		printer.Temperature.Nozzle = *upd.TempNozzle
	}
	if upd.Job != nil {
		printer.Job = *upd.Job
	}
	if upd.Material != nil {
		printer.Material = *upd.Material
	}

	if err := p.printers.Update(ctx, printer); err != nil {
		return nil, err
	}
	p.notify.PrinterStatus(printer)
	return printer, nil
}

// Delete removes a printer and cascades: its maintenance records are
// deleted and any queued job targeting it by name becomes unassigned.
// Jobs in other states keep their historical printer reference.
func (p *Printers) Delete(ctx context.Context, id string) error {
	printer, err := p.printers.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("printer: %w", err)
	}

	if err := p.printers.Delete(ctx, id); err != nil {
		return err
	}
	if err := p.maintenance.DeleteByPrinter(ctx, id); err != nil {
		return err
	}
	if err := p.jobs.ReassignQueued(ctx, printer.Name); err != nil {
		return err
	}

	p.logger.Info().Str("printer", printer.Name).Msg("printer deleted")
	return nil
}
