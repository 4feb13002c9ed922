package fleet

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"printfleet/internal/domain"
)

// JobQueue coordinates print job records and their printer assignments.
type JobQueue struct {
	jobs     domain.PrintJobRepository
	printers domain.PrinterRepository
	logger   zerolog.Logger
}

// NewJobQueue constructs the job queue coordinator.
func NewJobQueue(jobs domain.PrintJobRepository, printers domain.PrinterRepository, logger zerolog.Logger) *JobQueue {
	return &JobQueue{jobs: jobs, printers: printers, logger: logger}
}

// JobUpdate carries the optional fields of a job update. Nil means the field
// is left unchanged.
type JobUpdate struct {
	Name          *string
	Printer       *string
	Material      *string
	EstimatedTime *string
	Status        *domain.JobStatus
	Progress      *int
}

// Create validates the target printer and stores a new queued job.
func (q *JobQueue) Create(ctx context.Context, job *domain.PrintJob) error {
	if job.Printer != "" && job.Printer != domain.PrinterAny {
		if err := q.checkPrinterAvailable(ctx, job.Printer); err != nil {
			return err
		}
	}
	if job.Status == "" {
		job.Status = domain.JobQueued
	}
	if err := q.jobs.Create(ctx, job); err != nil {
		return err
	}
	q.logger.Info().Str("job", job.Name).Str("printer", job.Printer).Msg("print job queued")
	return nil
}

// Update applies a partial update. Printer, material and estimated time are
// frozen once a job is printing, and a terminal job never changes status.
func (q *JobQueue) Update(ctx context.Context, id string, upd JobUpdate) (*domain.PrintJob, error) {
	job, err := q.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("print job: %w", err)
	}

	if job.Status == domain.JobPrinting {
		if changes(upd.Printer, job.Printer) || changes(upd.Material, job.Material) || changes(upd.EstimatedTime, job.EstimatedTime) {
			return nil, fmt.Errorf("%w: cannot update printer, material, or estimated time while job is printing", domain.ErrInvalidState)
		}
	}
	if job.Status.Terminal() && upd.Status != nil && *upd.Status != job.Status {
		return nil, fmt.Errorf("%w: job is already %s", domain.ErrInvalidState, job.Status)
	}

	if upd.Printer != nil && *upd.Printer != domain.PrinterAny && *upd.Printer != job.Printer {
		if err := q.checkPrinterAvailable(ctx, *upd.Printer); err != nil {
			return nil, err
		}
	}

	if upd.Name != nil {
		job.Name = *upd.Name
	}
	if upd.Printer != nil {
		job.Printer = *upd.Printer
	}
	if upd.Material != nil {
		job.Material = *upd.Material
	}
	if upd.EstimatedTime != nil {
		job.EstimatedTime = *upd.EstimatedTime
	}
	if upd.Status != nil {
		job.Status = *upd.Status
	}
	if upd.Progress != nil {
		job.Progress = *upd.Progress
	}

	if err := q.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes a job unless it is currently printing.
func (q *JobQueue) Delete(ctx context.Context, id string) error {
	job, err := q.jobs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("print job: %w", err)
	}
	if job.Status == domain.JobPrinting {
		return fmt.Errorf("%w: cannot delete a job that is currently printing", domain.ErrInvalidState)
	}
	return q.jobs.Delete(ctx, id)
}

// Assign points a queued job at an idle printer without starting it.
func (q *JobQueue) Assign(ctx context.Context, jobID, printerName string) (*domain.PrintJob, error) {
	job, err := q.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("print job: %w", err)
	}
	if job.Status != domain.JobQueued {
		return nil, fmt.Errorf("%w: can only assign printer to queued jobs", domain.ErrInvalidState)
	}

	printer, err := q.printers.GetByName(ctx, printerName)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	if printer.Status != domain.PrinterIdle {
		return nil, fmt.Errorf("%w: printer is not available", domain.ErrInvalidState)
	}

	job.Printer = printerName
	if err := q.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Get fetches a job by id.
func (q *JobQueue) Get(ctx context.Context, id string) (*domain.PrintJob, error) {
	job, err := q.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("print job: %w", err)
	}
	return job, nil
}

// List returns all jobs, newest first.
func (q *JobQueue) List(ctx context.Context) ([]domain.PrintJob, error) {
	return q.jobs.List(ctx)
}

// Queued returns queued jobs, oldest first.
func (q *JobQueue) Queued(ctx context.Context) ([]domain.PrintJob, error) {
	return q.jobs.ListQueued(ctx)
}

// Active returns printing/paused jobs, most recently started first.
func (q *JobQueue) Active(ctx context.Context) ([]domain.PrintJob, error) {
	return q.jobs.ListActive(ctx)
}

// Completed returns terminal-state jobs, most recently finished first.
func (q *JobQueue) Completed(ctx context.Context) ([]domain.PrintJob, error) {
	return q.jobs.ListCompleted(ctx)
}

// checkPrinterAvailable rejects a named target that does not exist or is
// busy. A queued job may point at an idle printer without occupying it;
// occupation happens only through Lifecycle.Start.
func (q *JobQueue) checkPrinterAvailable(ctx context.Context, name string) error {
	printer, err := q.printers.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: specified printer not found", domain.ErrInvalidState)
	}
	if printer.Status != domain.PrinterIdle {
		return fmt.Errorf("%w: specified printer is not available", domain.ErrInvalidState)
	}
	return nil
}

func changes(upd *string, current string) bool {
	return upd != nil && *upd != current
}
