package fleet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"printfleet/internal/domain"
)

// clockFormat renders the display-only startTime/estimatedEnd fields.
const clockFormat = "15:04:05"

// Lifecycle owns the printer state machine and the side effects on the
// printer's active job. Every operation runs under a per-printer mutex so
// two concurrent commands against the same printer serialize instead of
// racing the status precondition check.
type Lifecycle struct {
	printers domain.PrinterRepository
	jobs     domain.PrintJobRepository
	notify   Notifier
	logger   zerolog.Logger
	now      func() time.Time
	locks    sync.Map
}

// NewLifecycle constructs the lifecycle controller.
func NewLifecycle(printers domain.PrinterRepository, jobs domain.PrintJobRepository, notify Notifier, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		printers: printers,
		jobs:     jobs,
		notify:   notify,
		logger:   logger,
		now:      time.Now,
	}
}

func (l *Lifecycle) lockPrinter(id string) func() {
	v, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Start moves an idle printer into Printing against the given job.
func (l *Lifecycle) Start(ctx context.Context, printerID, jobID string) (*domain.Printer, error) {
	defer l.lockPrinter(printerID)()

	printer, err := l.printers.GetByID(ctx, printerID)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	if printer.Status != domain.PrinterIdle {
		return nil, fmt.Errorf("%w: printer is not idle", domain.ErrInvalidState)
	}

	job, err := l.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("print job: %w", err)
	}

	now := l.now()
	duration := domain.ParseEstimatedTime(job.EstimatedTime)

	printer.Status = domain.PrinterPrinting
	printer.Job = job.Name
	printer.Material = job.Material
	printer.TimeLeft = job.EstimatedTime
	printer.Progress = 0
	printer.StartTime = now.Format(clockFormat)
	printer.EstimatedEnd = now.Add(duration).Format(clockFormat)
	printer.CurrentJobID = job.ID

	if err := l.printers.Update(ctx, printer); err != nil {
		return nil, err
	}

	job.Status = domain.JobPrinting
	job.StartTime = &now
	if err := l.jobs.Update(ctx, job); err != nil {
		// The printer write already committed; surface the job failure so
		// the caller can retry.
		return nil, err
	}

	l.logger.Info().Str("printer", printer.Name).Str("job", job.Name).Msg("print started")
	l.notify.PrinterStatus(printer)
	return printer, nil
}

// Pause moves a printing printer into Paused.
func (l *Lifecycle) Pause(ctx context.Context, printerID string) (*domain.Printer, error) {
	defer l.lockPrinter(printerID)()

	printer, err := l.printers.GetByID(ctx, printerID)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	if printer.Status != domain.PrinterPrinting {
		return nil, fmt.Errorf("%w: printer is not printing", domain.ErrInvalidState)
	}

	printer.Status = domain.PrinterPaused
	if err := l.printers.Update(ctx, printer); err != nil {
		return nil, err
	}

	if job := l.activeJob(ctx, printer, domain.JobPrinting); job != nil {
		job.Status = domain.JobPaused
		if err := l.jobs.Update(ctx, job); err != nil {
			return nil, err
		}
	}

	l.notify.PrinterStatus(printer)
	return printer, nil
}

// Resume moves a paused printer back into Printing.
func (l *Lifecycle) Resume(ctx context.Context, printerID string) (*domain.Printer, error) {
	defer l.lockPrinter(printerID)()

	printer, err := l.printers.GetByID(ctx, printerID)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	if printer.Status != domain.PrinterPaused {
		return nil, fmt.Errorf("%w: printer is not paused", domain.ErrInvalidState)
	}

	printer.Status = domain.PrinterPrinting
	if err := l.printers.Update(ctx, printer); err != nil {
		return nil, err
	}

	if job := l.activeJob(ctx, printer, domain.JobPaused); job != nil {
		job.Status = domain.JobPrinting
		if err := l.jobs.Update(ctx, job); err != nil {
			return nil, err
		}
	}

	l.notify.PrinterStatus(printer)
	return printer, nil
}

// Stop cancels the active job and resets the printer to its idle defaults.
func (l *Lifecycle) Stop(ctx context.Context, printerID string) (*domain.Printer, error) {
	defer l.lockPrinter(printerID)()

	printer, err := l.printers.GetByID(ctx, printerID)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	if printer.Status != domain.PrinterPrinting && printer.Status != domain.PrinterPaused {
		return nil, fmt.Errorf("%w: printer is not printing or paused", domain.ErrInvalidState)
	}

	if job := l.activeJob(ctx, printer, domain.JobPrinting, domain.JobPaused); job != nil {
		now := l.now()
		job.Status = domain.JobCancelled
		job.EndTime = &now
		job.Progress = printer.Progress
		if err := l.jobs.Update(ctx, job); err != nil {
			return nil, err
		}
	}

	printer.ResetToIdle()
	if err := l.printers.Update(ctx, printer); err != nil {
		return nil, err
	}

	l.logger.Info().Str("printer", printer.Name).Msg("print stopped")
	l.notify.PrinterStatus(printer)
	return printer, nil
}

// UpdateProgress records progress and remaining time on a printing printer
// and mirrors the progress onto its active job.
func (l *Lifecycle) UpdateProgress(ctx context.Context, printerID string, progress int, timeLeft string) (*domain.Printer, error) {
	defer l.lockPrinter(printerID)()

	printer, err := l.printers.GetByID(ctx, printerID)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	if printer.Status != domain.PrinterPrinting {
		return nil, fmt.Errorf("%w: printer is not printing", domain.ErrInvalidState)
	}

	printer.Progress = progress
	printer.TimeLeft = timeLeft
	if err := l.printers.Update(ctx, printer); err != nil {
		return nil, err
	}

	if job := l.activeJob(ctx, printer, domain.JobPrinting); job != nil {
		job.Progress = progress
		if err := l.jobs.Update(ctx, job); err != nil {
			return nil, err
		}
		l.notify.JobProgress(job)
	}

	l.notify.PrinterStatus(printer)
	return printer, nil
}

// activeJob resolves the printer's current job, preferring the explicit
// currentJobId back-reference and falling back to the legacy name+status
// lookup. A missing job is not an error: the printer-side transition still
// proceeds, as it always has.
func (l *Lifecycle) activeJob(ctx context.Context, printer *domain.Printer, statuses ...domain.JobStatus) *domain.PrintJob {
	if printer.CurrentJobID != "" {
		job, err := l.jobs.GetByID(ctx, printer.CurrentJobID)
		if err == nil {
			for _, s := range statuses {
				if job.Status == s {
					return job
				}
			}
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			l.logger.Error().Err(err).Str("printer", printer.Name).Msg("active job lookup failed")
			return nil
		}
	}

	job, err := l.jobs.FindByNameAndStatus(ctx, printer.Job, statuses...)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			l.logger.Error().Err(err).Str("printer", printer.Name).Msg("active job lookup failed")
		}
		return nil
	}
	return job
}
