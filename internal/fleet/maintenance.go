package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"printfleet/internal/domain"
)

// Maintenance schedules printer service dates from logged maintenance events.
type Maintenance struct {
	records  domain.MaintenanceRepository
	printers domain.PrinterRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewMaintenance constructs the maintenance scheduler.
func NewMaintenance(records domain.MaintenanceRepository, printers domain.PrinterRepository, logger zerolog.Logger) *Maintenance {
	return &Maintenance{records: records, printers: printers, logger: logger, now: time.Now}
}

// MaintenanceUpdate carries the optional fields of a record update.
type MaintenanceUpdate struct {
	Printer     *string
	Date        *time.Time
	Type        *domain.MaintenanceType
	Description *string
	Status      *domain.MaintenanceStatus
	Technician  *string
	Notes       *string
}

// NextMaintenanceDate applies the next-date policy: Routine +1 month,
// Emergency +7 days, Calibration +14 days, Upgrade +3 months. Month
// arithmetic uses time.AddDate normalization, so Jan 31 +1 month lands on
// Mar 2 (or Mar 3 in leap-less years) rather than clamping to Feb's end.
func NextMaintenanceDate(t domain.MaintenanceType, date time.Time) time.Time {
	switch t {
	case domain.MaintenanceRoutine:
		return date.AddDate(0, 1, 0)
	case domain.MaintenanceEmergency:
		return date.AddDate(0, 0, 7)
	case domain.MaintenanceCalibration:
		return date.AddDate(0, 0, 14)
	case domain.MaintenanceUpgrade:
		return date.AddDate(0, 3, 0)
	default:
		return date
	}
}

// Create validates the owning printer, stores the record, and recomputes the
// printer's schedule. The recomputation runs regardless of the record's
// status, so even a Pending record advances the schedule; the update path
// below only recomputes on completion. Known inconsistency, kept faithful.
func (m *Maintenance) Create(ctx context.Context, rec *domain.MaintenanceRecord) error {
	printer, err := m.printers.GetByID(ctx, rec.Printer)
	if err != nil {
		return fmt.Errorf("printer: %w", err)
	}

	if rec.Status == "" {
		rec.Status = domain.MaintenancePending
	}
	if rec.Date.IsZero() {
		rec.Date = m.now()
	}
	if err := m.records.Create(ctx, rec); err != nil {
		return err
	}

	return m.reschedule(ctx, printer, rec)
}

// Update applies a partial update; when the update sets the record to
// Completed, the owning printer's schedule is recomputed from the updated
// record.
func (m *Maintenance) Update(ctx context.Context, id string, upd MaintenanceUpdate) (*domain.MaintenanceRecord, error) {
	rec, err := m.records.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("maintenance record: %w", err)
	}

	if upd.Printer != nil {
		rec.Printer = *upd.Printer
	}
	if upd.Date != nil {
		rec.Date = *upd.Date
	}
	if upd.Type != nil {
		rec.Type = *upd.Type
	}
	if upd.Description != nil {
		rec.Description = *upd.Description
	}
	if upd.Status != nil {
		rec.Status = *upd.Status
	}
	if upd.Technician != nil {
		rec.Technician = *upd.Technician
	}
	if upd.Notes != nil {
		rec.Notes = *upd.Notes
	}

	if err := m.records.Update(ctx, rec); err != nil {
		return nil, err
	}

	if upd.Status != nil && *upd.Status == domain.MaintenanceCompleted {
		printer, err := m.printers.GetByID(ctx, rec.Printer)
		if err == nil {
			if err := m.reschedule(ctx, printer, rec); err != nil {
				return nil, err
			}
		}
	}

	return rec, nil
}

// Delete removes a record without recomputing the printer's schedule from
// the remaining history.
func (m *Maintenance) Delete(ctx context.Context, id string) error {
	if _, err := m.records.GetByID(ctx, id); err != nil {
		return fmt.Errorf("maintenance record: %w", err)
	}
	return m.records.Delete(ctx, id)
}

// Get fetches a record by id.
func (m *Maintenance) Get(ctx context.Context, id string) (*domain.MaintenanceRecord, error) {
	rec, err := m.records.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("maintenance record: %w", err)
	}
	return rec, nil
}

// List returns all records, newest service date first.
func (m *Maintenance) List(ctx context.Context) ([]domain.MaintenanceRecord, error) {
	return m.records.List(ctx)
}

// History returns a printer's service records, newest first.
func (m *Maintenance) History(ctx context.Context, printerID string) ([]domain.MaintenanceRecord, error) {
	if _, err := m.printers.GetByID(ctx, printerID); err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	return m.records.ListByPrinter(ctx, printerID)
}

// Upcoming returns printers due for maintenance within the next seven days,
// soonest first.
func (m *Maintenance) Upcoming(ctx context.Context) ([]domain.Printer, error) {
	from := m.now()
	to := from.AddDate(0, 0, 7)
	return m.printers.ListMaintenanceDue(ctx, &from, &to)
}

// Overdue returns printers whose next maintenance date has passed, most
// overdue first.
func (m *Maintenance) Overdue(ctx context.Context) ([]domain.Printer, error) {
	now := m.now()
	return m.printers.ListMaintenanceDue(ctx, nil, &now)
}

func (m *Maintenance) reschedule(ctx context.Context, printer *domain.Printer, rec *domain.MaintenanceRecord) error {
	printer.LastMaintenance = rec.Date
	printer.NextMaintenance = NextMaintenanceDate(rec.Type, rec.Date)
	if err := m.printers.Update(ctx, printer); err != nil {
		return err
	}
	m.logger.Info().
		Str("printer", printer.Name).
		Time("next_maintenance", printer.NextMaintenance).
		Msg("maintenance schedule updated")
	return nil
}
