package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"printfleet/internal/domain"
)

func newTestPrinters(printers domain.PrinterRepository, jobs domain.PrintJobRepository, records domain.MaintenanceRepository, notify Notifier) *Printers {
	p := NewPrinters(printers, jobs, records, notify, testLogger())
	p.now = func() time.Time { return date(2024, time.May, 1) }
	return p
}

func TestPrinterCreateDefaults(t *testing.T) {
	printers, jobs, records := newTestRepos()
	svc := newTestPrinters(printers, jobs, records, NopNotifier{})

	printer := &domain.Printer{Name: "Ender-3 Pro"}
	if err := svc.Create(context.Background(), printer); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if printer.Status != domain.PrinterIdle {
		t.Errorf("status = %s, want Idle", printer.Status)
	}
	if printer.Job != domain.JobNone || printer.Material != domain.MaterialNone {
		t.Errorf("sentinels wrong: job=%q material=%q", printer.Job, printer.Material)
	}
	if printer.TimeLeft != domain.TimeLeftZero {
		t.Errorf("timeLeft = %q, want %q", printer.TimeLeft, domain.TimeLeftZero)
	}
	if printer.StartTime != domain.TimeNA || printer.EstimatedEnd != domain.TimeNA {
		t.Errorf("times wrong: startTime=%q estimatedEnd=%q", printer.StartTime, printer.EstimatedEnd)
	}
	if !printer.LastMaintenance.Equal(date(2024, time.May, 1)) {
		t.Errorf("lastMaintenance = %s, want creation time", printer.LastMaintenance)
	}
	if !printer.NextMaintenance.Equal(date(2024, time.May, 31)) {
		t.Errorf("nextMaintenance = %s, want +30d", printer.NextMaintenance.Format("2006-01-02"))
	}
}

func TestPrinterCreateDuplicateName(t *testing.T) {
	printers, jobs, records := newTestRepos()
	svc := newTestPrinters(printers, jobs, records, NopNotifier{})
	ctx := context.Background()

	if err := svc.Create(ctx, &domain.Printer{Name: "Ender-3 Pro"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Create(ctx, &domain.Printer{Name: "Ender-3 Pro"}); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("duplicate create error = %v, want ErrDuplicateName", err)
	}
}

func TestPrinterUpdateNotifies(t *testing.T) {
	printers, jobs, records := newTestRepos()
	notify := &recordingNotifier{}
	svc := newTestPrinters(printers, jobs, records, notify)
	ctx := context.Background()

	printer := seedPrinter(t, printers, "Prusa MK4")

	bed := 60.5
	nozzle := 215.0
	got, err := svc.Update(ctx, printer.ID, PrinterUpdate{TempBed: &bed, TempNozzle: &nozzle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Temperature.Bed != 60.5 || got.Temperature.Nozzle != 215.0 {
		t.Errorf("temperature = %+v, want bed 60.5 nozzle 215", got.Temperature)
	}
	if events := notify.printerEvents(); len(events) != 1 {
		t.Errorf("got %d notifications, want 1", len(events))
	}
}

func TestPrinterDeleteCascade(t *testing.T) {
	printers, jobs, records := newTestRepos()
	svc := newTestPrinters(printers, jobs, records, NopNotifier{})
	ctx := context.Background()

	doomed := seedPrinter(t, printers, "Doomed")
	kept := seedPrinter(t, printers, "Kept")

	queuedOnDoomed := seedJob(t, jobs, "q-doomed", "Doomed", "1h 0m", domain.JobQueued)
	completedOnDoomed := seedJob(t, jobs, "c-doomed", "Doomed", "1h 0m", domain.JobCompleted)
	queuedOnKept := seedJob(t, jobs, "q-kept", "Kept", "1h 0m", domain.JobQueued)

	for _, rec := range []*domain.MaintenanceRecord{
		{Printer: doomed.ID, Date: date(2024, time.April, 1), Type: domain.MaintenanceRoutine, Description: "x", Technician: "y"},
		{Printer: kept.ID, Date: date(2024, time.April, 2), Type: domain.MaintenanceRoutine, Description: "x", Technician: "y"},
	} {
		if err := records.Create(ctx, rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	if err := svc.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := printers.GetByID(ctx, doomed.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted printer lookup error = %v, want ErrNotFound", err)
	}

	// Queued jobs on the deleted printer become unassigned; finished jobs
	// keep their historical reference.
	if j := mustGetJob(t, jobs, queuedOnDoomed.ID); j.Printer != domain.PrinterAny {
		t.Errorf("queued job printer = %q, want Any", j.Printer)
	}
	if j := mustGetJob(t, jobs, completedOnDoomed.ID); j.Printer != "Doomed" {
		t.Errorf("completed job printer = %q, want Doomed", j.Printer)
	}
	if j := mustGetJob(t, jobs, queuedOnKept.ID); j.Printer != "Kept" {
		t.Errorf("unrelated job printer = %q, want Kept", j.Printer)
	}

	doomedRecords, err := records.ListByPrinter(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("ListByPrinter: %v", err)
	}
	if len(doomedRecords) != 0 {
		t.Errorf("deleted printer still has %d maintenance records", len(doomedRecords))
	}
	keptRecords, err := records.ListByPrinter(ctx, kept.ID)
	if err != nil {
		t.Fatalf("ListByPrinter: %v", err)
	}
	if len(keptRecords) != 1 {
		t.Errorf("kept printer has %d maintenance records, want 1", len(keptRecords))
	}
}

func TestPrinterDeleteUnknown(t *testing.T) {
	printers, jobs, records := newTestRepos()
	svc := newTestPrinters(printers, jobs, records, NopNotifier{})

	if err := svc.Delete(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
