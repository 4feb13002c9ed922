package fleet

import (
	"context"
	"errors"
	"testing"

	"printfleet/internal/domain"
)

func TestJobCreateDefaultsToQueued(t *testing.T) {
	printers, jobs, _ := newTestRepos()
	q := NewJobQueue(jobs, printers, testLogger())

	job := &domain.PrintJob{Name: "Bracket", Printer: domain.PrinterAny, Material: "PETG", EstimatedTime: "1h 30m"}
	if err := q.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.Status != domain.JobQueued {
		t.Errorf("status = %s, want Queued", job.Status)
	}
}

func TestJobCreatePrinterAvailability(t *testing.T) {
	printers, jobs, _ := newTestRepos()
	q := NewJobQueue(jobs, printers, testLogger())
	ctx := context.Background()

	idle := seedPrinter(t, printers, "Idle One")
	busy := seedPrinter(t, printers, "Busy One")
	busy.Status = domain.PrinterPrinting
	if err := printers.Update(ctx, busy); err != nil {
		t.Fatalf("update printer: %v", err)
	}

	if err := q.Create(ctx, &domain.PrintJob{Name: "ok", Printer: idle.Name, EstimatedTime: "1h 0m"}); err != nil {
		t.Errorf("create against idle printer: %v", err)
	}
	if err := q.Create(ctx, &domain.PrintJob{Name: "busy", Printer: busy.Name, EstimatedTime: "1h 0m"}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("create against busy printer error = %v, want ErrInvalidState", err)
	}
	if err := q.Create(ctx, &domain.PrintJob{Name: "ghost", Printer: "No Such", EstimatedTime: "1h 0m"}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("create against unknown printer error = %v, want ErrInvalidState", err)
	}
}

func TestJobUpdateFrozenWhilePrinting(t *testing.T) {
	printers, jobs, _ := newTestRepos()
	q := NewJobQueue(jobs, printers, testLogger())
	ctx := context.Background()

	job := seedJob(t, jobs, "Part A", "Ender-3 Pro", "2h 15m", domain.JobPrinting)

	other := "Prusa MK4"
	if _, err := q.Update(ctx, job.ID, JobUpdate{Printer: &other}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("printer change while printing error = %v, want ErrInvalidState", err)
	}
	abs := "ABS"
	if _, err := q.Update(ctx, job.ID, JobUpdate{Material: &abs}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("material change while printing error = %v, want ErrInvalidState", err)
	}
	est := "3h 0m"
	if _, err := q.Update(ctx, job.ID, JobUpdate{EstimatedTime: &est}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("estimate change while printing error = %v, want ErrInvalidState", err)
	}

	// Re-submitting the current values is not a change.
	same := "Ender-3 Pro"
	progress := 30
	got, err := q.Update(ctx, job.ID, JobUpdate{Printer: &same, Progress: &progress})
	if err != nil {
		t.Fatalf("no-op printer update while printing: %v", err)
	}
	if got.Progress != 30 {
		t.Errorf("progress = %d, want 30", got.Progress)
	}
}

func TestJobUpdateTerminalStatusFrozen(t *testing.T) {
	printers, jobs, _ := newTestRepos()
	q := NewJobQueue(jobs, printers, testLogger())
	ctx := context.Background()

	job := seedJob(t, jobs, "Done", "Any", "1h 0m", domain.JobCompleted)

	queued := domain.JobQueued
	if _, err := q.Update(ctx, job.ID, JobUpdate{Status: &queued}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("reopening completed job error = %v, want ErrInvalidState", err)
	}

	// Other fields of a terminal job stay editable.
	name := "Done v2"
	got, err := q.Update(ctx, job.ID, JobUpdate{Name: &name})
	if err != nil {
		t.Fatalf("rename completed job: %v", err)
	}
	if got.Name != "Done v2" {
		t.Errorf("name = %q, want %q", got.Name, "Done v2")
	}
}

func TestJobUpdateReassignsToIdlePrinter(t *testing.T) {
	printers, jobs, _ := newTestRepos()
	q := NewJobQueue(jobs, printers, testLogger())
	ctx := context.Background()

	seedPrinter(t, printers, "Prusa MK4")
	job := seedJob(t, jobs, "Bracket", "Any", "1h 0m", domain.JobQueued)

	target := "Prusa MK4"
	got, err := q.Update(ctx, job.ID, JobUpdate{Printer: &target})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Printer != "Prusa MK4" {
		t.Errorf("printer = %q, want Prusa MK4", got.Printer)
	}

	ghost := "No Such"
	if _, err := q.Update(ctx, job.ID, JobUpdate{Printer: &ghost}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("reassign to unknown printer error = %v, want ErrInvalidState", err)
	}
}

func TestJobDelete(t *testing.T) {
	printers, jobs, _ := newTestRepos()
	q := NewJobQueue(jobs, printers, testLogger())
	ctx := context.Background()

	printing := seedJob(t, jobs, "Running", "Ender-3 Pro", "1h 0m", domain.JobPrinting)
	queued := seedJob(t, jobs, "Waiting", "Any", "1h 0m", domain.JobQueued)

	if err := q.Delete(ctx, printing.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("delete printing job error = %v, want ErrInvalidState", err)
	}
	if err := q.Delete(ctx, queued.ID); err != nil {
		t.Errorf("delete queued job: %v", err)
	}
	if err := q.Delete(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("delete unknown job error = %v, want ErrNotFound", err)
	}
}

func TestJobAssign(t *testing.T) {
	printers, jobs, _ := newTestRepos()
	q := NewJobQueue(jobs, printers, testLogger())
	ctx := context.Background()

	idle := seedPrinter(t, printers, "Idle One")
	busy := seedPrinter(t, printers, "Busy One")
	busy.Status = domain.PrinterPrinting
	if err := printers.Update(ctx, busy); err != nil {
		t.Fatalf("update printer: %v", err)
	}

	job := seedJob(t, jobs, "Bracket", "Any", "1h 0m", domain.JobQueued)

	got, err := q.Assign(ctx, job.ID, idle.Name)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got.Printer != idle.Name {
		t.Errorf("printer = %q, want %q", got.Printer, idle.Name)
	}
	if got.Status != domain.JobQueued {
		t.Errorf("status = %s, assign must not start the job", got.Status)
	}

	if _, err := q.Assign(ctx, job.ID, busy.Name); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("assign to busy printer error = %v, want ErrInvalidState", err)
	}
	if _, err := q.Assign(ctx, job.ID, "No Such"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("assign to unknown printer error = %v, want ErrNotFound", err)
	}

	done := seedJob(t, jobs, "Done", "Any", "1h 0m", domain.JobCompleted)
	if _, err := q.Assign(ctx, done.ID, idle.Name); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("assign completed job error = %v, want ErrInvalidState", err)
	}
}

func TestJobListBuckets(t *testing.T) {
	printers, jobs, _ := newTestRepos()
	q := NewJobQueue(jobs, printers, testLogger())
	ctx := context.Background()

	seedJob(t, jobs, "q1", "Any", "1h 0m", domain.JobQueued)
	seedJob(t, jobs, "a1", "Ender-3 Pro", "1h 0m", domain.JobPrinting)
	seedJob(t, jobs, "a2", "Prusa MK4", "1h 0m", domain.JobPaused)
	seedJob(t, jobs, "c1", "Any", "1h 0m", domain.JobCompleted)
	seedJob(t, jobs, "c2", "Any", "1h 0m", domain.JobCancelled)

	queued, err := q.Queued(ctx)
	if err != nil || len(queued) != 1 {
		t.Errorf("Queued = %d jobs (%v), want 1", len(queued), err)
	}
	active, err := q.Active(ctx)
	if err != nil || len(active) != 2 {
		t.Errorf("Active = %d jobs (%v), want 2", len(active), err)
	}
	completed, err := q.Completed(ctx)
	if err != nil || len(completed) != 2 {
		t.Errorf("Completed = %d jobs (%v), want 2", len(completed), err)
	}
	all, err := q.List(ctx)
	if err != nil || len(all) != 5 {
		t.Errorf("List = %d jobs (%v), want 5", len(all), err)
	}
}
