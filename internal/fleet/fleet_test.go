package fleet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"printfleet/internal/adapter/repo"
	"printfleet/internal/domain"
)

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	printers []domain.Printer
	jobs     []domain.PrintJob
}

func (n *recordingNotifier) PrinterStatus(p *domain.Printer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.printers = append(n.printers, *p)
}

func (n *recordingNotifier) JobProgress(j *domain.PrintJob) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, *j)
}

func (n *recordingNotifier) printerEvents() []domain.Printer {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Printer(nil), n.printers...)
}

func seedPrinter(t *testing.T, printers domain.PrinterRepository, name string) *domain.Printer {
	t.Helper()
	p := &domain.Printer{Name: name}
	p.ResetToIdle()
	p.LastMaintenance = time.Now()
	p.NextMaintenance = time.Now().AddDate(0, 0, 30)
	if err := printers.Create(context.Background(), p); err != nil {
		t.Fatalf("seed printer %s: %v", name, err)
	}
	return p
}

func seedJob(t *testing.T, jobs domain.PrintJobRepository, name, printer, estimated string, status domain.JobStatus) *domain.PrintJob {
	t.Helper()
	j := &domain.PrintJob{
		Name:          name,
		Printer:       printer,
		Material:      "PLA",
		EstimatedTime: estimated,
		Status:        status,
	}
	if err := jobs.Create(context.Background(), j); err != nil {
		t.Fatalf("seed job %s: %v", name, err)
	}
	return j
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func mustGetPrinter(t *testing.T, printers domain.PrinterRepository, id string) *domain.Printer {
	t.Helper()
	p, err := printers.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get printer %s: %v", id, err)
	}
	return p
}

func mustGetJob(t *testing.T, jobs domain.PrintJobRepository, id string) *domain.PrintJob {
	t.Helper()
	j, err := jobs.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get job %s: %v", id, err)
	}
	return j
}

func newTestRepos() (*repo.MemoryPrinterRepository, *repo.MemoryPrintJobRepository, *repo.MemoryMaintenanceRepository) {
	return repo.NewMemoryPrinterRepository(), repo.NewMemoryPrintJobRepository(), repo.NewMemoryMaintenanceRepository()
}
