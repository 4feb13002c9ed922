package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"printfleet/internal/domain"
)

// In-memory repository implementations. They back the service and handler
// tests with the same interfaces the PostgreSQL repositories expose.

// MemoryPrinterRepository is a map-backed domain.PrinterRepository.
type MemoryPrinterRepository struct {
	mu       sync.RWMutex
	printers map[string]domain.Printer
}

func NewMemoryPrinterRepository() *MemoryPrinterRepository {
	return &MemoryPrinterRepository{printers: make(map[string]domain.Printer)}
}

func (r *MemoryPrinterRepository) Create(_ context.Context, p *domain.Printer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.printers {
		if existing.Name == p.Name {
			return domain.ErrDuplicateName
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.printers[p.ID] = *p
	return nil
}

func (r *MemoryPrinterRepository) GetByID(_ context.Context, id string) (*domain.Printer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.printers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *MemoryPrinterRepository) GetByName(_ context.Context, name string) (*domain.Printer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.printers {
		if p.Name == name {
			out := p
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryPrinterRepository) List(_ context.Context) ([]domain.Printer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Printer, 0, len(r.printers))
	for _, p := range r.printers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryPrinterRepository) Update(_ context.Context, p *domain.Printer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.printers[p.ID]; !ok {
		return domain.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	r.printers[p.ID] = *p
	return nil
}

func (r *MemoryPrinterRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.printers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.printers, id)
	return nil
}

func (r *MemoryPrinterRepository) ListMaintenanceDue(_ context.Context, from, to *time.Time) ([]domain.Printer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Printer
	for _, p := range r.printers {
		if from != nil && p.NextMaintenance.Before(*from) {
			continue
		}
		if to != nil {
			// Inclusive upper bound for a window query, exclusive for an
			// open-ended overdue query, matching the SQL implementation.
			if from != nil && p.NextMaintenance.After(*to) {
				continue
			}
			if from == nil && !p.NextMaintenance.Before(*to) {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextMaintenance.Before(out[j].NextMaintenance) })
	return out, nil
}

// MemoryPrintJobRepository is a map-backed domain.PrintJobRepository.
type MemoryPrintJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]domain.PrintJob
}

func NewMemoryPrintJobRepository() *MemoryPrintJobRepository {
	return &MemoryPrintJobRepository{jobs: make(map[string]domain.PrintJob)}
}

func (r *MemoryPrintJobRepository) Create(_ context.Context, job *domain.PrintJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	r.jobs[job.ID] = *job
	return nil
}

func (r *MemoryPrintJobRepository) GetByID(_ context.Context, id string) (*domain.PrintJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

func (r *MemoryPrintJobRepository) List(_ context.Context) ([]domain.PrintJob, error) {
	jobs := r.filter(func(domain.PrintJob) bool { return true })
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

func (r *MemoryPrintJobRepository) ListQueued(_ context.Context) ([]domain.PrintJob, error) {
	jobs := r.filter(func(j domain.PrintJob) bool { return j.Status == domain.JobQueued })
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs, nil
}

func (r *MemoryPrintJobRepository) ListActive(_ context.Context) ([]domain.PrintJob, error) {
	jobs := r.filter(func(j domain.PrintJob) bool {
		return j.Status == domain.JobPrinting || j.Status == domain.JobPaused
	})
	sort.Slice(jobs, func(i, j int) bool {
		return timePtrAfter(jobs[i].StartTime, jobs[j].StartTime)
	})
	return jobs, nil
}

func (r *MemoryPrintJobRepository) ListCompleted(_ context.Context) ([]domain.PrintJob, error) {
	jobs := r.filter(func(j domain.PrintJob) bool { return j.Status.Terminal() })
	sort.Slice(jobs, func(i, j int) bool {
		return timePtrAfter(jobs[i].EndTime, jobs[j].EndTime)
	})
	return jobs, nil
}

func (r *MemoryPrintJobRepository) Update(_ context.Context, job *domain.PrintJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	job.UpdatedAt = time.Now()
	r.jobs[job.ID] = *job
	return nil
}

func (r *MemoryPrintJobRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

func (r *MemoryPrintJobRepository) FindByNameAndStatus(_ context.Context, name string, statuses ...domain.JobStatus) (*domain.PrintJob, error) {
	jobs := r.filter(func(j domain.PrintJob) bool {
		if j.Name != name {
			return false
		}
		for _, s := range statuses {
			if j.Status == s {
				return true
			}
		}
		return false
	})
	if len(jobs) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return &jobs[0], nil
}

func (r *MemoryPrintJobRepository) ReassignQueued(_ context.Context, printerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, job := range r.jobs {
		if job.Printer == printerName && job.Status == domain.JobQueued {
			job.Printer = domain.PrinterAny
			job.UpdatedAt = time.Now()
			r.jobs[id] = job
		}
	}
	return nil
}

func (r *MemoryPrintJobRepository) filter(keep func(domain.PrintJob) bool) []domain.PrintJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PrintJob
	for _, job := range r.jobs {
		if keep(job) {
			out = append(out, job)
		}
	}
	return out
}

func timePtrAfter(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

// MemoryMaintenanceRepository is a map-backed domain.MaintenanceRepository.
type MemoryMaintenanceRepository struct {
	mu      sync.RWMutex
	records map[string]domain.MaintenanceRecord
}

func NewMemoryMaintenanceRepository() *MemoryMaintenanceRepository {
	return &MemoryMaintenanceRepository{records: make(map[string]domain.MaintenanceRecord)}
}

func (r *MemoryMaintenanceRepository) Create(_ context.Context, rec *domain.MaintenanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.records[rec.ID] = *rec
	return nil
}

func (r *MemoryMaintenanceRepository) GetByID(_ context.Context, id string) (*domain.MaintenanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (r *MemoryMaintenanceRepository) List(_ context.Context) ([]domain.MaintenanceRecord, error) {
	return r.collect(func(domain.MaintenanceRecord) bool { return true }), nil
}

func (r *MemoryMaintenanceRepository) ListByPrinter(_ context.Context, printerID string) ([]domain.MaintenanceRecord, error) {
	return r.collect(func(rec domain.MaintenanceRecord) bool { return rec.Printer == printerID }), nil
}

func (r *MemoryMaintenanceRepository) Update(_ context.Context, rec *domain.MaintenanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		return domain.ErrNotFound
	}
	rec.UpdatedAt = time.Now()
	r.records[rec.ID] = *rec
	return nil
}

func (r *MemoryMaintenanceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *MemoryMaintenanceRepository) DeleteByPrinter(_ context.Context, printerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range r.records {
		if rec.Printer == printerID {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *MemoryMaintenanceRepository) collect(keep func(domain.MaintenanceRecord) bool) []domain.MaintenanceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.MaintenanceRecord
	for _, rec := range r.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
