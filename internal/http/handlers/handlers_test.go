package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"printfleet/internal/adapter/repo"
	"printfleet/internal/domain"
	"printfleet/internal/fleet"
	"printfleet/internal/http/handlers"
	"printfleet/internal/http/httpapi"
	"printfleet/internal/infra"
	"printfleet/internal/infra/geoip"
	"printfleet/internal/ws"
)

type noopScanner struct{}

func (noopScanner) Scan(context.Context) error { return nil }

type env struct {
	router   http.Handler
	printers *repo.MemoryPrinterRepository
	jobs     *repo.MemoryPrintJobRepository
	records  *repo.MemoryMaintenanceRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zerolog.Nop()

	printers := repo.NewMemoryPrinterRepository()
	jobs := repo.NewMemoryPrintJobRepository()
	records := repo.NewMemoryMaintenanceRepository()

	hub := ws.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	app := handlers.NewApp(
		fleet.NewPrinters(printers, jobs, records, hub, logger),
		fleet.NewJobQueue(jobs, printers, logger),
		fleet.NewMaintenance(records, printers, logger),
		fleet.NewLifecycle(printers, jobs, hub, logger),
		noopScanner{},
		logger,
	)
	cfg := &infra.Config{
		CORSOrigins:     []string{"http://localhost:5173"},
		RateLimitPerMin: 10000,
	}
	router := httpapi.NewRouter(app, hub, cfg, logger, (*geoip.Resolver)(nil))

	return &env{router: router, printers: printers, jobs: jobs, records: records}
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestPrinterCRUD(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/printers", map[string]any{"name": "Ender-3 Pro"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[domain.Printer](t, rec)
	if created.ID == "" {
		t.Fatal("created printer has no id")
	}
	if created.Status != domain.PrinterIdle || created.Job != domain.JobNone {
		t.Errorf("defaults not applied: status=%s job=%q", created.Status, created.Job)
	}
	if created.Temperature.Bed != 25 || created.Temperature.Nozzle != 25 {
		t.Errorf("temperature defaults = %+v, want 25/25", created.Temperature)
	}

	rec = e.do(t, http.MethodGet, "/api/printers/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = e.do(t, http.MethodPut, "/api/printers/"+created.ID, map[string]any{
		"temperature": map[string]float64{"bed": 60, "nozzle": 210},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode[domain.Printer](t, rec)
	if updated.Temperature.Bed != 60 || updated.Temperature.Nozzle != 210 {
		t.Errorf("temperature = %+v, want 60/210", updated.Temperature)
	}

	rec = e.do(t, http.MethodGet, "/api/printers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if list := decode[[]domain.Printer](t, rec); len(list) != 1 {
		t.Errorf("list = %d printers, want 1", len(list))
	}

	rec = e.do(t, http.MethodDelete, "/api/printers/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = e.do(t, http.MethodGet, "/api/printers/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestPrinterValidation(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/printers", map[string]any{"status": "Idle"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("nameless create status = %d, want 400", rec.Code)
	}
	body := decode[map[string][]map[string]string](t, rec)
	if len(body["errors"]) != 1 || body["errors"][0]["field"] != "name" {
		t.Errorf("errors = %v, want single name error", body["errors"])
	}

	rec = e.do(t, http.MethodPost, "/api/printers", map[string]any{"name": "X", "status": "Exploded"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad status create = %d, want 400", rec.Code)
	}
	rec = e.do(t, http.MethodPost, "/api/printers", map[string]any{"name": "X", "material": "Wood"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad material create = %d, want 400", rec.Code)
	}
	rec = e.do(t, http.MethodPost, "/api/printers", map[string]any{"name": "X", "progress": 120})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad progress create = %d, want 400", rec.Code)
	}
}

func TestPrinterDuplicateName(t *testing.T) {
	e := newEnv(t)

	if rec := e.do(t, http.MethodPost, "/api/printers", map[string]any{"name": "Twin"}); rec.Code != http.StatusCreated {
		t.Fatalf("first create = %d", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/api/printers", map[string]any{"name": "Twin"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create = %d, want 400", rec.Code)
	}
}

func TestJobValidation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"printer": "Any", "material": "PLA", "estimatedTime": "1h 0m"}},
		{"bad material", map[string]any{"name": "x", "printer": "Any", "material": "Wood", "estimatedTime": "1h 0m"}},
		{"bad estimate", map[string]any{"name": "x", "printer": "Any", "material": "PLA", "estimatedTime": "90 minutes"}},
		{"bare hours", map[string]any{"name": "x", "printer": "Any", "material": "PLA", "estimatedTime": "3h"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rec := e.do(t, http.MethodPost, "/api/jobs", tc.body); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestPrintLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/printers", map[string]any{"name": "Ender-3 Pro"})
	printer := decode[domain.Printer](t, rec)

	rec = e.do(t, http.MethodPost, "/api/jobs", map[string]any{
		"name": "Part A", "printer": "Ender-3 Pro", "material": "PLA", "estimatedTime": "2h 15m",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("job create = %d, body %s", rec.Code, rec.Body.String())
	}
	job := decode[domain.PrintJob](t, rec)
	if job.Status != domain.JobQueued {
		t.Fatalf("job status = %s, want Queued", job.Status)
	}

	base := "/api/printers/" + printer.ID
	rec = e.do(t, http.MethodPost, base+"/start", map[string]any{"jobId": job.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("start = %d, body %s", rec.Code, rec.Body.String())
	}
	started := decode[domain.Printer](t, rec)
	if started.Status != domain.PrinterPrinting || started.Job != "Part A" {
		t.Fatalf("after start: status=%s job=%q", started.Status, started.Job)
	}

	// Starting again while printing is a state violation, not a 500.
	if rec := e.do(t, http.MethodPost, base+"/start", map[string]any{"jobId": job.ID}); rec.Code != http.StatusBadRequest {
		t.Errorf("double start = %d, want 400", rec.Code)
	}

	rec = e.do(t, http.MethodPut, base+"/progress", map[string]any{"progress": 42, "timeLeft": "1h 18m"})
	if rec.Code != http.StatusOK {
		t.Fatalf("progress = %d, body %s", rec.Code, rec.Body.String())
	}

	if rec := e.do(t, http.MethodPost, base+"/pause", nil); rec.Code != http.StatusOK {
		t.Fatalf("pause = %d", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, base+"/resume", nil); rec.Code != http.StatusOK {
		t.Fatalf("resume = %d", rec.Code)
	}

	rec = e.do(t, http.MethodPost, base+"/stop", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop = %d", rec.Code)
	}
	stopped := decode[domain.Printer](t, rec)
	if stopped.Status != domain.PrinterIdle || stopped.Job != domain.JobNone {
		t.Fatalf("after stop: status=%s job=%q", stopped.Status, stopped.Job)
	}

	rec = e.do(t, http.MethodGet, "/api/jobs/"+job.ID, nil)
	final := decode[domain.PrintJob](t, rec)
	if final.Status != domain.JobCancelled || final.Progress != 42 {
		t.Fatalf("final job: status=%s progress=%d, want Cancelled/42", final.Status, final.Progress)
	}
}

func TestProgressValidation(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/printers", map[string]any{"name": "P"})
	printer := decode[domain.Printer](t, rec)

	if rec := e.do(t, http.MethodPut, "/api/printers/"+printer.ID+"/progress", map[string]any{"progress": 150, "timeLeft": "1h 0m"}); rec.Code != http.StatusBadRequest {
		t.Errorf("progress 150 = %d, want 400", rec.Code)
	}
	if rec := e.do(t, http.MethodPut, "/api/printers/"+printer.ID+"/progress", map[string]any{"progress": 10}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing timeLeft = %d, want 400", rec.Code)
	}
}

func TestJobAssignOverHTTP(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/printers", map[string]any{"name": "Prusa MK4"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("printer create = %d", rec.Code)
	}
	rec = e.do(t, http.MethodPost, "/api/jobs", map[string]any{
		"name": "Bracket", "printer": "Any", "material": "PETG", "estimatedTime": "1h 30m",
	})
	job := decode[domain.PrintJob](t, rec)

	rec = e.do(t, http.MethodPost, "/api/jobs/assign", map[string]any{"jobId": job.ID, "printerName": "Prusa MK4"})
	if rec.Code != http.StatusOK {
		t.Fatalf("assign = %d, body %s", rec.Code, rec.Body.String())
	}
	assigned := decode[domain.PrintJob](t, rec)
	if assigned.Printer != "Prusa MK4" {
		t.Errorf("printer = %q, want Prusa MK4", assigned.Printer)
	}

	if rec := e.do(t, http.MethodPost, "/api/jobs/assign", map[string]any{"jobId": job.ID, "printerName": "Ghost"}); rec.Code != http.StatusNotFound {
		t.Errorf("assign to unknown printer = %d, want 404", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/api/jobs/assign", map[string]any{"jobId": job.ID}); rec.Code != http.StatusBadRequest {
		t.Errorf("assign without printerName = %d, want 400", rec.Code)
	}
}

func TestJobBucketsOverHTTP(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	seed := func(name string, status domain.JobStatus) {
		if err := e.jobs.Create(ctx, &domain.PrintJob{Name: name, Printer: "Any", Material: "PLA", EstimatedTime: "1h 0m", Status: status}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	seed("q", domain.JobQueued)
	seed("p", domain.JobPrinting)
	seed("c", domain.JobCompleted)

	for path, want := range map[string]int{
		"/api/jobs":           3,
		"/api/jobs/queued":    1,
		"/api/jobs/active":    1,
		"/api/jobs/completed": 1,
	} {
		rec := e.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s = %d", path, rec.Code)
		}
		if jobs := decode[[]domain.PrintJob](t, rec); len(jobs) != want {
			t.Errorf("%s = %d jobs, want %d", path, len(jobs), want)
		}
	}
}

func TestMaintenanceOverHTTP(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/printers", map[string]any{"name": "Voron 2.4"})
	printer := decode[domain.Printer](t, rec)

	rec = e.do(t, http.MethodPost, "/api/maintenance", map[string]any{
		"printer": printer.ID, "type": "Routine", "description": "Belt tension", "technician": "Sam",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[domain.MaintenanceRecord](t, rec)
	if created.Status != domain.MaintenancePending {
		t.Errorf("status = %s, want Pending", created.Status)
	}
	if created.Date.IsZero() {
		t.Error("date not defaulted")
	}

	rec = e.do(t, http.MethodPut, "/api/maintenance/"+created.ID, map[string]any{"status": "Completed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/api/maintenance/printer/"+printer.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history = %d", rec.Code)
	}
	if history := decode[[]domain.MaintenanceRecord](t, rec); len(history) != 1 {
		t.Errorf("history = %d records, want 1", len(history))
	}

	// A completed Routine record pushes the printer a month out, so nothing
	// is due within the week.
	rec = e.do(t, http.MethodGet, "/api/maintenance/upcoming", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("upcoming = %d", rec.Code)
	}
	if due := decode[[]domain.Printer](t, rec); len(due) != 0 {
		t.Errorf("upcoming = %d printers, want 0", len(due))
	}

	if rec := e.do(t, http.MethodPost, "/api/maintenance", map[string]any{"printer": printer.ID, "type": "Demolition", "description": "x", "technician": "y"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad type = %d, want 400", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/api/maintenance/printer/ghost", nil); rec.Code != http.StatusNotFound {
		t.Errorf("history for unknown printer = %d, want 404", rec.Code)
	}

	if rec := e.do(t, http.MethodDelete, "/api/maintenance/"+created.ID, nil); rec.Code != http.StatusOK {
		t.Errorf("delete = %d", rec.Code)
	}
}

func TestDiscoverAccepted(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/printers/discover", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("discover = %d, want 202", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
}
