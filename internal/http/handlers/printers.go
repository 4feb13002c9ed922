package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"printfleet/internal/domain"
	"printfleet/internal/fleet"
)

type printerRequest struct {
	Name        string                `json:"name"`
	Status      *domain.PrinterStatus `json:"status"`
	Progress    *int                  `json:"progress"`
	TimeLeft    *string               `json:"timeLeft"`
	Temperature *domain.Temperature   `json:"temperature"`
	Job         *string               `json:"job"`
	Material    *string               `json:"material"`
}

func (req *printerRequest) validate(requireName bool) []fieldError {
	var errs []fieldError
	if requireName && req.Name == "" {
		errs = append(errs, fieldError{Field: "name", Message: "Printer name is required"})
	}
	if req.Status != nil && !validPrinterStatus(*req.Status) {
		errs = append(errs, fieldError{Field: "status", Message: "Invalid printer status"})
	}
	if req.Material != nil && !validPrinterMaterial(*req.Material) {
		errs = append(errs, fieldError{Field: "material", Message: "Invalid material type"})
	}
	if req.Progress != nil && !validProgress(*req.Progress) {
		errs = append(errs, fieldError{Field: "progress", Message: "Progress must be between 0 and 100"})
	}
	return errs
}

func (a *App) PrintersList(w http.ResponseWriter, r *http.Request) {
	printers, err := a.Printers.List(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, emptyIfNilPrinters(printers))
}

func (a *App) PrintersGet(w http.ResponseWriter, r *http.Request) {
	printer, err := a.Printers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, printer)
}

func (a *App) PrintersCreate(w http.ResponseWriter, r *http.Request) {
	var req printerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if errs := req.validate(true); len(errs) > 0 {
		a.validationFailed(w, errs)
		return
	}

	printer := &domain.Printer{Name: req.Name}
	if req.Status != nil {
		printer.Status = *req.Status
	}
	if req.Progress != nil {
		printer.Progress = *req.Progress
	}
	if req.TimeLeft != nil {
		printer.TimeLeft = *req.TimeLeft
	}
	if req.Temperature != nil {
		printer.Temperature = *req.Temperature
	} else {
		printer.Temperature = domain.Temperature{Bed: 25, Nozzle: 25}
	}
	if req.Job != nil {
		printer.Job = *req.Job
	}
	if req.Material != nil {
		printer.Material = *req.Material
	}

	if err := a.Printers.Create(r.Context(), printer); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, printer)
}

func (a *App) PrintersUpdate(w http.ResponseWriter, r *http.Request) {
	var req printerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if errs := req.validate(false); len(errs) > 0 {
		a.validationFailed(w, errs)
		return
	}

	upd := fleet.PrinterUpdate{
		Status:   req.Status,
		Progress: req.Progress,
		TimeLeft: req.TimeLeft,
		Job:      req.Job,
		Material: req.Material,
	}
	if req.Name != "" {
		upd.Name = &req.Name
	}
	if req.Temperature != nil {
		upd.TempBed = &req.Temperature.Bed
		upd.TempNozzle = &req.Temperature.Nozzle
	}

	printer, err := a.Printers.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, printer)
}

func (a *App) PrintersDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Printers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err)
		return
	}
	a.message(w, http.StatusOK, "Printer deleted successfully")
}

func (a *App) PrintersStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.JobID == "" {
		a.validationFailed(w, []fieldError{{Field: "jobId", Message: "Job ID is required"}})
		return
	}

	printer, err := a.Lifecycle.Start(r.Context(), chi.URLParam(r, "id"), req.JobID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, printer)
}

func (a *App) PrintersPause(w http.ResponseWriter, r *http.Request) {
	printer, err := a.Lifecycle.Pause(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, printer)
}

func (a *App) PrintersResume(w http.ResponseWriter, r *http.Request) {
	printer, err := a.Lifecycle.Resume(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, printer)
}

func (a *App) PrintersStop(w http.ResponseWriter, r *http.Request) {
	printer, err := a.Lifecycle.Stop(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, printer)
}

func (a *App) PrintersProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Progress *int    `json:"progress"`
		TimeLeft *string `json:"timeLeft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.message(w, http.StatusBadRequest, "invalid payload")
		return
	}

	var errs []fieldError
	if req.Progress == nil || !validProgress(*req.Progress) {
		errs = append(errs, fieldError{Field: "progress", Message: "Progress must be between 0 and 100"})
	}
	if req.TimeLeft == nil || *req.TimeLeft == "" {
		errs = append(errs, fieldError{Field: "timeLeft", Message: "Time left is required"})
	}
	if len(errs) > 0 {
		a.validationFailed(w, errs)
		return
	}

	printer, err := a.Lifecycle.UpdateProgress(r.Context(), chi.URLParam(r, "id"), *req.Progress, *req.TimeLeft)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, printer)
}

// PrintersDiscover launches a LAN discovery sweep. Results stream to
// WebSocket clients as printer:discovered events.
func (a *App) PrintersDiscover(w http.ResponseWriter, r *http.Request) {
	if a.Discovery == nil {
		a.message(w, http.StatusServiceUnavailable, "discovery is not configured")
		return
	}
	go func() {
		if err := a.Discovery.Scan(context.Background()); err != nil {
			a.Logger.Error().Err(err).Msg("discovery scan failed")
		}
	}()
	a.message(w, http.StatusAccepted, "discovery started")
}

func emptyIfNilPrinters(printers []domain.Printer) []domain.Printer {
	if printers == nil {
		return []domain.Printer{}
	}
	return printers
}
