package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"printfleet/internal/domain"
	"printfleet/internal/fleet"
)

type jobCreateRequest struct {
	Name          string `json:"name"`
	Printer       string `json:"printer"`
	Material      string `json:"material"`
	EstimatedTime string `json:"estimatedTime"`
}

func (req *jobCreateRequest) validate() []fieldError {
	var errs []fieldError
	if req.Name == "" {
		errs = append(errs, fieldError{Field: "name", Message: "Job name is required"})
	}
	if req.Printer == "" {
		errs = append(errs, fieldError{Field: "printer", Message: "Printer name is required"})
	}
	if !validJobMaterial(req.Material) {
		errs = append(errs, fieldError{Field: "material", Message: "Invalid material type"})
	}
	if !estimatedTimePattern.MatchString(req.EstimatedTime) {
		errs = append(errs, fieldError{Field: "estimatedTime", Message: `Estimated time must be in format "Xh Ym"`})
	}
	return errs
}

type jobUpdateRequest struct {
	Name          *string           `json:"name"`
	Printer       *string           `json:"printer"`
	Material      *string           `json:"material"`
	EstimatedTime *string           `json:"estimatedTime"`
	Status        *domain.JobStatus `json:"status"`
	Progress      *int              `json:"progress"`
}

func (req *jobUpdateRequest) validate() []fieldError {
	var errs []fieldError
	if req.Name != nil && *req.Name == "" {
		errs = append(errs, fieldError{Field: "name", Message: "Job name is required"})
	}
	if req.Printer != nil && *req.Printer == "" {
		errs = append(errs, fieldError{Field: "printer", Message: "Printer name is required"})
	}
	if req.Material != nil && !validJobMaterial(*req.Material) {
		errs = append(errs, fieldError{Field: "material", Message: "Invalid material type"})
	}
	if req.EstimatedTime != nil && !estimatedTimePattern.MatchString(*req.EstimatedTime) {
		errs = append(errs, fieldError{Field: "estimatedTime", Message: `Estimated time must be in format "Xh Ym"`})
	}
	if req.Status != nil && !validJobStatus(*req.Status) {
		errs = append(errs, fieldError{Field: "status", Message: "Invalid job status"})
	}
	if req.Progress != nil && !validProgress(*req.Progress) {
		errs = append(errs, fieldError{Field: "progress", Message: "Progress must be between 0 and 100"})
	}
	return errs
}

func (a *App) JobsList(w http.ResponseWriter, r *http.Request) {
	a.jobList(w, r, a.Jobs.List)
}

func (a *App) JobsQueued(w http.ResponseWriter, r *http.Request) {
	a.jobList(w, r, a.Jobs.Queued)
}

func (a *App) JobsActive(w http.ResponseWriter, r *http.Request) {
	a.jobList(w, r, a.Jobs.Active)
}

func (a *App) JobsCompleted(w http.ResponseWriter, r *http.Request) {
	a.jobList(w, r, a.Jobs.Completed)
}

func (a *App) JobsGet(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, job)
}

func (a *App) JobsCreate(w http.ResponseWriter, r *http.Request) {
	var req jobCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		a.validationFailed(w, errs)
		return
	}

	job := &domain.PrintJob{
		Name:          req.Name,
		Printer:       req.Printer,
		Material:      req.Material,
		EstimatedTime: req.EstimatedTime,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, job)
}

func (a *App) JobsUpdate(w http.ResponseWriter, r *http.Request) {
	var req jobUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		a.validationFailed(w, errs)
		return
	}

	job, err := a.Jobs.Update(r.Context(), chi.URLParam(r, "id"), fleet.JobUpdate{
		Name:          req.Name,
		Printer:       req.Printer,
		Material:      req.Material,
		EstimatedTime: req.EstimatedTime,
		Status:        req.Status,
		Progress:      req.Progress,
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, job)
}

func (a *App) JobsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Jobs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err)
		return
	}
	a.message(w, http.StatusOK, "Print job deleted successfully")
}

func (a *App) JobsAssign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID       string `json:"jobId"`
		PrinterName string `json:"printerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.message(w, http.StatusBadRequest, "invalid payload")
		return
	}

	var errs []fieldError
	if req.JobID == "" {
		errs = append(errs, fieldError{Field: "jobId", Message: "Job ID is required"})
	}
	if req.PrinterName == "" {
		errs = append(errs, fieldError{Field: "printerName", Message: "Printer name is required"})
	}
	if len(errs) > 0 {
		a.validationFailed(w, errs)
		return
	}

	job, err := a.Jobs.Assign(r.Context(), req.JobID, req.PrinterName)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, job)
}

func (a *App) jobList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context) ([]domain.PrintJob, error)) {
	jobs, err := list(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	if jobs == nil {
		jobs = []domain.PrintJob{}
	}
	a.json(w, http.StatusOK, jobs)
}
