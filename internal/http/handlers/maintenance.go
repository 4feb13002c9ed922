package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"printfleet/internal/domain"
	"printfleet/internal/fleet"
)

type maintenanceCreateRequest struct {
	Printer     string                    `json:"printer"`
	Date        *time.Time                `json:"date"`
	Type        domain.MaintenanceType    `json:"type"`
	Description string                    `json:"description"`
	Status      *domain.MaintenanceStatus `json:"status"`
	Technician  string                    `json:"technician"`
	Notes       string                    `json:"notes"`
}

func (req *maintenanceCreateRequest) validate() []fieldError {
	var errs []fieldError
	if req.Printer == "" {
		errs = append(errs, fieldError{Field: "printer", Message: "Printer ID is required"})
	}
	if !validMaintenanceType(req.Type) {
		errs = append(errs, fieldError{Field: "type", Message: "Invalid maintenance type"})
	}
	if req.Description == "" {
		errs = append(errs, fieldError{Field: "description", Message: "Description is required"})
	}
	if req.Technician == "" {
		errs = append(errs, fieldError{Field: "technician", Message: "Technician name is required"})
	}
	if req.Status != nil && !validMaintenanceStatus(*req.Status) {
		errs = append(errs, fieldError{Field: "status", Message: "Invalid status"})
	}
	return errs
}

type maintenanceUpdateRequest struct {
	Printer     *string                   `json:"printer"`
	Date        *time.Time                `json:"date"`
	Type        *domain.MaintenanceType   `json:"type"`
	Description *string                   `json:"description"`
	Status      *domain.MaintenanceStatus `json:"status"`
	Technician  *string                   `json:"technician"`
	Notes       *string                   `json:"notes"`
}

func (req *maintenanceUpdateRequest) validate() []fieldError {
	var errs []fieldError
	if req.Printer != nil && *req.Printer == "" {
		errs = append(errs, fieldError{Field: "printer", Message: "Printer ID is required"})
	}
	if req.Type != nil && !validMaintenanceType(*req.Type) {
		errs = append(errs, fieldError{Field: "type", Message: "Invalid maintenance type"})
	}
	if req.Description != nil && *req.Description == "" {
		errs = append(errs, fieldError{Field: "description", Message: "Description is required"})
	}
	if req.Technician != nil && *req.Technician == "" {
		errs = append(errs, fieldError{Field: "technician", Message: "Technician name is required"})
	}
	if req.Status != nil && !validMaintenanceStatus(*req.Status) {
		errs = append(errs, fieldError{Field: "status", Message: "Invalid status"})
	}
	return errs
}

func (a *App) MaintenanceList(w http.ResponseWriter, r *http.Request) {
	records, err := a.Maintenance.List(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, emptyIfNilRecords(records))
}

func (a *App) MaintenanceGet(w http.ResponseWriter, r *http.Request) {
	rec, err := a.Maintenance.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, rec)
}

func (a *App) MaintenanceHistory(w http.ResponseWriter, r *http.Request) {
	records, err := a.Maintenance.History(r.Context(), chi.URLParam(r, "printerId"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, emptyIfNilRecords(records))
}

// MaintenanceUpcoming lists printers due for service in the next week.
func (a *App) MaintenanceUpcoming(w http.ResponseWriter, r *http.Request) {
	printers, err := a.Maintenance.Upcoming(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, emptyIfNilPrinters(printers))
}

// MaintenanceOverdue lists printers whose service date has passed.
func (a *App) MaintenanceOverdue(w http.ResponseWriter, r *http.Request) {
	printers, err := a.Maintenance.Overdue(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, emptyIfNilPrinters(printers))
}

func (a *App) MaintenanceCreate(w http.ResponseWriter, r *http.Request) {
	var req maintenanceCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		a.validationFailed(w, errs)
		return
	}

	rec := &domain.MaintenanceRecord{
		Printer:     req.Printer,
		Type:        req.Type,
		Description: req.Description,
		Technician:  req.Technician,
		Notes:       req.Notes,
	}
	if req.Date != nil {
		rec.Date = *req.Date
	}
	if req.Status != nil {
		rec.Status = *req.Status
	}

	if err := a.Maintenance.Create(r.Context(), rec); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, rec)
}

func (a *App) MaintenanceUpdate(w http.ResponseWriter, r *http.Request) {
	var req maintenanceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.message(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		a.validationFailed(w, errs)
		return
	}

	rec, err := a.Maintenance.Update(r.Context(), chi.URLParam(r, "id"), fleet.MaintenanceUpdate{
		Printer:     req.Printer,
		Date:        req.Date,
		Type:        req.Type,
		Description: req.Description,
		Status:      req.Status,
		Technician:  req.Technician,
		Notes:       req.Notes,
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, rec)
}

func (a *App) MaintenanceDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Maintenance.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err)
		return
	}
	a.message(w, http.StatusOK, "Maintenance record deleted successfully")
}

func emptyIfNilRecords(records []domain.MaintenanceRecord) []domain.MaintenanceRecord {
	if records == nil {
		return []domain.MaintenanceRecord{}
	}
	return records
}
