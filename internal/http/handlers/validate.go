package handlers

import (
	"net/http"
	"regexp"

	"printfleet/internal/domain"
)

// fieldError is one entry of a structured validation failure.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (a *App) validationFailed(w http.ResponseWriter, errs []fieldError) {
	a.json(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

var estimatedTimePattern = regexp.MustCompile(`^\d+h \d+m$`)

var jobMaterials = map[string]struct{}{
	"PLA": {}, "ABS": {}, "PETG": {}, "TPU": {},
}

func validJobMaterial(m string) bool {
	_, ok := jobMaterials[m]
	return ok
}

// Printers additionally accept the "None" sentinel as material.
func validPrinterMaterial(m string) bool {
	return m == domain.MaterialNone || validJobMaterial(m)
}

func validPrinterStatus(s domain.PrinterStatus) bool {
	switch s {
	case domain.PrinterIdle, domain.PrinterPrinting, domain.PrinterPaused, domain.PrinterError:
		return true
	}
	return false
}

func validJobStatus(s domain.JobStatus) bool {
	switch s {
	case domain.JobQueued, domain.JobPrinting, domain.JobPaused,
		domain.JobCompleted, domain.JobFailed, domain.JobCancelled:
		return true
	}
	return false
}

func validMaintenanceType(t domain.MaintenanceType) bool {
	switch t {
	case domain.MaintenanceRoutine, domain.MaintenanceEmergency,
		domain.MaintenanceCalibration, domain.MaintenanceUpgrade:
		return true
	}
	return false
}

func validMaintenanceStatus(s domain.MaintenanceStatus) bool {
	switch s {
	case domain.MaintenancePending, domain.MaintenanceInProgress,
		domain.MaintenanceCompleted, domain.MaintenanceCancelled:
		return true
	}
	return false
}

func validProgress(p int) bool {
	return p >= 0 && p <= 100
}
