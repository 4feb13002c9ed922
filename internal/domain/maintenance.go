package domain

import "time"

// MaintenanceType enumerates service event categories.
type MaintenanceType string

const (
	MaintenanceRoutine     MaintenanceType = "Routine"
	MaintenanceEmergency   MaintenanceType = "Emergency"
	MaintenanceCalibration MaintenanceType = "Calibration"
	MaintenanceUpgrade     MaintenanceType = "Upgrade"
)

// MaintenanceStatus enumerates maintenance record states.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "Pending"
	MaintenanceInProgress MaintenanceStatus = "In Progress"
	MaintenanceCompleted  MaintenanceStatus = "Completed"
	MaintenanceCancelled  MaintenanceStatus = "Cancelled"
)

// MaintenanceRecord is a logged service event against a printer. Printer
// holds the owning printer's id; deleting a printer deletes its records.
type MaintenanceRecord struct {
	ID          string            `json:"id"`
	Printer     string            `json:"printer"`
	Date        time.Time         `json:"date"`
	Type        MaintenanceType   `json:"type"`
	Description string            `json:"description"`
	Status      MaintenanceStatus `json:"status"`
	Technician  string            `json:"technician"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
