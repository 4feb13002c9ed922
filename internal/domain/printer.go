package domain

import "time"

// PrinterStatus enumerates a printer's operational states.
type PrinterStatus string

const (
	PrinterIdle     PrinterStatus = "Idle"
	PrinterPrinting PrinterStatus = "Printing"
	PrinterPaused   PrinterStatus = "Paused"
	PrinterError    PrinterStatus = "Error"
)

// Sentinel values used in place of null references.
const (
	JobNone      = "None"
	MaterialNone = "None"
	PrinterAny   = "Any"
	TimeNA       = "N/A"
	TimeLeftZero = "0h 0m"
)

// Temperature holds the informational bed/nozzle readings.
type Temperature struct {
	Bed    float64 `json:"bed"`
	Nozzle float64 `json:"nozzle"`
}

// Printer is a managed device record. job, material, startTime and
// estimatedEnd are display denormalizations of the currently printing job;
// they hold sentinel values while the printer is idle. CurrentJobID is the
// authoritative back-reference to the active job, set by StartPrint.
type Printer struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Status          PrinterStatus `json:"status"`
	Progress        int           `json:"progress"`
	TimeLeft        string        `json:"timeLeft"`
	Temperature     Temperature   `json:"temperature"`
	Job             string        `json:"job"`
	Material        string        `json:"material"`
	StartTime       string        `json:"startTime"`
	EstimatedEnd    string        `json:"estimatedEnd"`
	CurrentJobID    string        `json:"currentJobId,omitempty"`
	LastMaintenance time.Time     `json:"lastMaintenance"`
	NextMaintenance time.Time     `json:"nextMaintenance"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// ResetToIdle clears every current-job denormalization. The invariant
// status==Idle <=> job=="None" must hold after every lifecycle operation.
func (p *Printer) ResetToIdle() {
	p.Status = PrinterIdle
	p.Progress = 0
	p.TimeLeft = TimeLeftZero
	p.Job = JobNone
	p.Material = MaterialNone
	p.StartTime = TimeNA
	p.EstimatedEnd = TimeNA
	p.CurrentJobID = ""
}
