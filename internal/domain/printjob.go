package domain

import "time"

// JobStatus enumerates print job lifecycle states.
type JobStatus string

const (
	JobQueued    JobStatus = "Queued"
	JobPrinting  JobStatus = "Printing"
	JobPaused    JobStatus = "Paused"
	JobCompleted JobStatus = "Completed"
	JobFailed    JobStatus = "Failed"
	JobCancelled JobStatus = "Cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// PrintJob is a unit of work queued against zero or one printer. Printer
// holds the target printer's name, or "Any" when unassigned.
type PrintJob struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Printer       string     `json:"printer"`
	Material      string     `json:"material"`
	EstimatedTime string     `json:"estimatedTime"`
	Status        JobStatus  `json:"status"`
	Progress      int        `json:"progress"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
