package fleet

import "printfleet/internal/domain"

// Notifier receives state changes for best-effort fan-out to observers.
// Delivery is not part of the correctness contract; implementations must
// never block the calling operation.
type Notifier interface {
	PrinterStatus(printer *domain.Printer)
	JobProgress(job *domain.PrintJob)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) PrinterStatus(*domain.Printer) {}
func (NopNotifier) JobProgress(*domain.PrintJob)  {}
