package ws

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"printfleet/internal/domain"
)

const broadcastBufferSize = 256

// Hub routes events to connected clients. Printer-scoped events reach the
// printer's subscribers plus any client that never narrowed its view;
// unscoped events reach everyone.
type Hub struct {
	logger     zerolog.Logger
	register   chan *client
	unregister chan *client
	broadcast  chan Event
	clients    map[*client]struct{}

	// onDiscover is invoked when a client requests a discovery scan.
	onDiscover func()
}

// NewHub constructs a hub. Run must be called before clients connect.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, broadcastBufferSize),
		clients:    make(map[*client]struct{}),
	}
}

// OnDiscover registers the callback for client-initiated discovery scans.
func (h *Hub) OnDiscover(fn func()) {
	h.onDiscover = fn
}

// Run processes registrations and fan-out until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Debug().Int("clients", len(h.clients)).Msg("ws client connected")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case evt := <-h.broadcast:
			for c := range h.clients {
				if !c.wants(evt) {
					continue
				}
				select {
				case c.send <- evt:
				default:
					// Slow consumer: drop the event, never block fan-out.
					h.logger.Debug().Str("event", evt.Type).Msg("ws event dropped")
				}
			}
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

// Broadcast queues an event for delivery. It never blocks; when the hub is
// saturated the event is dropped.
func (h *Hub) Broadcast(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- evt:
	default:
		h.logger.Warn().Str("event", evt.Type).Msg("ws broadcast buffer full, event dropped")
	}
}

// PrinterStatus implements fleet.Notifier.
func (h *Hub) PrinterStatus(printer *domain.Printer) {
	h.Broadcast(Event{Type: EventPrinterStatus, PrinterID: printer.ID, Data: printer})
}

// JobProgress implements fleet.Notifier.
func (h *Hub) JobProgress(job *domain.PrintJob) {
	h.Broadcast(Event{Type: EventJobProgress, Data: job})
}

// PrinterDiscovered pushes a discovery result to every client.
func (h *Hub) PrinterDiscovered(data any) {
	h.Broadcast(Event{Type: EventPrinterDiscovered, Data: data})
}
