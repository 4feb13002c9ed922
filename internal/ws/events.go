// Package ws provides the WebSocket fan-out: a hub that pushes printer and
// job state changes to connected observers. Delivery is best-effort; slow
// consumers have events dropped rather than blocking the publishers.
package ws

import "time"

// Server-to-client event types.
const (
	EventPrinterStatus     = "printer:statusUpdate"
	EventJobProgress       = "printJob:progressUpdate"
	EventPrinterDiscovered = "printer:discovered"
	EventError             = "error"
)

// Client-to-server message types.
const (
	MsgSubscribe   = "printer:subscribe"
	MsgUnsubscribe = "printer:unsubscribe"
	MsgDiscover    = "printer:discover"
)

// Event is the envelope pushed to observers. PrinterID scopes the event to
// a printer room; when empty the event goes to every client.
type Event struct {
	Type      string    `json:"type"`
	PrinterID string    `json:"printerId,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// clientMessage is an inbound control message from a connected client.
type clientMessage struct {
	Type      string `json:"type"`
	PrinterID string `json:"printerId,omitempty"`
}
