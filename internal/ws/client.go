package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Event

	mu   sync.RWMutex
	subs map[string]struct{}
}

// wants reports whether the client should receive the event. A client with
// no subscriptions observes everything; a subscribed client only sees its
// printers plus unscoped events.
func (c *client) wants(evt Event) bool {
	if evt.PrinterID == "" {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.subs) == 0 {
		return true
	}
	_, ok := c.subs[evt.PrinterID]
	return ok
}

func (c *client) subscribe(printerID string) {
	c.mu.Lock()
	c.subs[printerID] = struct{}{}
	c.mu.Unlock()
}

func (c *client) unsubscribe(printerID string) {
	c.mu.Lock()
	delete(c.subs, printerID)
	c.mu.Unlock()
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case MsgSubscribe:
			if msg.PrinterID != "" {
				c.subscribe(msg.PrinterID)
			}
		case MsgUnsubscribe:
			c.unsubscribe(msg.PrinterID)
		case MsgDiscover:
			if c.hub.onDiscover != nil {
				c.hub.onDiscover()
			}
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case evt, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler upgrades HTTP requests to WebSocket connections bound to the hub.
// Origins outside the allowed list are rejected at the upgrade.
func Handler(h *Hub, allowedOrigins []string) http.HandlerFunc {
	allow := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allow[origin] = struct{}{}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allow[origin]
			return ok
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Debug().Err(err).Msg("ws upgrade failed")
			return
		}
		c := &client{
			hub:  h,
			conn: conn,
			send: make(chan Event, sendBufferSize),
			subs: make(map[string]struct{}),
		}
		h.register <- c
		go c.writePump()
		go c.readPump()
	}
}
