// Package ws streams server-side events to browser clients over gorilla
// websockets. Each connection belongs to one owner (a user id) and only
// receives what is published to that owner.
//
//	hub := ws.NewHub()
//	r.Get("/ws/stock", "ws.stock", func(w http.ResponseWriter, r *http.Request) {
//	    uid, _ := middleware.UserIDFromCtx(r)
//	    hub.Serve(w, r, uid)
//	})
//	hub.Publish(ownerID, payload)
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

type client struct {
	owner uint
	conn  *websocket.Conn
	send  chan []byte
}

// Hub tracks open connections per owner.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[uint]map[*client]struct{}
	closed  bool
}

// NewHub returns a hub that accepts any Origin. Use CheckOrigin to restrict it.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[uint]map[*client]struct{}),
	}
}

func (h *Hub) CheckOrigin(fn func(*http.Request) bool) { h.upgrader.CheckOrigin = fn }

// Serve upgrades the request and attaches the connection to owner.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, owner uint) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("ws: upgrade failed", "error", err)
		return
	}
	c := &client{owner: owner, conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		_ = conn.Close()
		return
	}
	go c.writePump()
	go h.readPump(c)
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[c.owner]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.owner] = set
	}
	set[c] = struct{}{}
	metrics.WSConnections.Inc()
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.owner]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.owner)
	}
	close(c.send)
	metrics.WSConnections.Dec()
}

// Publish JSON-encodes v and queues it for every connection of owner.
// Slow connections whose buffer is full are dropped.
func (h *Hub) Publish(owner uint, v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients[owner] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.remove(c)
	}
	return nil
}

// Count returns the open connections of owner.
func (h *Hub) Count(owner uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[owner])
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	all := make([]*client, 0)
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.closed = true
	h.mu.Unlock()

	for _, c := range all {
		h.remove(c)
	}
}

// readPump only watches for close and pong frames; clients do not send data.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws: unexpected close", "owner", c.owner, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
