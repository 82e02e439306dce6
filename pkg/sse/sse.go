// Package sse streams per-owner events as text/event-stream. It is the
// plain-HTTP sibling of pkg/ws for clients that cannot open a websocket.
//
//	broker := sse.NewBroker()
//	r.Get("/sse/stock", "stock.stream", func(w http.ResponseWriter, r *http.Request) {
//	    uid, _ := middleware.UserIDFromCtx(r)
//	    broker.Serve(w, r, uid)
//	})
//	broker.Publish(ownerID, payload)
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
)

const (
	defaultHeartbeat = 25 * time.Second
	streamBuffer     = 32
)

type stream struct {
	owner uint
	send  chan []byte
}

type Broker struct {
	// Event names every message sent by Publish.
	Event     string
	Heartbeat time.Duration

	mu      sync.RWMutex
	streams map[uint]map[*stream]struct{}
	done    chan struct{}
	closed  bool
}

func NewBroker() *Broker {
	return &Broker{
		Event:     "message",
		Heartbeat: defaultHeartbeat,
		streams:   make(map[uint]map[*stream]struct{}),
		done:      make(chan struct{}),
	}
}

// Serve holds the request open and writes owner's events until the client
// goes away or the broker closes.
func (b *Broker) Serve(w http.ResponseWriter, r *http.Request, owner uint) {
	rc := http.NewResponseController(w)

	s := &stream{owner: owner, send: make(chan []byte, streamBuffer)}
	if !b.add(s) {
		http.Error(w, "stream closed", http.StatusServiceUnavailable)
		return
	}
	defer b.remove(s)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		logger.WithCtx(r.Context()).Warn("sse: flush unsupported", "error", err)
		return
	}

	beat := time.NewTicker(b.Heartbeat)
	defer beat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-b.done:
			return
		case msg, ok := <-s.send:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", b.Event, msg); err != nil {
				return
			}
		case <-beat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (b *Broker) add(s *stream) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	set, ok := b.streams[s.owner]
	if !ok {
		set = make(map[*stream]struct{})
		b.streams[s.owner] = set
	}
	set[s] = struct{}{}
	metrics.SSEConnections.Inc()
	return true
}

func (b *Broker) remove(s *stream) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.streams[s.owner]
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(b.streams, s.owner)
	}
	close(s.send)
	metrics.SSEConnections.Dec()
}

// Publish JSON-encodes v for every stream of owner. Streams whose buffer
// is full are cut off.
func (b *Broker) Publish(owner uint, v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var slow []*stream
	b.mu.RLock()
	for s := range b.streams[owner] {
		select {
		case s.send <- msg:
		default:
			slow = append(slow, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range slow {
		b.remove(s)
	}
	return nil
}

func (b *Broker) Count(owner uint) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.streams[owner])
}

// Close ends every stream and refuses new ones.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}
