// Package event is an in-process publish/subscribe bus. Listeners run
// synchronously on the publisher's goroutine; a panicking listener is logged
// and does not stop the others.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
)

type Handler func(ctx context.Context, payload any)

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]Handler)}
}

func (d *Dispatcher) Listen(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

func (d *Dispatcher) Fire(ctx context.Context, name string, payload any) {
	d.mu.RLock()
	hs := append([]Handler(nil), d.handlers[name]...)
	d.mu.RUnlock()

	for _, h := range hs {
		d.call(ctx, name, h, payload)
	}
}

func (d *Dispatcher) call(ctx context.Context, name string, h Handler, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", name, "error", fmt.Sprint(rec))
		}
	}()
	h(ctx, payload)
}

// Flush removes every listener.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	d.handlers = make(map[string][]Handler)
	d.mu.Unlock()
}

// Default is the process-wide bus used by Listen and Fire.
var Default = New()

func Listen(name string, h Handler)                      { Default.Listen(name, h) }
func Fire(ctx context.Context, name string, payload any) { Default.Fire(ctx, name, payload) }
