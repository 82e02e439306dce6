package queue

import (
	"context"
	"errors"
)

var ErrQueueFull = errors.New("queue: memory queue is full")

// MemoryDriver keeps jobs in a buffered channel. Jobs do not survive a
// restart.
type MemoryDriver struct {
	ch chan []byte
}

func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1024)}
}

func (d *MemoryDriver) Name() string { return "memory" }

// Push never blocks a request; a full buffer is an error.
func (d *MemoryDriver) Push(_ context.Context, payload []byte) error {
	select {
	case d.ch <- payload:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	}
}

// Len is the number of waiting jobs.
func (d *MemoryDriver) Len() int { return len(d.ch) }
