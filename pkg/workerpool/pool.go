// Package workerpool runs tasks on a fixed number of goroutines. The queue
// worker submits every popped job here, so a slow job never blocks the pop
// loop for longer than it takes a worker to free up.
//
//	pool := workerpool.New("queue", 4)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(ctx, func() { handle(job) }); err != nil {
//	    // ctx cancelled or pool closed
//	}
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
)

var (
	// ErrPoolFull is returned by TrySubmit when every worker is busy and the
	// backlog is at capacity.
	ErrPoolFull = errors.New("workerpool: pool is full")

	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Pool is a bounded goroutine pool. The backlog holds as many tasks as
// there are workers.
type Pool struct {
	name    string
	tasks   chan func()
	closed  chan struct{}
	mu      sync.RWMutex
	wg      sync.WaitGroup
	once    sync.Once
	busy    atomic.Int64
	panics  atomic.Int64
	workers int
}

func New(name string, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		name:    name,
		tasks:   make(chan func(), size),
		closed:  make(chan struct{}),
		workers: size,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit queues task, waiting for room until ctx is done.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	select {
	case <-p.closed:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closed:
		return ErrPoolClosed
	}
}

// TrySubmit queues task only if there is room right now.
func (p *Pool) TrySubmit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	select {
	case <-p.closed:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// Busy is the number of tasks running right now.
func (p *Pool) Busy() int { return int(p.busy.Load()) }

func (p *Pool) Size() int { return p.workers }

// Panics counts tasks that panicked since the pool started.
func (p *Pool) Panics() int64 { return p.panics.Load() }

// Shutdown stops accepting tasks, runs what is already queued and waits for
// the workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closed)
		// Submitters hold the read lock while sending; taking the write lock
		// guarantees none is mid-send when tasks is closed.
		p.mu.Lock()
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	p.busy.Add(1)
	defer p.busy.Add(-1)
	defer func() {
		if rec := recover(); rec != nil {
			p.panics.Add(1)
			logger.Error("workerpool: task panicked", "pool", p.name, "panic", fmt.Sprint(rec))
		}
	}()
	task()
}
