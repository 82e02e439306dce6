// Package queue runs background jobs off the request path. Jobs are JSON
// encoded onto a Driver (Redis in production, a channel otherwise), popped by
// Work and handed to a worker pool. A job that keeps failing is written to
// the failed_jobs table.
//
//	type LowStockAlert struct{ ProductID uint }
//	func (LowStockAlert) JobName() string                 { return "low_stock_alert" }
//	func (j *LowStockAlert) Handle(ctx context.Context) error { ... }
//
//	q := queue.New(queue.NewMemoryDriver(), queue.Options{Workers: 2})
//	q.Register(func() queue.Job { return &LowStockAlert{} })
//	go q.Work(ctx)
//	q.Dispatch(ctx, &LowStockAlert{ProductID: 7})
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
	"github.com/shashiranjanraj/kashvi-shop/pkg/workerpool"
)

// Job is one unit of background work. JobName must be stable: it is how a
// popped payload finds its factory.
type Job interface {
	JobName() string
	Handle(ctx context.Context) error
}

// Driver stores encoded jobs. Pop blocks until a payload arrives or ctx is
// done; a nil payload with a nil error means "nothing yet, ask again".
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
	Name() string
}

var ErrUnknownJob = errors.New("queue: unknown job")

type Options struct {
	Workers     int           // concurrent handlers, default 2
	MaxAttempts int           // attempts before a job is recorded as failed, default 3
	Backoff     time.Duration // wait after attempt n is n*Backoff, default 1s; negative means no wait
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.Backoff < 0 {
		o.Backoff = 0
	} else if o.Backoff == 0 {
		o.Backoff = time.Second
	}
	return o
}

type Queue struct {
	driver   Driver
	opts     Options
	mu       sync.RWMutex
	registry map[string]func() Job
	db       *gorm.DB
}

func New(driver Driver, opts Options) *Queue {
	return &Queue{driver: driver, opts: opts.withDefaults(), registry: map[string]func() Job{}}
}

// UseDB records exhausted jobs in failed_jobs.
func (q *Queue) UseDB(db *gorm.DB) { q.db = db }

func (q *Queue) Driver() string { return q.driver.Name() }

// Register makes a job type poppable. Call it once per type at boot.
func (q *Queue) Register(factory func() Job) {
	name := factory().JobName()
	q.mu.Lock()
	q.registry[name] = factory
	q.mu.Unlock()
}

// Jobs lists the registered job names.
func (q *Queue) Jobs() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]string, 0, len(q.registry))
	for name := range q.registry {
		out = append(out, name)
	}
	return out
}

type envelope struct {
	Job      string          `json:"job"`
	Payload  json.RawMessage `json:"payload"`
	QueuedAt time.Time       `json:"queued_at"`
}

// Dispatch encodes job and pushes it. Unregistered job types are refused so
// a typo fails at the call site rather than in a worker.
func (q *Queue) Dispatch(ctx context.Context, job Job) error {
	name := job.JobName()
	q.mu.RLock()
	_, ok := q.registry[name]
	q.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: encode %s: %w", name, err)
	}
	raw, err := json.Marshal(envelope{Job: name, Payload: payload, QueuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("queue: encode envelope: %w", err)
	}
	if err := q.driver.Push(ctx, raw); err != nil {
		return err
	}
	metrics.JobsTotal.WithLabelValues(name, "dispatched").Inc()
	return nil
}

// Work pops jobs until ctx is cancelled, then waits for running jobs to
// finish.
func (q *Queue) Work(ctx context.Context) {
	pool := workerpool.New("queue", q.opts.Workers)
	defer pool.Shutdown()
	logger.Info("queue: worker started", "driver", q.driver.Name(), "workers", q.opts.Workers)

	for {
		raw, err := q.driver.Pop(ctx)
		if ctx.Err() != nil {
			logger.Info("queue: worker stopped")
			return
		}
		if err != nil {
			logger.Warn("queue: pop failed", "driver", q.driver.Name(), "error", err)
			if !sleep(ctx, time.Second) {
				return
			}
			continue
		}
		if raw == nil {
			continue
		}
		// Jobs keep running through shutdown; only the pop loop follows ctx.
		jobCtx := context.WithoutCancel(ctx)
		if err := pool.Submit(ctx, func() { q.process(jobCtx, raw) }); err != nil {
			// ctx ended while the pool was saturated; put the job back.
			if perr := q.driver.Push(jobCtx, raw); perr != nil {
				logger.Error("queue: job lost on shutdown", "error", perr)
			}
			return
		}
	}
}

func (q *Queue) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	q.mu.RLock()
	factory, ok := q.registry[env.Job]
	q.mu.RUnlock()
	if !ok {
		logger.Warn("queue: no handler for job", "job", env.Job)
		q.recordFailure(ctx, env.Job, env.Payload, ErrUnknownJob, 0)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		q.recordFailure(ctx, env.Job, env.Payload, fmt.Errorf("decode payload: %w", err), 0)
		return
	}
	q.run(ctx, job, env.Payload)
}

func (q *Queue) run(ctx context.Context, job Job, payload []byte) {
	name := job.JobName()
	log := logger.WithCtx(ctx).With("job", name)

	var lastErr error
	for attempt := 1; attempt <= q.opts.MaxAttempts; attempt++ {
		lastErr = q.handle(ctx, job)
		if lastErr == nil {
			metrics.JobsTotal.WithLabelValues(name, "done").Inc()
			log.Debug("queue: job done", "attempt", attempt)
			return
		}
		if attempt == q.opts.MaxAttempts {
			break
		}
		metrics.JobsTotal.WithLabelValues(name, "retried").Inc()
		log.Warn("queue: job failed, retrying", "attempt", attempt, "error", lastErr)
		if !sleep(ctx, time.Duration(attempt)*q.opts.Backoff) {
			break
		}
	}

	log.Error("queue: job failed", "attempts", q.opts.MaxAttempts, "error", lastErr)
	q.recordFailure(ctx, name, payload, lastErr, q.opts.MaxAttempts)
}

// handle runs one attempt, turning a panic into an error.
func (q *Queue) handle(ctx context.Context, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return job.Handle(ctx)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
