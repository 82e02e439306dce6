// Package schedule runs recurring maintenance tasks inside the server
// process.
//
//	s := schedule.New()
//	s.Daily().At("03:00").Name("queue:prune-failed").Run(pruneFailedJobs)
//	s.Every(15 * time.Minute).WithoutOverlapping().Run(sweep)
//	s.Cron("*/5 * * * *").Run(report)
//	go s.Run(ctx)
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
)

type Task func(ctx context.Context) error

type entry struct {
	name      string
	interval  time.Duration
	at        string // "HH:MM" for daily entries
	cron      string
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler holds entries and ticks once a second.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
}

func New() *Scheduler { return &Scheduler{} }

// Entry is the builder returned by Every, Daily and Cron.
type Entry struct {
	s *Scheduler
	e *entry
}

func (s *Scheduler) Every(d time.Duration) *Entry {
	return &Entry{s: s, e: &entry{interval: d}}
}

// Daily runs once a day, at midnight unless At says otherwise.
func (s *Scheduler) Daily() *Entry {
	return &Entry{s: s, e: &entry{interval: 24 * time.Hour, at: "00:00"}}
}

// Cron takes a five-field expression: minute hour day-of-month month
// day-of-week. Fields accept *, N, */N, N-M and comma lists of those.
func (s *Scheduler) Cron(expr string) *Entry {
	return &Entry{s: s, e: &entry{cron: expr}}
}

// At sets the wall-clock time of a Daily entry.
func (b *Entry) At(hhmm string) *Entry {
	b.e.at = hhmm
	return b
}

func (b *Entry) Name(name string) *Entry {
	b.e.name = name
	return b
}

// WithoutOverlapping skips a tick while the previous run is still going.
func (b *Entry) WithoutOverlapping() *Entry {
	b.e.noOverlap = true
	return b
}

// Run registers the entry. It returns an error for a malformed At or Cron.
func (b *Entry) Run(task Task) error {
	if b.e.cron != "" {
		if _, err := parseCron(b.e.cron); err != nil {
			return err
		}
	}
	if b.e.at != "" {
		if _, _, err := parseClock(b.e.at); err != nil {
			return err
		}
	}
	b.e.task = task

	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.name == "" {
		b.e.name = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
	return nil
}

// Run ticks until ctx is cancelled, then waits for running tasks.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	logger.Info("schedule: started", "entries", len(s.List()))

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			logger.Info("schedule: stopped")
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	current := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	for _, e := range current {
		if e.due(now) {
			s.dispatch(ctx, e, now)
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: previous run still going, skipped", "task", e.name)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if rec := recover(); rec != nil {
				logger.Error("schedule: task panicked", "task", e.name, "panic", fmt.Sprint(rec))
			}
		}()

		start := time.Now()
		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "task", e.name, "error", err)
			return
		}
		logger.Info("schedule: task done", "task", e.name, "took", time.Since(start).String())
	}()
}

// due reports whether e should fire at now. Cron and daily entries fire at
// most once per matching minute.
func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	last := e.lastRun
	e.mu.Unlock()

	sameMinute := !last.IsZero() && last.Truncate(time.Minute).Equal(now.Truncate(time.Minute))
	switch {
	case e.cron != "":
		c, err := parseCron(e.cron)
		return err == nil && !sameMinute && c.match(now)
	case e.at != "":
		h, m, _ := parseClock(e.at)
		return !sameMinute && now.Hour() == h && now.Minute() == m
	default:
		return last.IsZero() || now.Sub(last) >= e.interval
	}
}

// List describes the registered entries for the CLI.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		var when string
		switch {
		case e.cron != "":
			when = "cron " + e.cron
		case e.at != "":
			when = "daily at " + e.at
		default:
			when = "every " + e.interval.String()
		}
		out = append(out, e.name+"  ["+when+"]")
	}
	return out
}

func parseClock(hhmm string) (int, int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, 0, fmt.Errorf("schedule: bad time %q, want HH:MM", hhmm)
	}
	return t.Hour(), t.Minute(), nil
}

type cronSpec [5]func(int) bool

func (c cronSpec) match(t time.Time) bool {
	vals := [5]int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range c {
		if !f(vals[i]) {
			return false
		}
	}
	return true
}

func parseCron(expr string) (cronSpec, error) {
	var spec cronSpec
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return spec, fmt.Errorf("schedule: cron %q needs 5 fields", expr)
	}
	for i, f := range fields {
		m, err := parseField(f)
		if err != nil {
			return spec, fmt.Errorf("schedule: cron %q: %w", expr, err)
		}
		spec[i] = m
	}
	return spec, nil
}

func parseField(field string) (func(int) bool, error) {
	var parts []func(int) bool
	for _, p := range strings.Split(field, ",") {
		m, err := parsePart(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, m)
	}
	return func(v int) bool {
		for _, m := range parts {
			if m(v) {
				return true
			}
		}
		return false
	}, nil
}

func parsePart(p string) (func(int) bool, error) {
	switch {
	case p == "*":
		return func(int) bool { return true }, nil
	case strings.HasPrefix(p, "*/"):
		step, err := strconv.Atoi(p[2:])
		if err != nil || step <= 0 {
			return nil, fmt.Errorf("bad step %q", p)
		}
		return func(v int) bool { return v%step == 0 }, nil
	case strings.Contains(p, "-"):
		lo, hi, _ := strings.Cut(p, "-")
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil || a > b {
			return nil, fmt.Errorf("bad range %q", p)
		}
		return func(v int) bool { return v >= a && v <= b }, nil
	default:
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad value %q", p)
		}
		return func(v int) bool { return v == n }, nil
	}
}
