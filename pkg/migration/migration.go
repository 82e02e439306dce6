// Package migration runs versioned schema changes and records them in the
// shop_migrations table. Migrations register themselves from init():
//
//	func init() {
//	    migration.Register("20240101000002_create_products_table", createProducts{})
//	}
//
// Names sort lexicographically, so a timestamp prefix fixes the order.
package migration

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
)

type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "shop_migrations" }

type entry struct {
	name string
	m    Migration
}

var (
	regMu    sync.Mutex
	registry []entry
)

// Register adds m under name. Registering a name twice panics.
func Register(name string, m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	for _, e := range registry {
		if e.name == name {
			panic(fmt.Sprintf("migration: %q registered twice", name))
		}
	}
	registry = append(registry, entry{name: name, m: m})
}

func registered() []entry {
	regMu.Lock()
	out := append([]entry(nil), registry...)
	regMu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Status is one line of `shop migrate:status`.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

type Runner struct {
	db  *gorm.DB
	out io.Writer
}

// New returns a Runner that reports progress to out (io.Discard is fine).
func New(db *gorm.DB, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{db: db, out: out}
}

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&record{})
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]record, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

// Run applies every pending migration as one batch. Each migration and its
// bookkeeping row commit together. It returns how many ran.
func (r *Runner) Run() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}
	done, err := r.ran()
	if err != nil {
		return 0, fmt.Errorf("migration: read history: %w", err)
	}

	batch := r.lastBatch() + 1
	count := 0
	for _, e := range registered() {
		if _, ok := done[e.name]; ok {
			continue
		}
		fmt.Fprintf(r.out, "Migrating: %s\n", e.name)
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := e.m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: e.name, Batch: batch}).Error
		})
		if err != nil {
			return count, fmt.Errorf("migration: %s up: %w", e.name, err)
		}
		count++
	}

	if count == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
	}
	logger.Info("migration: done", "ran", count, "batch", batch)
	return count, nil
}

// Rollback reverts the most recent batch, newest first.
func (r *Runner) Rollback() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}
	last := r.lastBatch()
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", last).Order("name desc").Find(&rows).Error; err != nil {
		return 0, err
	}

	byName := make(map[string]Migration)
	for _, e := range registered() {
		byName[e.name] = e.m
	}

	count := 0
	for _, rec := range rows {
		m, ok := byName[rec.Name]
		if !ok {
			return count, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		fmt.Fprintf(r.out, "Rolling back: %s\n", rec.Name)
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&record{}, rec.ID).Error
		})
		if err != nil {
			return count, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		count++
	}
	logger.Info("migration: rolled back", "count", count, "batch", last)
	return count, nil
}

// Status lists every registered migration and whether it has run.
func (r *Runner) Status() ([]Status, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.ran()
	if err != nil {
		return nil, err
	}

	var out []Status
	for _, e := range registered() {
		rec, ok := done[e.name]
		out = append(out, Status{Name: e.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch() int {
	var max struct{ Max int }
	r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&max)
	return max.Max
}
