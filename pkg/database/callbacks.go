package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
)

const startKey = "shop:query_start"

func registerMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) { tx.InstanceSet(startKey, time.Now()) }
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			if v, ok := tx.InstanceGet(startKey); ok {
				if start, ok := v.(time.Time); ok {
					metrics.ObserveDBQuery(op, start)
				}
			}
		}
	}

	cb := db.Callback()
	steps := []struct {
		op       string
		register func(name string, before, after func(*gorm.DB)) error
	}{
		{"create", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Create().Before("gorm:create").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register(n+":after", a)
		}},
		{"query", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Query().Before("gorm:query").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register(n+":after", a)
		}},
		{"update", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Update().Before("gorm:update").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register(n+":after", a)
		}},
		{"delete", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Delete().Before("gorm:delete").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register(n+":after", a)
		}},
		{"row", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Row().Before("gorm:row").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Row().After("gorm:row").Register(n+":after", a)
		}},
		{"raw", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Raw().Before("gorm:raw").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register(n+":after", a)
		}},
	}

	for _, s := range steps {
		if err := s.register("metrics:"+s.op, before, after(s.op)); err != nil {
			return err
		}
	}
	return nil
}
