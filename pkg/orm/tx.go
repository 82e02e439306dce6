// Package orm carries gorm transactions through context.Context so
// repositories join an open transaction without extra parameters:
//
//	err := orm.Transaction(ctx, db, func(ctx context.Context) error {
//	    if err := products.Decrement(ctx, id, 1); err != nil { // runs on the tx
//	        return err
//	    }
//	    return orders.Create(ctx, &order)
//	})
package orm

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/kashvi-shop/pkg/database"
)

type txKey struct{}

// Transaction runs fn inside a transaction on db. Nested calls reuse the
// outer transaction. fn returning an error rolls everything back.
func Transaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn returns the transaction bound to ctx, or db scoped to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// ForUpdate adds SELECT ... FOR UPDATE on dialects that have row locks.
func ForUpdate(q *gorm.DB) *gorm.DB {
	if !database.SupportsRowLocks(q) {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}
