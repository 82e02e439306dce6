package orm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-shop/pkg/database"
)

type counter struct {
	ID    uint
	Value int
}

func TestTransactionRollsBackAndNests(t *testing.T) {
	db, err := database.Open("sqlite", "file:orm_tx_test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&counter{}))
	require.NoError(t, db.Create(&counter{ID: 1, Value: 10}).Error)

	ctx := context.Background()
	boom := errors.New("boom")

	err = Transaction(ctx, db, func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		if err := Conn(ctx, db).Model(&counter{}).Where("id = ?", 1).
			Update("value", 3).Error; err != nil {
			return err
		}
		return Transaction(ctx, db, func(inner context.Context) error {
			assert.Same(t, Conn(ctx, db), Conn(inner, db))
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	var c counter
	require.NoError(t, db.First(&c, 1).Error)
	assert.Equal(t, 10, c.Value)
	assert.False(t, InTransaction(ctx))
}

func TestForUpdateIsNoopOnSQLite(t *testing.T) {
	db, err := database.Open("sqlite", "file:orm_lock_test?mode=memory&cache=shared")
	require.NoError(t, err)
	q := ForUpdate(db.Model(&counter{}))
	_, locked := q.Statement.Clauses["FOR"]
	assert.False(t, locked)
}
