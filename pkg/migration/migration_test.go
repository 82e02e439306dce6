package migration

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/pkg/database"
)

type widget struct {
	ID   uint
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

func TestRunStatusRollback(t *testing.T) {
	db, err := database.Open("sqlite", "file:migration_test?mode=memory&cache=shared")
	require.NoError(t, err)

	regMu.Lock()
	saved := registry
	registry = nil
	regMu.Unlock()
	t.Cleanup(func() { regMu.Lock(); registry = saved; regMu.Unlock() })

	Register("20240101000000_create_widgets", createWidgets{})

	var out bytes.Buffer
	r := New(db, &out)

	n, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, db.Migrator().HasTable(&widget{}))

	n, err = r.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, out.String(), "Nothing to migrate.")

	st, err := r.Status()
	require.NoError(t, err)
	require.Len(t, st, 1)
	assert.True(t, st[0].Ran)
	assert.Equal(t, 1, st[0].Batch)

	n, err = r.Rollback()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, db.Migrator().HasTable(&widget{}))
}

func TestRegisterTwicePanics(t *testing.T) {
	regMu.Lock()
	saved := registry
	registry = nil
	regMu.Unlock()
	t.Cleanup(func() { regMu.Lock(); registry = saved; regMu.Unlock() })

	Register("x", createWidgets{})
	assert.Panics(t, func() { Register("x", createWidgets{}) })
}
