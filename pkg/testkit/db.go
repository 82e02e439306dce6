package testkit

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/pkg/cache"
	"github.com/shashiranjanraj/kashvi-shop/pkg/database"
	"github.com/shashiranjanraj/kashvi-shop/pkg/migration"
)

// OpenDB returns a private in-memory SQLite database with every registered
// migration applied. Import the project's migrations package for its side
// effects before calling it.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)

	_, err = migration.New(db, io.Discard).Run()
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// MemoryCache installs a fresh in-process cache for the test and restores
// the previous one afterwards.
func MemoryCache(t *testing.T) {
	t.Helper()
	prev := cache.Current()
	cache.Use(cache.NewMemory())
	t.Cleanup(func() { cache.Use(prev) })
}
