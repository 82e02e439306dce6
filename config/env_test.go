package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port": 9000, "low_stock_threshold": 5, "mail_host": "smtp.json"}`), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("# comment\nMAIL_HOST=\"smtp.env\"\nQUEUE_WORKERS=4\n"), 0o600))
	t.Setenv("QUEUE_WORKERS", "6")

	require.NoError(t, Load())
	prev := snapshot()
	t.Cleanup(func() { restore(prev) })
	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "9000", AppPort())
	assert.Equal(t, 5, LowStockThreshold())
	assert.Equal(t, "smtp.env", Get("MAIL_HOST", ""))
	assert.Equal(t, 6, QueueWorkers())
}

func TestMissingFilesKeepDefaults(t *testing.T) {
	require.NoError(t, Load())
	prev := snapshot()
	t.Cleanup(func() { restore(prev) })
	require.NoError(t, loadFromFiles(filepath.Join(t.TempDir(), "none.json"), filepath.Join(t.TempDir(), "none.env")))

	assert.Equal(t, defaultAppPort, AppPort())
	assert.Equal(t, "sqlite", DatabaseDriver())
}

func TestDatabaseDSNFollowsDriver(t *testing.T) {
	t.Cleanup(func() { Set("DB_DRIVER", ""); Set("DATABASE_DSN", "") })

	Set("DB_DRIVER", "Postgres")
	assert.Equal(t, "postgres", DatabaseDriver())
	assert.Equal(t, defaultPostgresDSN, DatabaseDSN())

	Set("DATABASE_DSN", "file::memory:")
	assert.Equal(t, "file::memory:", DatabaseDSN())

	Set("DB_DRIVER", "oracle")
	assert.Equal(t, "sqlite", DatabaseDriver())
}

func TestIntFallsBackOnGarbage(t *testing.T) {
	Set("LOW_STOCK_THRESHOLD", "lots")
	t.Cleanup(func() { Set("LOW_STOCK_THRESHOLD", "") })
	assert.Equal(t, defaultLowStock, LowStockThreshold())
}

func snapshot() map[string]string {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func restore(v map[string]string) {
	mu.Lock()
	values = v
	mu.Unlock()
}
