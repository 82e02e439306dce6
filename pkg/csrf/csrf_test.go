package csrf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-shop/config"
)

func TestTokenIsBoundToUserAndIntent(t *testing.T) {
	config.Set("APP_KEY", "csrf-test")

	tok, err := Issue(3, "delete12")
	require.NoError(t, err)

	assert.NoError(t, Verify(tok, 3, "delete12"))
	assert.ErrorIs(t, Verify(tok, 4, "delete12"), ErrInvalid)
	assert.ErrorIs(t, Verify(tok, 3, "delete13"), ErrInvalid)
	assert.ErrorIs(t, Verify("", 3, "delete12"), ErrInvalid)
	assert.ErrorIs(t, Verify("garbage", 3, "delete12"), ErrInvalid)
}

func TestTokenExpires(t *testing.T) {
	config.Set("APP_KEY", "csrf-test")
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return start }
	t.Cleanup(func() { now = time.Now })

	tok, err := Issue(1, "delete1")
	require.NoError(t, err)

	now = func() time.Time { return start.Add(TTL + time.Second) }
	assert.ErrorIs(t, Verify(tok, 1, "delete1"), ErrInvalid)
}
