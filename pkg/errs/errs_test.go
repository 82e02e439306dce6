package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOfWrapped(t *testing.T) {
	root := errors.New("row locked")
	err := fmt.Errorf("delete order: %w", Wrap(http.StatusConflict, "Order is busy", root))

	assert.Equal(t, http.StatusConflict, StatusOf(err))
	assert.Equal(t, "Order is busy", MessageOf(err))
	assert.ErrorIs(t, err, root)
}

func TestPlainErrorIsInternal(t *testing.T) {
	err := errors.New("sql: connection refused")

	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "Internal server error.", MessageOf(err))
}
