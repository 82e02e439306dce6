package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-shop/pkg/errs"
)

func frozen(t *testing.T) {
	t.Helper()
	prev := Now
	Now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { Now = prev })
}

func TestSuccessEnvelope(t *testing.T) {
	frozen(t)
	rec := httptest.NewRecorder()

	Success(rec, map[string]any{"id": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Api-Version"))
	assert.JSONEq(t, `{"requested_at":"2024-05-01T10:00:00Z","data":{"id":1}}`, rec.Body.String())
}

func TestErrorShapes(t *testing.T) {
	frozen(t)

	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "Invalid JSON")
	assert.JSONEq(t, `{"requested_at":"2024-05-01T10:00:00Z","data":{"error":"Invalid JSON"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	ValidationError(rec, map[string]string{"price": "price must be at least 0"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"requested_at":"2024-05-01T10:00:00Z","data":{"errors":{"price":"price must be at least 0"}}}`, rec.Body.String())
}

func TestExceptionMapping(t *testing.T) {
	rec := httptest.NewRecorder()
	Exception(rec, errs.NotFound("No route found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		RequestedAt string            `json:"requested_at"`
		Data        map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.RequestedAt)
	assert.Equal(t, "An error occurred.", body.Data["error"])
	assert.Equal(t, "No route found", body.Data["details"])

	rec = httptest.NewRecorder()
	Exception(rec, errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}
