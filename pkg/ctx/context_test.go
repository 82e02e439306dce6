package ctx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "github.com/shashiranjanraj/kashvi-shop/pkg/ctx"
)

func serve(h appctx.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func dataOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		RequestedAt string         `json:"requested_at"`
		Data        map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotEmpty(t, env.RequestedAt)
	return env.Data
}

func TestSuccessIsEnveloped(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Api-Version"))
	assert.EqualValues(t, 1, dataOf(t, rec)["id"])
}

func TestDecodeJSONInvalid(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		var in map[string]any
		assert.False(t, c.DecodeJSON(&in))
	}, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON", dataOf(t, rec)["error"])
}

func TestBindJSONValidationFailure(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		var in struct {
			Name string `json:"name" validate:"required"`
		}
		assert.False(t, c.BindJSON(&in))
	}, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := dataOf(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "name")
}

func TestParamUint(t *testing.T) {
	r := chi.NewRouter()
	var got uint
	var ok bool
	r.Get("/p/{id}", appctx.Wrap(func(c *appctx.Context) {
		got, ok = c.ParamUint("id")
		c.Success(nil)
	}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/p/12", nil))
	assert.True(t, ok)
	assert.Equal(t, uint(12), got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/p/abc", nil))
	assert.False(t, ok)
}

func TestRedirectIsSeeOther(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Redirect("/order")
	}, httptest.NewRequest(http.MethodPost, "/order", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/order", rec.Header().Get("Location"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	serve(func(c *appctx.Context) {
		assert.Equal(t, "1.2.3.4", c.ClientIP())
	}, req)
}
