package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-shop/config"
	"github.com/shashiranjanraj/kashvi-shop/pkg/auth"
	"github.com/shashiranjanraj/kashvi-shop/pkg/cache"
	"github.com/shashiranjanraj/kashvi-shop/pkg/session"
)

func whoami(seen *Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticateBearer(t *testing.T) {
	config.Set("JWT_SECRET", "mw-test")
	tok, err := auth.GenerateToken(11, []string{"ROLE_ADMIN"})
	require.NoError(t, err)

	var seen Principal
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	Authenticate(whoami(&seen)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint(11), seen.UserID)
	assert.True(t, seen.HasRole("ROLE_ADMIN"))
}

func TestAuthenticateRejectsBadBearerAndAnonymous(t *testing.T) {
	config.Set("JWT_SECRET", "mw-test")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	Authenticate(whoami(new(Principal))).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	Authenticate(whoami(new(Principal))).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Unauthorized"`)
}

func TestAuthenticateFromSession(t *testing.T) {
	cache.Use(cache.NewMemory())
	sm := session.Middleware(session.DefaultOptions())

	login := sm(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromCtx(r)
		s.Set(SessionUserID, uint(4))
		s.Set(SessionRoles, []string{"ROLE_ADMIN"})
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookie := rec.Result().Cookies()[0]

	var seen Principal
	req := httptest.NewRequest(http.MethodGet, "/order", nil)
	req.AddCookie(cookie)
	sm(Authenticate(whoami(&seen))).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, uint(4), seen.UserID)
	assert.Equal(t, []string{"ROLE_ADMIN"}, seen.Roles)
}

func TestRecoveryWritesGenericError(t *testing.T) {
	rec := httptest.NewRecorder()
	Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body struct {
		RequestedAt string            `json:"requested_at"`
		Data        map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	_, err := time.Parse(time.RFC3339, body.RequestedAt)
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"error": "An error occurred.", "details": "Internal server error."}, body.Data)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(DefaultCORSOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight reached handler")
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "https://admin.example")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
