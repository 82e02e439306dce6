package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", name)
			next.ServeHTTP(w, r)
		})
	}
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupMiddlewareOrderAndPrefix(t *testing.T) {
	r := New()
	api := r.Group("/api", tag("auth"))
	api.Group("products", tag("admin")).Put("/{id}", "products.update", ok)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/products/3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"auth", "admin"}, rec.Header().Values("X-Chain"))
}

func TestNamedURL(t *testing.T) {
	r := New()
	r.Get("/order/{id}", "order.show", ok)

	u, err := r.URL("order.show", map[string]string{"id": "9"})
	require.NoError(t, err)
	assert.Equal(t, "/order/9", u)

	_, err = r.URL("order.show", nil)
	assert.Error(t, err)
}

func TestRoutesAreSorted(t *testing.T) {
	r := New()
	r.Post("/order", "order.store", ok)
	r.Get("/order", "order.index", ok)
	r.Delete("/api/products/{id}", "products.destroy", ok)

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, Route{Method: http.MethodDelete, Path: "/api/products/{id}", Name: "products.destroy"}, routes[0])
	assert.Equal(t, http.MethodGet, routes[1].Method)
	assert.Equal(t, http.MethodPost, routes[2].Method)
}
