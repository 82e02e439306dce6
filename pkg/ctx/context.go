// Package ctx gives handlers a single request/response value with helpers
// for params, binding and the shop's JSON envelope.
//
//	func (pc *ProductAPIController) Show(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    ...
//	    c.Success(resources.NewProduct(p))
//	}
//
//	r.Get("/api/products/{id}", "products.show", ctx.Wrap(pc.Show))
package ctx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/kashvi-shop/pkg/bind"
	"github.com/shashiranjanraj/kashvi-shop/pkg/response"
)

type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to net/http.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request ──────────────────────────────────────────────────────────────────

func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

// ParamUint parses a numeric path parameter. ok is false for anything that
// is not a positive integer.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (c *Context) PostForm(key string) string { return c.R.PostFormValue(key) }

func (c *Context) Context() context.Context { return c.R.Context() }

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-Ip, then the peer.
func (c *Context) ClientIP() string {
	if fwd := c.R.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := c.R.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := c.R.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// DecodeJSON decodes the body into dest. On failure it answers
// 400 {"error":"Invalid JSON"} and returns false.
func (c *Context) DecodeJSON(dest any) bool {
	if err := bind.Decode(c.R, dest); err != nil {
		if errors.Is(err, bind.ErrTooLarge) {
			c.Error(http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		c.Error(http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// BindJSON decodes and validates. It answers 400 or 422 itself and returns
// false when the handler should stop.
func (c *Context) BindJSON(dest any) bool {
	fields, err := bind.JSON(c.R, dest)
	if err != nil {
		if errors.Is(err, bind.ErrTooLarge) {
			c.Error(http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		c.Error(http.StatusBadRequest, "Invalid JSON")
		return false
	}
	if len(fields) > 0 {
		c.ValidationError(fields)
		return false
	}
	return true
}

// BindForm populates dest from form fields. It answers 422 itself on
// failure and returns false.
func (c *Context) BindForm(dest any) bool {
	fields, err := bind.Form(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, "Invalid form submission")
		return false
	}
	if len(fields) > 0 {
		c.ValidationError(fields)
		return false
	}
	return true
}

// ─── Response ─────────────────────────────────────────────────────────────────

// JSON writes data inside the response envelope.
func (c *Context) JSON(code int, data any) {
	response.JSON(c.W, code, data)
}

func (c *Context) Success(data any) { c.JSON(http.StatusOK, data) }

func (c *Context) Created(data any) { c.JSON(http.StatusCreated, data) }

func (c *Context) Error(code int, message string) {
	c.JSON(code, map[string]string{"error": message})
}

func (c *Context) ValidationError(fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": fields})
}

func (c *Context) Unauthorized() { c.Error(http.StatusUnauthorized, "Unauthorized") }

func (c *Context) Forbidden(message string) { c.Error(http.StatusForbidden, message) }

// Exception answers an unexpected error with the generic error body.
func (c *Context) Exception(err error) {
	response.Exception(c.W, err)
}

// Redirect answers with 303 See Other, the status a form POST expects.
func (c *Context) Redirect(url string) {
	http.Redirect(c.W, c.R, url, http.StatusSeeOther)
}
