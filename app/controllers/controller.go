// Package controllers holds the HTTP handlers. Each controller receives its
// collaborators through its constructor and resolves route ids with an
// explicit service lookup.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/pkg/ctx"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/middleware"
)

// owner returns the caller's id, answering 401 when there is none.
func owner(c *ctx.Context) (uint, bool) {
	id, ok := middleware.UserIDFromCtx(c.R)
	if !ok {
		c.Unauthorized()
	}
	return id, ok
}

// fail maps a service error onto the response. notFound is the message for
// ErrNotFound, e.g. "Product not found or unauthorized".
func fail(c *ctx.Context, err error, notFound string) {
	var invalid *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.Forbidden(notFound)
	case errors.As(err, &invalid):
		c.ValidationError(invalid.Fields)
	case errors.Is(err, services.ErrMissingFields):
		c.Error(http.StatusBadRequest, "Missing required fields: name, price, stock")
	case errors.Is(err, services.ErrInvalidCategory):
		c.Forbidden("Invalid or unauthorized category")
	case errors.Is(err, services.ErrUnauthenticated):
		c.Unauthorized()
	default:
		logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
		c.Exception(err)
	}
}
