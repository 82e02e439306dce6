package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
)

var (
	// ErrNotFound is the single answer for missing, foreign and soft-deleted
	// entities, so callers cannot discover ids they do not own.
	ErrNotFound = errors.New("not found or unauthorized")

	ErrInvalidCategory    = errors.New("invalid or unauthorized category")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("no authenticated user")
)

// OutOfStockError refuses an order deletion while one of its products has
// no stock left.
type OutOfStockError struct {
	Product string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("Product %s is out of stock!", e.Product)
}

// ValidationError carries field messages from validate.Struct.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// notFound folds repositories.ErrNotFound into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
