// Package cache is the shop's key/value store. Sessions and the product
// catalogue cache live here.
//
// Connect points it at Redis. When Redis is unreachable the package keeps
// working on an in-process map so a single node still serves sessions.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/kashvi-shop/config"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
)

// Store is the backend contract. Values are opaque bytes; the package-level
// helpers handle JSON.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Driver() string
}

// ErrMiss is returned by a Store when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

var (
	mu    sync.RWMutex
	store Store = NewMemory()
)

// Connect switches the package to Redis. On failure the memory store stays
// active and the error is returned for the caller to log.
func Connect() error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	Use(&Redis{client: rdb})
	return nil
}

// Use installs s as the active backend.
func Use(s Store) {
	mu.Lock()
	store = s
	mu.Unlock()
}

// Current returns the active backend.
func Current() Store {
	mu.RLock()
	defer mu.RUnlock()
	return store
}

// RedisClient returns the connected Redis client, or nil on the memory store.
// The job queue shares it.
func RedisClient() *redis.Client {
	if r, ok := Current().(*Redis); ok {
		return r.client
	}
	return nil
}

// Driver names the active backend ("redis" or "memory").
func Driver() string { return Current().Driver() }

// Get decodes the value under key into dest and reports whether it was found.
func Get(ctx context.Context, key string, dest any) bool {
	s := Current()
	raw, err := s.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues(s.Driver()).Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(s.Driver()).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(s.Driver()).Inc()
	return true
}

// Set stores value as JSON. A zero ttl means no expiry.
func Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return Current().Set(ctx, key, data, ttl)
}

func Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return Current().Del(ctx, keys...)
}

// Remember returns the cached value for key, or calls fn, caches its result
// and returns that.
func Remember[T any](ctx context.Context, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var out T
	if Get(ctx, key, &out) {
		return out, nil
	}
	out, err := fn()
	if err != nil {
		return out, err
	}
	_ = Set(ctx, key, out, ttl)
	return out, nil
}
