// Package session keeps admin login state and flash messages in the cache
// (Redis, or memory when Redis is down), keyed by a random cookie id.
//
// The middleware saves a changed session automatically just before the
// response header is written, so handlers only call Set/Flash:
//
//	sess := session.FromCtx(r)
//	sess.Flash("success", "Order created.")
//	http.Redirect(w, r, "/order", http.StatusSeeOther)
package session

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/pkg/cache"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
)

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: "shop_session",
		TTL:        2 * time.Hour,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

const flashPrefix = "_flash_"

type ctxKey struct{}

type Session struct {
	id      string
	data    map[string]any
	opts    Options
	changed bool
	saved   bool
}

func newID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func cacheKey(id string) string { return "shop:session:" + id }

func (s *Session) ID() string { return s.id }

func (s *Session) Set(key string, value any) {
	s.data[key] = value
	s.changed = true
}

func (s *Session) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// GetUint reads a numeric value. JSON round trips turn numbers into float64.
func (s *Session) GetUint(key string) (uint, bool) {
	switch n := s.data[key].(type) {
	case float64:
		if n > 0 {
			return uint(n), true
		}
	case uint:
		return n, true
	case int:
		if n > 0 {
			return uint(n), true
		}
	}
	return 0, false
}

// GetStrings reads a []string value.
func (s *Session) GetStrings(key string) []string {
	switch v := s.data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if str, ok := x.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.changed = true
	}
}

// Flash appends a message shown once on the next read of kind.
func (s *Session) Flash(kind, message string) {
	msgs := append(s.GetStrings(flashPrefix+kind), message)
	s.Set(flashPrefix+kind, msgs)
}

// Flashes returns and clears the pending messages of kind.
func (s *Session) Flashes(kind string) []string {
	msgs := s.GetStrings(flashPrefix + kind)
	s.Delete(flashPrefix + kind)
	return msgs
}

// Regenerate moves the data to a fresh id. Call it on login.
func (s *Session) Regenerate(ctx context.Context) {
	_ = cache.Del(ctx, cacheKey(s.id))
	s.id = newID()
	s.changed = true
}

// Invalidate drops all data and rotates the id.
func (s *Session) Invalidate(ctx context.Context) {
	_ = cache.Del(ctx, cacheKey(s.id))
	s.data = map[string]any{}
	s.id = newID()
	s.changed = true
}

// Save persists a changed session and sets the cookie. It must run before
// the response header is written; the middleware does that.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed || s.saved {
		return nil
	}
	s.saved = true
	if err := cache.Set(ctx, cacheKey(s.id), s.data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})
	return nil
}

// saveOnWrite saves the session the moment the handler commits headers.
type saveOnWrite struct {
	http.ResponseWriter
	sess *Session
	ctx  context.Context
}

func (w *saveOnWrite) flush() {
	if err := w.sess.Save(w.ctx, w.ResponseWriter); err != nil {
		logger.WithCtx(w.ctx).Warn("session: save failed", "error", err)
	}
}

func (w *saveOnWrite) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *saveOnWrite) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *saveOnWrite) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Hijack saves the session before handing the connection over; no header
// write will follow to trigger it.
func (w *saveOnWrite) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.flush()
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{opts: opts, data: map[string]any{}}
			if c, err := r.Cookie(opts.CookieName); err == nil && c.Value != "" {
				var data map[string]any
				if cache.Get(r.Context(), cacheKey(c.Value), &data) {
					sess.id, sess.data = c.Value, data
				}
			}
			if sess.id == "" {
				sess.id = newID()
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			sw := &saveOnWrite{ResponseWriter: w, sess: sess, ctx: ctx}
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.flush()
		})
	}
}

// FromCtx returns the request's session, or a detached empty one.
func FromCtx(r *http.Request) *Session {
	return FromContext(r.Context())
}

func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: newID(), data: map[string]any{}, opts: DefaultOptions()}
}
