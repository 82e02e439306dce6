package app

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/config"
	"github.com/shashiranjanraj/kashvi-shop/pkg/errs"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
	"github.com/shashiranjanraj/kashvi-shop/pkg/middleware"
	"github.com/shashiranjanraj/kashvi-shop/pkg/reqid"
	"github.com/shashiranjanraj/kashvi-shop/pkg/response"
	"github.com/shashiranjanraj/kashvi-shop/pkg/router"
	"github.com/shashiranjanraj/kashvi-shop/pkg/session"
)

// buildHandler installs the global middleware and the route callbacks.
//
// Order, outermost first:
//  1. metrics     total latency
//  2. recovery    panics become the error body
//  3. request id  before anything logs
//  4. logger      request-scoped logger with request_id
//  5. session     cookie-backed session in the cache
//  6. CORS
//  7. rate limit  per client IP
func buildHandler(a *Application, env Env) (http.Handler, func(), error) {
	r := router.New()

	sessOpts := session.DefaultOptions()
	sessOpts.TTL = config.SessionTTL()
	sessOpts.Secure = config.AppEnv() == "production"

	limiter := middleware.NewRateLimiter(config.RateLimitPerMinute(), time.Minute)

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.Middleware(sessOpts))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(limiter.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Exception(w, errs.NotFound("Not Found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Exception(w, errs.New(http.StatusMethodNotAllowed, "Method Not Allowed"))
	})

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	for _, fn := range a.routeFns {
		if err := fn(r, env); err != nil {
			limiter.Stop()
			return nil, nil, err
		}
	}
	return r.Handler(), limiter.Stop, nil
}
