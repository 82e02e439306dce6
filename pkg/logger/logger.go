// Package logger provides the structured, levelled logger used across the shop.
//
// It is a thin layer over log/slog. WithCtx returns the per-request logger
// installed by the HTTP logging middleware, so every line a handler or
// service writes carries the request_id:
//
//	log := logger.WithCtx(ctx)
//	log.Info("order created", "order_id", order.ID)
//	// → time=... level=INFO msg="order created" request_id=3f0c… order_id=12
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/kashvi-shop/config"
)

var L *slog.Logger

// sink is the optional Mongo shipper installed by Boot.
var sink *MongoHandler

func init() {
	L = slog.New(consoleHandler())
	slog.SetDefault(L)
}

func consoleHandler() slog.Handler {
	switch config.AppEnv() {
	case "production", "prod":
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// Boot attaches the Mongo log sink when LOG_MONGO_URI is configured.
// A sink that cannot connect is reported and skipped; the console handler stays.
func Boot() {
	uri := config.LogMongoURI()
	if uri == "" {
		return
	}

	h, err := NewMongoHandler(uri, config.LogMongoDB(), "app_logs", slog.LevelInfo)
	if err != nil {
		L.Warn("logger: mongo sink disabled", "error", err)
		return
	}

	sink = h
	L = slog.New(NewMultiHandler(consoleHandler(), h))
	slog.SetDefault(L)
}

// Shutdown flushes the Mongo sink, if any.
func Shutdown() {
	if sink != nil {
		sink.Close()
		sink = nil
	}
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
