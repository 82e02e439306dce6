// Package server owns the listen/serve/shutdown lifecycle of the HTTP and
// gRPC servers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	shopgrpc "github.com/shashiranjanraj/kashvi-shop/pkg/grpc"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
)

// ShutdownTimeout bounds how long in-flight requests may finish.
var ShutdownTimeout = 15 * time.Second

type Config struct {
	HTTPPort string
	GRPCPort string
	Handler  http.Handler
	Ready    shopgrpc.ReadyCheck
}

// Run serves until ctx is cancelled or the HTTP server fails, then shuts
// both servers down gracefully.
func Run(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           cfg.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	grpcSrv, _, err := shopgrpc.Start(cfg.GRPCPort, cfg.Ready)
	if err != nil {
		return err
	}
	defer shopgrpc.Stop(grpcSrv)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
