// Package grpc runs the shop's gRPC endpoint next to HTTP. It serves the
// standard grpc.health.v1.Health service so orchestrators can check the
// process, and reports readiness from a ReadyCheck (the database ping).
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
)

// ServiceName is the name health checks use to ask for the shop's readiness.
// The empty name reports plain liveness.
const ServiceName = "shop"

var (
	handledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "grpc",
		Name:      "handled_total",
		Help:      "gRPC calls completed, by method and code.",
	}, []string{"method", "code"})

	handlingSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shop",
		Subsystem: "grpc",
		Name:      "handling_seconds",
		Help:      "gRPC response latency in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method"})
)

func init() {
	metrics.MustRegister(handledTotal, handlingSeconds)
}

func recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc: panic recovered", "method", info.FullMethod, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	handledTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
	handlingSeconds.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	logger.Debug("grpc: request", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start).String())
	return resp, err
}

// ReadyCheck reports whether a dependency is usable.
type ReadyCheck func(ctx context.Context) error

type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	ready ReadyCheck
}

func (h *healthServer) status(ctx context.Context, service string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	switch service {
	case "":
		return grpc_health_v1.HealthCheckResponse_SERVING, nil
	case ServiceName:
		if h.ready == nil {
			return grpc_health_v1.HealthCheckResponse_SERVING, nil
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			logger.Warn("grpc: readiness check failed", "error", err)
			return grpc_health_v1.HealthCheckResponse_NOT_SERVING, nil
		}
		return grpc_health_v1.HealthCheckResponse_SERVING, nil
	default:
		return 0, status.Errorf(codes.NotFound, "unknown service %q", service)
	}
}

func (h *healthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	st, err := h.status(ctx, req.GetService())
	if err != nil {
		return nil, err
	}
	return &grpc_health_v1.HealthCheckResponse{Status: st}, nil
}

func (h *healthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	st, err := h.status(stream.Context(), req.GetService())
	if err != nil {
		return err
	}
	return stream.Send(&grpc_health_v1.HealthCheckResponse{Status: st})
}

// NewServer builds the gRPC server with recovery and metrics interceptors
// and the health service installed.
func NewServer(ready ReadyCheck) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor),
		grpc.MaxRecvMsgSize(1<<20),
	)
	grpc_health_v1.RegisterHealthServer(srv, &healthServer{ready: ready})
	reflection.Register(srv)
	return srv
}

// Start listens on port and serves in the background.
func Start(port string, ready ReadyCheck) (*grpc.Server, net.Listener, error) {
	addr := ":" + port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}

	srv := NewServer(ready)
	logger.Info("gRPC server starting", "addr", addr)
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc: serve error", "error", err)
		}
	}()
	return srv, lis, nil
}

// Stop waits for in-flight RPCs, then stops the server.
func Stop(srv *grpc.Server) {
	if srv == nil {
		return
	}
	logger.Info("gRPC server shutting down")
	srv.GracefulStop()
}
