package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported to gRPC health probes.
const ServiceName = "scoopshop.Storefront"

// GRPCHandler exposes the storefront's readiness over the standard gRPC
// health protocol so orchestrators can probe it without HTTP.
type GRPCHandler struct {
	health *health.Server
	store  Pinger
	log    *zap.Logger
}

func NewGRPCHandler(store Pinger, log *zap.Logger) *GRPCHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GRPCHandler{health: health.NewServer(), store: store, log: log}
}

// Register attaches the health and reflection services to srv.
func (h *GRPCHandler) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h.health)
	reflection.Register(srv)
}

// Refresh sets the serving status from a store ping.
func (h *GRPCHandler) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			h.log.Warn("cart store unreachable", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	return status
}

// Watch refreshes the status every interval until ctx is done.
func (h *GRPCHandler) Watch(ctx context.Context, interval time.Duration) {
	h.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

// Shutdown marks every service as not serving.
func (h *GRPCHandler) Shutdown() {
	h.health.Shutdown()
}
