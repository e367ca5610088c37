package server

import (
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer serves the standard gRPC health protocol for orchestrators
// that probe over gRPC rather than HTTP.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
	logger *zap.Logger
}

// NewHealthServer listens on addr and starts out NOT_SERVING.
func NewHealthServer(addr string, logger *zap.Logger) (*HealthServer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{grpc: gs, health: hs, lis: lis, logger: logger}, nil
}

// Addr is the bound listen address.
func (h *HealthServer) Addr() string {
	return h.lis.Addr().String()
}

// Serve blocks until Stop is called.
func (h *HealthServer) Serve() error {
	h.logger.Info("grpc health listening", zap.String("addr", h.Addr()))
	return h.grpc.Serve(h.lis)
}

func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
}

// Stop reports NOT_SERVING to watchers and stops the server.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
