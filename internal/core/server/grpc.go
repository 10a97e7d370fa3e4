// Package server provides gRPC server lifecycle management.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/solatis/searchcond/internal/core/auth"
	"github.com/solatis/searchcond/internal/core/config"
	pb "github.com/solatis/searchcond/internal/protobuf/searchcond/v1"
)

const shutdownTimeout = 30 * time.Second

// GRPCServer manages gRPC server lifecycle.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	config *config.Config
	logger *zap.Logger
}

// NewGRPCServer creates gRPC server with logging and optional auth
// interceptors and registers the condition and health services.
// A nil authenticator disables authentication.
func NewGRPCServer(cfg *config.Config, service pb.ConditionServiceServer, authenticator *auth.Authenticator, logger *zap.Logger) (*GRPCServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	interceptors := []grpc.UnaryServerInterceptor{loggingInterceptor(logger)}
	if authenticator != nil {
		interceptors = append(interceptors, authenticator.UnaryInterceptor())
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	pb.RegisterConditionServiceServer(server, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(pb.ConditionService_ServiceDesc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		health: healthServer,
		config: cfg,
		logger: logger,
	}, nil
}

// Start binds the configured address and serves until Shutdown.
func (s *GRPCServer) Start(ctx context.Context) error {
	addr := s.config.Server.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener until Shutdown.
func (s *GRPCServer) Serve(listener net.Listener) error {
	s.logger.Info("serving", zap.String("address", listener.Addr().String()))
	return s.server.Serve(listener)
}

// Shutdown marks the server NOT_SERVING and stops gracefully, forcing a stop
// when ctx ends or after 30 seconds.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-timer.C:
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}

// loggingInterceptor logs every unary call with its status code and latency.
func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			logger.Warn("request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("request", fields...)
		}
		return resp, err
	}
}
