package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	grpctls "github.com/EternisAI/datacollect/internal/grpc/tls"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type TLSConfig struct {
	Enabled    bool
	CertFile   string
	KeyFile    string
	CAFile     string
	ClientAuth string
}

// Server exposes the standard gRPC health service so supervisors can check
// the daemon.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	services   []string
	port       int
	tlsConfig  *TLSConfig
	listener   net.Listener
}

func NewServer(port int, tlsConfig *TLSConfig, services ...string) *Server {
	return &Server{
		health:    health.NewServer(),
		services:  services,
		port:      port,
		tlsConfig: tlsConfig,
	}
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	return s.Serve(lis)
}

// Serve runs the gRPC server on an existing listener until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.listener = lis

	var opts []grpc.ServerOption
	if s.tlsConfig != nil && s.tlsConfig.Enabled {
		creds, err := grpctls.ServerCredentials(grpctls.ServerOptions{
			CertFile:   s.tlsConfig.CertFile,
			KeyFile:    s.tlsConfig.KeyFile,
			CAFile:     s.tlsConfig.CAFile,
			ClientAuth: s.tlsConfig.ClientAuth,
		})
		if err != nil {
			return err
		}
		opts = append(opts, grpc.Creds(creds))
	}

	s.grpcServer = grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, name := range s.services {
		s.health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	slog.Info("Starting gRPC health server", "address", lis.Addr().String(), "tls", s.tlsConfig != nil && s.tlsConfig.Enabled)

	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve gRPC: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	slog.Info("Stopping gRPC server")
	s.health.Shutdown()

	if s.grpcServer == nil {
		return nil
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		slog.Info("gRPC server stopped gracefully")
	case <-ctx.Done():
		slog.Warn("gRPC server stop timeout, forcing shutdown")
		s.grpcServer.Stop()
	}

	return nil
}

func (s *Server) StopWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Stop(ctx)
}
