package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startBufServer(t *testing.T) (*Server, healthpb.HealthClient) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := NewServer(0, nil, "data_collect")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		_ = srv.StopWithTimeout(time.Second)
	})

	return srv, healthpb.NewHealthClient(conn)
}

func TestHealthServing(t *testing.T) {
	_, client := startBufServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, service := range []string{"", "data_collect"} {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
	}
}

func TestHealthUnknownService(t *testing.T) {
	_, client := startBufServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "other"})
	assert.Error(t, err)
}

func TestServeInvalidTLSConfig(t *testing.T) {
	srv := NewServer(0, &TLSConfig{Enabled: true, ClientAuth: "bogus"})

	err := srv.Serve(bufconn.Listen(1024))
	assert.Error(t, err)
}

func TestStopBeforeStart(t *testing.T) {
	srv := NewServer(0, nil)
	assert.NoError(t, srv.StopWithTimeout(time.Second))
}
