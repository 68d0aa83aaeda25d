package cmd

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthServer_ReportsChecks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var storageUp atomic.Bool
	storageUp.Store(true)
	checks := map[string]func() bool{
		"":                  storageUp.Load,
		eventsHealthService: func() bool { return false },
	}

	errCh := make(chan error, 1)
	grpcServer := startHealthServer(ctx, lis, checks, errCh)
	defer grpcServer.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := grpc_health_v1.NewHealthClient(conn)
	check := func(service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
		callCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, check(""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check(eventsHealthService))

	select {
	case err := <-errCh:
		t.Fatalf("health server failed: %v", err)
	default:
	}
}
