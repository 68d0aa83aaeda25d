package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"barrierbet/server"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	readHeaderTimeout = 10 * time.Second
	readinessTimeout  = 2 * time.Second
	healthCheckPeriod = 15 * time.Second

	// eventsHealthService reports the NATS connection separately from the
	// overall status
	eventsHealthService = "barrierbet.events"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Duration("expiry-interval", 5*time.Minute, "How often open sessions past the expiry age are settled as losses (0 disables)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the HTTP API, the optional gRPC health endpoint and the
background sweep that expires abandoned sessions.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	interval, _ := cmd.Flags().GetDuration("expiry-interval")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	ready := func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
		defer cancel()
		return a.store.ping(pingCtx) == nil
	}

	api := server.NewServer(a.services())
	api.SetReadiness(ready)

	httpServer := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		log.WithField("addr", a.cfg.HTTPAddr).Info("HTTP API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
		}
	}()

	var grpcServer *grpc.Server
	if a.cfg.GRPCHealthAddr != "" {
		checks := map[string]func() bool{"": ready}
		if a.nats != nil {
			checks[eventsHealthService] = a.nats.IsConnected
		}
		lis, err := net.Listen("tcp", a.cfg.GRPCHealthAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", a.cfg.GRPCHealthAddr, err)
		}
		grpcServer = startHealthServer(ctx, lis, checks, errCh)
	}

	var stopExpiry func()
	if interval > 0 {
		stopExpiry = newExpiryWorker(a.settlement, a.cfg.SessionExpiry, interval).Start(ctx)
	}

	log.WithField("environment", a.cfg.Environment).Info("Service is running")

	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal, shutting down gracefully...")
	case err = <-errCh:
		log.WithError(err).Error("Server stopped unexpectedly")
	}

	if stopExpiry != nil {
		stopExpiry()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	log.Info("Shutdown completed")
	return err
}

// startHealthServer serves grpc.health.v1. Each entry in checks maps a
// service name ("" for the server as a whole) to the probe behind it.
func startHealthServer(ctx context.Context, lis net.Listener, checks map[string]func() bool, errCh chan<- error) *grpc.Server {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	setStatus := func() {
		for service, check := range checks {
			status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
			if check() {
				status = grpc_health_v1.HealthCheckResponse_SERVING
			}
			healthServer.SetServingStatus(service, status)
		}
	}
	setStatus()

	go func() {
		ticker := time.NewTicker(healthCheckPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				healthServer.Shutdown()
				return
			case <-ticker.C:
				setStatus()
			}
		}
	}()

	go func() {
		log.WithField("addr", lis.Addr().String()).Info("gRPC health endpoint listening")
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc health server failed: %w", err)
		}
	}()

	return grpcServer
}
