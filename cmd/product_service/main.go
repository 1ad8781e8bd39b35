// Package main runs the product inventory service: the HTTP API, the gRPC API and an optional pprof server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/product/app"
	"github.com/abgdnv/inventory/pkg/bootstrap"
	"github.com/abgdnv/inventory/pkg/config/configloader"
	"github.com/abgdnv/inventory/pkg/messaging"
	natsclient "github.com/abgdnv/inventory/pkg/nats"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/abgdnv/inventory/pkg/telemetry"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "product"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// closer releases a resource during shutdown.
type closer struct {
	name  string
	close func(ctx context.Context) error
}

// application holds the servers and the resources released on shutdown.
type application struct {
	httpServer   *http.Server
	grpcServer   *grpc.Server
	healthServer *health.Server
	pprofServer  *http.Server
	closers      []closer
}

// newApplication builds every component. When a step fails, the resources built so far are released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *application, err error) {
	a := &application{}
	defer func() {
		if err != nil {
			a.close(logger, cfg.Shutdown.Context)
		}
	}()

	if cfg.Telemetry.Traces.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, app.ServiceName, app.ServiceVersion, cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("failed to create tracer provider: %w", err)
		}
		a.closers = append(a.closers, closer{name: "tracer provider", close: tracerProvider.Shutdown})
	}

	publisher, publisherClosers, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, publisherClosers...)

	deps := app.SetupDependencies(publisher, logger)
	if cfg.Metrics.Enabled {
		metrics, err := telemetry.NewMetrics(app.ServiceName, app.ServiceVersion)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		a.closers = append(a.closers, closer{name: "meter provider", close: metrics.Shutdown})
		deps.WithMetrics(cfg.Metrics.Path, metrics.Handler())
	}

	a.httpServer = app.SetupHttpServer(deps, cfg)
	a.grpcServer, a.healthServer = app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	a.pprofServer = server.NewPprofServer(cfg.PProf.Addr, cfg.HTTPServer.Timeout.ReadHeader)
	return a, nil
}

// close releases the resources in reverse creation order. A failure is logged and the rest still run.
func (a *application) close(logger *slog.Logger, shutdownContext func() (context.Context, context.CancelFunc)) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		shutdownCtx, cancel := shutdownContext()
		if err := c.close(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown "+c.name, "error", err)
		}
		cancel()
	}
}

// run loads the configuration, wires the application and serves until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("Starting service", slog.String("title", app.ServiceTitle), slog.String("version", app.ServiceVersion))

	a, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	httpServer, grpcServer, healthServer, pprofServer := a.httpServer, a.grpcServer, a.healthServer, a.pprofServer

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := cfg.Shutdown.Context()
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the gRPC server
	g.Go(func() error {
		grpcAddr := ":" + cfg.GRPC.Port
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	// gracefully shutdown gRPC server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down gRPC server...")
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			logger.Info("gRPC server stopped gracefully.")
			return nil
		case <-time.After(cfg.Shutdown.Timeout):
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := cfg.Shutdown.Context()
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	// release providers and connections once the servers are asked to stop
	for _, c := range a.closers {
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down " + c.name)
			shutdownCtx, cancel := cfg.Shutdown.Context()
			defer cancel()
			if err := c.close(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shutdown %s: %w", c.name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// newPublisher connects to NATS JetStream when enabled and falls back to logging events otherwise.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, []closer, error) {
	if !cfg.NATS.Enabled {
		logger.Info("NATS is disabled, product events are only logged")
		return messaging.NewLogPublisher(logger), nil, nil
	}

	nc, err := natsclient.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
	defer cancel()
	if _, err := natsclient.EnsureProductStream(streamCtx, js, cfg.NATS.Stream); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", slog.String("url", cfg.NATS.Url), slog.String("stream", cfg.NATS.Stream))

	drain := closer{name: "NATS connection", close: func(context.Context) error { return nc.Drain() }}
	return natsclient.NewNatsPublisher(js), []closer{drain}, nil
}
