// Package app contains the application setup for the product inventory service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/product/service"
	"github.com/abgdnv/inventory/internal/product/store"
	grpcImpl "github.com/abgdnv/inventory/internal/product/transport/grpc"
	"github.com/abgdnv/inventory/internal/product/transport/rest"
	productv1 "github.com/abgdnv/inventory/pkg/api/product/v1"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const (
	ServiceTitle   = "Product Inventory API"
	ServiceVersion = "1.0.0"
	ServiceName    = "product-service"
)

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger

	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
}

// SetupDependencies wires the product service over a fresh in-memory store.
func SetupDependencies(publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	pService := service.NewService(store.NewInMemoryStore(), publisher)

	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
	}
}

// WithMetrics exposes handler at path on the HTTP router.
func (d *Dependencies) WithMetrics(path string, handler http.Handler) *Dependencies {
	d.MetricsPath = path
	d.MetricsHandler = handler
	return d
}

// SetupHttpHandler initializes the HTTP router for the product service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(ServiceName, deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the product service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)

	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer initializes the gRPC server for the product service.
// The product service is reported SERVING on the returned health server.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) (*grpc.Server, *health.Server) {
	productRegisterFunc := func(s *grpc.Server) {
		productv1.RegisterProductServiceServer(s, grpcImpl.NewServer(deps.ProductService))
	}
	grpcServer, healthServer := server.NewGRPCServer(deps.Logger, reflectionEnabled, productRegisterFunc)
	healthServer.SetServingStatus(productv1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return grpcServer, healthServer
}
