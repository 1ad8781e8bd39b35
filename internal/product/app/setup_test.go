package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	productv1 "github.com/abgdnv/inventory/pkg/api/product/v1"
	"github.com/abgdnv/inventory/pkg/client/product"
	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func testDeps() *Dependencies {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return SetupDependencies(messaging.NewLogPublisher(logger), logger)
}

func Test_SetupHttpHandler_Metrics(t *testing.T) {
	testCases := []struct {
		name         string
		deps         *Dependencies
		expectedCode int
	}{
		{
			name: "metrics mounted",
			deps: testDeps().WithMetrics("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("products_created_total 0\n"))
			})),
			expectedCode: http.StatusOK,
		},
		{name: "metrics disabled", deps: testDeps(), expectedCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := SetupHttpHandler(tc.deps)
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}

func Test_SetupGrpcServer_RoundTrip(t *testing.T) {
	// given
	grpcServer, _ := SetupGrpcServer(testDeps(), false)
	lis := bufconn.Listen(1024 * 1024)
	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
	cfg := config.DefaultProductClientConfig()
	cfg.Addr = "passthrough://bufnet"
	client, err := product.New(cfg, dialer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()
	price := 12.5

	// when
	created, err := client.Create(ctx, productv1.CreateRequest{Name: "Chair", Price: &price})
	require.NoError(t, err)
	fetched, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	list, err := client.List(ctx, productv1.ListRequest{})
	require.NoError(t, err)
	require.NoError(t, client.Delete(ctx, created.ID))
	_, getErr := client.Get(ctx, created.ID)
	_, invalidErr := client.Create(ctx, productv1.CreateRequest{Name: "", Price: &price})

	// then
	assert.Equal(t, int64(1), created.ID)
	assert.True(t, created.InStock)
	assert.Equal(t, created, fetched)
	assert.Len(t, list, 1)
	assert.Equal(t, codes.NotFound, status.Code(getErr))
	assert.Equal(t, codes.InvalidArgument, status.Code(invalidErr))
}

func Test_SetupGrpcServer_Health(t *testing.T) {
	// given
	grpcServer, _ := SetupGrpcServer(testDeps(), true)
	lis := bufconn.Listen(1024 * 1024)
	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough://bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// when
	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(),
		&grpc_health_v1.HealthCheckRequest{Service: productv1.ServiceName})

	// then
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}
