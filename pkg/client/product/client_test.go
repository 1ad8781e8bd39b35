package product

import (
	"context"
	"net"
	"testing"
	"time"

	productv1 "github.com/abgdnv/inventory/pkg/api/product/v1"
	"github.com/abgdnv/inventory/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var createdAt = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

// fakeServer keeps a single product with id 1.
type fakeServer struct {
	productv1.UnimplementedProductServiceServer
	lastList   productv1.ListRequest
	lastCreate productv1.CreateRequest
	deleted    []int64
}

var stored = productv1.Product{ID: 1, Name: "Laptop", Price: 999.99, InStock: true, CreatedAt: createdAt}

func (s *fakeServer) GetProduct(_ context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req.GetValue() != stored.ID {
		return nil, status.Errorf(codes.NotFound, "Product with ID %d not found", req.GetValue())
	}
	return stored.ToStruct()
}

func (s *fakeServer) ListProducts(_ context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	lr, err := productv1.ListRequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.lastList = lr
	return productv1.ProductsToList([]productv1.Product{stored})
}

func (s *fakeServer) CreateProduct(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cr, err := productv1.CreateRequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.lastCreate = cr
	p := productv1.Product{ID: 2, Name: cr.Name, Description: cr.Description, Price: *cr.Price, InStock: true, CreatedAt: createdAt}
	return p.ToStruct()
}

func (s *fakeServer) DeleteProduct(_ context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	s.deleted = append(s.deleted, req.GetValue())
	return &emptypb.Empty{}, nil
}

func newTestClient(t *testing.T) (*Client, *fakeServer) {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := &fakeServer{}
	grpcServer := grpc.NewServer()
	productv1.RegisterProductServiceServer(grpcServer, srv)
	go func() {
		_ = grpcServer.Serve(lis)
	}()

	cfg := config.DefaultProductClientConfig()
	cfg.Addr = "passthrough://bufnet"
	client, err := New(cfg, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		grpcServer.Stop()
		_ = lis.Close()
	})
	return client, srv
}

func TestNew_InvalidConfig(t *testing.T) {
	// given
	cfg := config.DefaultProductClientConfig()
	cfg.Addr = ""

	// when
	client, err := New(cfg)

	// then
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestClient_Get(t *testing.T) {
	client, _ := newTestClient(t)

	tests := []struct {
		name     string
		id       int64
		want     productv1.Product
		wantCode codes.Code
	}{
		{name: "found", id: 1, want: stored, wantCode: codes.OK},
		{name: "not found", id: 42, wantCode: codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// when
			got, err := client.Get(context.Background(), tt.id)

			// then
			require.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestClient_List(t *testing.T) {
	client, srv := newTestClient(t)

	// given
	skip, limit, inStock := 0, 5, true
	req := productv1.ListRequest{Skip: &skip, Limit: &limit, InStock: &inStock}

	// when
	got, err := client.List(context.Background(), req)

	// then
	require.NoError(t, err)
	assert.Equal(t, []productv1.Product{stored}, got)
	assert.Equal(t, req, srv.lastList)
}

func TestClient_Create(t *testing.T) {
	client, srv := newTestClient(t)

	// given
	price := 15.5
	description := "wireless"
	req := productv1.CreateRequest{Name: "Mouse", Description: &description, Price: &price}

	// when
	got, err := client.Create(context.Background(), req)

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)
	assert.Equal(t, "Mouse", got.Name)
	assert.Equal(t, &description, got.Description)
	assert.Equal(t, 15.5, got.Price)
	assert.Equal(t, req, srv.lastCreate)
}

func TestClient_Delete(t *testing.T) {
	client, srv := newTestClient(t)

	// when
	err := client.Delete(context.Background(), 9)

	// then
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, srv.deleted)
}
