// Package product is a resilient Go client of the product catalog gRPC API.
package product

import (
	"context"
	"fmt"

	productv1 "github.com/abgdnv/inventory/pkg/api/product/v1"
	"github.com/abgdnv/inventory/pkg/client/grpc/interceptors"
	"github.com/abgdnv/inventory/pkg/config"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Client struct {
	conn *grpc.ClientConn
	api  productv1.ProductServiceClient
}

// New creates a client for cfg.Addr. Every call goes through retry, circuit breaker and
// per-attempt timeout interceptors, in that order. Extra dial options are appended last.
func New(cfg config.ProductClientConfig, opts ...grpc.DialOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid product client config: %w", err)
	}
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			interceptors.NewRetryInterceptor(cfg.Retry),
			interceptors.NewCircuitBreaker(cfg.CircuitBreaker),
			interceptors.UnaryClientTimeoutInterceptor(cfg.Timeout),
		),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
	conn, err := grpc.NewClient(cfg.Addr, append(dialOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client connection: %w", err)
	}
	return &Client{conn: conn, api: productv1.NewProductServiceClient(conn)}, nil
}

func (c *Client) Get(ctx context.Context, id int64) (productv1.Product, error) {
	resp, err := c.api.GetProduct(ctx, wrapperspb.Int64(id))
	if err != nil {
		return productv1.Product{}, err
	}
	return productv1.ProductFromStruct(resp)
}

func (c *Client) List(ctx context.Context, req productv1.ListRequest) ([]productv1.Product, error) {
	s, err := req.ToStruct()
	if err != nil {
		return nil, fmt.Errorf("failed to encode list request: %w", err)
	}
	resp, err := c.api.ListProducts(ctx, s)
	if err != nil {
		return nil, err
	}
	return productv1.ProductsFromList(resp)
}

func (c *Client) Create(ctx context.Context, req productv1.CreateRequest) (productv1.Product, error) {
	s, err := req.ToStruct()
	if err != nil {
		return productv1.Product{}, fmt.Errorf("failed to encode create request: %w", err)
	}
	resp, err := c.api.CreateProduct(ctx, s)
	if err != nil {
		return productv1.Product{}, err
	}
	return productv1.ProductFromStruct(resp)
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.api.DeleteProduct(ctx, wrapperspb.Int64(id))
	return err
}

func (c *Client) Close() error {
	return c.conn.Close()
}
