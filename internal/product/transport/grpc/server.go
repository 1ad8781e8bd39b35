// Package grpc provides a gRPC server for the product service.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/abgdnv/inventory/internal/product/service"
	productv1 "github.com/abgdnv/inventory/pkg/api/product/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Server struct {
	// Embed the unimplemented server for forward compatibility
	productv1.UnimplementedProductServiceServer
	service service.ProductService
}

func NewServer(service service.ProductService) *Server {
	return &Server{service: service}
}

func (s *Server) GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := req.GetValue()
	logger := slog.With(slog.Int64("product_id", id))
	logger.DebugContext(ctx, "received grpc request GetProduct")

	found, err := s.service.FindByID(ctx, id)
	if err != nil {
		return nil, toStatus(ctx, logger, err, id)
	}
	return toStruct(found)
}

func (s *Server) ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	lr, err := productv1.ListRequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	params := service.DefaultListParams()
	if lr.Skip != nil {
		params.Skip = *lr.Skip
	}
	if lr.Limit != nil {
		params.Limit = *lr.Limit
	}
	params.InStock = lr.InStock
	logger := slog.With(slog.Int("skip", params.Skip), slog.Int("limit", params.Limit))
	logger.DebugContext(ctx, "received grpc request ListProducts")

	list, err := s.service.FindAll(ctx, params)
	if err != nil {
		return nil, toStatus(ctx, logger, err, 0)
	}
	products := make([]productv1.Product, 0, len(list))
	for _, p := range list {
		products = append(products, toMessage(&p))
	}
	resp, err := productv1.ProductsToList(products)
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode product list", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return resp, nil
}

func (s *Server) CreateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cr, err := productv1.CreateRequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	logger := slog.With(slog.String("name", cr.Name))
	logger.DebugContext(ctx, "received grpc request CreateProduct")

	created, err := s.service.Create(ctx, service.ProductCreateDto{
		Name:        cr.Name,
		Description: cr.Description,
		Price:       cr.Price,
		InStock:     cr.InStock,
	})
	if err != nil {
		return nil, toStatus(ctx, logger, err, 0)
	}
	logger.InfoContext(ctx, "product created via grpc", slog.Int64("product_id", created.ID))
	return toStruct(created)
}

func (s *Server) DeleteProduct(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	id := req.GetValue()
	logger := slog.With(slog.Int64("product_id", id))
	logger.DebugContext(ctx, "received grpc request DeleteProduct")

	if err := s.service.DeleteByID(ctx, id); err != nil {
		return nil, toStatus(ctx, logger, err, id)
	}
	logger.InfoContext(ctx, "product deleted via grpc")
	return &emptypb.Empty{}, nil
}

// toStatus maps service errors to gRPC status codes.
func toStatus(ctx context.Context, logger *slog.Logger, err error, id int64) error {
	switch {
	case errors.Is(err, producterrors.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, producterrors.ErrProductNotFound):
		return status.Error(codes.NotFound, fmt.Sprintf("Product with ID %d not found", id))
	default:
		logger.ErrorContext(ctx, "product service call failed", slog.Any("error", err))
		return status.Error(codes.Internal, "internal server error")
	}
}

func toMessage(p *service.ProductDto) productv1.Product {
	return productv1.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		InStock:     p.InStock,
		CreatedAt:   p.CreatedAt,
	}
}

func toStruct(p *service.ProductDto) (*structpb.Struct, error) {
	s, err := toMessage(p).ToStruct()
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return s, nil
}
