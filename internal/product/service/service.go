// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns a ValidationError for ids <= 0 and ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindAll returns one page of products in creation order, optionally filtered by stock status.
	// Returns an empty slice if no products match.
	FindAll(ctx context.Context, params ListParams) ([]ProductDto, error)

	// Create validates and adds a new product to the system.
	// Returns a ValidationError if the product cannot be created.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns a ValidationError for ids <= 0 and ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	store          store.ProductStore
	publisher      messaging.Publisher
	validate       *validator.Validate
	now            func() time.Time
	createdCounter metric.Int64Counter
	deletedCounter metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided store and event publisher.
func NewService(productStore store.ProductStore, publisher messaging.Publisher) *Service {
	meter := otel.Meter("product-service")
	createdCounter, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	deletedCounter, err := meter.Int64Counter("products_deleted", metric.WithDescription("Total number of deleted products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_deleted counter: %v", err))
	}
	return &Service{
		store:          productStore,
		publisher:      publisher,
		validate:       newValidator(),
		now:            func() time.Time { return time.Now().UTC() },
		createdCounter: createdCounter,
		deletedCounter: deletedCounter,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Pointers tell an omitted field apart from its zero value.
type ProductCreateDto struct {
	Name        string   `json:"name"        validate:"required,max=100"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"       validate:"required,gt=0"`
	InStock     *bool    `json:"in_stock"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListParams selects a page of products. InStock nil means no stock filter.
type ListParams struct {
	Skip    int   `json:"skip"     validate:"gte=0"`
	Limit   int   `json:"limit"    validate:"gte=1,lte=100"`
	InStock *bool `json:"in_stock"`
}

// DefaultListParams returns the first page with the default page size and no filter.
func DefaultListParams() ListParams {
	return ListParams{Skip: 0, Limit: DefaultLimit}
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(_ context.Context, id int64) (*ProductDto, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	product, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, producterrors.ErrProductNotFound)
	}
	return toDto(product), nil
}

// FindAll filters all products on stock status, then returns the page [skip, skip+limit).
func (s *Service) FindAll(_ context.Context, params ListParams) ([]ProductDto, error) {
	if err := s.validateStruct(params); err != nil {
		return nil, err
	}

	products := s.store.List()
	matched := make([]ProductDto, 0, len(products))
	for _, p := range products {
		if params.InStock != nil && p.InStock != *params.InStock {
			continue
		}
		matched = append(matched, *toDto(p))
	}

	if params.Skip >= len(matched) {
		return []ProductDto{}, nil
	}
	end := min(params.Skip+params.Limit, len(matched))
	return matched[params.Skip:end], nil
}

// Create validates the product, stores it under a fresh id and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	if err := s.validateStruct(product); err != nil {
		return nil, err
	}

	inStock := true
	if product.InStock != nil {
		inStock = *product.InStock
	}
	createdAt := s.now()
	created := s.store.InsertNext(func(id int64) store.Product {
		return store.Product{
			ID:          id,
			Name:        product.Name,
			Description: product.Description,
			Price:       *product.Price,
			InStock:     inStock,
			CreatedAt:   createdAt,
		}
	})

	event := events.ProductCreatedEvent{
		ProductID:   created.ID,
		Name:        created.Name,
		Description: created.Description,
		Price:       created.Price,
		InStock:     created.InStock,
		CreatedAt:   created.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ProductCreatedEvent", "ID", created.ID, "error", err)
	}
	s.createdCounter.Add(ctx, 1)

	return toDto(created), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := validateID(id); err != nil {
		return err
	}
	if !s.store.Delete(id) {
		return fmt.Errorf("failed to delete product by ID %d: %w", id, producterrors.ErrProductNotFound)
	}

	event := events.ProductDeletedEvent{ProductID: id, DeletedAt: s.now()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ProductDeletedEvent", "ID", id, "error", err)
	}
	s.deletedCounter.Add(ctx, 1)

	return nil
}

// validateStruct runs the struct tags and converts rule failures into a ValidationError.
func (s *Service) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fieldErr := range validationErrors {
			fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		return producterrors.NewValidationError(fields)
	}
	return fmt.Errorf("failed to validate %T: %w", v, err)
}

func validateID(id int64) error {
	if id <= 0 {
		return producterrors.NewValidationError(map[string]string{"id": "failed on rule: gt"})
	}
	return nil
}

// newValidator reports fields under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// toDto converts a store.Product to a ProductDto.
func toDto(product store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		InStock:     product.InStock,
		CreatedAt:   product.CreatedAt,
	}
}
