// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/abgdnv/inventory/internal/product/service"
	"github.com/abgdnv/inventory/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const WelcomeMessage = "Welcome to the Product Inventory API"

type Handler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewHandler creates a new instance of Handler with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
// The collection is served both with and without a trailing slash.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Welcome)
	r.Get("/health", h.HealthCheck)
	r.Get("/openapi.json", h.OpenAPI)
	r.Get("/docs", h.Docs)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Get("/{id}", h.FindByID)
		r.Delete("/{id}", h.DeleteByID)
	})
}

// Welcome greets API clients.
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.loggerWithReqID(r), http.StatusOK, map[string]string{"message": WelcomeMessage})
}

// HealthCheck reports liveness with the current server time.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.loggerWithReqID(r), http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, id, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves one page of products, optionally filtered by stock status.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	skip, ok := web.ParseQueryInt(w, r, mLogger, "skip", 0)
	if !ok {
		return
	}
	limit, ok := web.ParseQueryInt(w, r, mLogger, "limit", service.DefaultLimit)
	if !ok {
		return
	}
	inStock, ok := web.ParseQueryBool(w, r, mLogger, "in_stock")
	if !ok {
		return
	}

	params := service.ListParams{Skip: skip, Limit: limit, InStock: inStock}
	mLogger.DebugContext(r.Context(), "Received request to find all products", "skip", skip, "limit", limit, "in_stock", inStock)
	list, err := h.service.FindAll(r.Context(), params)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, 0, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	productCreateDto, err := decodeProductCreate(r.Body)
	if err != nil {
		if errors.Is(err, producterrors.ErrValidation) {
			h.respondServiceError(w, r, mLogger, err, 0, "Invalid request body")
			return
		}
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "product", productCreateDto)

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, 0, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
}

var errTrailingData = errors.New("unexpected data after the request body")

// decodeProductCreate reads exactly one JSON object from body.
// in_stock may be omitted, but an explicit null is rejected as a validation error.
func decodeProductCreate(body io.Reader) (service.ProductCreateDto, error) {
	var req struct {
		service.ProductCreateDto
		InStock json.RawMessage `json:"in_stock"`
	}
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return service.ProductCreateDto{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return service.ProductCreateDto{}, errTrailingData
	}

	dto := req.ProductCreateDto
	if req.InStock != nil {
		if string(req.InStock) == "null" {
			return service.ProductCreateDto{}, producterrors.NewValidationError(map[string]string{"in_stock": "failed on rule: boolean"})
		}
		var inStock bool
		if err := json.Unmarshal(req.InStock, &inStock); err != nil {
			return service.ProductCreateDto{}, err
		}
		dto.InStock = &inStock
	}
	return dto, nil
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, err, id, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Product %d deleted successfully", id),
	})
}

// respondServiceError maps service errors to 422, 404 or 500 with internalMsg.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, id int64, internalMsg string) {
	var validationErr *producterrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", validationErr.Fields)
		web.RespondValidationErrors(w, mLogger, validationErr.Fields)
	case errors.Is(err, producterrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
	default:
		mLogger.ErrorContext(r.Context(), internalMsg, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, internalMsg)
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
