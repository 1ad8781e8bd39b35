// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var ErrProductNotFound = errors.New("product not found")
var ErrValidation = errors.New("validation failed")

// Store preconditions. The service never violates them.
var ErrDuplicateID = errors.New("product id already in use")
var ErrInvalidID = errors.New("product id must be positive")

// ValidationError lists the failed rule per field, keyed by the field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrValidation.Error())
	for i, field := range slices.Sorted(maps.Keys(e.Fields)) {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(field + " " + e.Fields[field])
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
