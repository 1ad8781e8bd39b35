// Package store provides an interface for product storage operations.
package store

import "time"

// Product represents a product entity in the store.
type Product struct {
	ID          int64
	Name        string
	Description *string
	Price       float64
	InStock     bool
	CreatedAt   time.Time
}

// ProductStore is an interface for product storage operations.
// Implementations own the products they hold and hand out copies.
type ProductStore interface {
	// NextID returns an id that was never handed out nor stored before and advances the counter.
	NextID() int64

	// Insert stores the product under its ID.
	// Returns ErrInvalidID for ids <= 0 and ErrDuplicateID if the id is already stored.
	Insert(product Product) error

	// InsertNext allocates the next id and stores the product built for it, as one step.
	InsertNext(build func(id int64) Product) Product

	// Get returns the product with the given id and whether it exists.
	Get(id int64) (Product, bool)

	// Delete removes the product and reports whether it existed.
	Delete(id int64) bool

	// List returns all products in insertion order.
	List() []Product

	// Len returns the number of stored products.
	Len() int
}

func (p Product) clone() Product {
	if p.Description != nil {
		d := *p.Description
		p.Description = &d
	}
	return p
}
