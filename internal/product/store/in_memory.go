package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/abgdnv/inventory/internal/product/errors"
)

// inMemory implements ProductStore using an in-memory map plus an insertion order index.
type inMemory struct {
	mu       sync.RWMutex
	products map[int64]Product
	order    []int64
	nextID   int64
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[int64]Product),
		nextID:   1,
	}
}

// NextID returns the next id and advances the counter.
func (s *inMemory) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.allocate()
}

// Insert stores a product under its own id.
func (s *inMemory) Insert(product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID <= 0 {
		return fmt.Errorf("insert product %d: %w", product.ID, errors.ErrInvalidID)
	}
	if _, exists := s.products[product.ID]; exists {
		return fmt.Errorf("insert product %d: %w", product.ID, errors.ErrDuplicateID)
	}
	s.put(product)
	return nil
}

// InsertNext allocates an id and stores the product built for it under one lock.
func (s *inMemory) InsertNext(build func(id int64) Product) Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := build(s.allocate())
	s.put(product)
	return product.clone()
}

// Get retrieves a product by its ID.
func (s *inMemory) Get(id int64) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, false
	}
	return p.clone(), true
}

// Delete deletes a product by its ID.
func (s *inMemory) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return false
	}
	delete(s.products, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// List retrieves all products in insertion order.
func (s *inMemory) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.products[id].clone())
	}
	return list
}

func (s *inMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.products)
}

// allocate must be called with the write lock held.
func (s *inMemory) allocate() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// put must be called with the write lock held. The counter is moved past explicit ids.
func (s *inMemory) put(product Product) {
	s.products[product.ID] = product.clone()
	s.order = append(s.order, product.ID)
	if product.ID >= s.nextID {
		s.nextID = product.ID + 1
	}
}
