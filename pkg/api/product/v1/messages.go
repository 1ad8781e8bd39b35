package productv1

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Product is the Go view of a product Struct:
// {id: number, name: string, description: string|null, price: number, in_stock: bool, created_at: RFC 3339 string}.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListRequest is the Go view of a ListProducts request Struct. Nil fields mean "use the server default".
type ListRequest struct {
	Skip    *int
	Limit   *int
	InStock *bool
}

// CreateRequest is the Go view of a CreateProduct request Struct.
type CreateRequest struct {
	Name        string
	Description *string
	Price       *float64
	InStock     *bool
}

func (p Product) ToStruct() (*structpb.Struct, error) {
	var description any
	if p.Description != nil {
		description = *p.Description
	}
	return structpb.NewStruct(map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": description,
		"price":       p.Price,
		"in_stock":    p.InStock,
		"created_at":  p.CreatedAt.Format(time.RFC3339Nano),
	})
}

func ProductFromStruct(s *structpb.Struct) (Product, error) {
	var p Product
	var err error
	fields := s.GetFields()
	if p.ID, err = intField(fields, "id"); err != nil {
		return p, err
	}
	if p.Name, err = stringField(fields, "name"); err != nil {
		return p, err
	}
	if p.Description, err = optionalStringField(fields, "description"); err != nil {
		return p, err
	}
	price, err := optionalNumberField(fields, "price")
	if err != nil {
		return p, err
	}
	if price != nil {
		p.Price = *price
	}
	inStock, err := optionalBoolField(fields, "in_stock")
	if err != nil {
		return p, err
	}
	if inStock != nil {
		p.InStock = *inStock
	}
	createdAt, err := stringField(fields, "created_at")
	if err != nil {
		return p, err
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return p, fmt.Errorf("field created_at: %w", err)
	}
	return p, nil
}

func ProductsToList(products []Product) (*structpb.ListValue, error) {
	values := make([]*structpb.Value, 0, len(products))
	for _, p := range products {
		s, err := p.ToStruct()
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(s))
	}
	return &structpb.ListValue{Values: values}, nil
}

func ProductsFromList(l *structpb.ListValue) ([]Product, error) {
	products := make([]Product, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("item %d is not a product", i)
		}
		p, err := ProductFromStruct(s)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (r ListRequest) ToStruct() (*structpb.Struct, error) {
	m := map[string]any{}
	if r.Skip != nil {
		m["skip"] = *r.Skip
	}
	if r.Limit != nil {
		m["limit"] = *r.Limit
	}
	if r.InStock != nil {
		m["in_stock"] = *r.InStock
	}
	return structpb.NewStruct(m)
}

func ListRequestFromStruct(s *structpb.Struct) (ListRequest, error) {
	var r ListRequest
	fields := s.GetFields()
	skip, err := optionalIntField(fields, "skip")
	if err != nil {
		return r, err
	}
	limit, err := optionalIntField(fields, "limit")
	if err != nil {
		return r, err
	}
	if r.InStock, err = optionalBoolField(fields, "in_stock"); err != nil {
		return r, err
	}
	r.Skip, r.Limit = skip, limit
	return r, nil
}

func (r CreateRequest) ToStruct() (*structpb.Struct, error) {
	m := map[string]any{"name": r.Name}
	if r.Description != nil {
		m["description"] = *r.Description
	}
	if r.Price != nil {
		m["price"] = *r.Price
	}
	if r.InStock != nil {
		m["in_stock"] = *r.InStock
	}
	return structpb.NewStruct(m)
}

func CreateRequestFromStruct(s *structpb.Struct) (CreateRequest, error) {
	var r CreateRequest
	var err error
	fields := s.GetFields()
	if _, ok := fields["name"]; ok {
		if r.Name, err = stringField(fields, "name"); err != nil {
			return r, err
		}
	}
	if r.Description, err = optionalStringField(fields, "description"); err != nil {
		return r, err
	}
	if r.Price, err = optionalNumberField(fields, "price"); err != nil {
		return r, err
	}
	if v, ok := fields["in_stock"]; ok && isNull(v) {
		return r, fmt.Errorf("field in_stock must be a boolean")
	}
	if r.InStock, err = optionalBoolField(fields, "in_stock"); err != nil {
		return r, err
	}
	return r, nil
}

func isNull(v *structpb.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return ok
}

func stringField(fields map[string]*structpb.Value, key string) (string, error) {
	v, ok := fields[key].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("field %s must be a string", key)
	}
	return v.StringValue, nil
}

func optionalStringField(fields map[string]*structpb.Value, key string) (*string, error) {
	if isNull(fields[key]) {
		return nil, nil
	}
	s, err := stringField(fields, key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func optionalNumberField(fields map[string]*structpb.Value, key string) (*float64, error) {
	if isNull(fields[key]) {
		return nil, nil
	}
	v, ok := fields[key].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, fmt.Errorf("field %s must be a number", key)
	}
	return &v.NumberValue, nil
}

func intField(fields map[string]*structpb.Value, key string) (int64, error) {
	n, err := optionalNumberField(fields, key)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, fmt.Errorf("field %s is required", key)
	}
	if *n != math.Trunc(*n) || math.IsInf(*n, 0) {
		return 0, fmt.Errorf("field %s must be an integer", key)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if *n < math.MinInt64 || *n >= math.MaxInt64 {
		return 0, fmt.Errorf("field %s is out of range", key)
	}
	return int64(*n), nil
}

func optionalIntField(fields map[string]*structpb.Value, key string) (*int, error) {
	if isNull(fields[key]) {
		return nil, nil
	}
	n, err := intField(fields, key)
	if err != nil {
		return nil, err
	}
	i := int(n)
	return &i, nil
}

func optionalBoolField(fields map[string]*structpb.Value, key string) (*bool, error) {
	if isNull(fields[key]) {
		return nil, nil
	}
	v, ok := fields[key].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, fmt.Errorf("field %s must be a boolean", key)
	}
	return &v.BoolValue, nil
}
