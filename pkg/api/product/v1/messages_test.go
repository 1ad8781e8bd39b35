package productv1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func ptr[T any](v T) *T { return &v }

func TestProduct_StructConversion(t *testing.T) {
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	tests := []struct {
		name    string
		product Product
	}{
		{
			name:    "with description",
			product: Product{ID: 7, Name: "Laptop", Description: ptr("15 inch"), Price: 999.99, InStock: true, CreatedAt: createdAt},
		},
		{
			name:    "without description",
			product: Product{ID: 8, Name: "Mouse", Price: 10, InStock: false, CreatedAt: createdAt},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// when
			s, err := tt.product.ToStruct()
			require.NoError(t, err)
			got, err := ProductFromStruct(s)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.product, got)
		})
	}
}

func TestProduct_ToStruct_NullDescription(t *testing.T) {
	// given
	p := Product{ID: 1, Name: "A", Price: 1, CreatedAt: time.Now()}

	// when
	s, err := p.ToStruct()

	// then
	require.NoError(t, err)
	_, isNull := s.GetFields()["description"].GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull)
}

func TestProductFromStruct_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		errMsg string
	}{
		{name: "missing id", fields: map[string]any{"name": "A"}, errMsg: "field id is required"},
		{name: "fractional id", fields: map[string]any{"id": 1.5, "name": "A"}, errMsg: "field id must be an integer"},
		{name: "name not a string", fields: map[string]any{"id": 1, "name": 3}, errMsg: "field name must be a string"},
		{name: "id at 2^63", fields: map[string]any{"id": 9223372036854775808.0, "name": "A"}, errMsg: "field id is out of range"},
		{name: "id far above int64", fields: map[string]any{"id": 1e19, "name": "A"}, errMsg: "field id is out of range"},
		{name: "id far below int64", fields: map[string]any{"id": -1e19, "name": "A"}, errMsg: "field id is out of range"},
		{name: "bad timestamp", fields: map[string]any{"id": 1, "name": "A", "created_at": "yesterday"}, errMsg: "field created_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			s, err := structpb.NewStruct(tt.fields)
			require.NoError(t, err)

			// when
			_, err = ProductFromStruct(s)

			// then
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProductsList(t *testing.T) {
	// given
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	products := []Product{
		{ID: 1, Name: "A", Price: 1, InStock: true, CreatedAt: createdAt},
		{ID: 2, Name: "B", Price: 2, CreatedAt: createdAt},
	}

	// when
	l, err := ProductsToList(products)
	require.NoError(t, err)
	got, err := ProductsFromList(l)

	// then
	require.NoError(t, err)
	assert.Equal(t, products, got)
}

func TestProductsFromList_NotAStruct(t *testing.T) {
	// given
	l := &structpb.ListValue{Values: []*structpb.Value{structpb.NewStringValue("x")}}

	// when
	_, err := ProductsFromList(l)

	// then
	assert.EqualError(t, err, "item 0 is not a product")
}

func TestListRequest_StructConversion(t *testing.T) {
	tests := []struct {
		name string
		req  ListRequest
	}{
		{name: "empty", req: ListRequest{}},
		{name: "all fields", req: ListRequest{Skip: ptr(5), Limit: ptr(20), InStock: ptr(false)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// when
			s, err := tt.req.ToStruct()
			require.NoError(t, err)
			got, err := ListRequestFromStruct(s)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.req, got)
		})
	}
}

func TestListRequestFromStruct_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		errMsg string
	}{
		{name: "in_stock not a boolean", fields: map[string]any{"in_stock": "maybe"}, errMsg: "field in_stock must be a boolean"},
		{name: "skip beyond int64", fields: map[string]any{"skip": 1e300}, errMsg: "field skip is out of range"},
		{name: "limit below int64", fields: map[string]any{"limit": -1e300}, errMsg: "field limit is out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			s, err := structpb.NewStruct(tt.fields)
			require.NoError(t, err)

			// when
			_, err = ListRequestFromStruct(s)

			// then
			assert.EqualError(t, err, tt.errMsg)
		})
	}
}

func TestListRequestFromStruct_NullInStockMeansNoFilter(t *testing.T) {
	// given
	s, err := structpb.NewStruct(map[string]any{"in_stock": nil})
	require.NoError(t, err)

	// when
	got, err := ListRequestFromStruct(s)

	// then
	require.NoError(t, err)
	assert.Nil(t, got.InStock)
}

func TestCreateRequest_StructConversion(t *testing.T) {
	tests := []struct {
		name string
		req  CreateRequest
	}{
		{name: "name only", req: CreateRequest{Name: "Desk"}},
		{name: "all fields", req: CreateRequest{Name: "Desk", Description: ptr("oak"), Price: ptr(120.5), InStock: ptr(false)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// when
			s, err := tt.req.ToStruct()
			require.NoError(t, err)
			got, err := CreateRequestFromStruct(s)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.req, got)
		})
	}
}

func TestCreateRequestFromStruct_MissingName(t *testing.T) {
	// given
	s, err := structpb.NewStruct(map[string]any{"price": 3})
	require.NoError(t, err)

	// when
	got, err := CreateRequestFromStruct(s)

	// then
	require.NoError(t, err)
	assert.Empty(t, got.Name)
	assert.Equal(t, ptr(3.0), got.Price)
}

func TestCreateRequestFromStruct_NullInStock(t *testing.T) {
	// given
	s, err := structpb.NewStruct(map[string]any{"name": "Desk", "price": 3, "in_stock": nil})
	require.NoError(t, err)

	// when
	_, err = CreateRequestFromStruct(s)

	// then
	assert.EqualError(t, err, "field in_stock must be a boolean")
}
