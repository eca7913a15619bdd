// Package order provides lazily loaded order records.
package order

import (
	"context"
)

// Record is an order identified by an immutable id whose attributes are
// loaded on demand.
type Record interface {
	// ID returns the order id.
	ID() int

	// Load fetches the order attributes and replaces the current data.
	Load(ctx context.Context) error

	// Data returns the attributes from the last Load, or an empty map.
	Data() map[string]any
}

// Loader fetches order attributes from an external source. Returning an
// empty map is valid.
type Loader interface {
	LoadOrderData(ctx context.Context, id int) (map[string]any, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, id int) (map[string]any, error)

// LoadOrderData calls f.
func (f LoaderFunc) LoadOrderData(ctx context.Context, id int) (map[string]any, error) {
	return f(ctx, id)
}

// Order is a Record backed by a Loader. It is not safe for concurrent use.
type Order struct {
	id     int
	loader Loader
	data   map[string]any
}

// New creates an order record that loads through loader.
func New(id int, loader Loader) *Order {
	return &Order{
		id:     id,
		loader: loader,
		data:   map[string]any{},
	}
}

// ID returns the order id.
func (o *Order) ID() int {
	return o.id
}

// Load replaces the order data with what the loader returns. On error the
// current data is left untouched.
func (o *Order) Load(ctx context.Context) error {
	data, err := o.loader.LoadOrderData(ctx, o.id)
	if err != nil {
		return err
	}
	if data == nil {
		data = map[string]any{}
	}
	o.data = data
	return nil
}

// Data returns the current data.
func (o *Order) Data() map[string]any {
	return o.data
}

var _ Record = (*Order)(nil)
