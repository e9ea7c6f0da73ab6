package transformer

import (
	"context"
	"errors"
)

// ErrUnexpectedType reports a value of a type the transformer cannot handle.
var ErrUnexpectedType = errors.New("transformer: unexpected value type")

// DataTransformer is the two-way contract form binding layers use to move a
// value between its model form and its view (submitted) form.
type DataTransformer interface {
	// Transform converts a model value into its view representation.
	Transform(ctx context.Context, value any) (any, error)
	// ReverseTransform converts a submitted view value back into the model.
	ReverseTransform(ctx context.Context, value any) (any, error)
}

// CallbackTransformer adapts plain functions to DataTransformer. A nil
// callback passes the value through unchanged.
type CallbackTransformer struct {
	Forward func(ctx context.Context, value any) (any, error)
	Reverse func(ctx context.Context, value any) (any, error)
}

// Transform runs the Forward callback.
func (c CallbackTransformer) Transform(ctx context.Context, value any) (any, error) {
	if c.Forward == nil {
		return value, nil
	}
	return c.Forward(ctx, value)
}

// ReverseTransform runs the Reverse callback.
func (c CallbackTransformer) ReverseTransform(ctx context.Context, value any) (any, error) {
	if c.Reverse == nil {
		return value, nil
	}
	return c.Reverse(ctx, value)
}
