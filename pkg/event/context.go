package event

import "context"

type contextType int

var contextKey contextType

// FromContext returns the Dispatcher attached to ctx, or nil.
func FromContext(ctx context.Context) *Dispatcher {
	d, ok := ctx.Value(contextKey).(*Dispatcher)

	if !ok {
		return nil
	}

	return d
}

// SetContext returns a copy of ctx carrying d.
func SetContext(ctx context.Context, d *Dispatcher) context.Context {
	return context.WithValue(ctx, contextKey, d)
}
