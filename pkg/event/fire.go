package event

import "context"

// Fire dispatches ev with the Dispatcher attached to ctx. Without one, ev is
// returned untouched.
func Fire(ctx context.Context, ev Event) (Event, error) {
	d := FromContext(ctx)
	if d == nil {
		return ev, nil
	}

	return d.Dispatch(ev)
}
