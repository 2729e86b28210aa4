package event

import (
	"github.com/hashicorp/go-hclog"
)

// Dispatcher invokes the listeners of its providers synchronously.
//
// A Dispatcher holds no per-dispatch state. It can be shared between
// goroutines as long as each dispatch uses its own event value.
type Dispatcher struct {
	L         hclog.Logger
	providers []Provider
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for trace output.
func WithLogger(L hclog.Logger) Option {
	return func(d *Dispatcher) {
		d.L = L
	}
}

// NewDispatcher creates a Dispatcher that consults providers in the given
// order. Providers may be shared with other dispatchers.
func NewDispatcher(providers []Provider, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		L:         hclog.NewNullLogger(),
		providers: append([]Provider(nil), providers...),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.L == nil {
		d.L = hclog.NewNullLogger()
	}

	return d
}

// Dispatch delivers ev to every applicable listener and returns ev.
//
// If ev is Stoppable, IsPropagationStopped is checked before each listener
// and once it reports true nothing else runs, in this provider or any later
// one. If a listener returns an error, the dispatch stops and that error is
// returned unchanged. Panics are not recovered.
func (d *Dispatcher) Dispatch(ev Event) (Event, error) {
	stoppable, isStoppable := ev.(Stoppable)

	for pi, p := range d.providers {
		for li, listener := range p.ListenersForEvent(ev) {
			if isStoppable && stoppable.IsPropagationStopped() {
				d.L.Trace("propagation stopped", "event", typeName(ev), "provider", pi, "listener", li)
				return ev, nil
			}

			if err := listener(ev); err != nil {
				return ev, err
			}
		}
	}

	return ev, nil
}

// Dispatch is the typed form of (*Dispatcher).Dispatch.
func Dispatch[T any](d *Dispatcher, ev T) (T, error) {
	_, err := d.Dispatch(ev)
	return ev, err
}
