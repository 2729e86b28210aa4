package event

import (
	"reflect"

	"github.com/pkg/errors"
)

// Provider answers which listeners apply to an event.
type Provider interface {
	// ListenersForEvent returns the listeners to invoke for ev, in the
	// order they must run.
	ListenersForEvent(ev Event) []Listener
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ev Event) []Listener

func (f ProviderFunc) ListenersForEvent(ev Event) []Listener {
	return f(ev)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Registration is a listener tagged with the type of event it accepts.
// A nil type accepts every event.
type Registration struct {
	listener Listener
	accepts  reflect.Type
}

// Accepts returns the event type the listener was registered for, or nil if
// it accepts any event.
func (r Registration) Accepts() reflect.Type {
	return r.accepts
}

// Listener returns the registered listener.
func (r Registration) Listener() Listener {
	return r.listener
}

func (r Registration) matches(ev Event) bool {
	if r.accepts == nil {
		return true
	}

	if ev == nil {
		return false
	}

	return reflect.TypeOf(ev).AssignableTo(r.accepts)
}

// acceptedType normalizes a parameter type into a registration tag. Any
// interface without methods is satisfied by every event, so it carries no
// constraint.
func acceptedType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return nil
	}

	return t
}

// Listen registers fn for events of type T. When T is an interface, every
// event implementing it is delivered.
func Listen[T any](fn func(T)) Registration {
	if fn == nil {
		return Registration{}
	}

	return ListenE(func(ev T) error {
		fn(ev)
		return nil
	})
}

// ListenE is like Listen for listeners that can fail.
func ListenE[T any](fn func(T) error) Registration {
	if fn == nil {
		return Registration{}
	}

	return Registration{
		accepts: acceptedType(reflect.TypeOf((*T)(nil)).Elem()),
		listener: func(ev Event) error {
			v, _ := ev.(T)
			return fn(v)
		},
	}
}

// ListenerProvider holds an ordered, immutable set of registrations.
type ListenerProvider struct {
	registrations []Registration
}

// NewListenerProvider registers the given candidates in order. A candidate is
// either a Registration built with Listen or ListenE, or any func value
// taking exactly one argument. The argument type decides which events the
// func receives, an empty interface receives all of them. If the func's last
// result is an error, a non-nil value fails the dispatch. Other results are
// ignored.
//
// If any candidate can not be registered, an error matching
// ErrInvalidArgument is returned and no provider is built.
func NewListenerProvider(candidates ...interface{}) (*ListenerProvider, error) {
	regs := make([]Registration, 0, len(candidates))

	for i, c := range candidates {
		reg, err := register(c)
		if err != nil {
			return nil, errors.Wrapf(err, "listener %d", i)
		}

		regs = append(regs, reg)
	}

	return &ListenerProvider{registrations: regs}, nil
}

func register(c interface{}) (Registration, error) {
	switch v := c.(type) {
	case Registration:
		if v.listener == nil {
			return Registration{}, errors.Wrap(ErrInvalidArgument, "registration has no listener")
		}
		return v, nil
	case Listener:
		if v == nil {
			return Registration{}, errors.Wrap(ErrInvalidArgument, "listener is nil")
		}
		return Registration{listener: v}, nil
	case func(Event) error:
		if v == nil {
			return Registration{}, errors.Wrap(ErrInvalidArgument, "listener is nil")
		}
		return Registration{listener: v}, nil
	}

	return reflectRegistration(c)
}

func reflectRegistration(fn interface{}) (Registration, error) {
	if fn == nil {
		return Registration{}, errors.Wrap(ErrInvalidArgument, "listener is nil")
	}

	v := reflect.ValueOf(fn)
	t := v.Type()

	if t.Kind() != reflect.Func {
		return Registration{}, errors.Wrapf(ErrInvalidArgument, "listener must be a func, got %T", fn)
	}

	if v.IsNil() {
		return Registration{}, errors.Wrapf(ErrInvalidArgument, "listener is a nil %s", t)
	}

	if t.IsVariadic() || t.NumIn() != 1 {
		return Registration{}, errors.Wrapf(ErrInvalidArgument, "listeners must have only one parameter: %s", t)
	}

	param := t.In(0)
	failable := t.NumOut() > 0 && t.Out(t.NumOut()-1) == errorType

	listener := func(ev Event) error {
		arg := reflect.Zero(param)
		if ev != nil {
			arg = reflect.ValueOf(ev)
		}

		out := v.Call([]reflect.Value{arg})

		if failable {
			if err, _ := out[len(out)-1].Interface().(error); err != nil {
				return err
			}
		}

		return nil
	}

	return Registration{
		listener: listener,
		accepts:  acceptedType(param),
	}, nil
}

// ListenersForEvent returns the listeners registered for the dynamic type of
// ev, in registration order. It never modifies the provider and is safe for
// concurrent use.
func (p *ListenerProvider) ListenersForEvent(ev Event) []Listener {
	var listeners []Listener

	for _, reg := range p.registrations {
		if !reg.matches(ev) {
			continue
		}

		listeners = append(listeners, reg.listener)
	}

	return listeners
}

// Len returns the number of registered listeners.
func (p *ListenerProvider) Len() int {
	return len(p.registrations)
}
