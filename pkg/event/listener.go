// Package event implements synchronous, in-process event dispatch.
//
// A Dispatcher asks each of its Providers, in order, for the listeners that
// apply to an event and invokes them one at a time on the caller's
// goroutine. Events that implement Stoppable can ask for the remaining
// listeners to be skipped.
package event

// Event is any application defined value. Listeners are selected by its
// dynamic type.
type Event interface{}

// Stoppable is implemented by events that can halt further propagation.
type Stoppable interface {
	IsPropagationStopped() bool
}

// Listener receives an event. A non-nil error aborts the dispatch and is
// returned to the caller of Dispatch as is.
type Listener func(ev Event) error

// StopFlag can be embedded in an event to make it Stoppable.
type StopFlag struct {
	stopped bool
}

// StopPropagation prevents any further listener from seeing the event.
func (s *StopFlag) StopPropagation() {
	s.stopped = true
}

func (s *StopFlag) IsPropagationStopped() bool {
	return s.stopped
}
