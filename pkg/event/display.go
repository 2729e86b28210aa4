package event

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Renderer prints events that describe themselves.
type Renderer struct {
	Out io.Writer
}

// Listener returns a registration printing every fmt.Stringer event.
func (r *Renderer) Listener() Registration {
	return Listen(r.handleEvent)
}

// WithContext attaches a Dispatcher to ctx that renders every fired event.
func (r *Renderer) WithContext(ctx context.Context, opts ...Option) context.Context {
	p := &ListenerProvider{registrations: []Registration{r.Listener()}}

	return SetContext(ctx, NewDispatcher([]Provider{p}, opts...))
}

func (r *Renderer) handleEvent(ev fmt.Stringer) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintln(out, ev.String())
}

func typeName(ev Event) string {
	return fmt.Sprintf("%T", ev)
}
