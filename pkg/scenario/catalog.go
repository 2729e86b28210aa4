package scenario

import (
	"strings"

	"github.com/lab47/dispatch/pkg/event"
	"github.com/lab47/dispatch/pkg/trace"
	"github.com/pkg/errors"
)

var (
	ErrUnknownBehavior = errors.New("unknown listener behavior")
	ErrListenerFailed  = errors.New("listener failed")
)

// Behaviors lists the listener kinds usable in a listener spec.
var Behaviors = []string{"record", "plain", "stoppable", "named", "stop", "fail"}

type marker interface {
	mark(name string)
}

func (m *Message) mark(name string) {
	m.Seen = append(m.Seen, name)
}

func seen(ev event.Event, name string) {
	if m, ok := ev.(marker); ok {
		m.mark(name)
	}
}

// parseSpec splits "behavior:name". A bare name records.
func parseSpec(spec string) (string, string) {
	if idx := strings.IndexByte(spec, ':'); idx != -1 {
		return spec[:idx], spec[idx+1:]
	}

	return "record", spec
}

func listenerFor(spec string, rec *trace.Recorder) (event.Registration, error) {
	behavior, name := parseSpec(spec)

	if name == "" {
		return event.Registration{}, errors.Wrapf(ErrInvalidScenario, "listener spec %q has no name", spec)
	}

	switch behavior {
	case "record":
		return event.Listen(func(ev event.Event) {
			rec.Record(name)
			seen(ev, name)
		}), nil
	case "plain":
		return event.Listen(func(m *Message) {
			rec.Record(name)
			m.mark(name)
		}), nil
	case "stoppable":
		return event.Listen(func(s *StoppableMessage) {
			rec.Record(name)
			s.mark(name)
		}), nil
	case "named":
		return event.Listen(func(n Named) {
			rec.Record(name)
			seen(n, name)
		}), nil
	case "stop":
		return event.Listen(func(ev event.Event) {
			rec.Record(name)
			seen(ev, name)

			if s, ok := ev.(interface{ StopPropagation() }); ok {
				s.StopPropagation()
			}
		}), nil
	case "fail":
		return event.ListenE(func(ev event.Event) error {
			return errors.Wrapf(ErrListenerFailed, "%s", name)
		}), nil
	default:
		return event.Registration{}, errors.Wrapf(ErrUnknownBehavior, "%s in %q", behavior, spec)
	}
}

func buildProviders(specs [][]string, rec *trace.Recorder) ([]event.Provider, error) {
	var providers []event.Provider

	for i, set := range specs {
		candidates := make([]interface{}, 0, len(set))

		for _, spec := range set {
			reg, err := listenerFor(spec, rec)
			if err != nil {
				return nil, errors.Wrapf(err, "provider %d", i)
			}

			candidates = append(candidates, reg)
		}

		p, err := event.NewListenerProvider(candidates...)
		if err != nil {
			return nil, errors.Wrapf(err, "provider %d", i)
		}

		providers = append(providers, p)
	}

	return providers, nil
}
