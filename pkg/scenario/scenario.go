// Package scenario runs declarative dispatch scenarios and checks their
// outcome.
package scenario

import (
	"io"

	"github.com/lab47/dispatch/pkg/event"
	"github.com/lab47/dispatch/pkg/trace"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var ErrInvalidScenario = errors.New("invalid scenario")

const (
	PlainEvent     = "plain"
	StoppableEvent = "stoppable"
)

// Expect describes the outcome a scenario must have.
type Expect struct {
	Trace   []string `mapstructure:"trace"`
	Error   bool     `mapstructure:"error"`
	Stopped bool     `mapstructure:"stopped"`
}

// Scenario dispatches one event of kind Event through a dispatcher built from
// Providers. Each provider is a list of listener specs of the form
// "behavior:name".
type Scenario struct {
	Name      string     `mapstructure:"name"`
	Event     string     `mapstructure:"event"`
	Providers [][]string `mapstructure:"providers"`
	Expect    *Expect    `mapstructure:"expect"`
}

type file struct {
	Scenarios []Scenario `mapstructure:"scenarios"`
}

func (s *Scenario) kind() string {
	if s.Event == "" {
		return PlainEvent
	}

	return s.Event
}

func (s *Scenario) newEvent(rec *trace.Recorder) (event.Event, error) {
	switch s.kind() {
	case PlainEvent:
		return &Message{Name: s.Name}, nil
	case StoppableEvent:
		return &StoppableMessage{Message: Message{Name: s.Name}, rec: rec}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidScenario, "%s: unknown event kind %q", s.Name, s.Event)
	}
}

// Validate checks that the scenario can be built.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.Wrap(ErrInvalidScenario, "scenario has no name")
	}

	rec := trace.NewRecorder()

	if _, err := s.newEvent(rec); err != nil {
		return err
	}

	if _, err := buildProviders(s.Providers, rec); err != nil {
		return errors.Wrapf(err, "%s", s.Name)
	}

	return nil
}

// Load reads scenarios in the given format (yaml, json, toml).
func Load(r io.Reader, format string) ([]Scenario, error) {
	v := viper.New()
	v.SetConfigType(format)

	if err := v.ReadConfig(r); err != nil {
		return nil, errors.Wrapf(err, "reading %s scenarios", format)
	}

	return decode(v)
}

// LoadFile reads scenarios from path, the format is picked from the
// extension.
func LoadFile(path string) ([]Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading scenarios from %s", path)
	}

	return decode(v)
}

func decode(v *viper.Viper) ([]Scenario, error) {
	var f file

	if err := v.Unmarshal(&f); err != nil {
		return nil, errors.Wrap(err, "decoding scenarios")
	}

	names := map[string]struct{}{}

	for i := range f.Scenarios {
		sc := &f.Scenarios[i]

		if err := sc.Validate(); err != nil {
			return nil, err
		}

		if _, dup := names[sc.Name]; dup {
			return nil, errors.Wrapf(ErrInvalidScenario, "duplicate scenario %s", sc.Name)
		}

		names[sc.Name] = struct{}{}
	}

	return f.Scenarios, nil
}

// Select returns the scenarios with the given names, in that order. With no
// names, all scenarios are returned.
func Select(all []Scenario, names ...string) ([]Scenario, error) {
	if len(names) == 0 {
		return all, nil
	}

	byName := map[string]Scenario{}
	for _, sc := range all {
		byName[sc.Name] = sc
	}

	var out []Scenario

	for _, name := range names {
		sc, ok := byName[name]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidScenario, "no scenario named %s", name)
		}

		out = append(out, sc)
	}

	return out, nil
}

// Builtin returns the reference dispatch scenarios.
func Builtin() []Scenario {
	return []Scenario{
		{
			Name:      "ordered-listeners",
			Providers: [][]string{{"A", "B"}},
			Expect:    &Expect{Trace: []string{"A", "B"}},
		},
		{
			Name:      "failing-listener",
			Providers: [][]string{{"A", "fail:Fail", "B"}},
			Expect:    &Expect{Trace: []string{"A"}, Error: true},
		},
		{
			Name:      "stop-propagation",
			Event:     StoppableEvent,
			Providers: [][]string{{"A", "stop:Stop", "B"}},
			Expect: &Expect{
				Trace:   []string{"check-stop(false)", "A", "check-stop(false)", "Stop", "check-stop(true)"},
				Stopped: true,
			},
		},
		{
			Name:      "provider-order",
			Providers: [][]string{{"A"}, {"B"}},
			Expect:    &Expect{Trace: []string{"A", "B"}},
		},
		{
			Name:      "type-filter",
			Event:     StoppableEvent,
			Providers: [][]string{{"plain:P", "stoppable:S", "named:N"}},
			Expect: &Expect{
				Trace: []string{"check-stop(false)", "S", "check-stop(false)", "N"},
			},
		},
	}
}
