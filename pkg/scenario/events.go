package scenario

import (
	"fmt"
	"strings"

	"github.com/lab47/dispatch/pkg/event"
	"github.com/lab47/dispatch/pkg/trace"
)

// Named is implemented by every scenario event.
type Named interface {
	EventName() string
}

// Message is the event of plain scenarios. Listeners append their names to
// Seen.
type Message struct {
	Name string
	Seen []string
}

func (m *Message) EventName() string {
	return m.Name
}

// StoppableMessage is a Message that can halt propagation. Every check of
// the stop flag is recorded in the trace.
type StoppableMessage struct {
	Message
	event.StopFlag

	rec *trace.Recorder
}

func (s *StoppableMessage) IsPropagationStopped() bool {
	stopped := s.StopFlag.IsPropagationStopped()
	s.rec.Record(fmt.Sprintf("check-stop(%t)", stopped))
	return stopped
}

// Stopped reports the stop flag without recording a check.
func (s *StoppableMessage) Stopped() bool {
	return s.StopFlag.IsPropagationStopped()
}

// ScenarioStarted is fired before a scenario dispatches its event.
type ScenarioStarted struct {
	Name  string
	Event string
}

func (s *ScenarioStarted) String() string {
	return fmt.Sprintf("==> %s (%s event)", s.Name, s.Event)
}

// ScenarioFinished is fired once a scenario has run.
type ScenarioFinished struct {
	Result *Result
}

func (s *ScenarioFinished) String() string {
	r := s.Result

	outcome := "completed"
	switch {
	case r.Err != nil:
		outcome = "failed: " + r.Err.Error()
	case r.Stopped:
		outcome = "stopped"
	}

	return fmt.Sprintf("    %s [%s] %s", strings.Join(r.Trace, " "), r.Fingerprint, outcome)
}
