package scenario

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/lab47/dispatch/pkg/event"
	"github.com/lab47/dispatch/pkg/trace"
	"github.com/pkg/errors"
)

var ErrMismatch = errors.New("scenario outcome mismatch")

// Result is the outcome of running a scenario.
type Result struct {
	Name        string
	Trace       []string
	Fingerprint string
	Stopped     bool
	Mutated     bool
	Err         error
	Event       event.Event
}

// Check compares the result with exp. A nil exp always matches.
func (r *Result) Check(exp *Expect) error {
	if exp == nil {
		return nil
	}

	if !equalTrace(exp.Trace, r.Trace) {
		return errors.Wrapf(ErrMismatch, "%s: expected trace %v, got %v", r.Name, exp.Trace, r.Trace)
	}

	if exp.Error != (r.Err != nil) {
		return errors.Wrapf(ErrMismatch, "%s: expected error %t, got %v", r.Name, exp.Error, r.Err)
	}

	if exp.Stopped != r.Stopped {
		return errors.Wrapf(ErrMismatch, "%s: expected stopped %t, got %t", r.Name, exp.Stopped, r.Stopped)
	}

	return nil
}

func equalTrace(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

type Runner struct {
	L hclog.Logger
}

func NewRunner(L hclog.Logger) *Runner {
	if L == nil {
		L = hclog.NewNullLogger()
	}

	return &Runner{L: L}
}

// Run builds the scenario's providers, dispatches a fresh event through them
// and reports what happened. A failing listener is part of the result, Run
// only errors when the scenario can not be built or a lifecycle listener
// attached to ctx fails.
func (r *Runner) Run(ctx context.Context, sc Scenario) (*Result, error) {
	rec := trace.NewRecorder()

	ev, err := sc.newEvent(rec)
	if err != nil {
		return nil, err
	}

	providers, err := buildProviders(sc.Providers, rec)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", sc.Name)
	}

	d := event.NewDispatcher(providers, event.WithLogger(r.L.Named("dispatcher")))

	_, err = event.Fire(ctx, &ScenarioStarted{Name: sc.Name, Event: sc.kind()})
	if err != nil {
		return nil, err
	}

	before, herr := trace.StateHash(ev)

	id := rec.Begin()
	r.L.Debug("dispatching", "scenario", sc.Name, "dispatch", id.String(), "providers", len(providers))

	_, derr := d.Dispatch(ev)

	res := &Result{
		Name:        sc.Name,
		Trace:       rec.Names(),
		Fingerprint: rec.Fingerprint(),
		Err:         derr,
		Event:       ev,
	}

	if s, ok := ev.(*StoppableMessage); ok {
		res.Stopped = s.Stopped()
	}

	if herr == nil {
		after, err := trace.StateHash(ev)
		if err == nil {
			res.Mutated = !bytes.Equal(before, after)
		}
	}

	r.L.Debug("scenario finished",
		"scenario", sc.Name,
		"trace", fmt.Sprint(res.Trace),
		"stopped", res.Stopped,
		"mutated", res.Mutated,
		"fingerprint", res.Fingerprint,
	)

	_, err = event.Fire(ctx, &ScenarioFinished{Result: res})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// RunAll runs each scenario in order and checks its expectations. All
// results are returned, the error is the first mismatch.
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) ([]*Result, error) {
	var (
		results  []*Result
		mismatch error
	)

	for _, sc := range scenarios {
		res, err := r.Run(ctx, sc)
		if err != nil {
			return results, err
		}

		results = append(results, res)

		if err := res.Check(sc.Expect); err != nil && mismatch == nil {
			r.L.Warn("scenario mismatch", "scenario", sc.Name, "error", err)
			mismatch = err
		}
	}

	return results, mismatch
}
