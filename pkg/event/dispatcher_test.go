package event_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/lab47/dispatch/pkg/event"
	"github.com/lab47/dispatch/pkg/trace"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stoppableMock records every propagation check next to the listeners.
type stoppableMock struct {
	event.StopFlag
	rec *trace.Recorder
}

func (s *stoppableMock) IsPropagationStopped() bool {
	stopped := s.StopFlag.IsPropagationStopped()
	s.rec.Record(fmt.Sprintf("check-stop(%t)", stopped))
	return stopped
}

func staticProvider(listeners ...event.Listener) event.Provider {
	return event.ProviderFunc(func(event.Event) []event.Listener {
		return listeners
	})
}

func recording(rec *trace.Recorder, name string) event.Listener {
	return func(event.Event) error {
		rec.Record(name)
		return nil
	}
}

func TestDispatcher(t *testing.T) {
	t.Run("dispatches listeners in order and returns the event", func(t *testing.T) {
		rec := trace.NewRecorder()
		ev := &orderPlaced{ID: 1}

		d := event.NewDispatcher([]event.Provider{
			staticProvider(recording(rec, "A"), recording(rec, "B")),
		})

		out, err := d.Dispatch(ev)
		require.NoError(t, err)

		assert.Same(t, ev, out)
		assert.Equal(t, []string{"A", "B"}, rec.Names())
	})

	t.Run("does nothing without providers", func(t *testing.T) {
		ev := &orderPlaced{ID: 1}

		out, err := event.NewDispatcher(nil).Dispatch(ev)
		require.NoError(t, err)
		assert.Same(t, ev, out)
	})

	t.Run("consults providers in order", func(t *testing.T) {
		rec := trace.NewRecorder()

		d := event.NewDispatcher([]event.Provider{
			staticProvider(recording(rec, "A")),
			staticProvider(recording(rec, "B")),
		})

		_, err := d.Dispatch(&orderPlaced{})
		require.NoError(t, err)

		assert.Equal(t, []string{"A", "B"}, rec.Names())
	})

	t.Run("stops at the first failing listener", func(t *testing.T) {
		rec := trace.NewRecorder()
		boom := errors.New("that was expected")

		d := event.NewDispatcher([]event.Provider{
			staticProvider(
				recording(rec, "A"),
				func(event.Event) error { return boom },
				recording(rec, "B"),
			),
			staticProvider(recording(rec, "C")),
		})

		ev := &orderPlaced{}
		out, err := d.Dispatch(ev)

		assert.Equal(t, boom, err)
		assert.Same(t, ev, out)
		assert.Equal(t, []string{"A"}, rec.Names())
	})

	t.Run("does not recover listener panics", func(t *testing.T) {
		rec := trace.NewRecorder()

		d := event.NewDispatcher([]event.Provider{
			staticProvider(
				func(event.Event) error { panic("listener exploded") },
				recording(rec, "B"),
			),
		})

		assert.PanicsWithValue(t, "listener exploded", func() {
			d.Dispatch(&orderPlaced{})
		})
		assert.Empty(t, rec.Names())
	})

	t.Run("checks propagation before each listener", func(t *testing.T) {
		rec := trace.NewRecorder()
		ev := &stoppableMock{rec: rec}

		d := event.NewDispatcher([]event.Provider{
			staticProvider(recording(rec, "A"), recording(rec, "B")),
		})

		_, err := d.Dispatch(ev)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"check-stop(false)",
			"A",
			"check-stop(false)",
			"B",
		}, rec.Names())
	})

	t.Run("stops propagation when a stoppable event reports true", func(t *testing.T) {
		rec := trace.NewRecorder()
		ev := &stoppableMock{rec: rec}

		stop := func(e event.Event) error {
			rec.Record("Stop")
			e.(*stoppableMock).StopPropagation()
			return nil
		}

		d := event.NewDispatcher([]event.Provider{
			staticProvider(recording(rec, "A"), stop, recording(rec, "B")),
			staticProvider(recording(rec, "C")),
		})

		out, err := d.Dispatch(ev)
		require.NoError(t, err)
		assert.Same(t, ev, out)

		assert.Equal(t, []string{
			"check-stop(false)",
			"A",
			"check-stop(false)",
			"Stop",
			"check-stop(true)",
		}, rec.Names())
	})

	t.Run("does not query later providers once stopped", func(t *testing.T) {
		rec := trace.NewRecorder()
		ev := &stoppableMock{rec: rec}

		queried := false

		d := event.NewDispatcher([]event.Provider{
			staticProvider(
				func(e event.Event) error {
					e.(*stoppableMock).StopPropagation()
					return nil
				},
				recording(rec, "B"),
			),
			event.ProviderFunc(func(event.Event) []event.Listener {
				queried = true
				return nil
			}),
		})

		_, err := d.Dispatch(ev)
		require.NoError(t, err)

		assert.False(t, queried)
		assert.NotContains(t, rec.Names(), "B")
	})

	t.Run("invokes nothing for an already stopped event", func(t *testing.T) {
		rec := trace.NewRecorder()
		ev := &stoppableMock{rec: rec}
		ev.StopPropagation()

		d := event.NewDispatcher([]event.Provider{
			staticProvider(recording(rec, "A")),
		})

		_, err := d.Dispatch(ev)
		require.NoError(t, err)

		assert.Equal(t, []string{"check-stop(true)"}, rec.Names())
	})

	t.Run("never checks propagation on an empty listener set", func(t *testing.T) {
		rec := trace.NewRecorder()

		d := event.NewDispatcher([]event.Provider{staticProvider()})

		_, err := d.Dispatch(&stoppableMock{rec: rec})
		require.NoError(t, err)

		assert.Empty(t, rec.Names())
	})

	t.Run("routes events through listener providers by type", func(t *testing.T) {
		rec := trace.NewRecorder()
		h := &handlers{rec: rec}

		users, err := event.NewListenerProvider(h.onUser)
		require.NoError(t, err)

		orders, err := event.NewListenerProvider(h.onOrder, rec.Listener("any"))
		require.NoError(t, err)

		d := event.NewDispatcher([]event.Provider{users, orders})

		_, err = d.Dispatch(&orderPlaced{})
		require.NoError(t, err)

		_, err = d.Dispatch(&userCreated{})
		require.NoError(t, err)

		assert.Equal(t, []string{"order", "any", "user", "any"}, rec.Names())
	})

	t.Run("lets listeners mutate the event", func(t *testing.T) {
		p, err := event.NewListenerProvider(
			event.Listen(func(ev *orderPlaced) { ev.ID++ }),
			event.Listen(func(ev *orderPlaced) { ev.ID *= 10 }),
		)
		require.NoError(t, err)

		d := event.NewDispatcher([]event.Provider{p})

		ev, err := event.Dispatch(d, &orderPlaced{ID: 1})
		require.NoError(t, err)

		assert.Equal(t, 20, ev.ID)
	})

	t.Run("shares providers between dispatchers", func(t *testing.T) {
		rec := trace.NewRecorder()

		p, err := event.NewListenerProvider(rec.Listener("A"))
		require.NoError(t, err)

		a := event.NewDispatcher([]event.Provider{p})
		b := event.NewDispatcher([]event.Provider{p, p})

		_, err = a.Dispatch(1)
		require.NoError(t, err)

		_, err = b.Dispatch(2)
		require.NoError(t, err)

		assert.Equal(t, []string{"A", "A", "A"}, rec.Names())
	})

	t.Run("supports concurrent dispatches with distinct events", func(t *testing.T) {
		p, err := event.NewListenerProvider(
			event.Listen(func(ev *orderPlaced) { ev.ID++ }),
		)
		require.NoError(t, err)

		d := event.NewDispatcher([]event.Provider{p})

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				ev, err := event.Dispatch(d, &orderPlaced{ID: i})
				assert.NoError(t, err)
				assert.Equal(t, i+1, ev.ID)
			}(i)
		}
		wg.Wait()
	})

	t.Run("logs stopped propagation at trace level", func(t *testing.T) {
		var buf bytes.Buffer

		L := hclog.New(&hclog.LoggerOptions{
			Level:  hclog.Trace,
			Output: &buf,
		})

		ev := &event.StopFlag{}
		ev.StopPropagation()

		d := event.NewDispatcher([]event.Provider{staticProvider(recording(trace.NewRecorder(), "A"))}, event.WithLogger(L))

		_, err := d.Dispatch(ev)
		require.NoError(t, err)

		assert.Contains(t, buf.String(), "propagation stopped")
	})
}

func TestFire(t *testing.T) {
	t.Run("is a no-op without a dispatcher", func(t *testing.T) {
		ev := &orderPlaced{ID: 4}

		out, err := event.Fire(context.Background(), ev)
		require.NoError(t, err)
		assert.Same(t, ev, out)
	})

	t.Run("uses the dispatcher in the context", func(t *testing.T) {
		rec := trace.NewRecorder()

		p, err := event.NewListenerProvider(rec.Listener("A"))
		require.NoError(t, err)

		d := event.NewDispatcher([]event.Provider{p})
		ctx := event.SetContext(context.Background(), d)

		assert.Same(t, d, event.FromContext(ctx))

		_, err = event.Fire(ctx, &orderPlaced{})
		require.NoError(t, err)

		assert.Equal(t, []string{"A"}, rec.Names())
	})
}

func TestRenderer(t *testing.T) {
	t.Run("renders events that describe themselves", func(t *testing.T) {
		var buf bytes.Buffer

		r := &event.Renderer{Out: &buf}
		ctx := r.WithContext(context.Background())

		_, err := event.Fire(ctx, &userCreated{Name: "evan"})
		require.NoError(t, err)

		_, err = event.Fire(ctx, &orderPlaced{ID: 1})
		require.NoError(t, err)

		assert.Equal(t, "user created: evan\n", buf.String())
	})
}
