// Package trace records which listeners ran during a dispatch.
package trace

import (
	"crypto/rand"
	"strings"
	"sync"

	"github.com/lab47/dispatch/pkg/event"
	"github.com/mr-tron/base58"
	"github.com/oklog/ulid"
	"golang.org/x/crypto/blake2b"
)

// Entry is one recorded step.
type Entry struct {
	Dispatch ulid.ULID
	Name     string
}

// Recorder collects named steps in the order they happen. It is safe for
// concurrent use.
type Recorder struct {
	mu      sync.Mutex
	current ulid.ULID
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Begin starts a new dispatch. Entries recorded afterwards carry the
// returned ID.
func (r *Recorder) Begin() ulid.ULID {
	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		id = ulid.MustNew(ulid.Now(), nil)
	}

	r.mu.Lock()
	r.current = id
	r.mu.Unlock()

	return id
}

// Record appends name to the trace.
func (r *Recorder) Record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, Entry{Dispatch: r.current, Name: name})
}

// Listener returns a listener that accepts any event and records name.
func (r *Recorder) Listener(name string) event.Registration {
	return event.Listen(func(event.Event) {
		r.Record(name)
	})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Entry(nil), r.entries...)
}

// Names returns the recorded names, oldest first.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.Name)
	}

	return names
}

// For returns the names recorded during the dispatch id.
func (r *Recorder) For(id ulid.ULID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for _, e := range r.entries {
		if e.Dispatch == id {
			names = append(names, e.Name)
		}
	}

	return names
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.current = ulid.ULID{}
}

// Fingerprint summarizes the recorded names. Two recorders holding the same
// names in the same order have the same fingerprint.
func (r *Recorder) Fingerprint() string {
	return Fingerprint(r.Names())
}

// Fingerprint returns the base58 encoded blake2b-256 digest of names.
func Fingerprint(names []string) string {
	sum := blake2b.Sum256([]byte(strings.Join(names, "\n")))
	return base58.Encode(sum[:])
}
