package session

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// registration associates a listener with its subscription token.
// Registering the same function twice yields two independent entries.
type registration[T any] struct {
	id int64
	fn func(T)
}

// registry is an ordered fan-out list for one kind of event. Dispatch
// iterates a snapshot, so a listener removed mid-dispatch never causes
// other listeners to be skipped or invoked twice.
type registry[T any] struct {
	mu      sync.Mutex
	ids     *xsync.Counter
	entries []registration[T]
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{ids: xsync.NewCounter()}
}

// add registers a listener and returns a function that removes exactly
// this registration.
func (r *registry[T]) add(fn func(T)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ids.Inc()
	id := r.ids.Value()
	r.entries = append(r.entries, registration[T]{id: id, fn: fn})

	return func() {
		r.remove(id)
	}
}

func (r *registry[T]) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.entries {
		if entry.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// clear removes every registration.
func (r *registry[T]) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
}

// size returns the number of active registrations.
func (r *registry[T]) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// dispatch invokes every listener registered at the time of the call,
// in registration order. A panicking listener is logged and does not
// stop the remaining listeners.
func (r *registry[T]) dispatch(log zerolog.Logger, event T) {
	r.mu.Lock()
	snapshot := make([]registration[T], len(r.entries))
	copy(snapshot, r.entries)
	r.mu.Unlock()

	for _, entry := range snapshot {
		invoke(log, entry.fn, event)
	}
}

func invoke[T any](log zerolog.Logger, fn func(T), event T) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("event listener panicked")
		}
	}()

	fn(event)
}
