// Package callback provides the ordered callback registry shared by the hook
// dispatch layer.
package callback

import (
	"sync"

	"github.com/google/uuid"
)

// Handle identifies a registered callback. Handles are unique for the
// lifetime of the process and are never reused.
type Handle string

type entry[T any] struct {
	handle Handle
	fn     T
}

// Registry stores callbacks of one shape and hands them out in registration
// order. The zero value is ready to use.
//
// A callback is allowed to register or unregister callbacks on the same
// registry while it is being invoked: invocation walks a snapshot taken at
// call time, so mutations take effect on the next pass.
type Registry[T any] struct {
	mu      sync.Mutex
	entries []entry[T]
}

// Register adds fn and returns the handle that unregisters it.
func (r *Registry[T]) Register(fn T) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := Handle(uuid.NewString())
	r.entries = append(r.entries, entry[T]{handle: h, fn: fn})
	return h
}

// Unregister removes the callback identified by h. Unknown handles are
// ignored.
func (r *Registry[T]) Unregister(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.handle == h {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// Snapshot returns the live callbacks in registration order. Callers invoke
// the returned functions without holding the registry lock.
func (r *Registry[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	fns := make([]T, len(r.entries))
	for i, e := range r.entries {
		fns[i] = e.fn
	}
	return fns
}

// Len reports the number of registered callbacks.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
