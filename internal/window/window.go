// Package window provides the overlay window and the wndproc dispatch that
// feeds the arbitration layer.
package window

import (
	"github.com/hulucc/hadesmem/internal/callback"
	"github.com/hulucc/hadesmem/internal/winapi"
)

// MessageCallback receives every window message with an in/out handled
// flag. A callback that sets handled suppresses the default handling.
type MessageCallback func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr, handled *bool)

// Provider is the window collaborator the arbitration layer depends on.
type Provider interface {
	CurrentWindow() winapi.Handle
	RegisterOnWndProcMsg(cb MessageCallback) callback.Handle
	UnregisterOnWndProcMsg(h callback.Handle)
}

// Dispatcher fans a window message out to registered callbacks in order and
// reports whether any of them handled it.
type Dispatcher struct {
	callbacks callback.Registry[MessageCallback]
}

// Register adds a message callback.
func (d *Dispatcher) Register(cb MessageCallback) callback.Handle {
	return d.callbacks.Register(cb)
}

// Unregister removes a message callback.
func (d *Dispatcher) Unregister(h callback.Handle) {
	d.callbacks.Unregister(h)
}

// Dispatch runs every registered callback against the message. The handled
// flag is shared across callbacks, so a later callback observes (and may
// keep) an earlier callback's decision.
func (d *Dispatcher) Dispatch(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr) bool {
	handled := false
	for _, cb := range d.callbacks.Snapshot() {
		cb(hwnd, msg, wparam, lparam, &handled)
	}
	return handled
}
