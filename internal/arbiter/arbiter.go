// Package arbiter decides, at any instant, whether input, cursor, and
// clip-region state belongs to the host application or to the overlay, and
// performs the symmetric save/restore of OS-owned global state when
// ownership switches sides.
package arbiter

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hulucc/hadesmem/internal/callback"
	"github.com/hulucc/hadesmem/internal/clipregion"
	"github.com/hulucc/hadesmem/internal/cursorstate"
	"github.com/hulucc/hadesmem/internal/msgqueue"
	"github.com/hulucc/hadesmem/internal/rawdevice"
	"github.com/hulucc/hadesmem/internal/suppress"
	"github.com/hulucc/hadesmem/internal/winapi"
)

// Options selects the visibility toggle chord.
type Options struct {
	// ToggleKey is the virtual-key code that flips overlay visibility.
	ToggleKey uint32
	// ToggleModifier is the virtual-key code that must be held with
	// ToggleKey.
	ToggleModifier uint32
}

// DefaultOptions is Shift+F9.
func DefaultOptions() Options {
	return Options{ToggleKey: winapi.VK_F9, ToggleModifier: winapi.VK_SHIFT}
}

// Arbiter composes the three save/restore state machines and the deferred
// message queue, and owns the single process-wide visibility bit.
type Arbiter struct {
	log   *slog.Logger
	flags *suppress.Flags
	keys  winapi.KeyAPI

	cursor *cursorstate.Manager
	clip   *clipregion.Manager
	raw    *rawdevice.Manager
	queue  *msgqueue.Queue

	opts Options

	// visible is written once per transition under mu and read freely
	// from every interception point.
	visible atomic.Bool
	mu      sync.Mutex

	onVisibility callback.Registry[func(visible bool)]
}

func New(
	cursor *cursorstate.Manager,
	clip *clipregion.Manager,
	raw *rawdevice.Manager,
	queue *msgqueue.Queue,
	keys winapi.KeyAPI,
	flags *suppress.Flags,
	opts Options,
	log *slog.Logger,
) *Arbiter {
	if opts.ToggleKey == 0 {
		opts = DefaultOptions()
	}
	return &Arbiter{
		log:    log,
		flags:  flags,
		keys:   keys,
		cursor: cursor,
		clip:   clip,
		raw:    raw,
		queue:  queue,
		opts:   opts,
	}
}

// Visible reports whether the overlay currently owns input.
func (a *Arbiter) Visible() bool {
	return a.visible.Load()
}

// Queue returns the deferred message queue so the render loop can drain it
// once per tick.
func (a *Arbiter) Queue() *msgqueue.Queue {
	return a.queue
}

// RegisterOnVisibilityChange adds a callback invoked after every completed
// visibility transition.
func (a *Arbiter) RegisterOnVisibilityChange(fn func(visible bool)) callback.Handle {
	return a.onVisibility.Register(fn)
}

// UnregisterOnVisibilityChange removes a visibility callback.
func (a *Arbiter) UnregisterOnVisibilityChange(h callback.Handle) {
	a.onVisibility.Unregister(h)
}

// Toggle flips visibility.
func (a *Arbiter) Toggle() error {
	old := a.visible.Load()
	if old {
		a.log.Info("hiding overlay")
	} else {
		a.log.Info("showing overlay")
	}
	return a.SetVisible(!old, old)
}

// SetVisible transitions arbitration between host and overlay ownership.
//
//	old=false new=false: clear any stray saved cursor position
//	old=true  new=true : reassert the expanded clip region
//	old=false new=true : save position, take cursor, expand clip, redirect
//	                     raw input, in that fixed order
//	old=true  new=false: exact inverse order
//
// A failing step aborts the remainder of the sequence; state written by the
// steps that already completed stays valid, and the caller may retry the
// whole transition.
func (a *Arbiter) SetVisible(visible, oldVisible bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.visible.Store(visible)

	if visible != oldVisible {
		var err error
		if visible {
			err = a.activate()
		} else {
			err = a.deactivate()
		}
		if err != nil {
			return err
		}
		for _, fn := range a.onVisibility.Snapshot() {
			fn(visible)
		}
		return nil
	}

	a.cursor.ClearSavedPosition()
	if visible {
		if err := a.clip.Reassert(); err != nil {
			return fmt.Errorf("reassert clip region: %w", err)
		}
	}
	return nil
}

func (a *Arbiter) activate() error {
	if err := a.cursor.SavePosition(); err != nil {
		return fmt.Errorf("show overlay: %w", err)
	}
	if err := a.cursor.Activate(); err != nil {
		return fmt.Errorf("show overlay: %w", err)
	}
	if err := a.clip.Activate(); err != nil {
		return fmt.Errorf("show overlay: %w", err)
	}
	if err := a.raw.Activate(); err != nil {
		return fmt.Errorf("show overlay: %w", err)
	}
	return nil
}

func (a *Arbiter) deactivate() error {
	if err := a.cursor.RestorePosition(); err != nil {
		return fmt.Errorf("hide overlay: %w", err)
	}
	if err := a.cursor.Deactivate(); err != nil {
		return fmt.Errorf("hide overlay: %w", err)
	}
	if err := a.clip.Deactivate(); err != nil {
		return fmt.Errorf("hide overlay: %w", err)
	}
	if err := a.raw.Deactivate(); err != nil {
		return fmt.Errorf("hide overlay: %w", err)
	}
	return nil
}

// Shutdown hands input back to the host best-effort and drops the drain
// thread's input attachment. Called when the hosting module unloads.
func (a *Arbiter) Shutdown() {
	if a.visible.Load() {
		if err := a.SetVisible(false, true); err != nil {
			a.log.Warn("restore host input state", "err", err)
		}
	}
	a.queue.Detach()
}
