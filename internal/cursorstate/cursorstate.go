// Package cursorstate owns the save/restore state machine for the system
// cursor: its shape, its position, and the process visibility counter.
package cursorstate

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hulucc/hadesmem/internal/suppress"
	"github.com/hulucc/hadesmem/internal/winapi"
)

// showCounterCap bounds the visibility adjustment loops. The OS counter is
// process-wide and another actor can move it concurrently; without a bound
// the loop could starve.
const showCounterCap = 256

type savedCursor struct {
	present bool
	handle  winapi.Handle
}

type savedPos struct {
	present bool
	pt      winapi.Point
}

// Manager tracks the host's cursor state across overlay activation.
// Transitions are driven by the arbiter from a single thread; the hook
// handlers may run on any thread, so all state sits behind one lock.
type Manager struct {
	log   *slog.Logger
	api   winapi.CursorAPI
	flags *suppress.Flags

	mu        sync.Mutex
	saved     savedCursor
	pos       savedPos
	showCount int
}

func New(api winapi.CursorAPI, flags *suppress.Flags, log *slog.Logger) *Manager {
	return &Manager{log: log, api: api, flags: flags}
}

// Activate installs the arrow cursor, recording the host's cursor, then
// raises the OS visibility counter until the cursor is visible. The number
// of raises is kept so Deactivate can lower the counter back to its
// pre-activation baseline.
func (m *Manager) Activate() error {
	tok := m.flags.Acquire(suppress.SetCursor)
	defer tok.Release()

	arrow, err := m.api.LoadArrowCursor()
	if err != nil {
		return fmt.Errorf("activate cursor: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Debug("setting arrow cursor")
	m.saved.handle = m.api.SetCursor(arrow)
	m.saved.present = true

	return m.showLocked()
}

// Deactivate restores the host's recorded cursor and lowers the visibility
// counter back to the baseline recorded by Activate.
func (m *Manager) Deactivate() error {
	tok := m.flags.Acquire(suppress.SetCursor)
	defer tok.Release()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saved.present {
		m.log.Debug("restoring host cursor")
		m.saved.handle = m.api.SetCursor(m.saved.handle)
	}
	m.saved.present = true

	m.hideLocked()
	return nil
}

func (m *Manager) showLocked() error {
	tok := m.flags.Acquire(suppress.ShowCursor)
	defer tok.Release()

	for {
		m.showCount++
		if m.showCount > showCounterCap {
			m.showCount = showCounterCap
			return &winapi.OpError{
				Op:  "ShowCursor",
				Err: fmt.Errorf("visibility counter still negative after %d raises", showCounterCap),
			}
		}
		if m.api.ShowCursor(true) >= 0 {
			return nil
		}
	}
}

func (m *Manager) hideLocked() {
	tok := m.flags.Acquire(suppress.ShowCursor)
	defer tok.Release()

	for m.showCount > 0 {
		m.showCount--
		m.api.ShowCursor(false)
	}
}

// SavePosition records the current cursor position so it can be put back
// when the overlay releases input.
func (m *Manager) SavePosition() error {
	tok := m.flags.Acquire(suppress.GetCursorPos)
	defer tok.Release()

	pt, err := m.api.GetCursorPos()
	if err != nil {
		return fmt.Errorf("save cursor position: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = savedPos{present: true, pt: pt}
	return nil
}

// RestorePosition moves the cursor back to the saved position and clears
// it. A missing saved position is a no-op.
func (m *Manager) RestorePosition() error {
	m.mu.Lock()
	pos := m.pos
	m.mu.Unlock()

	if !pos.present {
		return nil
	}

	tok := m.flags.Acquire(suppress.SetCursorPos)
	defer tok.Release()

	if err := m.api.SetCursorPos(pos.pt.X, pos.pt.Y); err != nil {
		return fmt.Errorf("restore cursor position: %w", err)
	}
	m.ClearSavedPosition()
	return nil
}

// ClearSavedPosition drops any saved position.
func (m *Manager) ClearSavedPosition() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = savedPos{}
}

// OnSetCursor handles the host calling the set-cursor primitive. The host's
// cursor is always recorded so Deactivate restores the latest one; while the
// overlay is visible the call is swallowed and the previously recorded
// cursor returned, so the host observes normal semantics.
func (m *Manager) OnSetCursor(cursor winapi.Handle, visible bool) (handled bool, prev winapi.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev = m.saved.handle
	m.saved = savedCursor{present: true, handle: cursor}
	return visible, prev
}

// OnGetCursorPos serves the saved position while the overlay is visible.
func (m *Manager) OnGetCursorPos(visible bool) (handled bool, pt winapi.Point) {
	if !visible {
		return false, winapi.Point{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return true, m.pos.pt
}

// OnSetCursorPos captures the host's requested position into the saved slot
// while the overlay is visible, so RestorePosition lands where the host
// last asked.
func (m *Manager) OnSetCursorPos(x, y int32, visible bool) (handled bool) {
	if !visible {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = savedPos{present: true, pt: winapi.Point{X: x, Y: y}}
	return true
}

// OnShowCursor virtualizes the visibility counter while the overlay is
// visible: the host's increments and decrements land on the local counter
// and the OS counter is left alone.
func (m *Manager) OnShowCursor(show, visible bool) (handled bool, count int32) {
	if !visible {
		return false, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if show {
		m.showCount++
	} else {
		m.showCount--
	}
	return true, int32(m.showCount)
}
