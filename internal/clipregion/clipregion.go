// Package clipregion owns the save/restore state machine for the cursor
// clip rectangle.
package clipregion

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hulucc/hadesmem/internal/suppress"
	"github.com/hulucc/hadesmem/internal/winapi"
)

// WindowSource yields the overlay window the clip region must keep
// reachable.
type WindowSource interface {
	CurrentWindow() winapi.Handle
}

// Manager tracks the host's clip rectangle across overlay activation. The
// saved rectangle defaults to unrestricted and is only mutated inside a
// transition step or a swallowed host call.
type Manager struct {
	log     *slog.Logger
	api     winapi.CursorAPI
	windows winapi.WindowAPI
	source  WindowSource
	flags   *suppress.Flags

	mu    sync.Mutex
	saved winapi.Rect
}

func New(api winapi.CursorAPI, windows winapi.WindowAPI, source WindowSource, flags *suppress.Flags, log *slog.Logger) *Manager {
	return &Manager{log: log, api: api, windows: windows, source: source, flags: flags}
}

// Activate saves the host's clip rectangle and applies the union of it and
// the overlay window rectangle, so the pointer can reach the overlay
// without shrinking the region the host relied on.
func (m *Manager) Activate() error {
	saved, err := m.queryClip()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.saved = saved
	m.mu.Unlock()

	m.log.Debug("saved clip region",
		"left", saved.Left, "top", saved.Top, "right", saved.Right, "bottom", saved.Bottom)

	return m.applyExpanded()
}

// Reassert re-applies the expanded rectangle without re-saving. Used while
// the overlay is already visible and the host is suspected of having reset
// the clip region underneath arbitration.
func (m *Manager) Reassert() error {
	return m.applyExpanded()
}

// Deactivate re-applies the exact saved rectangle.
func (m *Manager) Deactivate() error {
	m.mu.Lock()
	saved := m.saved
	m.mu.Unlock()

	m.log.Debug("restoring clip region",
		"left", saved.Left, "top", saved.Top, "right", saved.Right, "bottom", saved.Bottom)

	return m.applyClip(saved)
}

func (m *Manager) applyExpanded() error {
	wnd := m.source.CurrentWindow()
	if !m.windows.IsWindow(wnd) {
		m.log.Warn("overlay window invalid, leaving clip region untouched")
		return nil
	}

	wndRect, err := m.windows.GetWindowRect(wnd)
	if err != nil {
		return fmt.Errorf("expand clip region: %w", err)
	}

	m.mu.Lock()
	expanded := m.saved.Union(wndRect)
	m.mu.Unlock()

	m.log.Debug("applying expanded clip region",
		"left", expanded.Left, "top", expanded.Top, "right", expanded.Right, "bottom", expanded.Bottom)

	return m.applyClip(expanded)
}

func (m *Manager) queryClip() (winapi.Rect, error) {
	tok := m.flags.Acquire(suppress.GetClipCursor)
	defer tok.Release()

	r, err := m.api.GetClipCursor()
	if err != nil {
		return winapi.Rect{}, fmt.Errorf("save clip region: %w", err)
	}
	return r, nil
}

func (m *Manager) applyClip(r winapi.Rect) error {
	tok := m.flags.Acquire(suppress.ClipCursor)
	defer tok.Release()

	if err := m.api.ClipCursor(r); err != nil {
		return fmt.Errorf("apply clip region: %w", err)
	}
	return nil
}

// OnClipCursor handles the host calling the set-clip-region primitive.
// While the overlay is visible the request lands in the saved slot, so
// Deactivate restores what the host last asked for, and the call is
// swallowed with a success return.
func (m *Manager) OnClipCursor(r winapi.Rect, visible bool) (handled, ok bool) {
	if !visible {
		return false, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = r
	return true, true
}

// OnGetClipCursor serves the saved rectangle while the overlay is visible.
func (m *Manager) OnGetClipCursor(visible bool) (handled bool, r winapi.Rect, ok bool) {
	if !visible {
		return false, winapi.Rect{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return true, m.saved, true
}
