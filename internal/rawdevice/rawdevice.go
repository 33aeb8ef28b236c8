// Package rawdevice owns the save/restore state machine for registered
// raw-input devices.
package rawdevice

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hulucc/hadesmem/internal/suppress"
	"github.com/hulucc/hadesmem/internal/winapi"
)

// WindowSource yields the overlay window replacement devices are bound to.
type WindowSource interface {
	CurrentWindow() winapi.Handle
}

// Manager captures the host's raw-input device registrations on activation
// and replays them verbatim, in order, on deactivation.
type Manager struct {
	log    *slog.Logger
	api    winapi.RawInputAPI
	source WindowSource
	flags  *suppress.Flags

	mu    sync.Mutex
	saved []winapi.RawInputDevice
}

func New(api winapi.RawInputAPI, source WindowSource, flags *suppress.Flags, log *slog.Logger) *Manager {
	return &Manager{log: log, api: api, source: source, flags: flags}
}

// Activate snapshots the registered device set using the native two-call
// protocol, then registers replacement mouse and keyboard devices bound to
// the overlay window for whichever of those classes the host had
// registered. A count mismatch between the two calls means the set changed
// concurrently and the activation attempt fails.
func (m *Manager) Activate() error {
	tok := m.flags.Acquire(suppress.RegisterRawInputDevices)
	defer tok.Release()

	count, err := m.api.CountRegisteredDevices()
	if err != nil {
		return fmt.Errorf("enumerate raw input devices: %w", err)
	}
	if count == 0 {
		m.log.Debug("no registered raw input devices")
		m.mu.Lock()
		m.saved = nil
		m.mu.Unlock()
		return nil
	}

	devices := make([]winapi.RawInputDevice, count)
	written, err := m.api.FetchRegisteredDevices(devices)
	if err != nil {
		return fmt.Errorf("enumerate raw input devices: %w", err)
	}
	if written != count {
		return &winapi.OpError{Op: "GetRegisteredRawInputDevices", Err: winapi.ErrBufferSizingRace}
	}

	m.mu.Lock()
	m.saved = devices
	m.mu.Unlock()

	hasMouse, hasKeyboard := false, false
	for _, d := range devices {
		m.logDevice("saved raw input device", d)
		if d.IsMouse() {
			hasMouse = true
		}
		if d.IsKeyboard() {
			hasKeyboard = true
		}
	}
	if !hasMouse && !hasKeyboard {
		m.log.Debug("no registered mouse or keyboard raw input devices")
		return nil
	}

	target := m.source.CurrentWindow()
	if hasMouse {
		m.log.Debug("registering overlay mouse device")
		dev := winapi.RawInputDevice{
			UsagePage: winapi.HID_USAGE_PAGE_GENERIC,
			Usage:     winapi.HID_USAGE_GENERIC_MOUSE,
			Target:    target,
		}
		if err := m.api.RegisterDevices([]winapi.RawInputDevice{dev}); err != nil {
			return fmt.Errorf("register overlay mouse device: %w", err)
		}
	}
	if hasKeyboard {
		m.log.Debug("registering overlay keyboard device")
		dev := winapi.RawInputDevice{
			UsagePage: winapi.HID_USAGE_PAGE_GENERIC,
			Usage:     winapi.HID_USAGE_GENERIC_KEYBOARD,
			Target:    target,
		}
		if err := m.api.RegisterDevices([]winapi.RawInputDevice{dev}); err != nil {
			return fmt.Errorf("register overlay keyboard device: %w", err)
		}
	}
	return nil
}

// Deactivate re-registers the saved devices verbatim, in saved order.
// Device classes this manager does not recognize are skipped with a trace
// note rather than treated as an error.
func (m *Manager) Deactivate() error {
	tok := m.flags.Acquire(suppress.RegisterRawInputDevices)
	defer tok.Release()

	m.mu.Lock()
	saved := make([]winapi.RawInputDevice, len(m.saved))
	copy(saved, m.saved)
	m.mu.Unlock()

	for _, d := range saved {
		m.logDevice("restoring raw input device", d)
		switch {
		case d.IsMouse(), d.IsKeyboard():
			if err := m.api.RegisterDevices([]winapi.RawInputDevice{d}); err != nil {
				return fmt.Errorf("restore raw input device: %w", err)
			}
		default:
			m.log.Debug("skipping unknown raw input device class",
				"usage_page", d.UsagePage, "usage", d.Usage)
		}
	}
	return nil
}

// Saved returns a copy of the device snapshot, for diagnostics.
func (m *Manager) Saved() []winapi.RawInputDevice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]winapi.RawInputDevice, len(m.saved))
	copy(out, m.saved)
	return out
}

func (m *Manager) logDevice(msg string, d winapi.RawInputDevice) {
	m.log.Debug(msg,
		"usage_page", d.UsagePage,
		"usage", d.Usage,
		"flags", fmt.Sprintf("%08X", d.Flags),
		"target", fmt.Sprintf("%#x", uintptr(d.Target)))
	if d.Flags&winapi.RIDEV_NOLEGACY == winapi.RIDEV_NOLEGACY {
		m.log.Debug("device registered with RIDEV_NOLEGACY")
	}
	if d.Flags&winapi.RIDEV_REMOVE == winapi.RIDEV_REMOVE {
		m.log.Debug("device registration is a removal")
	}
}

// OnGetRawInputBuffer swallows buffered raw-input reads while the overlay
// is visible; the host sees the call fail.
func (m *Manager) OnGetRawInputBuffer(visible bool) (handled bool, retval uint32) {
	if !visible {
		return false, 0
	}
	return true, ^uint32(0)
}

// OnGetRawInputData zeroes the host's buffer and swallows the call while
// the overlay is visible.
func (m *Manager) OnGetRawInputData(data []byte, visible bool) (handled bool, retval uint32) {
	if !visible {
		return false, 0
	}
	for i := range data {
		data[i] = 0
	}
	return true, ^uint32(0)
}

// OnRegisterRawInputDevices traces the host's registration attempt and,
// while the overlay is visible, swallows it with a failure return so the
// saved snapshot stays authoritative.
func (m *Manager) OnRegisterRawInputDevices(devices []winapi.RawInputDevice, visible bool) (handled, ok bool) {
	for _, d := range devices {
		m.logDevice("host raw input device registration", d)
	}
	if !visible {
		return false, false
	}
	return true, false
}
