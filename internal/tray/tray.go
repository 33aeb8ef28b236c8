// Package tray provides the system tray icon and menu using
// getlantern/systray.
package tray

import (
	"github.com/getlantern/systray"
)

// Tray manages the tray icon: a checkable overlay toggle and a quit entry.
type Tray struct {
	tooltip  string
	onToggle func()
	onQuit   func()

	toggleItem *systray.MenuItem
}

// New creates a tray. onToggle is invoked when the user clicks the overlay
// entry; onQuit when they choose Quit.
func New(tooltip string, onToggle, onQuit func()) *Tray {
	return &Tray{tooltip: tooltip, onToggle: onToggle, onQuit: onQuit}
}

// Run starts the tray event loop. Blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.setup, func() {
		if t.onQuit != nil {
			t.onQuit()
		}
	})
}

// SetVisible reflects the overlay's visibility in the toggle entry.
func (t *Tray) SetVisible(visible bool) {
	if t.toggleItem == nil {
		return
	}
	if visible {
		t.toggleItem.Check()
	} else {
		t.toggleItem.Uncheck()
	}
}

// Quit stops the tray event loop.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) setup() {
	systray.SetTitle("Cerberus")
	systray.SetTooltip(t.tooltip)
	systray.SetIcon(icon())

	t.toggleItem = systray.AddMenuItem("Show overlay", "Toggle overlay visibility")
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Release input and exit")

	go func() {
		for {
			select {
			case <-t.toggleItem.ClickedCh:
				if t.onToggle != nil {
					t.onToggle()
				}
			case <-quit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

// icon returns a minimal valid 16x16 32-bit ICO; pixels stay transparent.
func icon() []byte {
	data := make([]byte, 1118)
	copy(data[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	copy(data[6:22], []byte{
		0x10, 0x10, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0x48, 0x04, 0x00, 0x00,
		0x16, 0x00, 0x00, 0x00,
	})
	copy(data[22:62], []byte{
		0x28, 0x00, 0x00, 0x00,
		0x10, 0x00, 0x00, 0x00,
		0x20, 0x00, 0x00, 0x00,
		0x01, 0x00,
		0x20, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x04, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	})
	return data
}
