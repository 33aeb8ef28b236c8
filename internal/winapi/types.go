// Package winapi defines the OS primitive surface the arbitration layer
// consumes, the shared native types, and the Windows implementation behind
// them. Everything above this package talks to interfaces so the state
// machines run (and are tested) on any platform.
package winapi

// Handle is a native handle value (HWND, HCURSOR, ...).
type Handle uintptr

// Point is a screen coordinate.
type Point struct {
	X, Y int32
}

// Rect is a screen rectangle, left/top inclusive.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Union returns the coordinate-wise union of r and o: min of left/top, max
// of right/bottom.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// RawInputDevice mirrors the native RAWINPUTDEVICE layout so a slice of
// these can be handed to the OS verbatim.
type RawInputDevice struct {
	UsagePage uint16
	Usage     uint16
	Flags     uint32
	Target    Handle
}

// IsMouse reports whether the descriptor is a generic-desktop mouse.
func (d RawInputDevice) IsMouse() bool {
	return d.UsagePage == HID_USAGE_PAGE_GENERIC && d.Usage == HID_USAGE_GENERIC_MOUSE
}

// IsKeyboard reports whether the descriptor is a generic-desktop keyboard.
func (d RawInputDevice) IsKeyboard() bool {
	return d.UsagePage == HID_USAGE_PAGE_GENERIC && d.Usage == HID_USAGE_GENERIC_KEYBOARD
}

// Window message and input constants.
const (
	WM_INPUT      = 0x00FF
	WM_KEYDOWN    = 0x0100
	WM_KEYFIRST   = 0x0100
	WM_KEYLAST    = 0x0109
	WM_MOUSEFIRST = 0x0200
	WM_MOUSELAST  = 0x020E

	VK_SHIFT   = 0x10
	VK_CONTROL = 0x11
	VK_MENU    = 0x12
	VK_F9      = 0x78

	HID_USAGE_PAGE_GENERIC     = 0x01
	HID_USAGE_GENERIC_MOUSE    = 0x02
	HID_USAGE_GENERIC_KEYBOARD = 0x06

	RIDEV_REMOVE    = 0x00000001
	RIDEV_NOLEGACY  = 0x00000030
	RIDEV_INPUTSINK = 0x00000100
)
