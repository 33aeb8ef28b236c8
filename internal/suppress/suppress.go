// Package suppress implements scoped reentrancy guards for hook points.
//
// The arbitration layer calls the same OS primitives it has hooked. Before it
// does, it acquires a token for the matching hook point; the interception
// point checks the flag first and passes such calls straight through to the
// original OS behavior instead of re-entering arbitration.
package suppress

import "sync/atomic"

// Point names one hooked API family.
type Point int

const (
	SetCursor Point = iota
	GetCursorPos
	SetCursorPos
	ShowCursor
	ClipCursor
	GetClipCursor
	GetRawInputBuffer
	GetRawInputData
	RegisterRawInputDevices
	DirectInput

	numPoints
)

var pointNames = [numPoints]string{
	"SetCursor",
	"GetCursorPos",
	"SetCursorPos",
	"ShowCursor",
	"ClipCursor",
	"GetClipCursor",
	"GetRawInputBuffer",
	"GetRawInputData",
	"RegisterRawInputDevices",
	"DirectInput",
}

func (p Point) String() string {
	if p < 0 || p >= numPoints {
		return "Unknown"
	}
	return pointNames[p]
}

// Flags tracks the suppression depth of every hook point. Depths are
// process-wide, matching the scope of the hooks themselves, and nest so the
// orchestrator's own recursive calls stay suppressed until the outermost
// token is released.
type Flags struct {
	depth [numPoints]atomic.Int32
}

// Suppressed reports whether p is currently suppressed.
func (f *Flags) Suppressed(p Point) bool {
	return f.depth[p].Load() > 0
}

// Acquire suppresses p until the returned token is released.
func (f *Flags) Acquire(p Point) *Token {
	f.depth[p].Add(1)
	return &Token{flags: f, point: p}
}

// Token undoes one Acquire.
type Token struct {
	flags    *Flags
	point    Point
	released atomic.Bool
}

// Release restores the hook point's prior suppression depth. Releasing a
// token more than once has no further effect.
func (t *Token) Release() {
	if t.released.CompareAndSwap(false, true) {
		t.flags.depth[t.point].Add(-1)
	}
}
