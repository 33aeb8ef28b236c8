// Package winapitest provides a scriptable in-memory implementation of the
// winapi surface so the arbitration state machines can be exercised on any
// platform.
package winapitest

import (
	"sync"

	"github.com/hulucc/hadesmem/internal/winapi"
)

// AttachCall records one AttachThreadInput invocation.
type AttachCall struct {
	From, To uint32
	Attach   bool
}

// Thread is a fake open thread handle.
type Thread struct {
	TID uint32

	mu     sync.Mutex
	closed bool
}

func (t *Thread) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (t *Thread) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Fake implements the full winapi surface against in-memory state. Fields
// may be primed before use and inspected afterwards; methods are safe for
// concurrent use.
type Fake struct {
	mu sync.Mutex

	ArrowCursor  winapi.Handle
	LoadArrowErr error
	Cursor       winapi.Handle

	CursorPos       winapi.Point
	GetCursorPosErr error
	SetCursorPosErr error

	ShowCount int32

	ClipRect      winapi.Rect
	ClipCursorErr error
	GetClipErr    error
	ClipHistory   []winapi.Rect

	Devices       []winapi.RawInputDevice
	RegisterCalls [][]winapi.RawInputDevice
	RegisterErr   error
	CountErr      error
	FetchErr      error
	// FetchShort makes the fetch call report one fewer device than
	// requested, simulating the set changing between the two calls.
	FetchShort bool

	TID            uint32
	OpenThreadErrs map[uint32]error
	OpenedThreads  []*Thread
	AttachErrs     map[uint32]error
	AttachCalls    []AttachCall

	HeldKeys map[uint32]bool

	Windows       map[winapi.Handle]winapi.Rect
	OverlayWindow winapi.Handle
}

// New returns a Fake primed with a host cursor, an unrestricted clip region
// and a valid overlay window.
func New() *Fake {
	overlay := winapi.Handle(0x5000)
	return &Fake{
		ArrowCursor:   0xA001,
		Cursor:        0xBEEF,
		ClipRect:      winapi.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080},
		TID:           1,
		HeldKeys:      map[uint32]bool{},
		Windows:       map[winapi.Handle]winapi.Rect{overlay: {Left: 0, Top: 0, Right: 800, Bottom: 600}},
		OverlayWindow: overlay,
	}
}

var _ winapi.CursorAPI = (*Fake)(nil)
var _ winapi.RawInputAPI = (*Fake)(nil)
var _ winapi.ThreadAPI = (*Fake)(nil)
var _ winapi.WindowAPI = (*Fake)(nil)
var _ winapi.KeyAPI = (*Fake)(nil)

// CurrentWindow lets the Fake double as the window source collaborator.
func (f *Fake) CurrentWindow() winapi.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.OverlayWindow
}

func (f *Fake) LoadArrowCursor() (winapi.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoadArrowErr != nil {
		return 0, f.LoadArrowErr
	}
	return f.ArrowCursor, nil
}

func (f *Fake) SetCursor(cursor winapi.Handle) winapi.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.Cursor
	f.Cursor = cursor
	return prev
}

func (f *Fake) GetCursorPos() (winapi.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetCursorPosErr != nil {
		return winapi.Point{}, f.GetCursorPosErr
	}
	return f.CursorPos, nil
}

func (f *Fake) SetCursorPos(x, y int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetCursorPosErr != nil {
		return f.SetCursorPosErr
	}
	f.CursorPos = winapi.Point{X: x, Y: y}
	return nil
}

func (f *Fake) ShowCursor(show bool) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if show {
		f.ShowCount++
	} else {
		f.ShowCount--
	}
	return f.ShowCount
}

func (f *Fake) ClipCursor(r winapi.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ClipCursorErr != nil {
		return f.ClipCursorErr
	}
	f.ClipRect = r
	f.ClipHistory = append(f.ClipHistory, r)
	return nil
}

func (f *Fake) GetClipCursor() (winapi.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetClipErr != nil {
		return winapi.Rect{}, f.GetClipErr
	}
	return f.ClipRect, nil
}

func (f *Fake) CountRegisteredDevices() (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	return uint32(len(f.Devices)), nil
}

func (f *Fake) FetchRegisteredDevices(buf []winapi.RawInputDevice) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return 0, f.FetchErr
	}
	n := copy(buf, f.Devices)
	if f.FetchShort && n > 0 {
		n--
	}
	return uint32(n), nil
}

// RegisterDevices mimics the OS semantics: a descriptor replaces any
// existing registration for the same usage page and usage, RIDEV_REMOVE
// drops it.
func (f *Fake) RegisterDevices(devices []winapi.RawInputDevice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	call := make([]winapi.RawInputDevice, len(devices))
	copy(call, devices)
	f.RegisterCalls = append(f.RegisterCalls, call)

	for _, d := range devices {
		idx := -1
		for i, existing := range f.Devices {
			if existing.UsagePage == d.UsagePage && existing.Usage == d.Usage {
				idx = i
				break
			}
		}
		switch {
		case d.Flags&winapi.RIDEV_REMOVE != 0:
			if idx >= 0 {
				f.Devices = append(f.Devices[:idx], f.Devices[idx+1:]...)
			}
		case idx >= 0:
			f.Devices[idx] = d
		default:
			f.Devices = append(f.Devices, d)
		}
	}
	return nil
}

func (f *Fake) CurrentThreadID() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.TID
}

func (f *Fake) OpenThread(tid uint32) (winapi.ThreadHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.OpenThreadErrs[tid]; err != nil {
		return nil, err
	}
	t := &Thread{TID: tid}
	f.OpenedThreads = append(f.OpenedThreads, t)
	return t, nil
}

func (f *Fake) AttachThreadInput(from, to uint32, attach bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if attach {
		if err := f.AttachErrs[to]; err != nil {
			return err
		}
	}
	f.AttachCalls = append(f.AttachCalls, AttachCall{From: from, To: to, Attach: attach})
	return nil
}

func (f *Fake) AsyncKeyDown(vk uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.HeldKeys[vk]
}

func (f *Fake) IsWindow(h winapi.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Windows[h]
	return ok
}

func (f *Fake) GetWindowRect(h winapi.Handle) (winapi.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.Windows[h]
	if !ok {
		return winapi.Rect{}, winapi.ErrInvalidWindow
	}
	return r, nil
}
