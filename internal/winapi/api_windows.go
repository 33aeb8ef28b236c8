//go:build windows

package winapi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                           = windows.NewLazySystemDLL("user32.dll")
	procSetCursor                    = user32.NewProc("SetCursor")
	procLoadCursor                   = user32.NewProc("LoadCursorW")
	procGetCursorPos                 = user32.NewProc("GetCursorPos")
	procSetCursorPos                 = user32.NewProc("SetCursorPos")
	procShowCursor                   = user32.NewProc("ShowCursor")
	procClipCursor                   = user32.NewProc("ClipCursor")
	procGetClipCursor                = user32.NewProc("GetClipCursor")
	procGetRegisteredRawInputDevices = user32.NewProc("GetRegisteredRawInputDevices")
	procRegisterRawInputDevices      = user32.NewProc("RegisterRawInputDevices")
	procAttachThreadInput            = user32.NewProc("AttachThreadInput")
	procIsWindow                     = user32.NewProc("IsWindow")
	procGetWindowRect                = user32.NewProc("GetWindowRect")
	procGetAsyncKeyState             = user32.NewProc("GetAsyncKeyState")
)

const (
	idcArrow      = 32512
	rawDeviceSize = uint32(unsafe.Sizeof(RawInputDevice{}))
)

// (UINT)-1, the error return of the raw-input enumeration calls.
const invalidDeviceCount = ^uint32(0)

// System is the real Windows implementation of the primitive surface.
type System struct{}

var _ CursorAPI = System{}
var _ RawInputAPI = System{}
var _ ThreadAPI = System{}
var _ WindowAPI = System{}
var _ KeyAPI = System{}

func (System) LoadArrowCursor() (Handle, error) {
	h, _, err := procLoadCursor.Call(0, uintptr(idcArrow))
	if h == 0 {
		return 0, &OpError{Op: "LoadCursorW", Err: err}
	}
	return Handle(h), nil
}

func (System) SetCursor(cursor Handle) Handle {
	prev, _, _ := procSetCursor.Call(uintptr(cursor))
	return Handle(prev)
}

func (System) GetCursorPos() (Point, error) {
	var pt Point
	ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ret == 0 {
		return Point{}, &OpError{Op: "GetCursorPos", Err: err}
	}
	return pt, nil
}

func (System) SetCursorPos(x, y int32) error {
	ret, _, err := procSetCursorPos.Call(uintptr(x), uintptr(y))
	if ret == 0 {
		return &OpError{Op: "SetCursorPos", Err: err}
	}
	return nil
}

func (System) ShowCursor(show bool) int32 {
	var arg uintptr
	if show {
		arg = 1
	}
	count, _, _ := procShowCursor.Call(arg)
	return int32(count)
}

func (System) ClipCursor(r Rect) error {
	ret, _, err := procClipCursor.Call(uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return &OpError{Op: "ClipCursor", Err: err}
	}
	return nil
}

func (System) GetClipCursor() (Rect, error) {
	var r Rect
	ret, _, err := procGetClipCursor.Call(uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return Rect{}, &OpError{Op: "GetClipCursor", Err: err}
	}
	return r, nil
}

func (System) CountRegisteredDevices() (uint32, error) {
	var count uint32
	ret, _, err := procGetRegisteredRawInputDevices.Call(
		0,
		uintptr(unsafe.Pointer(&count)),
		uintptr(rawDeviceSize),
	)
	if uint32(ret) == invalidDeviceCount {
		return 0, &OpError{Op: "GetRegisteredRawInputDevices", Err: err}
	}
	return count, nil
}

func (System) FetchRegisteredDevices(buf []RawInputDevice) (uint32, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	count := uint32(len(buf))
	ret, _, err := procGetRegisteredRawInputDevices.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&count)),
		uintptr(rawDeviceSize),
	)
	if uint32(ret) == invalidDeviceCount {
		return 0, &OpError{Op: "GetRegisteredRawInputDevices", Err: err}
	}
	return uint32(ret), nil
}

func (System) RegisterDevices(devices []RawInputDevice) error {
	if len(devices) == 0 {
		return nil
	}
	ret, _, err := procRegisterRawInputDevices.Call(
		uintptr(unsafe.Pointer(&devices[0])),
		uintptr(uint32(len(devices))),
		uintptr(rawDeviceSize),
	)
	if ret == 0 {
		return &OpError{Op: "RegisterRawInputDevices", Err: err}
	}
	return nil
}

func (System) CurrentThreadID() uint32 {
	return windows.GetCurrentThreadId()
}

type threadHandle struct {
	h windows.Handle
}

func (t *threadHandle) Close() error {
	return windows.CloseHandle(t.h)
}

func (System) OpenThread(tid uint32) (ThreadHandle, error) {
	h, err := windows.OpenThread(windows.THREAD_QUERY_LIMITED_INFORMATION, false, tid)
	if err != nil {
		return nil, &OpError{Op: "OpenThread", Err: err}
	}
	return &threadHandle{h: h}, nil
}

func (System) AttachThreadInput(from, to uint32, attach bool) error {
	var arg uintptr
	if attach {
		arg = 1
	}
	ret, _, err := procAttachThreadInput.Call(uintptr(from), uintptr(to), arg)
	if ret == 0 {
		return &OpError{Op: "AttachThreadInput", Err: err}
	}
	return nil
}

func (System) IsWindow(h Handle) bool {
	ret, _, _ := procIsWindow.Call(uintptr(h))
	return ret != 0
}

func (System) GetWindowRect(h Handle) (Rect, error) {
	var r Rect
	ret, _, err := procGetWindowRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return Rect{}, &OpError{Op: "GetWindowRect", Err: err}
	}
	return r, nil
}

func (System) AsyncKeyDown(vk uint32) bool {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return uint16(state)&0x8000 != 0
}
