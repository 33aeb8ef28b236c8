//go:build !windows

package winapi

// System is the stub implementation for platforms without the native input
// APIs. Every operation fails with ErrUnsupported; queries return zero
// values.
type System struct{}

var _ CursorAPI = System{}
var _ RawInputAPI = System{}
var _ ThreadAPI = System{}
var _ WindowAPI = System{}
var _ KeyAPI = System{}

func (System) LoadArrowCursor() (Handle, error) { return 0, ErrUnsupported }

func (System) SetCursor(cursor Handle) Handle { return 0 }

func (System) GetCursorPos() (Point, error) { return Point{}, ErrUnsupported }

func (System) SetCursorPos(x, y int32) error { return ErrUnsupported }

func (System) ShowCursor(show bool) int32 { return 0 }

func (System) ClipCursor(r Rect) error { return ErrUnsupported }

func (System) GetClipCursor() (Rect, error) { return Rect{}, ErrUnsupported }

func (System) CountRegisteredDevices() (uint32, error) { return 0, ErrUnsupported }

func (System) FetchRegisteredDevices(buf []RawInputDevice) (uint32, error) {
	return 0, ErrUnsupported
}

func (System) RegisterDevices(devices []RawInputDevice) error { return ErrUnsupported }

func (System) CurrentThreadID() uint32 { return 0 }

func (System) OpenThread(tid uint32) (ThreadHandle, error) { return nil, ErrUnsupported }

func (System) AttachThreadInput(from, to uint32, attach bool) error { return ErrUnsupported }

func (System) IsWindow(h Handle) bool { return false }

func (System) GetWindowRect(h Handle) (Rect, error) { return Rect{}, ErrUnsupported }

func (System) AsyncKeyDown(vk uint32) bool { return false }
