package winapi

// CursorAPI covers the cursor and clip-region primitives.
type CursorAPI interface {
	// LoadArrowCursor returns the shared arrow cursor.
	LoadArrowCursor() (Handle, error)
	// SetCursor installs cursor and returns the previously installed one.
	SetCursor(cursor Handle) Handle
	GetCursorPos() (Point, error)
	SetCursorPos(x, y int32) error
	// ShowCursor adjusts the OS cursor visibility counter and returns its
	// new value.
	ShowCursor(show bool) int32
	ClipCursor(r Rect) error
	GetClipCursor() (Rect, error)
}

// RawInputAPI covers registered raw-input device enumeration and
// registration. Enumeration keeps the native two-call protocol visible so
// the caller can detect the set changing between calls.
type RawInputAPI interface {
	// CountRegisteredDevices performs the sizing call and returns the
	// number of registered devices.
	CountRegisteredDevices() (uint32, error)
	// FetchRegisteredDevices fills buf and returns the number of devices
	// written.
	FetchRegisteredDevices(buf []RawInputDevice) (uint32, error)
	RegisterDevices(devices []RawInputDevice) error
}

// ThreadHandle is an open handle to a thread.
type ThreadHandle interface {
	Close() error
}

// ThreadAPI covers thread identity and thread-input attachment.
type ThreadAPI interface {
	CurrentThreadID() uint32
	// OpenThread opens a limited-information handle to the thread.
	OpenThread(tid uint32) (ThreadHandle, error)
	// AttachThreadInput attaches (or detaches) the input state of from to
	// the input state of to.
	AttachThreadInput(from, to uint32, attach bool) error
}

// WindowAPI covers the window queries the clip-region manager needs.
type WindowAPI interface {
	IsWindow(h Handle) bool
	GetWindowRect(h Handle) (Rect, error)
}

// KeyAPI reports asynchronous key state, used for toggle-modifier detection.
type KeyAPI interface {
	AsyncKeyDown(vk uint32) bool
}
