package winapi

import "errors"

var (
	// ErrUnsupported is returned by the stub implementation on platforms
	// without the native input APIs.
	ErrUnsupported = errors.New("native input APIs not supported on this platform")

	// ErrInvalidWindow marks a stale or never-valid window handle. Callers
	// treat it as non-fatal and skip the operation.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrBufferSizingRace marks the registered raw-input device set changing
	// between the sizing call and the fetch call.
	ErrBufferSizingRace = errors.New("raw input device set changed during enumeration")
)

// OpError records a failing OS operation together with the OS status it
// returned. It is the resource-acquisition failure of this layer: a thread
// handle open, a thread-input attach, or any state query/set going wrong.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }
