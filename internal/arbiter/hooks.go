package arbiter

import (
	"github.com/hulucc/hadesmem/internal/suppress"
	"github.com/hulucc/hadesmem/internal/winapi"
)

// Interception points. Each is invoked by the hook dispatch layer with the
// native call's arguments plus in/out handled and return-value slots; a
// point that leaves handled false passes the call through to the original
// OS behavior. Every point checks its suppression flag first so the
// arbiter's own corrective calls never re-enter arbitration.

// OnSetCursor intercepts the set-cursor primitive.
func (a *Arbiter) OnSetCursor(cursor winapi.Handle, handled *bool, retval *winapi.Handle) {
	if a.flags.Suppressed(suppress.SetCursor) {
		return
	}
	ok, prev := a.cursor.OnSetCursor(cursor, a.visible.Load())
	if ok {
		*retval = prev
		*handled = true
	}
}

// OnGetCursorPos intercepts the get-cursor-position primitive.
func (a *Arbiter) OnGetCursorPos(pt *winapi.Point, handled *bool) {
	if a.flags.Suppressed(suppress.GetCursorPos) || pt == nil {
		return
	}
	ok, saved := a.cursor.OnGetCursorPos(a.visible.Load())
	if ok {
		*pt = saved
		*handled = true
	}
}

// OnSetCursorPos intercepts the set-cursor-position primitive.
func (a *Arbiter) OnSetCursorPos(x, y int32, handled *bool) {
	if a.flags.Suppressed(suppress.SetCursorPos) {
		return
	}
	if a.cursor.OnSetCursorPos(x, y, a.visible.Load()) {
		*handled = true
	}
}

// OnShowCursor intercepts the show-cursor primitive.
func (a *Arbiter) OnShowCursor(show bool, handled *bool, retval *int32) {
	if a.flags.Suppressed(suppress.ShowCursor) {
		return
	}
	ok, count := a.cursor.OnShowCursor(show, a.visible.Load())
	if ok {
		*retval = count
		*handled = true
	}
}

// OnClipCursor intercepts the set-clip-region primitive.
func (a *Arbiter) OnClipCursor(r *winapi.Rect, handled *bool, retval *bool) {
	if a.flags.Suppressed(suppress.ClipCursor) || r == nil {
		return
	}
	ok, ret := a.clip.OnClipCursor(*r, a.visible.Load())
	if ok {
		*retval = ret
		*handled = true
	}
}

// OnGetClipCursor intercepts the get-clip-region primitive.
func (a *Arbiter) OnGetClipCursor(r *winapi.Rect, handled *bool, retval *bool) {
	if a.flags.Suppressed(suppress.GetClipCursor) || r == nil {
		return
	}
	ok, saved, ret := a.clip.OnGetClipCursor(a.visible.Load())
	if ok {
		*r = saved
		*retval = ret
		*handled = true
	}
}

// OnGetRawInputBuffer intercepts buffered raw-input reads.
func (a *Arbiter) OnGetRawInputBuffer(handled *bool, retval *uint32) {
	if a.flags.Suppressed(suppress.GetRawInputBuffer) {
		return
	}
	ok, ret := a.raw.OnGetRawInputBuffer(a.visible.Load())
	if ok {
		*retval = ret
		*handled = true
	}
}

// OnGetRawInputData intercepts per-event raw-input reads.
func (a *Arbiter) OnGetRawInputData(data []byte, handled *bool, retval *uint32) {
	if a.flags.Suppressed(suppress.GetRawInputData) {
		return
	}
	ok, ret := a.raw.OnGetRawInputData(data, a.visible.Load())
	if ok {
		*retval = ret
		*handled = true
	}
}

// OnRegisterRawInputDevices intercepts raw-input device registration.
func (a *Arbiter) OnRegisterRawInputDevices(devices []winapi.RawInputDevice, handled *bool, retval *bool) {
	if a.flags.Suppressed(suppress.RegisterRawInputDevices) || devices == nil {
		return
	}
	ok, ret := a.raw.OnRegisterRawInputDevices(devices, a.visible.Load())
	if ok {
		*retval = ret
		*handled = true
	}
}

// OnDirectInput intercepts the direct-input acquisition path.
func (a *Arbiter) OnDirectInput(handled *bool) {
	if a.flags.Suppressed(suppress.DirectInput) {
		return
	}
	if a.visible.Load() {
		*handled = true
	}
}
