package window

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hulucc/hadesmem/internal/winapi"
)

func TestDispatcher_InvokesCallbacksInOrder(t *testing.T) {
	var d Dispatcher
	var got []int

	d.Register(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr, handled *bool) {
		got = append(got, 1)
	})
	d.Register(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr, handled *bool) {
		got = append(got, 2)
	})

	handled := d.Dispatch(1, 0x0200, 0, 0)
	assert.False(t, handled)
	assert.Equal(t, []int{1, 2}, got)
}

func TestDispatcher_HandledFlagSharedAcrossCallbacks(t *testing.T) {
	var d Dispatcher
	var sawHandled bool

	d.Register(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr, handled *bool) {
		*handled = true
	})
	d.Register(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr, handled *bool) {
		sawHandled = *handled
	})

	assert.True(t, d.Dispatch(1, 0x0100, 0, 0))
	assert.True(t, sawHandled, "later callback observes the earlier decision")
}

func TestDispatcher_LaterCallbackMayClearHandled(t *testing.T) {
	var d Dispatcher

	d.Register(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr, handled *bool) {
		*handled = true
	})
	d.Register(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr, handled *bool) {
		*handled = false
	})

	assert.False(t, d.Dispatch(1, 0x0100, 0, 0))
}

func TestDispatcher_UnregisterStopsDelivery(t *testing.T) {
	var d Dispatcher
	calls := 0

	h := d.Register(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr, handled *bool) {
		calls++
	})
	d.Unregister(h)

	d.Dispatch(1, 0x0100, 0, 0)
	assert.Zero(t, calls)
}

func TestDispatcher_CallbackReceivesMessageArguments(t *testing.T) {
	var d Dispatcher

	d.Register(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr, handled *bool) {
		assert.Equal(t, winapi.Handle(0xAB), hwnd)
		assert.Equal(t, uint32(0x0100), msg)
		assert.Equal(t, uintptr(0x78), wparam)
		assert.Equal(t, uintptr(1<<30), lparam)
	})

	d.Dispatch(0xAB, 0x0100, 0x78, 1<<30)
}
