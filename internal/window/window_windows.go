//go:build windows

package window

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/hulucc/hadesmem/internal/callback"
	"github.com/hulucc/hadesmem/internal/winapi"
)

var (
	user32                         = windows.NewLazySystemDLL("user32.dll")
	procRegisterClassEx            = user32.NewProc("RegisterClassExW")
	procCreateWindowEx             = user32.NewProc("CreateWindowExW")
	procDestroyWindow              = user32.NewProc("DestroyWindow")
	procDefWindowProc              = user32.NewProc("DefWindowProcW")
	procPeekMessage                = user32.NewProc("PeekMessageW")
	procTranslateMessage           = user32.NewProc("TranslateMessage")
	procDispatchMessage            = user32.NewProc("DispatchMessageW")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	kernel32                       = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandle            = kernel32.NewProc("GetModuleHandleW")
)

const (
	wsVisible       = 0x10000000
	wsExLayered     = 0x00080000
	wsExTransparent = 0x00000020
	lwaAlpha        = 0x00000002
	pmRemove        = 1
)

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     syscall.Handle
	HIcon         syscall.Handle
	HCursor       syscall.Handle
	HbrBackground syscall.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       syscall.Handle
}

type msg struct {
	Hwnd    syscall.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      winapi.Point
}

// Overlay is a 1x1 layered transparent window that receives the input the
// raw-input manager redirects and whose wndproc feeds the dispatcher.
type Overlay struct {
	log        *slog.Logger
	dispatcher Dispatcher

	hwnd    atomic.Uintptr
	running atomic.Bool
}

var _ Provider = (*Overlay)(nil)

func NewOverlay(log *slog.Logger) *Overlay {
	return &Overlay{log: log}
}

func (o *Overlay) CurrentWindow() winapi.Handle {
	return winapi.Handle(o.hwnd.Load())
}

func (o *Overlay) RegisterOnWndProcMsg(cb MessageCallback) callback.Handle {
	return o.dispatcher.Register(cb)
}

func (o *Overlay) UnregisterOnWndProcMsg(h callback.Handle) {
	o.dispatcher.Unregister(h)
}

// Start registers the window class and creates the overlay window. It must
// be called from the thread that will run the message pump.
func (o *Overlay) Start() error {
	className, err := syscall.UTF16PtrFromString("CerberusOverlay")
	if err != nil {
		return err
	}

	hInstance, _, _ := procGetModuleHandle.Call(0)
	wc := wndClassEx{
		CbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		LpfnWndProc:   syscall.NewCallback(o.wndProc),
		HInstance:     syscall.Handle(hInstance),
		LpszClassName: className,
	}
	if ret, _, err := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc))); ret == 0 {
		return fmt.Errorf("RegisterClassEx: %v", err)
	}

	hwnd, _, err := procCreateWindowEx.Call(
		wsExLayered|wsExTransparent,
		uintptr(unsafe.Pointer(className)),
		0,
		wsVisible,
		0, 0, 1, 1,
		0, 0, hInstance, 0,
	)
	if hwnd == 0 {
		return fmt.Errorf("CreateWindowEx: %v", err)
	}
	o.hwnd.Store(hwnd)

	procSetLayeredWindowAttributes.Call(hwnd, 0, 1, lwaAlpha)

	o.running.Store(true)
	o.log.Debug("overlay window created", "hwnd", fmt.Sprintf("%#x", hwnd))
	return nil
}

// Run pumps window messages on the calling thread until Close, invoking
// onTick once per pump iteration. onTick is where the render loop drains
// the deferred message queue.
func (o *Overlay) Run(onTick func()) {
	var m msg
	for o.running.Load() {
		ret, _, _ := procPeekMessage.Call(
			uintptr(unsafe.Pointer(&m)),
			0, 0, 0, pmRemove,
		)
		if int32(ret) != 0 {
			procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
			procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
		} else {
			time.Sleep(10 * time.Millisecond)
		}
		if onTick != nil {
			onTick()
		}
	}
}

// Close stops the pump and destroys the window.
func (o *Overlay) Close() {
	if !o.running.CompareAndSwap(true, false) {
		return
	}
	if hwnd := o.hwnd.Swap(0); hwnd != 0 {
		procDestroyWindow.Call(hwnd)
	}
}

func (o *Overlay) wndProc(hwnd syscall.Handle, m uint32, wparam, lparam uintptr) uintptr {
	if o.dispatcher.Dispatch(winapi.Handle(hwnd), m, wparam, lparam) {
		return 0
	}
	ret, _, _ := procDefWindowProc.Call(uintptr(hwnd), uintptr(m), wparam, lparam)
	return ret
}
