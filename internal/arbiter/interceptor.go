package arbiter

import (
	"github.com/hulucc/hadesmem/internal/winapi"
)

// OnWndProcMsg is invoked synchronously for every window message before the
// host's handler runs. Every message is captured into the deferred queue;
// the toggle chord flips visibility immediately and is swallowed; while the
// overlay is visible, keyboard, mouse, and raw-input messages are swallowed
// so the host never observes them.
func (a *Arbiter) OnWndProcMsg(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr, handled *bool) {
	if err := a.queue.Enqueue(hwnd, msg, wparam, lparam); err != nil {
		a.log.Warn("queue input message", "msg", msg, "err", err)
	}

	if a.isToggleChord(msg, wparam, lparam) {
		if err := a.Toggle(); err != nil {
			a.log.Error("toggle overlay", "err", err)
		}
		*handled = true
		return
	}

	if a.visible.Load() && isInputMessage(msg) {
		*handled = true
	}
}

// isToggleChord matches a non-repeated key-down of the toggle key with the
// toggle modifier held. Bit 30 of lparam carries the previous key state, so
// auto-repeat key-downs never re-toggle.
func (a *Arbiter) isToggleChord(msg uint32, wparam, lparam uintptr) bool {
	if msg != winapi.WM_KEYDOWN {
		return false
	}
	if (lparam>>30)&1 == 1 {
		return false
	}
	return uint32(wparam) == a.opts.ToggleKey && a.keys.AsyncKeyDown(a.opts.ToggleModifier)
}

func isInputMessage(msg uint32) bool {
	return msg == winapi.WM_INPUT ||
		(msg >= winapi.WM_KEYFIRST && msg <= winapi.WM_KEYLAST) ||
		(msg >= winapi.WM_MOUSEFIRST && msg <= winapi.WM_MOUSELAST)
}
