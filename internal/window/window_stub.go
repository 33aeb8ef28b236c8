//go:build !windows

package window

import (
	"log/slog"

	"github.com/hulucc/hadesmem/internal/callback"
	"github.com/hulucc/hadesmem/internal/winapi"
)

// Overlay is the stub overlay window for platforms without native windows.
type Overlay struct {
	log        *slog.Logger
	dispatcher Dispatcher
}

var _ Provider = (*Overlay)(nil)

func NewOverlay(log *slog.Logger) *Overlay {
	return &Overlay{log: log}
}

func (o *Overlay) CurrentWindow() winapi.Handle { return 0 }

func (o *Overlay) RegisterOnWndProcMsg(cb MessageCallback) callback.Handle {
	return o.dispatcher.Register(cb)
}

func (o *Overlay) UnregisterOnWndProcMsg(h callback.Handle) {
	o.dispatcher.Unregister(h)
}

func (o *Overlay) Start() error { return winapi.ErrUnsupported }

func (o *Overlay) Run(onTick func()) {}

func (o *Overlay) Close() {}
