// Cerberus overlay host.
// Creates the overlay window, wires the input arbitration layer to it, and
// hands control of input and drawing between the host and the overlay.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/hulucc/hadesmem/internal/arbiter"
	"github.com/hulucc/hadesmem/internal/clipregion"
	"github.com/hulucc/hadesmem/internal/config"
	"github.com/hulucc/hadesmem/internal/cursorstate"
	"github.com/hulucc/hadesmem/internal/diag"
	"github.com/hulucc/hadesmem/internal/logging"
	"github.com/hulucc/hadesmem/internal/msgqueue"
	"github.com/hulucc/hadesmem/internal/osutils"
	"github.com/hulucc/hadesmem/internal/rawdevice"
	"github.com/hulucc/hadesmem/internal/suppress"
	"github.com/hulucc/hadesmem/internal/tray"
	"github.com/hulucc/hadesmem/internal/winapi"
	"github.com/hulucc/hadesmem/internal/window"
)

var (
	version    = "0.1.0"
	configPath = flag.String("config", "", "Path to config file")
	diagFlag   = flag.Bool("diag", false, "Enable the diagnostics server")
	showVer    = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("cerberus version %s\n", version)
		return
	}

	cfgMgr, err := config.NewManager(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfgMgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg := cfgMgr.Get()

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	toggleKey, toggleMod, err := cfg.ToggleKeys()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	if !osutils.IsAdmin() {
		log.Warn("not running elevated; redirecting input of elevated hosts will fail")
	}

	sys := winapi.System{}
	flags := &suppress.Flags{}
	overlay := window.NewOverlay(log)

	cursor := cursorstate.New(sys, flags, log)
	clip := clipregion.New(sys, sys, overlay, flags, log)
	raw := rawdevice.New(sys, overlay, flags, log)
	queue := msgqueue.New(sys, flags, log)

	arb := arbiter.New(cursor, clip, raw, queue, sys, flags,
		arbiter.Options{ToggleKey: toggleKey, ToggleModifier: toggleMod}, log)
	overlay.RegisterOnWndProcMsg(arb.OnWndProcMsg)

	if *diagFlag || cfg.Diagnostics.Enabled {
		srv := diag.NewServer(arb, log)
		go func() {
			if err := srv.Start(cfg.Diagnostics.Port); err != nil {
				log.Error("diagnostics server", "err", err)
			}
		}()
	}

	var tr *tray.Tray
	if cfg.Tray {
		tr = tray.New("Cerberus overlay", func() {
			if err := arb.Toggle(); err != nil {
				log.Error("toggle overlay", "err", err)
			}
		}, func() {
			overlay.Close()
		})
		arb.RegisterOnVisibilityChange(tr.SetVisible)
		go tr.Run()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		overlay.Close()
	}()

	// The overlay window, its message pump, and the per-tick drain all
	// belong to this one thread.
	runtime.LockOSThread()
	if err := overlay.Start(); err != nil {
		log.Error("overlay window", "err", err)
		os.Exit(1)
	}
	log.Info("overlay running",
		"toggle", fmt.Sprintf("%s+%s", cfg.Toggle.Modifier, cfg.Toggle.Key))

	overlay.Run(queue.Drain)

	arb.Shutdown()
	if tr != nil {
		tr.Quit()
	}
}
