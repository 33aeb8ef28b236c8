// Package diag exposes a local HTTP diagnostics surface for the overlay:
// current arbitration state, queue counters, and a visibility toggle, plus
// a WebSocket feed of visibility changes.
package diag

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/hulucc/hadesmem/internal/arbiter"
)

// Server serves the diagnostics endpoints.
type Server struct {
	log *slog.Logger
	arb *arbiter.Arbiter
	ws  *wsManager
}

// NewServer creates a diagnostics server bound to arb.
func NewServer(arb *arbiter.Arbiter, log *slog.Logger) *Server {
	s := &Server{log: log, arb: arb}
	s.ws = newWSManager(log)
	arb.RegisterOnVisibilityChange(func(visible bool) {
		s.ws.broadcast(event{Type: "visibility", Visible: visible})
	})
	return s
}

// Start listens on 127.0.0.1:port and serves until the listener fails.
// Diagnostics are local-only; the server never binds a public interface.
func (s *Server) Start(port int) error {
	go s.ws.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/toggle", s.handleToggle)
	mux.HandleFunc("/ws", s.ws.handleWebSocket)

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return fmt.Errorf("diagnostics listen on %s: %w", addr, err)
	}
	s.log.Info("diagnostics server listening", "addr", addr)

	server := &http.Server{Handler: s.recoverMiddleware(mux)}
	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("diagnostics handler panic", "err", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

type statusResponse struct {
	Visible      bool   `json:"visible"`
	QueueLen     int    `json:"queue_len"`
	Enqueued     uint64 `json:"enqueued"`
	Dispatched   uint64 `json:"dispatched"`
	AttachErrors uint64 `json:"attach_errors"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.arb.Queue().Stats()
	resp := statusResponse{
		Visible:      s.arb.Visible(),
		QueueLen:     s.arb.Queue().Len(),
		Enqueued:     stats.Enqueued,
		Dispatched:   stats.Dispatched,
		AttachErrors: stats.AttachErrors,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.arb.Toggle(); err != nil {
		s.log.Error("toggle via diagnostics", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"visible": s.arb.Visible()})
}
