package diag

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulucc/hadesmem/internal/arbiter"
	"github.com/hulucc/hadesmem/internal/clipregion"
	"github.com/hulucc/hadesmem/internal/cursorstate"
	"github.com/hulucc/hadesmem/internal/msgqueue"
	"github.com/hulucc/hadesmem/internal/rawdevice"
	"github.com/hulucc/hadesmem/internal/suppress"
	"github.com/hulucc/hadesmem/internal/winapi/winapitest"
)

func newTestServer(t *testing.T) (*Server, *arbiter.Arbiter) {
	t.Helper()
	f := winapitest.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	flags := &suppress.Flags{}
	arb := arbiter.New(
		cursorstate.New(f, flags, log),
		clipregion.New(f, f, f, flags, log),
		rawdevice.New(f, f, flags, log),
		msgqueue.New(f, flags, log),
		f, flags, arbiter.Options{}, log,
	)
	return NewServer(arb, log), arb
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestServer_Status(t *testing.T) {
	s, arb := newTestServer(t)
	require.NoError(t, arb.SetVisible(true, false))
	require.NoError(t, arb.Queue().Enqueue(1, 0x0200, 0, 0))

	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Visible)
	assert.Equal(t, 1, got.QueueLen)
	assert.Equal(t, uint64(1), got.Enqueued)
	assert.Zero(t, got.Dispatched)
}

func TestServer_ToggleRequiresPost(t *testing.T) {
	s, arb := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleToggle(rec, httptest.NewRequest(http.MethodGet, "/api/toggle", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, arb.Visible())
}

func TestServer_ToggleFlipsVisibility(t *testing.T) {
	s, arb := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleToggle(rec, httptest.NewRequest(http.MethodPost, "/api/toggle", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, arb.Visible())
	assert.JSONEq(t, `{"visible":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.handleToggle(rec, httptest.NewRequest(http.MethodPost, "/api/toggle", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, arb.Visible())
}

func TestServer_RecoverMiddleware(t *testing.T) {
	s, _ := newTestServer(t)

	h := s.recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_VisibilityChangeQueuesEvent(t *testing.T) {
	s, arb := newTestServer(t)

	require.NoError(t, arb.SetVisible(true, false))

	select {
	case ev := <-s.ws.events:
		assert.Equal(t, event{Type: "visibility", Visible: true}, ev)
	default:
		t.Fatal("no event queued for the visibility change")
	}
}

func TestServer_WebSocketReceivesVisibilityEvents(t *testing.T) {
	s, arb := newTestServer(t)
	go s.ws.run()

	srv := httptest.NewServer(http.HandlerFunc(s.ws.handleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The client registers asynchronously after the upgrade.
	require.Eventually(t, func() bool {
		s.ws.clientsMu.RLock()
		defer s.ws.clientsMu.RUnlock()
		return len(s.ws.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, arb.SetVisible(true, false))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, event{Type: "visibility", Visible: true}, ev)
}
