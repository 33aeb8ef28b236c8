package clipregion

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulucc/hadesmem/internal/suppress"
	"github.com/hulucc/hadesmem/internal/winapi"
	"github.com/hulucc/hadesmem/internal/winapi/winapitest"
)

func newTestManager(f *winapitest.Fake) *Manager {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(f, f, f, &suppress.Flags{}, log)
}

func TestManager_ActivateAppliesUnionOfHostAndOverlayRects(t *testing.T) {
	f := winapitest.New()
	f.ClipRect = winapi.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	f.Windows[f.OverlayWindow] = winapi.Rect{Left: 50, Top: 50, Right: 200, Bottom: 200}
	m := newTestManager(f)

	require.NoError(t, m.Activate())

	assert.Equal(t, winapi.Rect{Left: 0, Top: 0, Right: 200, Bottom: 200}, f.ClipRect,
		"expanded region covers both the saved clip and the overlay window")
}

func TestManager_DeactivateRestoresSavedRect(t *testing.T) {
	f := winapitest.New()
	host := winapi.Rect{Left: 10, Top: 20, Right: 300, Bottom: 400}
	f.ClipRect = host
	m := newTestManager(f)

	require.NoError(t, m.Activate())
	require.NoError(t, m.Deactivate())

	assert.Equal(t, host, f.ClipRect)
}

func TestManager_ReassertReappliesWithoutReSaving(t *testing.T) {
	f := winapitest.New()
	host := winapi.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	f.ClipRect = host
	f.Windows[f.OverlayWindow] = winapi.Rect{Left: 50, Top: 50, Right: 200, Bottom: 200}
	m := newTestManager(f)

	require.NoError(t, m.Activate())

	// The host resets the clip region behind arbitration's back.
	f.ClipRect = winapi.Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	require.NoError(t, m.Reassert())
	assert.Equal(t, winapi.Rect{Left: 0, Top: 0, Right: 200, Bottom: 200}, f.ClipRect)

	// The original saved rect, not the reset one, survives to deactivation.
	require.NoError(t, m.Deactivate())
	assert.Equal(t, host, f.ClipRect)
}

func TestManager_InvalidOverlayWindowLeavesClipUntouched(t *testing.T) {
	f := winapitest.New()
	f.OverlayWindow = 0xDEAD // not in f.Windows
	host := f.ClipRect
	m := newTestManager(f)

	require.NoError(t, m.Activate())

	assert.Equal(t, host, f.ClipRect)
	assert.Empty(t, f.ClipHistory, "no clip call issued")
}

func TestManager_OnClipCursorUpdatesSavedSlotWhileVisible(t *testing.T) {
	f := winapitest.New()
	m := newTestManager(f)

	require.NoError(t, m.Activate())
	applied := f.ClipRect

	hostReq := winapi.Rect{Left: 5, Top: 5, Right: 50, Bottom: 50}
	handled, ok := m.OnClipCursor(hostReq, true)
	assert.True(t, handled)
	assert.True(t, ok, "host observes success")
	assert.Equal(t, applied, f.ClipRect, "OS region untouched by swallowed call")

	// Deactivate applies the host's last request, not the activation-time
	// snapshot.
	require.NoError(t, m.Deactivate())
	assert.Equal(t, hostReq, f.ClipRect)
}

func TestManager_OnClipCursorPassesThroughWhileHidden(t *testing.T) {
	f := winapitest.New()
	m := newTestManager(f)

	handled, _ := m.OnClipCursor(winapi.Rect{Right: 1, Bottom: 1}, false)
	assert.False(t, handled)
}

func TestManager_OnGetClipCursorServesSavedRectWhileVisible(t *testing.T) {
	f := winapitest.New()
	host := winapi.Rect{Left: 1, Top: 2, Right: 3, Bottom: 4}
	f.ClipRect = host
	m := newTestManager(f)

	require.NoError(t, m.Activate())

	handled, r, ok := m.OnGetClipCursor(true)
	assert.True(t, handled)
	assert.True(t, ok)
	assert.Equal(t, host, r, "host sees its own region, not the expanded one")

	handled, _, _ = m.OnGetClipCursor(false)
	assert.False(t, handled)
}
