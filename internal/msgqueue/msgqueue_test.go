package msgqueue

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulucc/hadesmem/internal/suppress"
	"github.com/hulucc/hadesmem/internal/winapi"
	"github.com/hulucc/hadesmem/internal/winapi/winapitest"
)

func newTestQueue(f *winapitest.Fake) *Queue {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(f, &suppress.Flags{}, log)
}

func TestQueue_DrainFIFO(t *testing.T) {
	f := winapitest.New()
	q := newTestQueue(f)

	var got []uint32
	q.RegisterConsumer(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr) {
		got = append(got, msg)
	})

	require.NoError(t, q.Enqueue(1, 10, 0, 0))
	require.NoError(t, q.Enqueue(1, 20, 0, 0))
	require.NoError(t, q.Enqueue(1, 30, 0, 0))
	assert.Equal(t, 3, q.Len())

	q.Drain()

	assert.Equal(t, []uint32{10, 20, 30}, got)
	assert.Zero(t, q.Len(), "drain leaves the queue empty")
}

func TestQueue_ConsumerMayEnqueueDuringDrain(t *testing.T) {
	f := winapitest.New()
	q := newTestQueue(f)

	var got []uint32
	q.RegisterConsumer(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr) {
		got = append(got, msg)
		if msg == 1 {
			require.NoError(t, q.Enqueue(1, 2, 0, 0))
		}
	})

	require.NoError(t, q.Enqueue(1, 1, 0, 0))
	q.Drain()

	assert.Equal(t, []uint32{1, 2}, got, "nested enqueue dispatched in the same drain")
	assert.Zero(t, q.Len())
}

func TestQueue_OpenThreadFailureStillQueues(t *testing.T) {
	f := winapitest.New()
	f.TID = 5
	f.OpenThreadErrs = map[uint32]error{5: errors.New("thread exited")}
	q := newTestQueue(f)

	err := q.Enqueue(1, 10, 0, 0)
	var opErr *winapi.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "OpenThread", opErr.Op)
	assert.Equal(t, 1, q.Len(), "event queued despite the open failure")
}

func TestQueue_AttachSwitchesTargetLazily(t *testing.T) {
	f := winapitest.New()
	q := newTestQueue(f)
	q.RegisterConsumer(func(winapi.Handle, uint32, uintptr, uintptr) {})

	// Events originating on threads 2, 2, 3, then the drainer's own thread.
	f.TID = 2
	require.NoError(t, q.Enqueue(1, 1, 0, 0))
	require.NoError(t, q.Enqueue(1, 2, 0, 0))
	f.TID = 3
	require.NoError(t, q.Enqueue(1, 3, 0, 0))
	f.TID = 1
	require.NoError(t, q.Enqueue(1, 4, 0, 0))

	q.Drain()

	want := []winapitest.AttachCall{
		{From: 1, To: 2, Attach: true},
		{From: 1, To: 2, Attach: false},
		{From: 1, To: 3, Attach: true},
	}
	assert.Equal(t, want, f.AttachCalls, "re-attach skipped for same target, switched with detach first")

	q.Detach()
	assert.Equal(t, winapitest.AttachCall{From: 1, To: 3, Attach: false}, f.AttachCalls[len(f.AttachCalls)-1])
}

func TestQueue_AttachFailureDoesNotAbortDrain(t *testing.T) {
	f := winapitest.New()
	f.AttachErrs = map[uint32]error{2: errors.New("denied")}
	q := newTestQueue(f)

	var got []uint32
	q.RegisterConsumer(func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr) {
		got = append(got, msg)
	})

	f.TID = 2
	require.NoError(t, q.Enqueue(1, 1, 0, 0))
	f.TID = 3
	require.NoError(t, q.Enqueue(1, 2, 0, 0))
	f.TID = 1

	q.Drain()

	assert.Equal(t, []uint32{1, 2}, got, "both events dispatched")
	assert.Equal(t, uint64(1), q.Stats().AttachErrors)
}

func TestQueue_ClosesEventThreadHandles(t *testing.T) {
	f := winapitest.New()
	f.TID = 4
	q := newTestQueue(f)

	require.NoError(t, q.Enqueue(1, 1, 0, 0))
	require.Len(t, f.OpenedThreads, 1)

	f.TID = 1
	q.Drain()
	// First opened handle belongs to the event; the attach cache may hold
	// its own.
	assert.True(t, f.OpenedThreads[0].Closed())
}

func TestQueue_Stats(t *testing.T) {
	f := winapitest.New()
	q := newTestQueue(f)
	q.RegisterConsumer(func(winapi.Handle, uint32, uintptr, uintptr) {})

	require.NoError(t, q.Enqueue(1, 1, 0, 0))
	require.NoError(t, q.Enqueue(1, 2, 0, 0))
	q.Drain()

	s := q.Stats()
	assert.Equal(t, uint64(2), s.Enqueued)
	assert.Equal(t, uint64(2), s.Dispatched)
	assert.Zero(t, s.AttachErrors)
}

func TestQueue_UnregisteredConsumerNotInvoked(t *testing.T) {
	f := winapitest.New()
	q := newTestQueue(f)

	calls := 0
	h := q.RegisterConsumer(func(winapi.Handle, uint32, uintptr, uintptr) { calls++ })
	q.UnregisterConsumer(h)

	require.NoError(t, q.Enqueue(1, 1, 0, 0))
	q.Drain()
	assert.Zero(t, calls)
}
