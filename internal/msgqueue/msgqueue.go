// Package msgqueue buffers intercepted window messages between the
// producer threads that own the hooked windows and the single consumer
// thread that drains once per render tick.
package msgqueue

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hulucc/hadesmem/internal/callback"
	"github.com/hulucc/hadesmem/internal/suppress"
	"github.com/hulucc/hadesmem/internal/winapi"
)

// Event is one captured window message. The queue owns the thread handle
// from enqueue until the event is dispatched.
type Event struct {
	Hwnd     winapi.Handle
	Msg      uint32
	WParam   uintptr
	LParam   uintptr
	ThreadID uint32

	thread winapi.ThreadHandle
}

// Consumer receives dispatched events during Drain.
type Consumer func(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr)

// Stats counts queue activity for diagnostics.
type Stats struct {
	Enqueued     uint64
	Dispatched   uint64
	AttachErrors uint64
}

// Queue is the deferred message queue. Enqueue may be called from any
// thread. Drain must be called from exactly one designated thread, once per
// tick; consumers run outside the queue lock, so a consumer may itself
// enqueue without deadlocking.
type Queue struct {
	log     *slog.Logger
	threads winapi.ThreadAPI
	flags   *suppress.Flags

	consumers callback.Registry[Consumer]

	mu     sync.Mutex
	events []Event

	// Thread-input attachment cache for the draining thread. The
	// attachment is a scarce per-thread resource with at most one target;
	// only the single drainer touches these fields.
	attachedTID    uint32
	attachedThread winapi.ThreadHandle

	enqueued     atomic.Uint64
	dispatched   atomic.Uint64
	attachErrors atomic.Uint64
}

func New(threads winapi.ThreadAPI, flags *suppress.Flags, log *slog.Logger) *Queue {
	return &Queue{log: log, threads: threads, flags: flags}
}

// RegisterConsumer adds a drain consumer and returns its handle.
func (q *Queue) RegisterConsumer(fn Consumer) callback.Handle {
	return q.consumers.Register(fn)
}

// UnregisterConsumer removes a drain consumer.
func (q *Queue) UnregisterConsumer(h callback.Handle) {
	q.consumers.Unregister(h)
}

// Enqueue captures a message from the calling thread. A handle to the
// calling thread is opened so Drain can attach to its input state later;
// failure to open it is returned to the caller but the event is still
// queued.
func (q *Queue) Enqueue(hwnd winapi.Handle, msg uint32, wparam, lparam uintptr) error {
	tid := q.threads.CurrentThreadID()
	thread, err := q.threads.OpenThread(tid)

	ev := Event{
		Hwnd:     hwnd,
		Msg:      msg,
		WParam:   wparam,
		LParam:   lparam,
		ThreadID: tid,
		thread:   thread,
	}

	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
	q.enqueued.Add(1)

	if err != nil {
		return &winapi.OpError{Op: "OpenThread", Err: err}
	}
	return nil
}

// Len reports the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Drain dispatches every pending event in FIFO order, including events
// enqueued by consumers during this drain, and leaves the queue empty.
// Before each dispatch the draining thread's input state is attached to the
// event's origin thread; attach failures are logged and the drain
// continues.
func (q *Queue) Drain() {
	for {
		q.mu.Lock()
		if len(q.events) == 0 {
			q.mu.Unlock()
			return
		}
		ev := q.events[0]
		q.events = q.events[1:]
		q.mu.Unlock()

		q.dispatch(ev)
	}
}

func (q *Queue) dispatch(ev Event) {
	// Consumers drive the overlay UI, which sets the cursor and reads its
	// position; keep those hook points suppressed for the duration.
	setTok := q.flags.Acquire(suppress.SetCursor)
	defer setTok.Release()
	posTok := q.flags.Acquire(suppress.GetCursorPos)
	defer posTok.Release()

	if err := q.attach(ev.ThreadID); err != nil {
		q.attachErrors.Add(1)
		q.log.Warn("attach thread input", "tid", ev.ThreadID, "err", err)
	}

	for _, fn := range q.consumers.Snapshot() {
		fn(ev.Hwnd, ev.Msg, ev.WParam, ev.LParam)
	}
	q.dispatched.Add(1)

	if ev.thread != nil {
		_ = ev.thread.Close()
	}
}

// attach lazily re-points the draining thread's input attachment at tid.
// Attaching to itself or to the already-attached target is a no-op;
// switching targets detaches the previous one first.
func (q *Queue) attach(tid uint32) error {
	current := q.threads.CurrentThreadID()
	if tid == current || q.attachedTID == tid {
		return nil
	}

	if q.attachedTID != 0 {
		if err := q.threads.AttachThreadInput(current, q.attachedTID, false); err != nil {
			return err
		}
		q.attachedTID = 0
		if q.attachedThread != nil {
			_ = q.attachedThread.Close()
			q.attachedThread = nil
		}
	}

	q.log.Debug("attaching thread input", "tid", tid)
	if err := q.threads.AttachThreadInput(current, tid, true); err != nil {
		return err
	}
	q.attachedTID = tid

	thread, err := q.threads.OpenThread(tid)
	if err != nil {
		return &winapi.OpError{Op: "OpenThread", Err: err}
	}
	q.attachedThread = thread
	return nil
}

// Detach drops the current thread-input attachment, if any. Called from the
// draining thread during teardown.
func (q *Queue) Detach() {
	if q.attachedTID == 0 {
		return
	}
	current := q.threads.CurrentThreadID()
	if err := q.threads.AttachThreadInput(current, q.attachedTID, false); err != nil {
		q.log.Warn("detach thread input", "tid", q.attachedTID, "err", err)
	}
	q.attachedTID = 0
	if q.attachedThread != nil {
		_ = q.attachedThread.Close()
		q.attachedThread = nil
	}
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued:     q.enqueued.Load(),
		Dispatched:   q.dispatched.Load(),
		AttachErrors: q.attachErrors.Load(),
	}
}
