package refgame

import "sync/atomic"

// AtomicAbortDispatch is a minimal playengine.AbortDispatch: a flag any
// goroutine can set to ask an in-progress Simulate call to stop at the next
// iteration boundary.
type AtomicAbortDispatch struct {
	abort atomic.Bool
}

func (a *AtomicAbortDispatch) ShouldAbort() bool { return a.abort.Load() }

func (a *AtomicAbortDispatch) Abort() { a.abort.Store(true) }

func (a *AtomicAbortDispatch) Reset() { a.abort.Store(false) }
