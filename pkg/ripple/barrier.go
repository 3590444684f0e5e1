package ripple

import (
	"sync/atomic"

	"github.com/go-drift/ripple/pkg/errors"
)

// barrier is the per-publish completion counter. It is created with the
// number of roots the publish was dispatched to and fires its completion
// action exactly when the last of them acknowledges. Barriers are never
// reused across publishes.
type barrier struct {
	remaining atomic.Int64
	complete  func()
}

func newBarrier(n int, complete func()) *barrier {
	b := &barrier{complete: complete}
	b.remaining.Store(int64(n))
	return b
}

// rootDone records one root acknowledgement. The decrement and the zero
// check are a single atomic step, so two roots completing on different
// goroutines cannot both observe the transition to zero.
func (b *barrier) rootDone() {
	if n := b.remaining.Add(-1); n == 0 {
		b.complete()
	}
}

// rootToken wraps a barrier for a single dispatched root. The Root contract
// requires exactly one done call per update; the token makes extra calls
// harmless (the barrier count is untouched) and reports them as a
// diagnostic rather than corrupting the count for the remaining roots.
type rootToken struct {
	barrier *barrier
	called  atomic.Bool
}

// done acknowledges the dispatch. Repeat calls are dropped and reported.
func (t *rootToken) done() {
	if t.called.Swap(true) {
		errors.Report(&errors.RippleError{
			Op:   "ripple.barrier",
			Kind: errors.KindBarrier,
			Err:  errors.ErrDoneTwice,
		})
		return
	}
	t.barrier.rootDone()
}

// doneIfPending acknowledges only if done was never called. Used by the
// publisher's panic recovery so a crashing root cannot stall the barrier.
func (t *rootToken) doneIfPending() {
	if !t.called.Swap(true) {
		t.barrier.rootDone()
	}
}
