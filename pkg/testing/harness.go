// Package testing provides a deterministic harness for exercising value
// propagation without a real host scheduler. It owns the dispatch queue:
// callbacks that roots defer are held until the test pumps a turn, so tests
// control exactly when asynchronous acknowledgements land, and can prove
// that a propagation which never settles is stuck rather than slow.
package testing

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/ripple/pkg/dispatch"
)

// ErrSettleTimeout is returned when Settle exhausts its turn limit with
// work still queued. A propagation barrier that stays open after a clean
// settle points at a root that never acknowledged.
var ErrSettleTimeout = errors.New("Settle exceeded its turn limit: queued work did not drain")

// turnDuration is how far the fake clock advances per pumped turn,
// mirroring one frame at 60Hz.
const turnDuration = 16 * time.Millisecond

// Harness installs itself as the process dispatch scheduler and runs queued
// callbacks one scheduling turn at a time.
type Harness struct {
	mu    sync.Mutex
	queue []func()
	clock *FakeClock
	prev  func(func())
}

// NewHarness creates a harness and registers it as the dispatch scheduler.
// Call Cleanup() when done, or use NewHarnessWithT instead.
func NewHarness() *Harness {
	h := &Harness{clock: NewFakeClock()}
	h.prev = dispatch.Register(h.enqueue)
	return h
}

// NewHarnessWithT creates a harness that restores the previous scheduler
// via t.Cleanup(). This is the recommended constructor for tests.
func NewHarnessWithT(t *testing.T) *Harness {
	h := NewHarness()
	t.Cleanup(h.Cleanup)
	return h
}

// Cleanup restores the dispatch scheduler that was registered before the
// harness. Must be called if not using NewHarnessWithT.
func (h *Harness) Cleanup() {
	dispatch.Register(h.prev)
}

// Clock returns the harness's fake clock. It advances by one frame per
// pumped turn.
func (h *Harness) Clock() *FakeClock {
	return h.clock
}

func (h *Harness) enqueue(callback func()) {
	h.mu.Lock()
	h.queue = append(h.queue, callback)
	h.mu.Unlock()
}

// Pending reports the number of callbacks waiting for a turn.
func (h *Harness) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// Pump runs one scheduling turn: every callback queued before the call, in
// queue order. Callbacks queued during the turn wait for the next one.
// Returns the number of callbacks run.
func (h *Harness) Pump() int {
	h.mu.Lock()
	turn := h.queue
	h.queue = nil
	h.mu.Unlock()

	for _, callback := range turn {
		callback()
	}
	h.clock.Advance(turnDuration)
	return len(turn)
}

// Settle pumps turns until the queue drains or maxTurns is exhausted, in
// which case it returns ErrSettleTimeout.
func (h *Harness) Settle(maxTurns int) error {
	for i := 0; i < maxTurns; i++ {
		if h.Pending() == 0 {
			return nil
		}
		h.Pump()
	}
	if h.Pending() == 0 {
		return nil
	}
	return ErrSettleTimeout
}
