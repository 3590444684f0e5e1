// Package dispatch models the host's scheduling turn for asynchronous root
// completion. The propagation core itself never requires it: a root may
// call its done function synchronously. Roots that defer completion queue
// the work here, and the host (or a test harness) decides when queued
// callbacks actually run.
package dispatch

import "sync"

var (
	dispatchMu   sync.RWMutex
	dispatchFunc func(callback func())
)

// Register sets the function used to schedule callbacks on a later
// scheduling turn. It returns the previously registered function so callers
// that install a temporary scheduler (test harnesses) can restore it.
// Pass nil to clear.
func Register(fn func(callback func())) (prev func(callback func())) {
	dispatchMu.Lock()
	prev = dispatchFunc
	dispatchFunc = fn
	dispatchMu.Unlock()
	return prev
}

// Later schedules a callback for a later scheduling turn. It returns false
// if no scheduler is registered or the callback is nil; callers are
// expected to fall back to running the callback synchronously.
func Later(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	fn(callback)
	return true
}
