// Package scope provides a reference implementation of [ripple.Root]: a
// consumer tree reduced to its dependency bookkeeping. A Scope tracks
// dependents with per-dependent interest masks, filters incoming updates
// through the context's change detector, and acknowledges each update once
// its interested dependents have been notified.
//
// Hosts with a real element tree implement ripple.Root themselves; Scope
// exists for tests, simulations, and hosts whose consumers are plain
// callbacks.
package scope

import (
	"sync"

	"github.com/go-drift/ripple/pkg/dispatch"
	"github.com/go-drift/ripple/pkg/ripple"
)

// Dependent is one registered consumer inside a Scope. It is notified when
// an update's changed bits intersect its interest mask.
type Dependent struct {
	scope    *Scope
	mask     ripple.Bits
	onChange func(ripple.Bits)
}

// Cancel removes the dependent from its scope. Updates already flushed may
// still have notified it; updates not yet flushed will skip it.
func (d *Dependent) Cancel() {
	d.scope.remove(d)
}

// Scope is a root whose consumers are callbacks with interest masks.
//
// Notification follows the snapshot-then-flush discipline: an incoming
// update marks interested dependents under the lock, and a flush drains the
// marked set outside it, so a dependent's callback may itself subscribe or
// cancel without deadlocking.
type Scope struct {
	mu          sync.Mutex
	dependents  []*Dependent
	member      map[*Dependent]struct{}
	pendingBits map[*Dependent]ripple.Bits
	pendingDone []func()
	flushQueued bool
	async       bool
}

// New creates a scope that notifies dependents and acknowledges updates
// synchronously, on the publisher's dispatch stack.
func New() *Scope {
	return &Scope{
		member:      make(map[*Dependent]struct{}),
		pendingBits: make(map[*Dependent]ripple.Bits),
	}
}

// NewAsync creates a scope that defers notification and acknowledgement to
// a later scheduling turn via the dispatch package. With no scheduler
// registered it degrades to synchronous behavior.
func NewAsync() *Scope {
	s := New()
	s.async = true
	return s
}

// Subscribe registers a callback interested in the given bits. A mask of
// [ripple.FullChange] subscribes to every update. The callback receives the
// union of changed bits accumulated since the previous flush.
func (s *Scope) Subscribe(mask ripple.Bits, onChange func(ripple.Bits)) *Dependent {
	d := &Dependent{scope: s, mask: mask, onChange: onChange}
	s.mu.Lock()
	s.dependents = append(s.dependents, d)
	s.member[d] = struct{}{}
	s.mu.Unlock()
	return d
}

// Len reports the number of registered dependents.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.member)
}

// ApplyContextUpdate implements [ripple.Root]. The update's changed bits
// are computed through the context's detector; dependents whose masks
// intersect them are marked for notification, and done is called after the
// flush that delivers those notifications.
func (s *Scope) ApplyContextUpdate(ctx ripple.ContextRef, oldValue, newValue any, done func()) {
	bits := ctx.ChangedBits(oldValue, newValue)

	s.mu.Lock()
	for _, d := range s.dependents {
		if _, ok := s.member[d]; !ok {
			continue
		}
		if d.mask&bits != 0 {
			s.pendingBits[d] |= bits
		}
	}
	s.pendingDone = append(s.pendingDone, done)
	if s.async {
		if s.flushQueued {
			s.mu.Unlock()
			return
		}
		s.flushQueued = true
		s.mu.Unlock()
		if !dispatch.Later(s.flush) {
			s.flush()
		}
		return
	}
	s.mu.Unlock()
	s.flush()
}

// flush drains marked dependents and pending acknowledgements until none
// remain. Callbacks run outside the lock and may re-enter the scope.
func (s *Scope) flush() {
	for {
		s.mu.Lock()
		if len(s.pendingBits) == 0 && len(s.pendingDone) == 0 {
			s.flushQueued = false
			s.mu.Unlock()
			return
		}
		var notify []*Dependent
		var masks []ripple.Bits
		for _, d := range s.dependents {
			bits, marked := s.pendingBits[d]
			if !marked {
				continue
			}
			if _, ok := s.member[d]; !ok {
				continue
			}
			notify = append(notify, d)
			masks = append(masks, bits)
		}
		clear(s.pendingBits)
		dones := s.pendingDone
		s.pendingDone = nil
		s.mu.Unlock()

		for i, d := range notify {
			d.onChange(masks[i])
		}
		for _, done := range dones {
			done()
		}
	}
}

// remove drops a dependent from membership. The dependents slice is
// compacted so long-lived scopes do not accumulate cancelled entries.
func (s *Scope) remove(d *Dependent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.member[d]; !ok {
		return
	}
	delete(s.member, d)
	delete(s.pendingBits, d)
	for i, dep := range s.dependents {
		if dep == d {
			s.dependents = append(s.dependents[:i], s.dependents[i+1:]...)
			break
		}
	}
}
