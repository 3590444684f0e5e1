package ripple

import (
	"sync"
	"sync/atomic"

	"github.com/go-drift/ripple/pkg/errors"
)

// Bits is a change mask produced by a change detector. Each set bit names
// an aspect of the value that differs between the old and new version.
type Bits uint32

// FullChange is the mask meaning "everything changed". It is what consumers
// see when a context has no change detector.
const FullChange Bits = ^Bits(0)

// ChangeDetector reduces an old/new value pair to the set of aspects that
// actually changed. A detector must be pure: same inputs, same mask.
type ChangeDetector[T any] func(oldValue, newValue T) Bits

// Slot selects one of the two committed value slots. Two slots exist so two
// unrelated consumer backends can each read their committed view without
// sharing a field; the commit step always writes both.
type Slot int

const (
	// Primary is the committed slot for the primary backend.
	Primary Slot = iota
	// Secondary is the committed slot for a secondary backend.
	Secondary
)

// Context is a shared value cell observed by every root mounted in its
// registry. Create one with [NewContext]; it then lives for the life of the
// process.
//
// A Context distinguishes the committed value (what the last completed
// propagation agreed on, read via [Context.Value]) from the pending value
// (the newest value any caller has published, read via [Context.Pending]).
// The two differ exactly while a propagation is in flight.
type Context[T any] struct {
	registry     *Registry
	defaultValue T
	detect       ChangeDetector[T]

	mu        sync.Mutex
	primary   T
	secondary T
	pending   T

	outstanding atomic.Int32
	ref         *contextRef[T]
}

// NewContext creates a context bound to a registry, with both committed
// slots and the pending value equal to defaultValue. The detector may be
// nil, in which case every publish reads as [FullChange]. A nil registry is
// treated as permanently empty: every publish commits synchronously.
func NewContext[T any](registry *Registry, defaultValue T, detect ChangeDetector[T]) *Context[T] {
	c := &Context[T]{
		registry:     registry,
		defaultValue: defaultValue,
		detect:       detect,
		primary:      defaultValue,
		secondary:    defaultValue,
		pending:      defaultValue,
	}
	// The untyped reference is built second and holds the cell by identity,
	// so two contexts never compare equal through their refs.
	c.ref = &contextRef[T]{cell: c}
	return c
}

// DefaultValue returns the value the context was created with.
func (c *Context[T]) DefaultValue() T {
	return c.defaultValue
}

// Value returns the committed value in the given slot. Both slots are
// written together by the commit step of a completed propagation, so they
// only ever hold equal values once any propagation has completed.
func (c *Context[T]) Value(slot Slot) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot == Secondary {
		return c.secondary
	}
	return c.primary
}

// Pending returns the newest published value. It is updated synchronously
// by [Context.Publish] before any root is dispatched, so a root mounting
// mid-propagation reads the latest requested value here, never a stale
// committed one.
func (c *Context[T]) Pending() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Outstanding reports the number of publishes whose barriers have not yet
// fired. A value that stays above zero across host scheduling turns means
// some dispatched root never called done, the one liveness hazard the
// barrier itself cannot recover from.
func (c *Context[T]) Outstanding() int {
	return int(c.outstanding.Load())
}

// Ref returns the untyped view of the context that roots receive in
// ApplyContextUpdate. The same Ref value is returned for the life of the
// context, so roots may use it as an identity key.
func (c *Context[T]) Ref() ContextRef {
	return c.ref
}

// Publish makes newValue the context's pending value immediately, then
// propagates it to every root mounted at the time of the call. When all of
// them have called done, both committed slots are set to newValue and
// onComplete (if non-nil) is invoked once with it.
//
// With no mounted roots the commit and the callback happen synchronously
// before Publish returns. With n roots, a barrier counts the n
// acknowledgements; roots may acknowledge on the dispatch stack or from a
// later turn, in any order and interleaving.
//
// Publishing while an earlier propagation is still outstanding is valid:
// the pending value is simply overwritten, and each in-flight barrier
// commits its own captured value when its own roots finish. Barriers do not
// coalesce and cannot be cancelled.
func (c *Context[T]) Publish(newValue T, onComplete func(T)) {
	c.mu.Lock()
	oldValue := c.pending
	c.pending = newValue
	c.mu.Unlock()

	roots := c.registry.roots()
	if len(roots) == 0 {
		c.commit(newValue)
		if onComplete != nil {
			onComplete(newValue)
		}
		return
	}

	// The root count is fixed before the first dispatch. A root that calls
	// done synchronously therefore cannot drive the counter to zero while
	// later roots are still waiting to be dispatched.
	c.outstanding.Add(1)
	b := newBarrier(len(roots), func() {
		c.commit(newValue)
		c.outstanding.Add(-1)
		if onComplete != nil {
			onComplete(newValue)
		}
	})

	var oldAny, newAny any = oldValue, newValue
	for _, root := range roots {
		c.dispatch(root, oldAny, newAny, b)
	}
}

// commit writes both committed slots. Only the completion step of a
// propagation (or the empty-registry fast path) calls this.
func (c *Context[T]) commit(v T) {
	c.mu.Lock()
	c.primary = v
	c.secondary = v
	c.mu.Unlock()
}

// dispatch delivers one update to one root. A panic on the root's dispatch
// stack is recovered and reported, and the root's acknowledgement is forced
// so the rest of the propagation still completes.
func (c *Context[T]) dispatch(root Root, oldValue, newValue any, b *barrier) {
	token := &rootToken{barrier: b}
	defer func() {
		if r := recover(); r != nil {
			errors.ReportPanic(&errors.PanicError{
				Op:         "ripple.dispatch",
				Value:      r,
				StackTrace: errors.CaptureStack(),
			})
			token.doneIfPending()
		}
	}()
	root.ApplyContextUpdate(c.ref, oldValue, newValue, token.done)
}

// ContextRef is the untyped view of a [Context] handed to roots. Refs are
// comparable; a root receiving updates for several contexts can key its
// bookkeeping on the ref value.
type ContextRef interface {
	// Pending returns the context's newest published value.
	Pending() any
	// ChangedBits runs the context's change detector over an old/new pair
	// as delivered to ApplyContextUpdate. Without a detector, or when the
	// values do not have the context's value type, it returns FullChange.
	ChangedBits(oldValue, newValue any) Bits
}

// contextRef adapts a typed cell to the untyped ContextRef contract.
type contextRef[T any] struct {
	cell *Context[T]
}

func (r *contextRef[T]) Pending() any {
	return r.cell.Pending()
}

func (r *contextRef[T]) ChangedBits(oldValue, newValue any) Bits {
	if r.cell.detect == nil {
		return FullChange
	}
	o, okOld := oldValue.(T)
	n, okNew := newValue.(T)
	if !okOld || !okNew {
		// A detector fed foreign values cannot produce a meaningful mask.
		// Degrade to a full change and leave a diagnostic.
		errors.Report(&errors.RippleError{
			Op:   "ripple.ChangedBits",
			Kind: errors.KindConfig,
			Err:  errors.ErrDetectorType,
		})
		return FullChange
	}
	return r.cell.detect(o, n)
}
