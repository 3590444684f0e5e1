package ripple

import "sync"

// Root is the consumer-facing contract a host framework implements for each
// of its independently scheduled trees.
//
// ApplyContextUpdate is called once per mounted root per publish. The root
// must make newValue observable to its own consumers (consistent with the
// context's change detector) and then call done exactly once, either
// synchronously on the same call stack or from a later scheduling turn.
// A root that never calls done leaves that publish's barrier permanently
// open; see [Context.Outstanding] for detecting this from the host side.
type Root interface {
	ApplyContextUpdate(ctx ContextRef, oldValue, newValue any, done func())
}

// mountEntry is a node in the registry's intrusive list. Entries are owned
// by the registry for the root's mount lifetime.
type mountEntry struct {
	root Root
	next *mountEntry
}

// Registry tracks the roots currently eligible to receive published values.
// It starts empty; membership is governed solely by Mount and Unmount.
//
// A Registry is safe for concurrent use. Each publish takes one consistent
// snapshot of the membership, so a root mounted mid-propagation is not
// retroactively added to an in-flight barrier (it observes the newest value
// through [Context.Pending] instead).
type Registry struct {
	mu    sync.Mutex
	first *mountEntry
	count int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Mount adds a root to the registry. Roots are dispatched in mount order.
// Mounting the same root twice is a no-op.
func (r *Registry) Mount(root Root) {
	if root == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var tail *mountEntry
	for e := r.first; e != nil; e = e.next {
		if e.root == root {
			return
		}
		tail = e
	}
	entry := &mountEntry{root: root}
	if tail == nil {
		r.first = entry
	} else {
		tail.next = entry
	}
	r.count++
}

// Unmount removes a root from the registry. Propagations already dispatched
// to the root are unaffected; it must still call their done functions.
func (r *Registry) Unmount(root Root) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var prev *mountEntry
	for e := r.first; e != nil; e = e.next {
		if e.root == root {
			if prev == nil {
				r.first = e.next
			} else {
				prev.next = e.next
			}
			e.next = nil
			r.count--
			return
		}
		prev = e
	}
}

// Len reports the number of mounted roots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// roots returns the membership snapshot for one publish, tolerating a nil
// registry.
func (r *Registry) roots() []Root {
	if r == nil {
		return nil
	}
	return r.snapshot()
}

// snapshot captures the current membership in mount order. The publisher
// counts and dispatches against the returned slice, so both traversals of a
// publish see the same set of roots even if mount/unmount races the walk.
func (r *Registry) snapshot() []Root {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return nil
	}
	roots := make([]Root, 0, r.count)
	for e := r.first; e != nil; e = e.next {
		roots = append(roots, e.root)
	}
	return roots
}
