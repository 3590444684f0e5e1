// Package ripple provides a value-propagation barrier for applications that
// run multiple independently scheduled consumer trees ("roots") over shared,
// named values.
//
// A [Context] holds one logical value. Publishing a new value makes it
// visible to every mounted root and invokes a completion callback exactly
// once, after every root has acknowledged the update. The publisher never
// blocks: roots acknowledge either synchronously during dispatch or from a
// later scheduling turn, and the barrier fires whenever the last
// acknowledgement arrives.
//
// # Core Types
//
// Context is the value cell. It carries the immutable default value, two
// committed slots (one per rendering backend), and the pending value: the
// newest value anyone has asked to publish, visible immediately even while
// a propagation is still in flight.
//
// Registry is the explicit set of mounted roots. It is plain injected state,
// not a package-level singleton, so publishers and tests can each own their
// own root population.
//
// Root is the consumer contract. The framework hosting a root tree
// implements it and is obligated to call the supplied done function exactly
// once per update it receives.
//
// # Change Detection
//
// A Context may carry a change detector, a function reducing an old/new
// value pair to a [Bits] mask. Roots use the mask to decide which of their
// dependents actually care about an update. Without a detector every
// publish reads as [FullChange].
//
// See [github.com/go-drift/ripple/pkg/scope] for a reference Root
// implementation and [github.com/go-drift/ripple/pkg/testing] for a
// deterministic test harness.
package ripple
