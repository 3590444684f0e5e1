// Package errors provides structured diagnostics for the ripple propagation
// core. Nothing in the core surfaces an error as a return value; contract
// violations and recovered panics flow through the global handler instead,
// and execution continues with degraded behavior.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of a diagnostic.
type ErrorKind int

const (
	// KindUnknown indicates a diagnostic of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates a context configured or used inconsistently,
	// such as a change detector fed values of the wrong type.
	KindConfig
	// KindBarrier indicates a propagation-accounting violation, such as a
	// root acknowledging the same update twice.
	KindBarrier
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindBarrier:
		return "barrier"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinel causes carried by reported diagnostics.
var (
	// ErrDoneTwice means a root called done more than once for one update.
	ErrDoneTwice = errors.New("root acknowledged the same update more than once")
	// ErrDetectorType means a change detector received values outside the
	// context's value type.
	ErrDetectorType = errors.New("change detector received values of the wrong type")
)

// RippleError represents a structured diagnostic from the propagation core.
type RippleError struct {
	// Op is the operation that reported the diagnostic (e.g. "ripple.barrier").
	Op string
	// Kind categorizes the diagnostic.
	Kind ErrorKind
	// Err is the underlying cause.
	Err error
	// StackTrace contains the call stack at the time of the report, if captured.
	StackTrace string
	// Timestamp is when the diagnostic occurred.
	Timestamp time.Time
}

func (e *RippleError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *RippleError) Unwrap() error {
	return e.Err
}

// PanicError represents a panic recovered on a root's dispatch stack.
type PanicError struct {
	// Op is the operation that panicked (e.g. "ripple.dispatch").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives diagnostics reported by the propagation core.
type ErrorHandler interface {
	// HandleError is called for contract and configuration diagnostics.
	HandleError(err *RippleError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
