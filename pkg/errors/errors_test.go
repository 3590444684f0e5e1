package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestRippleErrorString(t *testing.T) {
	err := &RippleError{
		Op:   "ripple.barrier",
		Kind: KindBarrier,
		Err:  ErrDoneTwice,
	}
	got := err.Error()
	if !strings.Contains(got, "ripple.barrier") {
		t.Errorf("Error() = %q, want op name included", got)
	}
	if !strings.Contains(got, "[barrier]") {
		t.Errorf("Error() = %q, want kind included", got)
	}
}

func TestRippleErrorUnwrap(t *testing.T) {
	err := &RippleError{Op: "ripple.ChangedBits", Kind: KindConfig, Err: ErrDetectorType}
	if !errors.Is(err, ErrDetectorType) {
		t.Error("errors.Is should match the underlying sentinel")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindConfig, "config"},
		{KindBarrier, "barrier"},
		{KindPanic, "panic"},
		{ErrorKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "boom"}
	if got := err.Error(); got != "panic: boom" {
		t.Errorf("Error() = %q, want %q", got, "panic: boom")
	}
	err = &PanicError{Op: "ripple.dispatch", Value: "boom"}
	if got := err.Error(); got != "panic in ripple.dispatch: boom" {
		t.Errorf("Error() = %q, want %q", got, "panic in ripple.dispatch: boom")
	}
}

type testHandler struct {
	errors []*RippleError
	panics []*PanicError
}

func (h *testHandler) HandleError(err *RippleError) {
	h.errors = append(h.errors, err)
}

func (h *testHandler) HandlePanic(err *PanicError) {
	h.panics = append(h.panics, err)
}

func TestReport(t *testing.T) {
	handler := &testHandler{}
	SetHandler(handler)
	defer SetHandler(nil)

	Report(nil) // must be a no-op
	Report(&RippleError{Op: "test.op", Kind: KindConfig, Err: ErrDetectorType})

	if len(handler.errors) != 1 {
		t.Fatalf("handler received %d errors, want 1", len(handler.errors))
	}
	if handler.errors[0].Timestamp.IsZero() {
		t.Error("Report should fill in a zero timestamp")
	}
}

func TestRecover(t *testing.T) {
	handler := &testHandler{}
	SetHandler(handler)
	defer SetHandler(nil)

	func() {
		defer Recover("test.panicking")
		panic("expected")
	}()

	if len(handler.panics) != 1 {
		t.Fatalf("handler received %d panics, want 1", len(handler.panics))
	}
	p := handler.panics[0]
	if p.Op != "test.panicking" {
		t.Errorf("panic op = %q, want %q", p.Op, "test.panicking")
	}
	if p.Value != "expected" {
		t.Errorf("panic value = %v, want %q", p.Value, "expected")
	}
	if p.StackTrace == "" {
		t.Error("panic stack trace should not be empty")
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(&testHandler{})
	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should restore LogHandler, got %T", DefaultHandler)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Fatal("CaptureStack returned empty string")
	}
	if !strings.Contains(stack, "TestCaptureStack") {
		t.Errorf("stack should contain the calling test, got:\n%s", stack)
	}
}
