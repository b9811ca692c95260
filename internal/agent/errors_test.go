package agent

import (
	"errors"
	"testing"
)

func TestErrorStringWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := newError(KindModelCall, "completion failed", cause)

	got := err.Error()
	want := "model_call: completion failed: connection refused"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestErrorStringWithoutCause(t *testing.T) {
	err := newError(KindConfiguration, "missing API key", nil)
	got := err.Error()
	want := "configuration: missing API key"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := newError(KindStore, "write failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestErrorUnwrapNilCause(t *testing.T) {
	err := newError(KindProtocol, "bad frame", nil)
	if err.Unwrap() != nil {
		t.Error("expected Unwrap() to return nil when Cause is nil")
	}
}
