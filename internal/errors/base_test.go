package errors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	err := Wrap(errWrapped, "Hello, Wrapped!")
	if err.Error() != "Hello, Wrapped!, err: wrapped error" {
		t.Fatalf("error mismatch: %+v", err)
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errWrapped, "partition %s", "part-001")
	if err.Error() != "partition part-001, err: wrapped error" {
		t.Fatalf("error mismatch: %+v", err)
	}
	if Wrapf(nil, "ignored %d", 1) != nil {
		t.Fatal("wrapping nil must stay nil")
	}
}

func TestWrapKeepsSentinel(t *testing.T) {
	err := Wrap(errWrapped, "context")
	if !errors.Is(err, errWrapped) {
		t.Fatalf("sentinel lost through wrap: %+v", err)
	}
}

func TestJoin(t *testing.T) {
	if Join(nil, nil) != nil {
		t.Fatal("joining nils must stay nil")
	}
	other := errors.New("other")
	err := Join(errWrapped, nil, other)
	if !errors.Is(err, errWrapped) || !errors.Is(err, other) {
		t.Fatalf("joined error lost a member: %+v", err)
	}
}
