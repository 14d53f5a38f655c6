package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew_MatchesKind(t *testing.T) {
	err := New(ErrNotFound, "application not found")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("errors.Is(%v, ErrNotFound) = false", err)
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatalf("unexpected match with ErrForbidden")
	}
	if err.Error() != "application not found" {
		t.Fatalf("message = %q", err.Error())
	}
	wrapped := fmt.Errorf("load: %w", err)
	if !errors.Is(wrapped, err) || !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("wrapped error lost its identity")
	}
}

func TestUpstream_KeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Upstream("store document", cause)
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, cause) {
		t.Fatalf("upstream error does not match kind and cause: %v", err)
	}
	if err.Error() != "store document: disk full" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestValidationError(t *testing.T) {
	ve := &ValidationError{}
	if ve.OrNil() != nil {
		t.Fatalf("empty validation error must collapse to nil")
	}
	ve.Add("amount", "must be positive").Add("duration", "is required")
	err := ve.OrNil()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("validation error does not match ErrValidation")
	}
	var got *ValidationError
	if !errors.As(err, &got) || len(got.Fields) != 2 {
		t.Fatalf("errors.As failed or wrong field count: %+v", got)
	}
	if want := "validation failed: amount must be positive; duration is required"; err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
	if !errors.Is(Invalid("x", "bad"), ErrValidation) {
		t.Fatalf("Invalid must produce a validation error")
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{Invalid("amount", "must be positive"), "validation"},
		{New(ErrInvalidTransition, "x"), "invalid_transition"},
		{New(ErrConcurrentModification, "x"), "concurrent_modification"},
		{fmt.Errorf("wrap: %w", New(ErrNotFound, "x")), "not_found"},
		{Upstream("store", errors.New("down")), "upstream"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v)=%q want %q", tc.err, got, tc.want)
		}
	}
}
