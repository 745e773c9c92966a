package txui

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	errs := []error{
		ErrTransactionNotFound,
		ErrTransactionRouteViolation,
		ErrForbidden,
		ErrMalformedRequest,
		ErrUnknownKind,
		ErrDecryptFailed,
		ErrSignatureInvalid,
		ErrInvalidFormat,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrTransactionNotFound", ErrTransactionNotFound, true},
		{"wrapped", fmt.Errorf("load tx1: %w", ErrTransactionNotFound), true},
		{"other error", errors.New("other error"), false},
		{"route violation", ErrTransactionRouteViolation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.expect {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestIsDuplicate(t *testing.T) {
	dup := &DuplicateComponentError{CID: "a", Existing: "counter", New: "box"}
	if !IsDuplicate(fmt.Errorf("setup: %w", dup)) {
		t.Error("wrapped duplicate not detected")
	}
	if IsDuplicate(ErrUnknownKind) {
		t.Error("ErrUnknownKind reported as duplicate")
	}
	want := `txui: component "a" already registered (existing counter, new box); pass overwrite to replace it`
	if dup.Error() != want {
		t.Errorf("Error() = %q", dup.Error())
	}
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"unroutable event", &EventError{Event: ComponentEvent("x", "go", nil), Err: &UnknownComponentError{CID: "x"}}, true},
		{"wrapped unroutable event", fmt.Errorf("run: %w", &EventError{Err: &UnknownEventError{Event: "x"}}), true},
		{"server-side unknown component", fmt.Errorf("render: %w", &UnknownComponentError{CID: "x"}), false},
		{"server-side unknown event", &UnknownEventError{CID: "a", Event: "x"}, false},
		{"malformed", fmt.Errorf("%w: bad json", ErrMalformedRequest), true},
		{"forbidden", ErrForbidden, false},
		{"internal", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClientError(tt.err); got != tt.expect {
				t.Errorf("IsClientError(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestIsDecryptionError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrDecryptFailed", ErrDecryptFailed, true},
		{"ErrSignatureInvalid", ErrSignatureInvalid, true},
		{"wrapped", fmt.Errorf("load: %w", ErrSignatureInvalid), true},
		{"ErrInvalidFormat", ErrInvalidFormat, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDecryptionError(tt.err); got != tt.expect {
				t.Errorf("IsDecryptionError(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestUnknownEventError_Message(t *testing.T) {
	if got := (&UnknownEventError{Event: "x"}).Error(); got != `txui: page has no handler for event "x"` {
		t.Errorf("page event message = %q", got)
	}
	if got := (&UnknownEventError{CID: "a", Event: "x"}).Error(); got != `txui: component "a" has no handler for event "x"` {
		t.Errorf("component event message = %q", got)
	}
}

func TestEventError(t *testing.T) {
	err := &EventError{Index: 2, Event: PageEvent("go", nil), Err: &UnknownEventError{Event: "go"}}

	want := `txui: event 2 (pe go): txui: page has no handler for event "go"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	var uee *UnknownEventError
	if !errors.As(err, &uee) || uee.Event != "go" {
		t.Errorf("EventError does not unwrap to its cause: %v", err)
	}
}
