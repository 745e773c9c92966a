package txui

import (
	"errors"
	"fmt"
)

// Sentinel errors for transaction and request handling.
var (
	ErrTransactionNotFound       = errors.New("txui: transaction not found")
	ErrTransactionRouteViolation = errors.New("txui: transaction belongs to another route")
	ErrForbidden                 = errors.New("txui: access denied")
	ErrMalformedRequest          = errors.New("txui: malformed request")
	ErrUnknownKind               = errors.New("txui: unknown component kind")
	ErrDecryptFailed             = errors.New("txui: transaction decryption failed")
	ErrSignatureInvalid          = errors.New("txui: transaction signature invalid")
	ErrInvalidFormat             = errors.New("txui: invalid transaction format")
)

// DuplicateComponentError is returned when a cid is registered twice in the
// same transaction without requesting an overwrite.
type DuplicateComponentError struct {
	CID      string
	Existing string // kind of the registered component
	New      string // kind of the rejected component
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("txui: component %q already registered (existing %s, new %s); pass overwrite to replace it",
		e.CID, e.Existing, e.New)
}

// UnknownComponentError is returned when an event or lookup names a cid that
// is not part of the transaction.
type UnknownComponentError struct {
	CID string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("txui: unknown component %q", e.CID)
}

// UnknownEventError is returned when no handler exists for an event. CID is
// empty for page events.
type UnknownEventError struct {
	CID   string
	Event string
}

func (e *UnknownEventError) Error() string {
	if e.CID == "" {
		return fmt.Sprintf("txui: page has no handler for event %q", e.Event)
	}
	return fmt.Sprintf("txui: component %q has no handler for event %q", e.CID, e.Event)
}

// EventError reports a queued client event that names a component or
// handler the transaction does not have. The client and the server
// disagree about the tree; the request is rejected as a client error.
type EventError struct {
	Index int
	Event Event
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("txui: event %d (%s %s): %v", e.Index, e.Event.Type, e.Event.Name, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if err reports a missing or expired transaction.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTransactionNotFound)
}

// IsDuplicate checks if err is a *DuplicateComponentError.
func IsDuplicate(err error) bool {
	var dup *DuplicateComponentError
	return errors.As(err, &dup)
}

// IsClientError reports errors caused by a malformed or desynchronized
// client request. Unknown cids and events raised by server code, for
// example while rendering, are not client errors.
func IsClientError(err error) bool {
	var ee *EventError
	return errors.As(err, &ee) || errors.Is(err, ErrMalformedRequest)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}
