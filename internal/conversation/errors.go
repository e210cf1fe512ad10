package conversation

import "fmt"

// ValidationError rejects a caller-supplied payload. Recoverable by the
// caller resubmitting with content; maps to HTTP 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ErrNoMessage is returned when no message text could be extracted.
var ErrNoMessage = &ValidationError{Reason: "No message provided"}

// DependencyError wraps a queue or store failure. On the ingress critical
// path it surfaces as HTTP 500; on best-effort paths it is logged and
// swallowed by the caller.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("conversation: %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// MalformedPayloadError marks a queue item that could not be decoded. The
// worker logs it and skips the item without retry.
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("conversation: malformed queue item: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}
