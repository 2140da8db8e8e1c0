// Package olyerr defines the fixed error taxonomy surfaced across the
// runtime (§7). Errors are tagged values, not free-text strings: callers
// branch on Kind, never on Error()'s message.
package olyerr

import (
	"errors"
	"fmt"

	"github.com/olympusrt/olympus/message"
)

// Kind is a closed enumeration of the error tags surfaced to callers (§6).
type Kind string

const (
	KindMailboxFull      Kind = "MailboxFull"
	KindActorNotRunning  Kind = "ActorNotRunning"
	KindNotFound         Kind = "NotFound"
	KindInvalidCommand   Kind = "InvalidCommand"
	KindInvalidQuery     Kind = "InvalidQuery"
	KindInvalidMessage   Kind = "InvalidMessage"
	KindTimeout          Kind = "Timeout"
	KindSearchError      Kind = "SearchError"
	KindPersistenceError Kind = "PersistenceError"
	KindRecoveryFailed   Kind = "RecoveryFailed"
	KindPanic            Kind = "Panic"
	KindConnectionLost   Kind = "ConnectionLost"

	// KindSchemaMismatch and KindIntegrityCheckFailed are PersistenceError
	// sub-kinds that are never retryable (§7), even though PersistenceError
	// itself generally is.
	KindSchemaMismatch       Kind = "SchemaMismatch"
	KindIntegrityCheckFailed Kind = "IntegrityCheckFailed"
)

// Error is the single concrete error type used throughout the runtime.
// Actor carries the originating actor where meaningful (empty otherwise).
type Error struct {
	Kind    Kind
	Actor   message.ActorName
	Message string
	Cause   error
}

func New(kind Kind, actor message.ActorName, msg string) *Error {
	return &Error{Kind: kind, Actor: actor, Message: msg}
}

func Wrap(kind Kind, actor message.ActorName, msg string, cause error) *Error {
	return &Error{Kind: kind, Actor: actor, Message: msg, Cause: cause}
}

func (e *Error) Error() string {
	if e.Actor != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s[%s]: %s: %v", e.Kind, e.Actor, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Actor, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is(err, &Error{Kind: K}) style comparisons by kind
// alone, ignoring actor/message/cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// IsRetryable implements the transient/permanent split from §7. Fatal
// errors (Panic, and initialize-failure which is reported out of band by
// the runner, not via this type) are not covered here — they terminate a
// runner rather than feeding the retry queue.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindTimeout, KindMailboxFull, KindConnectionLost:
		return true
	case KindPersistenceError:
		return true
	case KindSchemaMismatch, KindIntegrityCheckFailed:
		return false
	case KindNotFound, KindInvalidCommand, KindInvalidQuery, KindInvalidMessage:
		return false
	default:
		return false
	}
}

// KindOf extracts the Kind of err, or "" if err is not (or does not wrap)
// an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
