package olyerr

import (
	"errors"
	"testing"

	"github.com/olympusrt/olympus/message"
)

func TestIsRetryableSplitsTransientFromPermanent(t *testing.T) {
	retryable := []Kind{KindTimeout, KindMailboxFull, KindConnectionLost, KindPersistenceError}
	for _, k := range retryable {
		if !IsRetryable(New(k, message.Hermes, "x")) {
			t.Errorf("%s should be retryable", k)
		}
	}

	permanent := []Kind{
		KindNotFound, KindInvalidCommand, KindInvalidQuery, KindInvalidMessage,
		KindSchemaMismatch, KindIntegrityCheckFailed,
	}
	for _, k := range permanent {
		if IsRetryable(New(k, message.Hermes, "x")) {
			t.Errorf("%s should not be retryable", k)
		}
	}
}

func TestErrorsIsMatchesByKindAlone(t *testing.T) {
	a := New(KindMailboxFull, message.Zeus, "full for zeus")
	b := New(KindMailboxFull, message.Hermes, "full for hermes")

	if !errors.Is(a, b) {
		t.Fatal("two errors of the same Kind should satisfy errors.Is regardless of actor/message")
	}

	c := New(KindTimeout, message.Zeus, "slow")
	if errors.Is(a, c) {
		t.Fatal("errors of different Kind should not satisfy errors.Is")
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(KindPersistenceError, message.Poseidon, "flush failed", cause)

	if !errors.Is(wrapped, cause) {
		t.Fatal("errors.Is should see through Wrap to the underlying cause")
	}
	if errors.Unwrap(wrapped) != cause {
		t.Fatal("Unwrap should return the original cause")
	}
}

func TestKindOfReturnsEmptyForAPlainError(t *testing.T) {
	if got := KindOf(errors.New("not ours")); got != "" {
		t.Fatalf("KindOf(plain error) = %q, want empty", got)
	}
}
