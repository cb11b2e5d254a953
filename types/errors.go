package types

import (
	"errors"
	"fmt"
)

// ErrKind classifies a failure by which stage boundary produced it. Each
// pipeline stage wraps its own collaborator errors into exactly one kind;
// nothing is swallowed.
type ErrKind string

const (
	KindInvalidInput        ErrKind = "invalid_input"
	KindReadFailed          ErrKind = "read_failed"
	KindInsufficientBalance ErrKind = "insufficient_balance"
	KindPaymentFailed       ErrKind = "payment_failed"
	KindUploadFailed        ErrKind = "upload_failed"

	KindUnknown ErrKind = "unknown"
)

type kindError struct {
	kind ErrKind
	err  error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.err)
}

func (e *kindError) Unwrap() error {
	return e.err
}

// WrapErr tags err with a kind. Wrapping an already-tagged error keeps the
// innermost tag, so a stage cannot re-classify an upstream failure.
func WrapErr(kind ErrKind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// Errorf builds a tagged error from a format string.
func Errorf(kind ErrKind, format string, args ...interface{}) error {
	return &kindError{kind: kind, err: fmt.Errorf(format, args...)}
}

// Kind extracts the innermost classification of err, or KindUnknown.
func Kind(err error) ErrKind {
	var ke *kindError
	kind := KindUnknown
	for errors.As(err, &ke) {
		kind = ke.kind
		err = ke.err
	}
	return kind
}
