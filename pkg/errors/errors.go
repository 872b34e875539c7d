package errors

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrOptimisticLock the row was modified by a concurrent request
var ErrOptimisticLock = errors.New("record was modified by another request, reload and retry")

// Kind classifies a business failure. Handlers map kinds to transport status.
type Kind string

const (
	KindUnauthorized        Kind = "unauthorized"
	KindForbidden           Kind = "forbidden"
	KindNotFound            Kind = "not_found"
	KindInvalidState        Kind = "invalid_state"
	KindValidation          Kind = "validation"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindAlreadyRecording    Kind = "already_recording"
	KindInternal            Kind = "internal"
)

// Error a tagged business error
type Error struct {
	Kind    Kind
	Message string
}

// New creates a tagged error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error of the same kind and message, so package-level
// sentinels compare equal after being wrapped.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// InsufficientBalanceError a leave request exceeds the remaining balance
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return "insufficient annual leave: requested " + e.Requested.String() +
		" day(s), remaining " + e.Remaining.String()
}

// KindOf extracts the kind from err; untagged errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ib *InsufficientBalanceError
	if errors.As(err, &ib) {
		return KindInsufficientBalance
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrOptimisticLock) {
		return KindInvalidState
	}
	return KindInternal
}
