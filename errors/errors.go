package errors

import (
	"fmt"
)

type ErrorCode int

const (
	InternalError ErrorCode = iota
	UnsupportedFieldKind
	RowCountMismatch
	BufferTooSmall
	FieldCountMismatch
	FieldKindMismatch
	InvalidConfiguration
)

func NewInternalError(ref string) PivotError {
	return NewPivotErrorf(InternalError, "Internal error - reference: %s please consult logs for details", ref)
}

func NewUnsupportedFieldKindError(fieldName string, kind string) PivotError {
	return NewPivotErrorf(UnsupportedFieldKind, "Field %s has unsupported kind %s", fieldName, kind)
}

func NewRowCountMismatchError(fieldName string, expected int, actual int) PivotError {
	return NewPivotErrorf(RowCountMismatch, "Field %s has %d rows but %d were requested", fieldName, actual, expected)
}

func NewBufferTooSmallError(bufferName string, required int, available int) PivotError {
	return NewPivotErrorf(BufferTooSmall, "Buffer %s is too small, required %d available %d", bufferName, required, available)
}

func NewFieldCountMismatchError(expected int, actual int) PivotError {
	return NewPivotErrorf(FieldCountMismatch, "Layout has %d fields but %d vectors were provided", expected, actual)
}

func NewFieldKindMismatchError(fieldName string, expected string, actual string) PivotError {
	return NewPivotErrorf(FieldKindMismatch, "Field %s was planned as %s but vector is %s", fieldName, expected, actual)
}

func NewInvalidConfigurationError(msg string) PivotError {
	return NewPivotErrorf(InvalidConfiguration, "Invalid configuration: %s", msg)
}

func NewPivotErrorf(errorCode ErrorCode, msgFormat string, args ...interface{}) PivotError {
	msg := fmt.Sprintf(fmt.Sprintf("PVT%04d - %s", errorCode, msgFormat), args...)
	return PivotError{Code: errorCode, Msg: msg}
}

// PivotError is a contract violation reported by the layout planner, the block stores or the engines.
// These are caller bugs, never transient, so nothing retries them.
type PivotError struct {
	Code ErrorCode
	Msg  string
}

func (p PivotError) Error() string {
	return p.Msg
}

// IsCode returns true if any error in the chain is a PivotError with the given code
func IsCode(err error, code ErrorCode) bool {
	var perr PivotError
	if As(err, &perr) {
		return perr.Code == code
	}
	return false
}

// MaybeAddStack adds a stack trace unless err is already a PivotError, which are returned to callers as is
func MaybeAddStack(err error) error {
	if _, ok := err.(PivotError); !ok { //nolint:errorlint
		return WithStack(err)
	}
	return err
}
