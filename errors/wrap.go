// Package errors holds the coded PivotError values returned for contract violations, and forwards the stack trace
// helpers of github.com/pkg/errors so the rest of the module imports a single errors package.
package errors

import (
	"github.com/pkg/errors" //nolint: depguard
)

func New(message string) error {
	return errors.New(message)
}

func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

func WithStack(err error) error {
	return errors.WithStack(err)
}

func Cause(err error) error {
	return errors.Cause(err)
}

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }
