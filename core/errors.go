package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ConfirmationRequiredError is returned when a destructive operation needs an
// explicit acknowledgment from the caller before it can proceed. The caller is
// expected to resubmit the request with the named force parameter set.
type ConfirmationRequiredError struct {
	Reason     string
	ForceParam string
}

func NewConfirmationRequiredError(reason, forceParam string) error {
	return &ConfirmationRequiredError{Reason: reason, ForceParam: forceParam}
}

func (err ConfirmationRequiredError) Error() string {
	return err.Reason
}

func IsConfirmationRequired(err error) bool {
	_, ok := errors.Cause(err).(*ConfirmationRequiredError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
