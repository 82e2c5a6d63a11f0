package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("admin access required")

	ErrDispatchFailed = errors.New("failed to dispatch notification")
	ErrRateLimited    = errors.New("too many requests")
)

const (
	CodeValidation = "VALIDATION_ERROR"
)

// AppError carries a caller-facing message plus the underlying cause, which is
// only ever logged.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewValidationError(message string, err error) *AppError {
	return NewAppError(CodeValidation, message, err)
}

// IsValidation reports whether err is (or wraps) a validation AppError.
func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == CodeValidation
}
