package errx

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Code classifies an AppError.
type Code string

const (
	// CodeInvalidConfig marks a rule book or option that breaks a construction-time invariant.
	CodeInvalidConfig Code = "invalid_config"
	// CodeStoreUnavailable marks a failing transcript store.
	CodeStoreUnavailable Code = "store_unavailable"
	// CodeNotFound marks a missing record.
	CodeNotFound Code = "not_found"
)

const (
	InvalidConfigMessage = "invalid configuration"
	RedisErrorMessage    = "redis operation failed"
	RedisNotFoundMessage = "redis key not found"
)

// AppError wraps an underlying error with a code and a safe message.
type AppError struct {
	Err     error
	Code    Code
	Message string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, code Code, message string) *AppError {
	return &AppError{
		Err:     err,
		Code:    code,
		Message: message,
	}
}

// Invalid reports a construction-time invariant violation.
func Invalid(format string, args ...any) *AppError {
	return New(fmt.Errorf(format, args...), CodeInvalidConfig, InvalidConfigMessage)
}

// WrapRedis maps Redis errors onto AppError codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, CodeNotFound, RedisNotFoundMessage)
	}
	return New(err, CodeStoreUnavailable, RedisErrorMessage)
}

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code Code) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// Is reports whether the target matches the underlying error.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}
