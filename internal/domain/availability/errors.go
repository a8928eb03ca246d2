package availability

import (
	"errors"
	"fmt"
)

// InvalidConfigurationError means the provider's schedule data is malformed.
// It must be reported, never turned into an empty result.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid schedule configuration: %s: %s", e.Field, e.Reason)
}

// InvalidRequestError means the caller passed malformed input.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid availability request: %s: %s", e.Field, e.Reason)
}

func configErr(field, format string, args ...any) error {
	return &InvalidConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func requestErr(field, format string, args ...any) error {
	return &InvalidRequestError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func IsInvalidConfiguration(err error) bool {
	var ce *InvalidConfigurationError
	return errors.As(err, &ce)
}

func IsInvalidRequest(err error) bool {
	var re *InvalidRequestError
	return errors.As(err, &re)
}
