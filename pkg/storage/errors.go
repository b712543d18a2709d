package storage

import (
	"errors"
	"fmt"
)

var (
	ErrAuthFailed       = errors.New("authentication failed")
	ErrConnFailed       = errors.New("connection failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUploadFailed     = errors.New("upload failed")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// ConfigurationError reports a setting that must be filled in before an
// upload can be attempted. It matches ErrInvalidConfig with errors.Is.
type ConfigurationError struct {
	Field  string
	Reason string
}

// NewConfigurationError builds a ConfigurationError for field
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// IsConfigError returns true if err was caused by missing or invalid settings
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// WrapError adds context to an error
func WrapError(store, operation string, err error) error {
	return fmt.Errorf("%s (%s): %w", operation, store, err)
}
