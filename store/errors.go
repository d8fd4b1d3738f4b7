package store

import (
	"errors"
	"fmt"
	"strings"
)

// Store failures come in three kinds so callers can route them: broken
// configuration is for operators to fix, permission errors point at
// credentials, and everything else is treated as transient and safe to
// retry. End users only ever see a generic "store unavailable" message;
// the typed error carries the full diagnostic for logs.

// ConfigError reports missing or invalid store configuration.
// Retrying without fixing the configuration will never succeed.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("store configuration: %s", e.Reason)
}

// PermissionError reports that the backend rejected our credentials.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("store permission denied (check vector store credentials): %v", e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// TransientError reports a network or availability failure. The operation
// may succeed on retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Classify wraps a backend error as a PermissionError when its message
// indicates a credential problem, and as a TransientError otherwise.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "permission") {
		return &PermissionError{Err: err}
	}
	return &TransientError{Op: op, Err: err}
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsPermission reports whether err is a permission error.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
