package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidUserID         = errors.New("invalid user id")
	ErrInvalidRoleKey        = errors.New("invalid role key")
	ErrInvalidOrganizationID = errors.New("invalid organization id")
	ErrInvalidPortal         = errors.New("invalid portal")
	ErrInvalidResource       = errors.New("invalid resource")
	ErrInvalidAction         = errors.New("invalid action")
	ErrRoleNotFound          = errors.New("role not found")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrSystemRoleImmutable   = errors.New("system role is immutable")
	ErrDuplicateRelation     = errors.New("duplicate relation")
)

// ConfigurationError is fatal: the process must not begin serving
// authorization decisions when boot-time state cannot be loaded.
type ConfigurationError struct {
	Stage string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("authorization configuration failed at %s: %v", e.Stage, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigurationError wraps a boot failure with the stage that produced it.
func NewConfigurationError(stage string, err error) *ConfigurationError {
	return &ConfigurationError{Stage: stage, Err: err}
}

// IsNotFound reports whether err is any of the directory lookup misses.
// Sync hooks log these, skip the row, and never abort a larger batch.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrOrganizationNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
