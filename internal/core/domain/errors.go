package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrDuplicateHook indicates a hook name collision at registration time.
	ErrDuplicateHook = errors.New("duplicate hook registration")

	// ErrHookNotFound indicates a requested hook name has no registered
	// implementation.
	ErrHookNotFound = errors.New("hook not found")

	// ErrPrefixUnreadable indicates the native metadata store of an
	// environment prefix could not be read.
	ErrPrefixUnreadable = errors.New("environment prefix unreadable")

	// ErrLoaderFailed indicates a single metadata source failed to read.
	ErrLoaderFailed = errors.New("loader failed")

	// ErrNoPrefix indicates no environment prefix was specified or resolved.
	ErrNoPrefix = errors.New("no environment prefix specified")

	// ErrInvalidChange indicates a change set cannot be applied to the
	// current record set.
	ErrInvalidChange = errors.New("invalid change")

	// ErrConstraintViolated indicates a solve result breaks a pinned
	// constraint.
	ErrConstraintViolated = errors.New("constraint violated")
)

// LoaderError reports that a single metadata source failed to read.
// It carries the identity of the loader and the source location so the
// aggregator can decide whether the failure is fatal (native source) or
// tolerable (foreign source).
type LoaderError struct {
	// Loader is the hook name of the loader that failed.
	Loader string

	// Path is the metadata location that could not be read.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *LoaderError) Error() string {
	return fmt.Sprintf("loader %q: reading %s: %v", e.Loader, e.Path, e.Err)
}

// Unwrap exposes ErrLoaderFailed and the underlying cause to errors.Is/As.
func (e *LoaderError) Unwrap() []error {
	return []error{ErrLoaderFailed, e.Err}
}

// EnvironmentUnreadableError reports that the native loader failed for an
// environment. It aborts the state computation for that prefix.
type EnvironmentUnreadableError struct {
	// Prefix is the environment root that could not be read.
	Prefix string

	// Err is the native loader failure.
	Err error
}

// Error implements the error interface.
func (e *EnvironmentUnreadableError) Error() string {
	return fmt.Sprintf("environment %s unreadable: %v", e.Prefix, e.Err)
}

// Unwrap exposes ErrPrefixUnreadable and the loader failure to errors.Is/As.
func (e *EnvironmentUnreadableError) Unwrap() []error {
	return []error{ErrPrefixUnreadable, e.Err}
}

// DuplicateRegistrationError reports a hook name collision. Registration
// fails fast rather than silently shadowing an existing implementation.
type DuplicateRegistrationError struct {
	// Kind is the hook kind the collision occurred under.
	Kind string

	// Name is the colliding hook name.
	Name string
}

// Error implements the error interface.
func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("hook %q already registered under kind %q", e.Name, e.Kind)
}

// Unwrap exposes ErrDuplicateHook to errors.Is.
func (e *DuplicateRegistrationError) Unwrap() error {
	return ErrDuplicateHook
}

// UnknownBackendError reports that a requested backend name has no
// registered implementation. Selection never silently substitutes another
// backend.
type UnknownBackendError struct {
	// Kind is the hook kind the backend was requested under.
	Kind string

	// Name is the requested backend name.
	Name string
}

// Error implements the error interface.
func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown %s backend %q", e.Kind, e.Name)
}

// Unwrap exposes ErrHookNotFound to errors.Is.
func (e *UnknownBackendError) Unwrap() error {
	return ErrHookNotFound
}

// SolverError is produced by solver backends. The aggregator and registry
// propagate it unchanged and never interpret it.
type SolverError struct {
	// Backend is the hook name of the solver that failed.
	Backend string

	// Err is the backend-specific cause.
	Err error
}

// Error implements the error interface.
func (e *SolverError) Error() string {
	return fmt.Sprintf("solver %q: %v", e.Backend, e.Err)
}

// Unwrap exposes the backend-specific cause to errors.Is/As.
func (e *SolverError) Unwrap() error {
	return e.Err
}
