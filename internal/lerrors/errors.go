// Package lerrors defines the sentinel error taxonomy shared across the
// prompt rendering core. Callers match with errors.Is rather than comparing
// strings or type-asserting, matching the rest of the pack's error-handling
// idiom.
package lerrors

import "errors"

// Sentinel errors for the prompt rendering core. Using sentinels allows
// callers to match with errors.Is for reliable error handling across package
// boundaries.
var (
	// ErrNullPointer is returned when a required pointer/slice argument is nil
	// or zero-length (e.g. a nil runtime context passed to Expand).
	ErrNullPointer = errors.New("lush: null pointer")

	// ErrInvalidParameter is returned when an argument fails validation
	// (e.g. an unknown theme name or a PS1 that is not valid UTF-8).
	ErrInvalidParameter = errors.New("lush: invalid parameter")

	// ErrInvalidState is returned when an operation is attempted from a
	// lifecycle state that does not permit it (e.g. Submit after shutdown).
	ErrInvalidState = errors.New("lush: invalid state")

	// ErrOutOfMemory is returned when an allocation-bounded operation cannot
	// proceed (kept for parity with the error taxonomy; Go's allocator makes
	// this effectively unreachable, and no code path currently returns it).
	ErrOutOfMemory = errors.New("lush: out of memory")

	// ErrResourceExhausted is returned when a bounded resource is full (the
	// async worker's request queue).
	ErrResourceExhausted = errors.New("lush: resource exhausted")

	// ErrSystemCall is returned when a POSIX-level operation fails (fork,
	// pipe, getpwuid, ...).
	ErrSystemCall = errors.New("lush: system call failed")

	// ErrNotInitialized is returned when a component is used before its
	// required setup step (e.g. rendering before Init).
	ErrNotInitialized = errors.New("lush: not initialized")

	// ErrFeatureNotAvailable is returned when a requested capability isn't
	// supported by the current environment (e.g. an async request of the
	// custom kind, which the worker does not dispatch).
	ErrFeatureNotAvailable = errors.New("lush: feature not available")
)
