// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrNotAudio is returned when a probed file has a recognizable but
	// non-audio content type.
	ErrNotAudio = errors.New("not an audio file")

	// ErrStaleEntry is returned when an operation targets a tracklist entry
	// that has already been removed. Callers racing a deletion treat this as
	// a no-op.
	ErrStaleEntry = errors.New("tracklist entry no longer exists")

	// ErrEngineClosed is returned when a command is issued to a media engine
	// that has shut down.
	ErrEngineClosed = errors.New("media engine closed")

	// ErrImportClosed is returned when work is submitted to an import pool
	// that is shutting down.
	ErrImportClosed = errors.New("import pool closed")
)

// ProbeError reports that a file could not be probed at all: unreadable,
// missing, or with metadata that cannot be parsed.
type ProbeError struct {
	Path    string // File that failed probing
	Message string // What went wrong
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe failed for %q: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// NewProbeError creates a new ProbeError.
func NewProbeError(path, message string, err error) *ProbeError {
	return &ProbeError{
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// EngineCommandError reports a negative status from the media engine for an
// issued command. Local controller state is not rolled back on these: the
// controller tracks what was asked for, not what the engine acknowledged.
type EngineCommandError struct {
	Command string // First word of the command that failed
	Status  int    // Engine status code
	Message string // Engine-provided message
}

// Error implements the error interface.
func (e *EngineCommandError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("engine command %q failed: %s (status %d)", e.Command, e.Message, e.Status)
	}
	return fmt.Sprintf("engine command %q failed with status %d", e.Command, e.Status)
}

// NewEngineCommandError creates a new EngineCommandError.
func NewEngineCommandError(command string, status int, message string) *EngineCommandError {
	return &EngineCommandError{
		Command: command,
		Status:  status,
		Message: message,
	}
}
