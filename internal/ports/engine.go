// Package ports define interfaces for dependency inversion.
// These interfaces allow the core business logic to remain independent of external frameworks.
package ports

import (
	"github.com/audition-player/audition/internal/domain"
)

// NotificationHandler receives engine notifications. It is invoked on the
// engine's own callback goroutine, at arbitrary times; implementations must
// hand the event across a Dispatcher before touching controller state.
type NotificationHandler func(event domain.Event)

// MediaEngine is the interface to the opaque, command-based media backend.
//
// Commands are asynchronous: issuing one never reflects a state change by
// itself. The authoritative state change arrives later as a notification for
// an observed property. A negative command status surfaces as an
// *domain.EngineCommandError; callers log it and keep their local state.
type MediaEngine interface {
	// Command issues a command (name followed by arguments) and waits for the
	// engine to acknowledge it. Returns an error for a negative status.
	Command(args ...string) error

	// CommandAsync issues a command without waiting for acknowledgment.
	// Failures are reported through the engine's log notifications.
	CommandAsync(args ...string) error

	// ObserveProperty registers interest in a property. Every subsequent
	// change produces a notification.
	ObserveProperty(name string) error

	// SetNotificationHandler installs the handler invoked for every engine
	// notification. Must be called before ObserveProperty. Passing nil
	// detaches the previous handler.
	SetNotificationHandler(handler NotificationHandler)

	// Shutdown terminates the engine. A final EngineShutdownEvent is
	// delivered to the handler before Shutdown returns.
	Shutdown() error
}

// TrackProber converts a file reference into a Track.
//
// Probing confirms the file is playable audio before a Track is ever exposed
// to the tracklist or the controller. It returns *domain.ProbeError when the
// file or its metadata cannot be read, and domain.ErrNotAudio (wrapped) when
// the content type is recognized but not audio.
//
// Implementations must be safe for concurrent use; the import pool calls
// Probe from multiple workers.
type TrackProber interface {
	Probe(path string) (*domain.Track, error)
}
