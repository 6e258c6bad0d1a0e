// Package domain defines events for the event-driven architecture.
// Engine notifications and service state changes are both modeled as events:
// the media adapter produces engine events on its callback goroutine, and
// services publish UI-facing events after applying state changes.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Engine notifications (observed property changes and engine lifecycle)
	EventEnginePosition EventType = "engine.position"
	EventEngineIdle     EventType = "engine.idle"
	EventEngineDuration EventType = "engine.duration"
	EventEngineLog      EventType = "engine.log"
	EventEngineShutdown EventType = "engine.shutdown"

	// Player state
	EventPlayerUpdated EventType = "player.updated"

	// Tracklist state
	EventTracklistUpdated EventType = "tracklist.updated"
	EventTrackImported    EventType = "track.imported"

	// Import failures (the caller-visible error channel)
	EventImportFailed EventType = "import.failed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// PositionEvent reports an engine time-pos property change.
type PositionEvent struct {
	baseEvent
	Position float64 // seconds
}

// Type returns the event type.
func (e PositionEvent) Type() EventType {
	return EventEnginePosition
}

// NewPositionEvent creates a new PositionEvent.
func NewPositionEvent(position float64) PositionEvent {
	return PositionEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
	}
}

// IdleEvent reports an engine core-idle property change. Idle true means the
// engine is not actively producing audio (paused); false means playing.
type IdleEvent struct {
	baseEvent
	Idle bool
}

// Type returns the event type.
func (e IdleEvent) Type() EventType {
	return EventEngineIdle
}

// NewIdleEvent creates a new IdleEvent.
func NewIdleEvent(idle bool) IdleEvent {
	return IdleEvent{
		baseEvent: newBaseEvent(),
		Idle:      idle,
	}
}

// DurationEvent reports the duration of the currently loaded file.
// Only meaningful while a track is loaded.
type DurationEvent struct {
	baseEvent
	Duration float64 // seconds
}

// Type returns the event type.
func (e DurationEvent) Type() EventType {
	return EventEngineDuration
}

// NewDurationEvent creates a new DurationEvent.
func NewDurationEvent(duration float64) DurationEvent {
	return DurationEvent{
		baseEvent: newBaseEvent(),
		Duration:  duration,
	}
}

// EngineLogEvent carries a log line emitted by the media engine.
type EngineLogEvent struct {
	baseEvent
	Level string
	Text  string
}

// Type returns the event type.
func (e EngineLogEvent) Type() EventType {
	return EventEngineLog
}

// NewEngineLogEvent creates a new EngineLogEvent.
func NewEngineLogEvent(level, text string) EngineLogEvent {
	return EngineLogEvent{
		baseEvent: newBaseEvent(),
		Level:     level,
		Text:      text,
	}
}

// EngineShutdownEvent is the terminal notification from an engine instance.
// After receiving it, the controller detaches from that engine.
type EngineShutdownEvent struct {
	baseEvent
}

// Type returns the event type.
func (e EngineShutdownEvent) Type() EventType {
	return EventEngineShutdown
}

// NewEngineShutdownEvent creates a new EngineShutdownEvent.
func NewEngineShutdownEvent() EngineShutdownEvent {
	return EngineShutdownEvent{baseEvent: newBaseEvent()}
}

// PlayerUpdatedEvent is published after the playback controller applies a
// state change, carrying a snapshot for rendering.
type PlayerUpdatedEvent struct {
	baseEvent
	Snapshot PlayerSnapshot
}

// Type returns the event type.
func (e PlayerUpdatedEvent) Type() EventType {
	return EventPlayerUpdated
}

// NewPlayerUpdatedEvent creates a new PlayerUpdatedEvent.
func NewPlayerUpdatedEvent(snapshot PlayerSnapshot) PlayerUpdatedEvent {
	return PlayerUpdatedEvent{
		baseEvent: newBaseEvent(),
		Snapshot:  snapshot,
	}
}

// TracklistUpdatedEvent is published after any tracklist mutation.
type TracklistUpdatedEvent struct {
	baseEvent
	Count   int
	MinLUFS float64
}

// Type returns the event type.
func (e TracklistUpdatedEvent) Type() EventType {
	return EventTracklistUpdated
}

// NewTracklistUpdatedEvent creates a new TracklistUpdatedEvent.
func NewTracklistUpdatedEvent(count int, minLUFS float64) TracklistUpdatedEvent {
	return TracklistUpdatedEvent{
		baseEvent: newBaseEvent(),
		Count:     count,
		MinLUFS:   minLUFS,
	}
}

// TrackImportedEvent is published when an imported track has been inserted.
type TrackImportedEvent struct {
	baseEvent
	Entry EntryID
	Track Track
}

// Type returns the event type.
func (e TrackImportedEvent) Type() EventType {
	return EventTrackImported
}

// NewTrackImportedEvent creates a new TrackImportedEvent.
func NewTrackImportedEvent(entry EntryID, track Track) TrackImportedEvent {
	return TrackImportedEvent{
		baseEvent: newBaseEvent(),
		Entry:     entry,
		Track:     track,
	}
}

// ImportFailedEvent is published when a single import request fails.
// The failure terminates only that request; the pool stays operational.
type ImportFailedEvent struct {
	baseEvent
	Path string
	Err  error
}

// Type returns the event type.
func (e ImportFailedEvent) Type() EventType {
	return EventImportFailed
}

// NewImportFailedEvent creates a new ImportFailedEvent.
func NewImportFailedEvent(path string, err error) ImportFailedEvent {
	return ImportFailedEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
		Err:       err,
	}
}
