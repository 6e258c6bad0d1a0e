// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the Audition A/B player.
package domain

// Track represents a single importable audio item with its probed metadata.
// A Track is immutable after creation except for Duration, which is unknown
// (zero) until the media engine reports it for a loaded file.
type Track struct {
	// Name is the display name (tag title/artist or the file base name)
	Name string

	// URI is the path or URI handed to the media engine
	URI string

	// Duration is the track length in seconds (0 until known)
	Duration float64

	// LUFS is the integrated loudness of the track in LUFS
	LUFS float64

	// Peak is the true-peak level of the track in dB
	Peak float64
}

// EntryID uniquely identifies one tracklist entry.
// Identity is per entry, not per track: the same file imported twice yields
// two entries with distinct IDs.
type EntryID string

// NoEntry is the zero EntryID, used when no entry is referenced.
const NoEntry EntryID = ""

// AnchorPosition selects which side of the anchor entry an insertion lands on.
type AnchorPosition int

const (
	// Before places the new entry immediately before the anchor entry
	Before AnchorPosition = iota

	// After places the new entry immediately after the anchor entry
	After
)

// Anchor describes where a new or moved track should land in the tracklist
// order: adjacent to Entry, on the side given by Position.
//
// An Anchor is captured when work is submitted, not when it completes, so
// concurrent imports keep their intended adjacency regardless of which worker
// finishes first.
type Anchor struct {
	Entry    EntryID
	Position AnchorPosition
}

// PlayState represents the transport state of the player.
type PlayState int

const (
	// StateStopped indicates no track is loaded
	StateStopped PlayState = iota

	// StatePlaying indicates playback is active
	StatePlaying

	// StatePaused indicates playback is paused
	StatePaused
)

// String returns a human-readable representation of the play state.
func (s PlayState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlayerSnapshot is a read-only copy of the playback controller state,
// produced for UI rendering. Marker and loop fields use 0 as "unset",
// matching the transport semantics (position zero cannot be marked).
type PlayerSnapshot struct {
	// Current is the loaded track (nil if none)
	Current *Track

	// CurrentEntry is the tracklist entry of the loaded track (NoEntry if none)
	CurrentEntry EntryID

	// Position is the last engine-reported playback position in seconds
	Position float64

	// State is the transport state
	State PlayState

	// LoopStart is loop point A in seconds (0 = unset)
	LoopStart float64

	// LoopStop is loop point B in seconds (0 = unset)
	LoopStop float64

	// Marker is the bookmark position in seconds (0 = unset)
	Marker float64

	// ReturnToMark restarts selected tracks from 0 instead of the last position
	ReturnToMark bool

	// MinLUFS mirrors the tracklist loudness floor for gain matching
	MinLUFS float64
}

// LoopArmed reports whether a complete A/B loop is set.
func (s PlayerSnapshot) LoopArmed() bool {
	return s.LoopStart != 0 && s.LoopStop != 0
}
