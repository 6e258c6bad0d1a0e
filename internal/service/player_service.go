// Package service provides business logic for the Audition application.
package service

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/audition-player/audition/internal/domain"
	"github.com/audition-player/audition/internal/ports"
)

// loadCompensation is the fixed forward offset (seconds) applied to non-zero
// start positions to offset engine load latency.
const loadCompensation = 0.050

// PlayerService is the playback controller: it owns the current track
// reference, transport state, loop markers, bookmark and loudness floor.
//
// Transport intents are not synchronous: each one issues an asynchronous
// command to the media engine, and the authoritative state change happens
// only when the engine's notification reports the corresponding property
// change. Local state is never optimistically flipped on command issue, with
// one documented exception: LoadTrack records the requested track
// immediately, because bookkeeping must track "what we asked for"
// independent of engine acknowledgment.
//
// Thread affinity: all methods must be called on the dispatcher goroutine.
// Engine notifications arrive on the engine callback goroutine and are
// bridged to HandleNotification by the application wiring.
type PlayerService struct {
	logger *slog.Logger
	engine ports.MediaEngine
	bus    ports.EventBus

	// current is a weak reference into the tracklist; the tracklist clears
	// it through EntryRemoved when the entry dies
	current      *domain.Track
	currentEntry domain.EntryID

	position float64
	state    domain.PlayState

	// loop points and bookmark, 0 = unset
	loopStart float64
	loopStop  float64
	marker    float64

	returnToMark bool
	minLUFS      float64

	// detached is set once the engine delivered its terminal shutdown
	// notification; later notifications from that instance are ignored
	detached bool
}

// NewPlayerService creates a new playback controller.
func NewPlayerService(
	logger *slog.Logger,
	engine ports.MediaEngine,
	bus ports.EventBus,
) *PlayerService {
	return &PlayerService{
		logger: logger,
		engine: engine,
		bus:    bus,
		state:  domain.StateStopped,
	}
}

// TogglePause cycles the engine pause flag. The resulting state is observed
// asynchronously through the core-idle notification.
func (s *PlayerService) TogglePause() {
	s.command("cycle", "pause")
}

// Stop halts playback.
func (s *PlayerService) Stop() {
	s.command("stop")
}

// SeekRelative seeks by delta seconds from the current position.
func (s *PlayerService) SeekRelative(delta float64) {
	s.command("seek", formatSeconds(delta))
}

// SeekAbsolute seeks to an absolute position, clamped to the duration of the
// current track. No-op when nothing is loaded.
func (s *PlayerService) SeekAbsolute(position float64) {
	if s.current == nil {
		return
	}
	if position > s.current.Duration {
		position = s.current.Duration
	}
	if position < 0 {
		position = 0
	}
	s.commandAsync("seek", formatSeconds(position), "absolute+keyframes")
}

// LoadTrack replaces the loaded file with track, starting at startPosition
// seconds. Non-zero starts get the fixed load compensation added.
func (s *PlayerService) LoadTrack(entry domain.EntryID, track *domain.Track, startPosition float64) {
	if startPosition < 0 {
		startPosition = 0
	}
	// compensation for the engine's load time-gap
	if startPosition > 0 {
		startPosition += loadCompensation
	}

	s.current = track
	s.currentEntry = entry

	s.commandAsync("loadfile", track.URI, "replace", "start="+formatSeconds(startPosition))

	s.logger.Debug("track load requested",
		slog.String("uri", track.URI),
		slog.Float64("start", startPosition))

	s.publishUpdate()
}

// MarkBookmark remembers the current engine-reported position. The position
// is not re-queried; the last notification value is what gets marked.
func (s *PlayerService) MarkBookmark() {
	s.marker = s.position
	s.publishUpdate()
}

// ToggleLoop advances the A/B loop through its three-phase cycle:
// both points set clears the loop, a lone start point marks the stop point,
// and otherwise the start point is (re)marked with any stale stop point
// cleared. The engine's ab-loop command is issued after the markers update.
func (s *PlayerService) ToggleLoop() {
	switch {
	case s.loopStart != 0 && s.loopStop != 0:
		// cancel loop
		s.loopStart = 0
		s.loopStop = 0

	case s.loopStart != 0:
		// mark loop stop (B)
		s.loopStop = s.position

	default:
		// mark loop start (A)
		s.loopStop = 0
		s.loopStart = s.position
	}

	s.command("ab-loop")
	s.publishUpdate()
}

// ToggleReturnToMark flips the return-to-mark flag, but only while no
// bookmark is set: the two convenience features are mutually exclusive.
// The bookmark is always cleared.
func (s *PlayerService) ToggleReturnToMark() {
	if s.marker == 0 {
		s.returnToMark = !s.returnToMark
	}
	s.marker = 0
	s.publishUpdate()
}

// SelectTrack implements the track-selection policy for playlist selection
// changes: resume from the bookmark if set, from zero when return-to-mark is
// on, otherwise from the last engine-reported position. A nil track (nothing
// selected, e.g. the last entry was removed) stops playback and clears the
// current reference.
func (s *PlayerService) SelectTrack(entry domain.EntryID, track *domain.Track) {
	if track == nil {
		s.Stop()
		s.current = nil
		s.currentEntry = domain.NoEntry
		s.publishUpdate()
		return
	}

	var start float64
	if s.marker != 0 {
		start = s.marker
	} else if !s.returnToMark {
		start = s.position
	}

	s.LoadTrack(entry, track, start)
}

// EntryRemoved clears the current-track reference when the tracklist removes
// the entry it points into, stopping playback of the now-dead track.
func (s *PlayerService) EntryRemoved(entry domain.EntryID) {
	if s.currentEntry != entry {
		return
	}
	s.Stop()
	s.current = nil
	s.currentEntry = domain.NoEntry
	s.publishUpdate()
}

// SetMinLUFS mirrors the tracklist loudness floor into the controller state.
func (s *PlayerService) SetMinLUFS(lufs float64) {
	s.minLUFS = lufs
}

// HandleNotification applies an engine notification to controller state.
// Unknown event kinds are ignored. After the terminal shutdown notification
// the handler's involvement with this engine instance ends.
func (s *PlayerService) HandleNotification(event domain.Event) {
	if s.detached {
		return
	}

	switch e := event.(type) {
	case domain.PositionEvent:
		s.position = e.Position
		s.publishUpdate()

	case domain.IdleEvent:
		if e.Idle {
			s.state = domain.StatePaused
		} else {
			s.state = domain.StatePlaying
		}
		s.publishUpdate()

	case domain.DurationEvent:
		// Only meaningful while a track is loaded
		if s.current != nil {
			s.current.Duration = e.Duration
			s.publishUpdate()
		}

	case domain.EngineLogEvent:
		s.logger.Info("engine log",
			slog.String("level", e.Level),
			slog.String("text", strings.TrimRight(e.Text, "\n")))

	case domain.EngineShutdownEvent:
		s.detached = true
		s.logger.Info("engine shut down, controller detached")
	}
}

// Snapshot returns a read-only copy of the controller state for rendering.
func (s *PlayerService) Snapshot() domain.PlayerSnapshot {
	return domain.PlayerSnapshot{
		Current:      s.current,
		CurrentEntry: s.currentEntry,
		Position:     s.position,
		State:        s.state,
		LoopStart:    s.loopStart,
		LoopStop:     s.loopStop,
		Marker:       s.marker,
		ReturnToMark: s.returnToMark,
		MinLUFS:      s.minLUFS,
	}
}

// command issues a synchronous engine command. A negative status is logged;
// local state is never rolled back for it.
func (s *PlayerService) command(args ...string) {
	if err := s.engine.Command(args...); err != nil {
		s.logger.Warn("engine command failed",
			slog.String("command", args[0]),
			slog.Any("error", err))
	}
}

// commandAsync issues a fire-and-forget engine command.
func (s *PlayerService) commandAsync(args ...string) {
	if err := s.engine.CommandAsync(args...); err != nil {
		s.logger.Warn("engine async command failed",
			slog.String("command", args[0]),
			slog.Any("error", err))
	}
}

func (s *PlayerService) publishUpdate() {
	s.bus.Publish(domain.NewPlayerUpdatedEvent(s.Snapshot()))
}

// formatSeconds renders a position argument for the engine. The decimal
// separator must always be a dot regardless of the process locale.
func formatSeconds(secs float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(secs, 'f', 6, 64), ",", ".")
}
