// Package service provides business logic for the Audition application.
package service

import (
	"iter"
	"log/slog"

	"github.com/google/uuid"

	"github.com/audition-player/audition/internal/domain"
	"github.com/audition-player/audition/internal/ports"
)

// TracklistService is the authoritative ordered sequence of tracks, plus the
// incrementally maintained minimum-LUFS aggregate used for gain matching.
//
// Thread affinity: all methods must be called on the dispatcher goroutine.
// The tracklist is deliberately not locked internally; producers (import
// workers) never touch it directly but post completed tracks through the
// dispatcher, which is what keeps the whole structure single-threaded.
type TracklistService struct {
	logger *slog.Logger
	player *PlayerService
	bus    ports.EventBus

	entries []tracklistEntry
	minLUFS float64
}

// tracklistEntry binds one entry identity to the track it owns.
type tracklistEntry struct {
	id    domain.EntryID
	track *domain.Track
}

// NewTracklistService creates a new tracklist service.
func NewTracklistService(
	logger *slog.Logger,
	player *PlayerService,
	bus ports.EventBus,
) *TracklistService {
	return &TracklistService{
		logger: logger,
		player: player,
		bus:    bus,
	}
}

// Insert adds a probed track adjacent to the anchor, or appends when the
// anchor is nil or its entry has since been removed. Insert never fails:
// probing has already vetted the track.
//
// The aggregate folds by comparison on insertion; only removal needs a
// rescan.
func (s *TracklistService) Insert(track *domain.Track, anchor *domain.Anchor) domain.EntryID {
	entry := tracklistEntry{
		id:    domain.EntryID(uuid.NewString()),
		track: track,
	}

	idx := len(s.entries)
	if anchor != nil {
		if i := s.indexOf(anchor.Entry); i >= 0 {
			idx = i
			if anchor.Position == domain.After {
				idx = i + 1
			}
		}
	}

	s.entries = append(s.entries, tracklistEntry{})
	copy(s.entries[idx+1:], s.entries[idx:])
	s.entries[idx] = entry

	if len(s.entries) == 1 {
		s.minLUFS = track.LUFS
	} else {
		s.minLUFS = min(s.minLUFS, track.LUFS)
	}
	s.player.SetMinLUFS(s.minLUFS)

	s.logger.Debug("track inserted",
		slog.String("entry", string(entry.id)),
		slog.String("uri", track.URI),
		slog.Float64("lufs", track.LUFS))

	s.publishUpdate()
	return entry.id
}

// Remove deletes an entry and the track it owns. A stale ID is a silent
// no-op: the entry may have raced a concurrent deletion.
//
// The minimum cannot be decremented safely, so it is recomputed by full scan.
// Removal only ever happens on user action, so the O(n) rescan is fine.
func (s *TracklistService) Remove(id domain.EntryID) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}

	s.entries = append(s.entries[:i], s.entries[i+1:]...)

	s.minLUFS = 0
	for j, e := range s.entries {
		if j == 0 || e.track.LUFS < s.minLUFS {
			s.minLUFS = e.track.LUFS
		}
	}
	s.player.SetMinLUFS(s.minLUFS)

	// The controller may hold a reference into the removed entry.
	s.player.EntryRemoved(id)

	s.publishUpdate()
}

// Move relocates an entry next to the anchor without destroying or reprobing
// its track. Stale entry or anchor IDs are silent no-ops. The aggregate is
// untouched: moving changes order only.
func (s *TracklistService) Move(id domain.EntryID, anchor domain.Anchor) {
	if id == anchor.Entry {
		return
	}

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	if s.indexOf(anchor.Entry) < 0 {
		return
	}

	entry := s.entries[i]
	s.entries = append(s.entries[:i], s.entries[i+1:]...)

	// Anchor index is re-resolved after the removal shifted the slice.
	j := s.indexOf(anchor.Entry)
	idx := j
	if anchor.Position == domain.After {
		idx = j + 1
	}

	s.entries = append(s.entries, tracklistEntry{})
	copy(s.entries[idx+1:], s.entries[idx:])
	s.entries[idx] = entry

	s.publishUpdate()
}

// All returns an in-order iterator over the current entries. The sequence is
// a consistent snapshot as long as the caller keeps to the dispatcher
// goroutine, where no mutation can be in flight during iteration.
func (s *TracklistService) All() iter.Seq2[domain.EntryID, *domain.Track] {
	return func(yield func(domain.EntryID, *domain.Track) bool) {
		for _, e := range s.entries {
			if !yield(e.id, e.track) {
				return
			}
		}
	}
}

// Track returns the track owned by an entry, or nil for a stale ID.
func (s *TracklistService) Track(id domain.EntryID) *domain.Track {
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i].track
	}
	return nil
}

// Len returns the number of entries.
func (s *TracklistService) Len() int {
	return len(s.entries)
}

// MinLUFS returns the loudness floor: the minimum LUFS over all current
// tracks, or 0 when the tracklist is empty.
func (s *TracklistService) MinLUFS() float64 {
	return s.minLUFS
}

// indexOf returns the position of an entry, or -1.
func (s *TracklistService) indexOf(id domain.EntryID) int {
	for i, e := range s.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (s *TracklistService) publishUpdate() {
	s.bus.Publish(domain.NewTracklistUpdatedEvent(len(s.entries), s.minLUFS))
}
