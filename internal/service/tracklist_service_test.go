package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audition-player/audition/internal/adapter/eventbus"
	"github.com/audition-player/audition/internal/adapter/media/mock"
	"github.com/audition-player/audition/internal/domain"
	"github.com/audition-player/audition/internal/logger"
)

// Helper to create a tracklist with its player and bus
func newTestTracklist() (*TracklistService, *PlayerService, *eventbus.SyncEventBus) {
	engine := mock.NewEngine()
	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	player := NewPlayerService(logger.NewTestLogger(), engine, bus)
	tracklist := NewTracklistService(logger.NewTestLogger(), player, bus)
	return tracklist, player, bus
}

// Helper to collect the tracklist order as URIs
func trackOrder(s *TracklistService) []string {
	var uris []string
	for _, track := range s.All() {
		uris = append(uris, track.URI)
	}
	return uris
}

func TestTracklistService_InsertAppends(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	tracklist.Insert(newTestTrack("B", "/b.flac", -12), nil)
	tracklist.Insert(newTestTrack("C", "/c.flac", -16), nil)

	assert.Equal(t, []string{"/a.flac", "/b.flac", "/c.flac"}, trackOrder(tracklist))
	assert.Equal(t, 3, tracklist.Len())
}

func TestTracklistService_InsertAtAnchor(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	a := tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	tracklist.Insert(newTestTrack("B", "/b.flac", -12), nil)

	tracklist.Insert(newTestTrack("X", "/x.flac", -13), &domain.Anchor{
		Entry:    a,
		Position: domain.After,
	})
	assert.Equal(t, []string{"/a.flac", "/x.flac", "/b.flac"}, trackOrder(tracklist))

	tracklist.Insert(newTestTrack("Y", "/y.flac", -13), &domain.Anchor{
		Entry:    a,
		Position: domain.Before,
	})
	assert.Equal(t, []string{"/y.flac", "/a.flac", "/x.flac", "/b.flac"}, trackOrder(tracklist))
}

func TestTracklistService_InsertStaleAnchorAppends(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	a := tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	tracklist.Insert(newTestTrack("B", "/b.flac", -12), nil)
	tracklist.Remove(a)

	// The anchor entry died while this import was in flight
	tracklist.Insert(newTestTrack("X", "/x.flac", -13), &domain.Anchor{
		Entry:    a,
		Position: domain.Before,
	})

	assert.Equal(t, []string{"/b.flac", "/x.flac"}, trackOrder(tracklist))
}

func TestTracklistService_MinLUFS_FoldsOnInsert(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	assert.Equal(t, 0.0, tracklist.MinLUFS())

	tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	assert.Equal(t, -14.0, tracklist.MinLUFS())

	tracklist.Insert(newTestTrack("B", "/b.flac", -18), nil)
	assert.Equal(t, -18.0, tracklist.MinLUFS())

	// A louder track never raises the floor
	tracklist.Insert(newTestTrack("C", "/c.flac", -9), nil)
	assert.Equal(t, -18.0, tracklist.MinLUFS())
}

func TestTracklistService_MinLUFS_RescansOnRemove(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	quiet := tracklist.Insert(newTestTrack("B", "/b.flac", -18), nil)
	tracklist.Insert(newTestTrack("C", "/c.flac", -9), nil)
	require.Equal(t, -18.0, tracklist.MinLUFS())

	// Removing the quietest track raises the floor to the next minimum
	tracklist.Remove(quiet)
	assert.Equal(t, -14.0, tracklist.MinLUFS())
}

func TestTracklistService_MinLUFS_EmptyAfterRemovals(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	a := tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	tracklist.Remove(a)

	assert.Equal(t, 0, tracklist.Len())
	assert.Equal(t, 0.0, tracklist.MinLUFS())
}

func TestTracklistService_MinLUFS_MirroredIntoPlayer(t *testing.T) {
	tracklist, player, _ := newTestTracklist()

	tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	tracklist.Insert(newTestTrack("B", "/b.flac", -18), nil)

	assert.Equal(t, -18.0, player.Snapshot().MinLUFS)
}

func TestTracklistService_RemoveStaleIsNoop(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)

	tracklist.Remove("no-such-entry")

	assert.Equal(t, 1, tracklist.Len())
	assert.Equal(t, -14.0, tracklist.MinLUFS())
}

func TestTracklistService_RemoveCurrentStopsPlayback(t *testing.T) {
	tracklist, player, _ := newTestTracklist()

	a := tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	player.SelectTrack(a, tracklist.Track(a))
	require.NotNil(t, player.Snapshot().Current)

	tracklist.Remove(a)

	assert.Nil(t, player.Snapshot().Current)
	assert.Equal(t, domain.NoEntry, player.Snapshot().CurrentEntry)
}

func TestTracklistService_Move(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	a := tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	tracklist.Insert(newTestTrack("B", "/b.flac", -12), nil)
	c := tracklist.Insert(newTestTrack("C", "/c.flac", -16), nil)

	tracklist.Move(a, domain.Anchor{Entry: c, Position: domain.After})

	assert.Equal(t, []string{"/b.flac", "/c.flac", "/a.flac"}, trackOrder(tracklist))
	assert.Equal(t, 3, tracklist.Len())

	// Identity and track survive the move
	require.NotNil(t, tracklist.Track(a))
	assert.Equal(t, "/a.flac", tracklist.Track(a).URI)

	// Order changes never touch the aggregate
	assert.Equal(t, -16.0, tracklist.MinLUFS())
}

func TestTracklistService_MoveBeforeFirst(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	a := tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	tracklist.Insert(newTestTrack("B", "/b.flac", -12), nil)
	c := tracklist.Insert(newTestTrack("C", "/c.flac", -16), nil)

	tracklist.Move(c, domain.Anchor{Entry: a, Position: domain.Before})

	assert.Equal(t, []string{"/c.flac", "/a.flac", "/b.flac"}, trackOrder(tracklist))
}

func TestTracklistService_MoveStaleIsNoop(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	a := tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	b := tracklist.Insert(newTestTrack("B", "/b.flac", -12), nil)

	tracklist.Move("no-such-entry", domain.Anchor{Entry: a, Position: domain.After})
	tracklist.Move(a, domain.Anchor{Entry: "no-such-entry", Position: domain.After})
	tracklist.Move(b, domain.Anchor{Entry: b, Position: domain.Before})

	assert.Equal(t, []string{"/a.flac", "/b.flac"}, trackOrder(tracklist))
}

func TestTracklistService_Track(t *testing.T) {
	tracklist, _, _ := newTestTracklist()

	a := tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)

	require.NotNil(t, tracklist.Track(a))
	assert.Equal(t, "A", tracklist.Track(a).Name)
	assert.Nil(t, tracklist.Track("no-such-entry"))
}

func TestTracklistService_PublishesUpdates(t *testing.T) {
	tracklist, _, bus := newTestTracklist()

	var updates []domain.TracklistUpdatedEvent
	bus.Subscribe(domain.EventTracklistUpdated, func(e domain.Event) {
		updates = append(updates, e.(domain.TracklistUpdatedEvent))
	})

	a := tracklist.Insert(newTestTrack("A", "/a.flac", -14), nil)
	tracklist.Insert(newTestTrack("B", "/b.flac", -18), nil)
	tracklist.Remove(a)

	require.Len(t, updates, 3)
	assert.Equal(t, 1, updates[0].Count)
	assert.Equal(t, -14.0, updates[0].MinLUFS)
	assert.Equal(t, 2, updates[1].Count)
	assert.Equal(t, -18.0, updates[1].MinLUFS)
	assert.Equal(t, 1, updates[2].Count)
	assert.Equal(t, -18.0, updates[2].MinLUFS)
}
