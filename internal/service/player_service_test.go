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

// Helper to create a test player service
func newTestPlayerService() (*PlayerService, *mock.Engine, *eventbus.SyncEventBus) {
	engine := mock.NewEngine()
	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	service := NewPlayerService(logger.NewTestLogger(), engine, bus)
	return service, engine, bus
}

// Helper to create a test track
func newTestTrack(name, uri string, lufs float64) *domain.Track {
	return &domain.Track{
		Name: name,
		URI:  uri,
		LUFS: lufs,
		Peak: lufs + 10,
	}
}

func TestPlayerService_TogglePause(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	service.TogglePause()

	assert.Equal(t, []string{"cycle", "pause"}, engine.LastCommand())

	// The transport state does not flip on the command; only the engine's
	// core-idle notification changes it.
	assert.Equal(t, domain.StateStopped, service.Snapshot().State)
}

func TestPlayerService_Stop(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	service.Stop()

	assert.Equal(t, []string{"stop"}, engine.LastCommand())
}

func TestPlayerService_SeekRelative(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	service.SeekRelative(-1)
	assert.Equal(t, []string{"seek", "-1.000000"}, engine.LastCommand())

	service.SeekRelative(1)
	assert.Equal(t, []string{"seek", "1.000000"}, engine.LastCommand())
}

func TestPlayerService_SeekAbsolute_ClampsToDuration(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	track := newTestTrack("Song", "/music/song.flac", -14)
	track.Duration = 180
	service.LoadTrack("entry-1", track, 0)

	service.SeekAbsolute(500)
	assert.Equal(t, []string{"seek", "180.000000", "absolute+keyframes"}, engine.LastCommand())

	service.SeekAbsolute(-3)
	assert.Equal(t, []string{"seek", "0.000000", "absolute+keyframes"}, engine.LastCommand())
}

func TestPlayerService_SeekAbsolute_NothingLoaded(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	service.SeekAbsolute(10)

	assert.Empty(t, engine.Commands())
}

func TestPlayerService_LoadTrack_FromStart(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	track := newTestTrack("Song", "/music/song.flac", -14)
	service.LoadTrack("entry-1", track, 0)

	// A zero start gets no compensation
	assert.Equal(t,
		[]string{"loadfile", "/music/song.flac", "replace", "start=0.000000"},
		engine.LastCommand())

	snapshot := service.Snapshot()
	require.NotNil(t, snapshot.Current)
	assert.Equal(t, "/music/song.flac", snapshot.Current.URI)
	assert.Equal(t, domain.EntryID("entry-1"), snapshot.CurrentEntry)
}

func TestPlayerService_LoadTrack_CompensatesNonZeroStart(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	track := newTestTrack("Song", "/music/song.flac", -14)
	service.LoadTrack("entry-1", track, 5.2)

	// 5.2 plus the 50 ms load compensation, dot as decimal separator
	assert.Equal(t,
		[]string{"loadfile", "/music/song.flac", "replace", "start=5.250000"},
		engine.LastCommand())
}

func TestPlayerService_MarkBookmark(t *testing.T) {
	service, _, _ := newTestPlayerService()

	service.HandleNotification(domain.NewPositionEvent(12.0))
	service.MarkBookmark()

	assert.Equal(t, 12.0, service.Snapshot().Marker)
}

func TestPlayerService_ToggleLoop_ThreePhaseCycle(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	// Phase 1: mark A at the current position
	service.HandleNotification(domain.NewPositionEvent(10))
	service.ToggleLoop()

	snapshot := service.Snapshot()
	assert.Equal(t, 10.0, snapshot.LoopStart)
	assert.Equal(t, 0.0, snapshot.LoopStop)
	assert.False(t, snapshot.LoopArmed())

	// Phase 2: mark B, loop armed
	service.HandleNotification(domain.NewPositionEvent(20))
	service.ToggleLoop()

	snapshot = service.Snapshot()
	assert.Equal(t, 10.0, snapshot.LoopStart)
	assert.Equal(t, 20.0, snapshot.LoopStop)
	assert.True(t, snapshot.LoopArmed())

	// Phase 3: clear both
	service.ToggleLoop()

	snapshot = service.Snapshot()
	assert.Equal(t, 0.0, snapshot.LoopStart)
	assert.Equal(t, 0.0, snapshot.LoopStop)
	assert.False(t, snapshot.LoopArmed())

	// Every phase issued the engine command
	var loops int
	for _, cmd := range engine.Commands() {
		if cmd[0] == "ab-loop" {
			loops++
		}
	}
	assert.Equal(t, 3, loops)
}

func TestPlayerService_ToggleLoop_RestartsFromNewStart(t *testing.T) {
	service, _, _ := newTestPlayerService()

	service.HandleNotification(domain.NewPositionEvent(10))
	service.ToggleLoop()
	service.HandleNotification(domain.NewPositionEvent(20))
	service.ToggleLoop()
	service.ToggleLoop()

	// Fourth toggle starts a fresh cycle at the current position
	service.HandleNotification(domain.NewPositionEvent(42))
	service.ToggleLoop()

	snapshot := service.Snapshot()
	assert.Equal(t, 42.0, snapshot.LoopStart)
	assert.Equal(t, 0.0, snapshot.LoopStop)
}

func TestPlayerService_ToggleReturnToMark(t *testing.T) {
	service, _, _ := newTestPlayerService()

	service.ToggleReturnToMark()
	assert.True(t, service.Snapshot().ReturnToMark)

	service.ToggleReturnToMark()
	assert.False(t, service.Snapshot().ReturnToMark)
}

func TestPlayerService_ToggleReturnToMark_BookmarkWins(t *testing.T) {
	service, _, _ := newTestPlayerService()

	service.HandleNotification(domain.NewPositionEvent(7))
	service.MarkBookmark()
	require.Equal(t, 7.0, service.Snapshot().Marker)

	// With a bookmark set, the toggle only consumes the bookmark
	service.ToggleReturnToMark()

	snapshot := service.Snapshot()
	assert.False(t, snapshot.ReturnToMark)
	assert.Equal(t, 0.0, snapshot.Marker)

	// Now the flag flips
	service.ToggleReturnToMark()
	assert.True(t, service.Snapshot().ReturnToMark)
}

func TestPlayerService_SelectTrack_ResumesFromBookmark(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	service.HandleNotification(domain.NewPositionEvent(12.0))
	service.MarkBookmark()

	track := newTestTrack("Other", "/music/other.flac", -12)
	service.SelectTrack("entry-2", track)

	// Selection resumes at the bookmark, 12.0 plus compensation
	assert.Equal(t,
		[]string{"loadfile", "/music/other.flac", "replace", "start=12.050000"},
		engine.LastCommand())
}

func TestPlayerService_SelectTrack_ReturnToMarkStartsFromZero(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	service.ToggleReturnToMark()
	service.HandleNotification(domain.NewPositionEvent(33))

	track := newTestTrack("Other", "/music/other.flac", -12)
	service.SelectTrack("entry-2", track)

	assert.Equal(t,
		[]string{"loadfile", "/music/other.flac", "replace", "start=0.000000"},
		engine.LastCommand())
}

func TestPlayerService_SelectTrack_DefaultsToCurrentPosition(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	service.HandleNotification(domain.NewPositionEvent(33))

	track := newTestTrack("Other", "/music/other.flac", -12)
	service.SelectTrack("entry-2", track)

	// A/B comparison: the new track picks up where the old one was
	assert.Equal(t,
		[]string{"loadfile", "/music/other.flac", "replace", "start=33.050000"},
		engine.LastCommand())
}

func TestPlayerService_SelectTrack_NilStops(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	track := newTestTrack("Song", "/music/song.flac", -14)
	service.LoadTrack("entry-1", track, 0)

	service.SelectTrack(domain.NoEntry, nil)

	assert.Equal(t, []string{"stop"}, engine.LastCommand())
	snapshot := service.Snapshot()
	assert.Nil(t, snapshot.Current)
	assert.Equal(t, domain.NoEntry, snapshot.CurrentEntry)
}

func TestPlayerService_EntryRemoved_CurrentTrack(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	track := newTestTrack("Song", "/music/song.flac", -14)
	service.LoadTrack("entry-1", track, 0)

	service.EntryRemoved("entry-1")

	assert.Equal(t, []string{"stop"}, engine.LastCommand())
	assert.Nil(t, service.Snapshot().Current)
}

func TestPlayerService_EntryRemoved_OtherTrack(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	track := newTestTrack("Song", "/music/song.flac", -14)
	service.LoadTrack("entry-1", track, 0)
	before := len(engine.Commands())

	service.EntryRemoved("entry-2")

	// No stop issued, current untouched
	assert.Len(t, engine.Commands(), before)
	assert.NotNil(t, service.Snapshot().Current)
}

func TestPlayerService_HandleNotification_StateTransitions(t *testing.T) {
	service, _, _ := newTestPlayerService()

	service.HandleNotification(domain.NewIdleEvent(false))
	assert.Equal(t, domain.StatePlaying, service.Snapshot().State)

	service.HandleNotification(domain.NewIdleEvent(true))
	assert.Equal(t, domain.StatePaused, service.Snapshot().State)
}

func TestPlayerService_HandleNotification_Duration(t *testing.T) {
	service, _, _ := newTestPlayerService()

	// Duration without a loaded track is dropped
	service.HandleNotification(domain.NewDurationEvent(200))
	assert.Nil(t, service.Snapshot().Current)

	track := newTestTrack("Song", "/music/song.flac", -14)
	service.LoadTrack("entry-1", track, 0)

	service.HandleNotification(domain.NewDurationEvent(200))
	assert.Equal(t, 200.0, service.Snapshot().Current.Duration)
}

func TestPlayerService_HandleNotification_DetachesAfterShutdown(t *testing.T) {
	service, _, _ := newTestPlayerService()

	service.HandleNotification(domain.NewPositionEvent(5))
	require.Equal(t, 5.0, service.Snapshot().Position)

	service.HandleNotification(domain.NewEngineShutdownEvent())

	// Notifications after the terminal shutdown are ignored
	service.HandleNotification(domain.NewPositionEvent(99))
	assert.Equal(t, 5.0, service.Snapshot().Position)
}

func TestPlayerService_PublishesSnapshotOnUpdate(t *testing.T) {
	service, _, bus := newTestPlayerService()

	var snapshots []domain.PlayerSnapshot
	bus.Subscribe(domain.EventPlayerUpdated, func(e domain.Event) {
		snapshots = append(snapshots, e.(domain.PlayerUpdatedEvent).Snapshot)
	})

	service.HandleNotification(domain.NewPositionEvent(3))
	service.MarkBookmark()

	require.Len(t, snapshots, 2)
	assert.Equal(t, 3.0, snapshots[0].Position)
	assert.Equal(t, 3.0, snapshots[1].Marker)
}

func TestPlayerService_CommandFailureKeepsState(t *testing.T) {
	service, engine, _ := newTestPlayerService()

	engine.FailCommand("ab-loop", domain.NewEngineCommandError("ab-loop", -1, "property unavailable"))

	service.HandleNotification(domain.NewPositionEvent(10))
	service.ToggleLoop()

	// Marker state advances even when the engine rejects the command
	assert.Equal(t, 10.0, service.Snapshot().LoopStart)
}
