package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audition-player/audition/internal/adapter/media/mock"
	"github.com/audition-player/audition/internal/config"
	"github.com/audition-player/audition/internal/domain"
)

// testOptions builds headless options with a mock engine and no ffmpeg.
func testOptions() Options {
	return Options{
		Env: config.Config{
			FFmpegPath:    "",
			ImportWorkers: 2,
			LogLevel:      "WARN",
			LogFormat:     "text",
		},
		UseMockEngine: true,
		Headless:      true,
	}
}

// writeAudioFile creates a file that sniffs as MP3.
func writeAudioFile(t *testing.T, name string) string {
	t.Helper()
	header := append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), make([]byte, 128)...)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, header, 0o644))
	return path
}

// runOn executes fn on the application's dispatcher goroutine and waits.
func runOn(t *testing.T, app *Application, fn func()) {
	t.Helper()
	done := make(chan struct{})
	app.Dispatcher().Post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher task timed out")
	}
}

func TestNewApplication(t *testing.T) {
	app, err := NewApplication(testOptions())
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.NotNil(t, app.Player())
	assert.NotNil(t, app.Tracklist())
	assert.NotNil(t, app.Imports())
	assert.NotNil(t, app.Dispatcher())
	assert.NotNil(t, app.EventBus())

	app.Shutdown()
}

func TestApplicationLifecycle(t *testing.T) {
	app, err := NewApplication(testOptions())
	require.NoError(t, err)

	// Headless Run does not block
	app.Run()

	app.Shutdown()

	// Shutdown again should not panic
	app.Shutdown()
}

func TestApplicationImportFlow(t *testing.T) {
	app, err := NewApplication(testOptions())
	require.NoError(t, err)
	defer app.Shutdown()

	path := writeAudioFile(t, "song.mp3")

	require.NoError(t, app.Imports().Submit(path, nil))
	app.Imports().Shutdown()

	runOn(t, app, func() {
		require.Equal(t, 1, app.Tracklist().Len())
		for _, track := range app.Tracklist().All() {
			assert.Equal(t, path, track.URI)
		}
	})
}

func TestApplicationNotificationBridge(t *testing.T) {
	app, err := NewApplication(testOptions())
	require.NoError(t, err)
	defer app.Shutdown()

	engine := app.Engine().(*mock.Engine)

	// A notification from the engine callback goroutine must land in the
	// controller via the dispatcher.
	engine.Notify(domain.NewPositionEvent(21.5))

	runOn(t, app, func() {
		assert.Equal(t, 21.5, app.Player().Snapshot().Position)
	})
}

func TestApplicationShutdownDetachesController(t *testing.T) {
	app, err := NewApplication(testOptions())
	require.NoError(t, err)

	engine := app.Engine().(*mock.Engine)
	engine.Notify(domain.NewPositionEvent(5))

	app.Shutdown()

	// The terminal shutdown notification went through before the dispatcher
	// closed; nothing later can mutate the controller.
	assert.Equal(t, 5.0, app.Player().Snapshot().Position)
}
