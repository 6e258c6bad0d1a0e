// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/audition-player/audition/internal/adapter/dispatch"
	"github.com/audition-player/audition/internal/adapter/eventbus"
	"github.com/audition-player/audition/internal/adapter/media/mock"
	"github.com/audition-player/audition/internal/adapter/media/mpv"
	"github.com/audition-player/audition/internal/adapter/probe"
	fyneui "github.com/audition-player/audition/internal/adapter/ui/fyne"
	"github.com/audition-player/audition/internal/config"
	"github.com/audition-player/audition/internal/domain"
	"github.com/audition-player/audition/internal/logger"
	"github.com/audition-player/audition/internal/ports"
	"github.com/audition-player/audition/internal/service"
)

// AppID is the unique Fyne application identifier.
const AppID = "com.audition.app"

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus   ports.EventBus
	engine     ports.MediaEngine
	dispatcher ports.Dispatcher

	// Services
	playerService    *service.PlayerService
	tracklistService *service.TracklistService
	importService    *service.ImportService

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow
}

// Options holds the wiring knobs beyond the environment configuration.
type Options struct {
	// Env is the environment-derived configuration.
	Env config.Config

	// UseMockEngine replaces the mpv process with an in-memory engine.
	// Tests use this; a desktop session never does.
	UseMockEngine bool

	// Headless skips the Fyne window and drives the UI-affine goroutine with
	// an internal serial dispatcher. Used by tests.
	Headless bool

	// TestFyneApp allows injecting a test Fyne app (nil for production).
	TestFyneApp fyne.App
}

// DefaultOptions returns production options on top of the given environment.
func DefaultOptions(env config.Config) Options {
	return Options{Env: env}
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(opts Options) (*Application, error) {
	app := &Application{}

	// Step 1: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  logger.ParseLevel(opts.Env.LogLevel),
		Format: opts.Env.LogFormat,
	})
	app.logger.Info("initializing application",
		slog.String("version", GetVersionInfo().FullString()))

	// Step 2: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(
		app.logger.With(slog.String("component", "eventbus")))

	// Step 3: Create the media engine
	if opts.UseMockEngine {
		app.engine = mock.NewEngine()
	} else {
		engine, err := mpv.New(mpv.Config{
			Binary:     opts.Env.MPVPath,
			SocketPath: opts.Env.MPVSocket,
			Logger:     app.logger.With(slog.String("engine", "mpv")),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start media engine: %w", err)
		}
		app.engine = engine
	}

	// Step 4: Create the dispatcher that owns the UI-affine goroutine
	if opts.Headless {
		app.dispatcher = dispatch.NewSerial(
			app.logger.With(slog.String("component", "dispatcher")))
	} else {
		// Step 4.5: the Fyne dispatcher rides the window event loop
		if opts.TestFyneApp != nil {
			app.fyneApp = opts.TestFyneApp
		} else {
			app.fyneApp = fyneapp.NewWithID(AppID)
		}
		app.dispatcher = dispatch.NewFyne()
	}

	// Step 5: Create services (with dependency injection)
	app.playerService = service.NewPlayerService(
		app.logger.With(slog.String("service", "player")),
		app.engine,
		app.eventBus,
	)

	app.tracklistService = service.NewTracklistService(
		app.logger.With(slog.String("service", "tracklist")),
		app.playerService,
		app.eventBus,
	)

	prober := probe.New(
		app.logger.With(slog.String("component", "prober")),
		app.loudnessScanner(opts),
	)

	app.importService = service.NewImportService(
		app.logger.With(slog.String("service", "import")),
		prober,
		app.dispatcher,
		app.tracklistService,
		app.eventBus,
		opts.Env.ImportWorkers,
	)

	// Step 6: Bridge engine notifications onto the UI-affine goroutine.
	// The engine invokes the handler on its own callback goroutine; every
	// notification crosses through the dispatcher before touching state.
	app.engine.SetNotificationHandler(func(event domain.Event) {
		app.dispatcher.Post(func() {
			app.playerService.HandleNotification(event)
		})
	})

	// Step 7: Create UI and presenter
	if !opts.Headless {
		app.mainWindow = fyneui.NewMainWindow(app.fyneApp)

		app.presenter = fyneui.NewPresenter(
			app.logger.With(slog.String("component", "presenter")),
			app.eventBus,
			app.dispatcher,
			app.playerService,
			app.tracklistService,
			app.importService,
			app.mainWindow,
		)

		app.mainWindow.SetPresenter(app.presenter)
	}

	return app, nil
}

// loudnessScanner builds the ffmpeg scanner, or nil when the binary is not
// configured or not installed. Import still works without it.
func (a *Application) loudnessScanner(opts Options) probe.LoudnessScanner {
	if opts.Env.FFmpegPath == "" {
		return nil
	}
	scanner := probe.NewFFmpegScanner(opts.Env.FFmpegPath)
	if !scanner.Available() {
		a.logger.Warn("ffmpeg not found, loudness scan disabled",
			slog.String("binary", opts.Env.FFmpegPath))
		return nil
	}
	return scanner
}

// Player returns the playback controller. Tests drive it directly.
func (a *Application) Player() *service.PlayerService { return a.playerService }

// Tracklist returns the tracklist service.
func (a *Application) Tracklist() *service.TracklistService { return a.tracklistService }

// Imports returns the import pool.
func (a *Application) Imports() *service.ImportService { return a.importService }

// Engine returns the media engine.
func (a *Application) Engine() ports.MediaEngine { return a.engine }

// Dispatcher returns the UI-affine dispatcher.
func (a *Application) Dispatcher() ports.Dispatcher { return a.dispatcher }

// EventBus returns the event bus.
func (a *Application) EventBus() ports.EventBus { return a.eventBus }

// Run starts the application and blocks until the window closes.
// Headless applications return immediately; tests drive them directly.
func (a *Application) Run() {
	a.logger.Info("Audition started")

	if a.mainWindow != nil {
		a.mainWindow.Run()
	}
}

// Shutdown gracefully shuts down the application.
// This should be called via defer in main.go.
func (a *Application) Shutdown() {
	a.logger.Info("shutting down application")

	// Stop the UI first so no new intents arrive
	if a.presenter != nil {
		a.presenter.Shutdown()
	}

	// Drain in-flight imports; their completions still go through the
	// dispatcher, which is why the dispatcher closes after this
	if a.importService != nil {
		a.importService.Shutdown()
	}

	// Stop the engine; its terminal shutdown notification is posted through
	// the still-open dispatcher and detaches the controller
	if a.engine != nil {
		if err := a.engine.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown media engine", slog.Any("error", err))
		}
	}

	// Close the dispatcher last among the producers: posted work has been
	// applied, anything later is discarded
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}

	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", err))
		}
	}

	a.logger.Info("application shutdown complete")
}
