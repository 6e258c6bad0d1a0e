// Package fyne provides the Fyne-based user interface adapter.
// The presenter mediates between the event bus and the view: services never
// see the UI, the view never sees the services.
package fyne

import (
	"log/slog"

	"github.com/audition-player/audition/internal/domain"
	"github.com/audition-player/audition/internal/ports"
	"github.com/audition-player/audition/internal/service"
)

// Presenter wires bus events to view updates and view intents to services.
//
// All view updates go through the dispatcher's coalesced refresh: a burst of
// position notifications collapses into one redraw instead of flooding the
// UI loop.
type Presenter struct {
	logger     *slog.Logger
	bus        ports.EventBus
	dispatcher ports.Dispatcher
	player     *service.PlayerService
	tracklist  *service.TracklistService
	imports    *service.ImportService
	ui         ports.UI

	subs []domain.SubscriptionID

	// snapshot is the last published controller state; written and read on
	// the dispatcher goroutine only
	snapshot domain.PlayerSnapshot
}

// NewPresenter creates the presenter and registers its bus subscriptions.
func NewPresenter(
	logger *slog.Logger,
	bus ports.EventBus,
	dispatcher ports.Dispatcher,
	player *service.PlayerService,
	tracklist *service.TracklistService,
	imports *service.ImportService,
	ui ports.UI,
) *Presenter {
	p := &Presenter{
		logger:     logger,
		bus:        bus,
		dispatcher: dispatcher,
		player:     player,
		tracklist:  tracklist,
		imports:    imports,
		ui:         ui,
	}

	dispatcher.SetRefreshFunc(p.refresh)

	p.subs = append(p.subs,
		bus.Subscribe(domain.EventPlayerUpdated, p.onPlayerUpdated),
		bus.Subscribe(domain.EventTracklistUpdated, p.onTracklistUpdated),
		bus.Subscribe(domain.EventImportFailed, p.onImportFailed),
	)

	return p
}

// onPlayerUpdated runs on the dispatcher goroutine: services publish their
// state changes from there.
func (p *Presenter) onPlayerUpdated(event domain.Event) {
	e, ok := event.(domain.PlayerUpdatedEvent)
	if !ok {
		return
	}
	p.snapshot = e.Snapshot
	p.dispatcher.RequestRefresh()
}

func (p *Presenter) onTracklistUpdated(domain.Event) {
	p.dispatcher.RequestRefresh()
}

// onImportFailed may run on an import worker goroutine; the dialog must be
// raised from the UI goroutine.
func (p *Presenter) onImportFailed(event domain.Event) {
	e, ok := event.(domain.ImportFailedEvent)
	if !ok {
		return
	}
	p.dispatcher.Post(func() {
		p.ui.ShowError(e.Err.Error())
	})
}

// refresh redraws the whole view from current state. Invoked by the
// dispatcher, already coalesced.
func (p *Presenter) refresh() {
	rows := make([]ports.TrackRow, 0, p.tracklist.Len())
	for id, track := range p.tracklist.All() {
		rows = append(rows, ports.TrackRow{
			Entry:    id,
			Name:     track.Name,
			LUFS:     track.LUFS,
			Peak:     track.Peak,
			Duration: track.Duration,
			Current:  id == p.snapshot.CurrentEntry,
		})
	}

	p.ui.SetTracklist(rows)
	p.ui.SetTransport(p.snapshot)

	var duration float64
	if p.snapshot.Current != nil {
		duration = p.snapshot.Current.Duration
	}
	p.ui.SetPosition(p.snapshot.Position, duration)
}

// View intents. These are called from UI callbacks, which the Fyne driver
// already runs on the dispatcher goroutine.

// SelectEntry loads the track behind a selected row.
func (p *Presenter) SelectEntry(id domain.EntryID) {
	p.player.SelectTrack(id, p.tracklist.Track(id))
}

// ClearSelection stops playback when nothing is selected anymore.
func (p *Presenter) ClearSelection() {
	p.player.SelectTrack(domain.NoEntry, nil)
}

// TogglePause toggles play/pause.
func (p *Presenter) TogglePause() { p.player.TogglePause() }

// Stop stops playback.
func (p *Presenter) Stop() { p.player.Stop() }

// SeekBackward seeks one second back.
func (p *Presenter) SeekBackward() { p.player.SeekRelative(-1) }

// SeekForward seeks one second forward.
func (p *Presenter) SeekForward() { p.player.SeekRelative(1) }

// MarkBookmark bookmarks the current position.
func (p *Presenter) MarkBookmark() { p.player.MarkBookmark() }

// ToggleLoop advances the A/B loop cycle.
func (p *Presenter) ToggleLoop() { p.player.ToggleLoop() }

// ToggleReturnToMark flips the return-to-mark flag.
func (p *Presenter) ToggleReturnToMark() { p.player.ToggleReturnToMark() }

// RemoveEntry deletes a tracklist entry.
func (p *Presenter) RemoveEntry(id domain.EntryID) {
	p.tracklist.Remove(id)
}

// MoveEntry relocates an entry next to the anchor (drag reorder).
func (p *Presenter) MoveEntry(id domain.EntryID, anchor domain.Anchor) {
	p.tracklist.Move(id, anchor)
}

// ImportFiles submits files for appending import.
func (p *Presenter) ImportFiles(paths []string) {
	for _, path := range paths {
		if err := p.imports.Submit(path, nil); err != nil {
			p.logger.Warn("import submit rejected",
				slog.String("path", path),
				slog.Any("error", err))
		}
	}
}

// ImportFileAt submits one file for insertion at an anchor (drop position).
func (p *Presenter) ImportFileAt(path string, anchor domain.Anchor) {
	if err := p.imports.Submit(path, &anchor); err != nil {
		p.logger.Warn("import submit rejected",
			slog.String("path", path),
			slog.Any("error", err))
	}
}

// Shutdown removes the bus subscriptions.
func (p *Presenter) Shutdown() {
	for _, sub := range p.subs {
		p.bus.Unsubscribe(sub)
	}
	p.subs = nil
}
