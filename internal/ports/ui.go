// Package ports define the UI interface for view abstraction.
package ports

import (
	"github.com/audition-player/audition/internal/domain"
)

// UI is the interface for the user interface layer. The presenter receives
// events from the event bus and calls these methods to update the view,
// keeping business logic (services) free of any Fyne dependency.
//
// All methods are called on the UI-affine goroutine.
type UI interface {
	// SetTransport updates the transport indicators from a snapshot:
	// play/pause toggle, loop armed, mark/return-to-mark visibility.
	SetTransport(snapshot domain.PlayerSnapshot)

	// SetTracklist replaces the rendered track rows.
	SetTracklist(rows []TrackRow)

	// SetPosition updates the position/duration readout.
	SetPosition(position, duration float64)

	// ShowError surfaces an import or engine failure to the user.
	ShowError(message string)

	// Run starts the UI event loop; blocks until the window closes.
	Run()

	// Quit closes the application window.
	Quit()
}

// TrackRow is one rendered tracklist row.
type TrackRow struct {
	Entry    domain.EntryID
	Name     string
	LUFS     float64
	Peak     float64
	Duration float64
	Current  bool
}
