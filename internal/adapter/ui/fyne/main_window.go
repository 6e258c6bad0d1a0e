package fyne

import (
	"fmt"
	"math"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/audition-player/audition/internal/domain"
	"github.com/audition-player/audition/internal/ports"
)

// MainWindow is the main UI window implementing the ports.UI interface.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the services behind the Presenter
// - User interactions are forwarded to the Presenter
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window

	// UI components
	backButton    *widget.Button
	playButton    *widget.Button
	stopButton    *widget.Button
	forwardButton *widget.Button
	markButton    *widget.Button
	rtnButton     *widget.Button
	loopButton    *widget.Button
	removeButton  *widget.Button
	positionLabel *widget.Label
	trackList     *widget.List
	minLUFSLabel  *widget.Label

	// rows is the rendered tracklist model; mutated on the UI goroutine only
	rows     []ports.TrackRow
	selected domain.EntryID

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates the main window.
func NewMainWindow(app fyneapp.App) *MainWindow {
	w := &MainWindow{
		app:      app,
		selected: domain.NoEntry,
	}

	w.window = app.NewWindow(AppName)
	w.buildUI()

	w.window.Resize(fyneapp.Size{
		Width:  Width,
		Height: Height,
	})

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	// Transport buttons
	w.backButton = widget.NewButtonWithIcon("", theme.MediaFastRewindIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.stopButton = widget.NewButtonWithIcon("", theme.MediaStopIcon(), nil)
	w.forwardButton = widget.NewButtonWithIcon("", theme.MediaFastForwardIcon(), nil)
	w.markButton = widget.NewButton("Mark", nil)
	w.rtnButton = widget.NewButton("Rtn", nil)
	w.loopButton = widget.NewButton("Loop", nil)
	w.removeButton = widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)

	w.positionLabel = widget.NewLabel("00:00 / 00:00")
	w.minLUFSLabel = widget.NewLabel("")

	// Track list: one row per entry, current row bolded
	w.trackList = widget.NewList(
		func() int {
			return len(w.rows)
		},
		func() fyneapp.CanvasObject {
			name := widget.NewLabel("")
			name.Truncation = fyneapp.TextTruncateEllipsis
			info := widget.NewLabel("")
			return container.NewBorder(nil, nil, nil, info, name)
		},
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			if i >= len(w.rows) {
				return
			}
			row := w.rows[i]
			border := obj.(*fyneapp.Container)
			name := border.Objects[0].(*widget.Label)
			info := border.Objects[1].(*widget.Label)

			name.TextStyle = fyneapp.TextStyle{Bold: row.Current}
			name.SetText(row.Name)
			info.SetText(formatRowInfo(row))
		},
	)

	transport := container.NewHBox(
		w.backButton, w.playButton, w.stopButton, w.forwardButton,
		widget.NewSeparator(),
		w.markButton, w.rtnButton, w.loopButton,
	)
	transportHolder := container.NewBorder(nil, nil, transport, w.positionLabel)

	statusHolder := container.NewBorder(nil, nil, w.minLUFSLabel, w.removeButton)

	content := container.NewBorder(transportHolder, statusHolder, nil, nil, w.trackList)
	w.window.SetContent(container.NewPadded(content))

	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.playButton.OnTapped = func() {
		w.presenter.TogglePause()
	}

	w.stopButton.OnTapped = func() {
		w.presenter.Stop()
	}

	w.backButton.OnTapped = func() {
		w.presenter.SeekBackward()
	}

	w.forwardButton.OnTapped = func() {
		w.presenter.SeekForward()
	}

	w.markButton.OnTapped = func() {
		w.presenter.MarkBookmark()
	}

	w.rtnButton.OnTapped = func() {
		w.presenter.ToggleReturnToMark()
	}

	w.loopButton.OnTapped = func() {
		w.presenter.ToggleLoop()
	}

	w.removeButton.OnTapped = func() {
		if w.selected != domain.NoEntry {
			entry := w.selected
			w.selected = domain.NoEntry
			w.trackList.UnselectAll()
			w.presenter.RemoveEntry(entry)
		}
	}

	w.trackList.OnSelected = func(i widget.ListItemID) {
		if i >= len(w.rows) {
			return
		}
		w.selected = w.rows[i].Entry
		w.presenter.SelectEntry(w.selected)
	}

	w.trackList.OnUnselected = func(widget.ListItemID) {
		w.selected = domain.NoEntry
		w.presenter.ClearSelection()
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	menus := make([]*fyneapp.Menu, 0)
	separator := fyneapp.NewMenuItemSeparator()

	openFile := fyneapp.NewMenuItem("Open", func() {
		w.handleOpenFile()
	})

	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		w.window.Close()
	})

	fileMenuItems := fyneapp.NewMenu("File", openFile, separator, exitMenu)
	menus = append(menus, fileMenuItems)

	return menus
}

// handleOpenFile handles the "Open" menu action.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}

	fileDialog := dialog.NewFileOpen(func(reader fyneapp.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		w.presenter.ImportFiles([]string{path})
	}, w.window)

	// The filter is a convenience only; the prober decides by content
	fileDialog.SetFilter(storage.NewExtensionFileFilter(
		[]string{".mp3", ".flac", ".wav", ".ogg", ".m4a", ".aac", ".opus", ".aiff"}))
	fileDialog.Show()
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyLeft,
		Modifier: desktop.AltModifier,
	}, func(fyneapp.Shortcut) {
		w.presenter.SeekBackward()
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyRight,
		Modifier: desktop.AltModifier,
	}, func(fyneapp.Shortcut) {
		w.presenter.SeekForward()
	})
}

// ports.UI implementation

// SetTransport derives the transport indicators from the controller snapshot.
func (w *MainWindow) SetTransport(snapshot domain.PlayerSnapshot) {
	if snapshot.State == domain.StatePlaying {
		w.playButton.SetIcon(theme.MediaPauseIcon())
	} else {
		w.playButton.SetIcon(theme.MediaPlayIcon())
	}

	// Loop importance walks the cycle: off, point A set, full window armed
	switch {
	case snapshot.LoopArmed():
		w.loopButton.Importance = widget.HighImportance
		w.loopButton.SetText("Loop A-B")
	case snapshot.LoopStart != 0:
		w.loopButton.Importance = widget.MediumImportance
		w.loopButton.SetText("Loop A-")
	default:
		w.loopButton.Importance = widget.LowImportance
		w.loopButton.SetText("Loop")
	}
	w.loopButton.Refresh()

	// Mark and return-to-mark exclude each other
	if snapshot.ReturnToMark {
		w.rtnButton.Importance = widget.HighImportance
	} else {
		w.rtnButton.Importance = widget.LowImportance
	}
	w.rtnButton.Refresh()

	if snapshot.Marker != 0 {
		w.markButton.Importance = widget.HighImportance
	} else {
		w.markButton.Importance = widget.LowImportance
	}
	w.markButton.Refresh()

	if snapshot.MinLUFS != 0 {
		w.minLUFSLabel.SetText(fmt.Sprintf("min %.1f LUFS", snapshot.MinLUFS))
	} else {
		w.minLUFSLabel.SetText("")
	}
}

// SetTracklist replaces the rendered rows.
func (w *MainWindow) SetTracklist(rows []ports.TrackRow) {
	w.rows = rows
	w.trackList.Refresh()
}

// SetPosition updates the position/duration readout.
func (w *MainWindow) SetPosition(position, duration float64) {
	w.positionLabel.SetText(fmt.Sprintf("%s / %s", formatClock(position), formatClock(duration)))
}

// ShowError surfaces a failure without interrupting playback.
func (w *MainWindow) ShowError(message string) {
	dialog.ShowInformation("Import failed", message, w.window)
}

// Run shows the window and runs the application event loop.
func (w *MainWindow) Run() {
	w.window.ShowAndRun()
}

// Quit closes the window. Safe to call multiple times.
func (w *MainWindow) Quit() {
	w.closeOnce.Do(func() {
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// formatClock renders seconds as mm:ss.
func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%.2d:%.2d", int(seconds/60), int(math.Mod(seconds, 60)))
}

// formatRowInfo renders the loudness and duration column of one row.
func formatRowInfo(row ports.TrackRow) string {
	var parts string
	if row.LUFS != 0 {
		parts = fmt.Sprintf("%.1f LUFS  %.1f dB  ", row.LUFS, row.Peak)
	}
	if row.Duration > 0 {
		parts += formatClock(row.Duration)
	}
	return parts
}

// Verify UI implementation
var _ ports.UI = (*MainWindow)(nil)
