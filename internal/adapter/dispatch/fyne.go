package dispatch

import (
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"

	"github.com/audition-player/audition/internal/ports"
)

// Fyne is a Dispatcher that delegates to the Fyne driver's event queue via
// fyne.Do. In production the Fyne main loop is the UI-affine thread; this
// adapter only adds the close gate and refresh coalescing on top of it.
//
// fyne.Do preserves submission order per goroutine, which matches the
// per-source ordering guarantee of the Dispatcher contract.
type Fyne struct {
	closed         atomic.Bool
	refreshPending atomic.Bool

	mu      sync.Mutex
	refresh func()
}

// NewFyne creates a Fyne-backed dispatcher.
// Must only be used after the Fyne app has been created.
func NewFyne() *Fyne {
	return &Fyne{}
}

// Post schedules task on the Fyne UI goroutine. Tasks posted after Close are
// discarded.
func (d *Fyne) Post(task func()) {
	if task == nil || d.closed.Load() {
		return
	}
	fyne.Do(func() {
		// The close flag may have flipped between Post and execution; a task
		// arriving after shutdown must not touch torn-down state.
		if d.closed.Load() {
			return
		}
		task()
	})
}

// SetRefreshFunc registers the callback run for coalesced refresh requests.
func (d *Fyne) SetRefreshFunc(refresh func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refresh = refresh
}

// RequestRefresh schedules the refresh callback, coalescing bursts into a
// single run on the UI goroutine.
func (d *Fyne) RequestRefresh() {
	if !d.refreshPending.CompareAndSwap(false, true) {
		return
	}
	d.Post(func() {
		d.refreshPending.Store(false)

		d.mu.Lock()
		refresh := d.refresh
		d.mu.Unlock()

		if refresh != nil {
			refresh()
		}
	})
}

// Close stops accepting tasks. The Fyne driver owns the queue itself; pending
// work is dropped by the execution-time close check rather than drained.
func (d *Fyne) Close() {
	d.closed.Store(true)
}

// Verify that Fyne implements the Dispatcher interface
var _ ports.Dispatcher = (*Fyne)(nil)
