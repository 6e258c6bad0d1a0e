// Package dispatch provides implementations of the Dispatcher interface.
// The dispatcher is the bridge between producer goroutines (engine callback,
// import workers) and the single UI-affine goroutine that owns tracklist and
// controller state.
package dispatch

import (
	"log/slog"
	"sync"

	"github.com/audition-player/audition/internal/ports"
)

// Serial is a Dispatcher backed by its own goroutine. It is used in tests and
// headless runs, where no UI runtime provides a dispatch loop; the goroutine
// started by NewSerial is then the UI-affine thread.
//
// Tasks are executed strictly in post order (a single consumer drains a FIFO
// queue), which gives the required per-source ordering for free.
type Serial struct {
	logger *slog.Logger

	// mu protects queue, closed and refreshPending
	mu             sync.Mutex
	queue          []func()
	closed         bool
	refreshPending bool
	refresh        func()

	// wake nudges the run loop when work arrives; buffered so Post never blocks
	wake chan struct{}

	// drained is closed once the run loop has exhausted the queue after Close
	drained chan struct{}
}

// NewSerial creates a Serial dispatcher and starts its run loop.
// The logger may be nil.
func NewSerial(logger *slog.Logger) *Serial {
	d := &Serial{
		logger:  logger,
		wake:    make(chan struct{}, 1),
		drained: make(chan struct{}),
	}
	go d.run()
	return d
}

// Post schedules task to run on the dispatcher goroutine. It never blocks.
// Tasks posted after Close are discarded.
func (d *Serial) Post(task func()) {
	if task == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		if d.logger != nil {
			d.logger.Debug("task discarded after dispatcher close")
		}
		return
	}
	d.queue = append(d.queue, task)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// SetRefreshFunc registers the callback run for coalesced refresh requests.
func (d *Serial) SetRefreshFunc(refresh func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refresh = refresh
}

// RequestRefresh schedules the refresh callback. Requests arriving while one
// is already queued are coalesced into that single run.
func (d *Serial) RequestRefresh() {
	d.mu.Lock()
	if d.refreshPending || d.closed {
		d.mu.Unlock()
		return
	}
	d.refreshPending = true
	d.mu.Unlock()

	d.Post(func() {
		d.mu.Lock()
		d.refreshPending = false
		refresh := d.refresh
		d.mu.Unlock()

		if refresh != nil {
			refresh()
		}
	})
}

// Close stops accepting tasks, lets already-posted work finish, and returns
// once the queue is empty.
func (d *Serial) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}

	<-d.drained
}

// run is the dispatch loop. It drains the queue in FIFO order and exits once
// the dispatcher is closed and the queue is empty.
func (d *Serial) run() {
	for {
		d.mu.Lock()
		tasks := d.queue
		d.queue = nil
		closed := d.closed
		d.mu.Unlock()

		for _, task := range tasks {
			d.call(task)
		}

		if len(tasks) > 0 {
			// Re-check for work queued while running tasks before sleeping.
			continue
		}

		if closed {
			close(d.drained)
			return
		}

		<-d.wake
	}
}

// call runs a task and recovers from panics so one bad task cannot kill the
// dispatch loop.
func (d *Serial) call(task func()) {
	defer func() {
		if r := recover(); r != nil {
			if d.logger != nil {
				d.logger.Error("dispatched task panicked", slog.Any("panic", r))
			}
		}
	}()
	task()
}

// Verify that Serial implements the Dispatcher interface
var _ ports.Dispatcher = (*Serial)(nil)
