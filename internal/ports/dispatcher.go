// Package ports define the Dispatcher interface for UI-thread marshaling.
package ports

// Dispatcher is the event bridge: it guarantees that work produced on
// arbitrary goroutines (engine callback, import workers) is applied to
// tracklist/controller state on the single UI-affine goroutine.
//
// Ordering: tasks posted by a single source run in post order. No ordering is
// guaranteed between different sources.
//
// The dispatcher holds no mutable state beyond its task queue; the host UI
// runtime's single-threaded loop is the serialization point.
type Dispatcher interface {
	// Post schedules task to run on the UI-affine goroutine. It never blocks.
	// Tasks posted after Close are discarded.
	Post(task func())

	// RequestRefresh schedules the registered refresh callback. Rapid
	// successive requests are coalesced into a single callback run.
	RequestRefresh()

	// SetRefreshFunc registers the callback run for coalesced refresh
	// requests. Must be set before the first RequestRefresh.
	SetRefreshFunc(refresh func())

	// Close stops accepting tasks. Implementations that own their queue
	// drain already-posted work before returning; either way, anything
	// arriving after Close is discarded rather than applied.
	Close()
}
