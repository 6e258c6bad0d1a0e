// Package service provides business logic for the Audition application.
package service

import (
	"log/slog"
	"sync"

	"github.com/audition-player/audition/internal/domain"
	"github.com/audition-player/audition/internal/ports"
)

// ImportService turns file references into tracks off the UI goroutine.
//
// Each submission is one unit of work carrying the insertion anchor captured
// at submit time. Workers run in parallel, so completion order across
// submissions is unspecified; carrying the anchor with the work item is what
// keeps concurrent imports from scrambling the intended adjacency.
//
// Completed tracks are never inserted by the worker itself: the worker posts
// the (track, anchor) pair through the dispatcher and the insertion runs on
// the UI-affine goroutine.
type ImportService struct {
	logger     *slog.Logger
	prober     ports.TrackProber
	dispatcher ports.Dispatcher
	tracklist  *TracklistService
	bus        ports.EventBus

	// sem bounds the number of concurrently probing workers
	sem chan struct{}

	// wg tracks in-flight work for shutdown draining
	wg sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewImportService creates an import pool with the given worker bound.
func NewImportService(
	logger *slog.Logger,
	prober ports.TrackProber,
	dispatcher ports.Dispatcher,
	tracklist *TracklistService,
	bus ports.EventBus,
	workers int,
) *ImportService {
	if workers < 1 {
		workers = 1
	}
	return &ImportService{
		logger:     logger,
		prober:     prober,
		dispatcher: dispatcher,
		tracklist:  tracklist,
		bus:        bus,
		sem:        make(chan struct{}, workers),
	}
}

// Submit enqueues one file for import, to be inserted adjacent to anchor
// (nil appends). It returns immediately and never blocks the caller.
//
// Returns domain.ErrImportClosed once shutdown has begun.
func (s *ImportService) Submit(path string, anchor *domain.Anchor) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrImportClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()

	// The anchor is copied now: it belongs to this unit of work, not to
	// whatever the tracklist tail looks like when the probe completes.
	var anchorCopy *domain.Anchor
	if anchor != nil {
		a := *anchor
		anchorCopy = &a
	}

	go func() {
		defer s.wg.Done()

		s.sem <- struct{}{}
		defer func() { <-s.sem }()

		s.process(path, anchorCopy)
	}()

	return nil
}

// process probes one file and hands the result to the dispatcher. A failed
// probe is reported on the event bus and terminates only this request.
func (s *ImportService) process(path string, anchor *domain.Anchor) {
	track, err := s.prober.Probe(path)
	if err != nil {
		s.logger.Warn("import failed",
			slog.String("path", path),
			slog.Any("error", err))
		s.bus.Publish(domain.NewImportFailedEvent(path, err))
		return
	}

	// Insertion must happen on the UI-affine goroutine. If the dispatcher
	// has closed in the meantime, the post is discarded, which is exactly
	// the late-completion policy: never apply to a torn-down tracklist.
	s.dispatcher.Post(func() {
		id := s.tracklist.Insert(track, anchor)
		s.bus.Publish(domain.NewTrackImportedEvent(id, *track))
	})
}

// Shutdown stops intake and drains: outstanding work is allowed to finish,
// no new work is accepted. Safe to call more than once.
func (s *ImportService) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
}
