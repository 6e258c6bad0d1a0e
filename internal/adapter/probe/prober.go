// Package probe converts file references into domain tracks.
// A file becomes a Track only after its content type is confirmed audio;
// nothing unvetted ever reaches the tracklist or the controller.
package probe

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gabriel-vasile/mimetype"

	"github.com/audition-player/audition/internal/domain"
	"github.com/audition-player/audition/internal/ports"
)

// Loudness is the result of a loudness scan.
type Loudness struct {
	// LUFS is the integrated loudness
	LUFS float64

	// Peak is the true-peak level in dB
	Peak float64
}

// LoudnessScanner measures the integrated loudness and true peak of a file.
type LoudnessScanner interface {
	Scan(path string) (Loudness, error)
}

// Prober implements ports.TrackProber: content-type sniffing, tag-based
// display names, and an optional loudness scan.
//
// Safe for concurrent use; the import pool probes from multiple workers.
type Prober struct {
	logger  *slog.Logger
	scanner LoudnessScanner
}

// New creates a Prober. The scanner may be nil, in which case imported
// tracks carry zero LUFS/peak and gain matching degrades gracefully.
func New(logger *slog.Logger, scanner LoudnessScanner) *Prober {
	return &Prober{
		logger:  logger,
		scanner: scanner,
	}
}

// Probe vets and describes one file. It returns *domain.ProbeError when the
// file or its content type cannot be read, and an error wrapping
// domain.ErrNotAudio when the type is recognized but not audio.
func (p *Prober) Probe(path string) (*domain.Track, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, domain.NewProbeError(path, "file not accessible", err)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, domain.NewProbeError(path, "content type unavailable", err)
	}

	// The decision is by content, not extension: a .wav full of text is
	// rejected here, an extensionless FLAC is accepted.
	if !strings.Contains(mtype.String(), "audio") {
		return nil, fmt.Errorf("%q has content type %s: %w", path, mtype.String(), domain.ErrNotAudio)
	}

	track := &domain.Track{
		Name: p.displayName(path),
		URI:  path,
		// Duration stays unknown until the engine reports it for a loaded file
	}

	if p.scanner != nil {
		loudness, err := p.scanner.Scan(path)
		if err != nil {
			p.logger.Warn("loudness scan failed",
				slog.String("path", path),
				slog.Any("error", err))
		} else {
			track.LUFS = loudness.LUFS
			track.Peak = loudness.Peak
		}
	}

	return track, nil
}

// displayName derives the rendered name from tags, falling back to the file
// base name when the file carries none.
func (p *Prober) displayName(path string) string {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return name
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil || meta.Title() == "" {
		return name
	}

	if meta.Artist() != "" {
		return meta.Artist() + " - " + meta.Title()
	}
	return meta.Title()
}

// Verify that Prober implements the TrackProber interface
var _ ports.TrackProber = (*Prober)(nil)
