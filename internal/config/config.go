// Package config loads application configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration for the application.
// Every field can be overridden through the environment; the defaults are
// sensible for a local desktop session.
type Config struct {
	// MPVPath is the mpv binary to spawn for playback.
	MPVPath string `env:"AUDITION_MPV_PATH" envDefault:"mpv"`

	// MPVSocket is the path of the JSON IPC socket. Empty means a per-process
	// socket under the user cache directory.
	MPVSocket string `env:"AUDITION_MPV_SOCKET"`

	// FFmpegPath is the ffmpeg binary used for the loudness scan. Empty
	// disables the scan; imported tracks then carry zero LUFS/peak.
	FFmpegPath string `env:"AUDITION_FFMPEG_PATH" envDefault:"ffmpeg"`

	// ImportWorkers is the size of the import worker pool.
	ImportWorkers int `env:"AUDITION_IMPORT_WORKERS" envDefault:"4"`

	// LogLevel is the logging verbosity (DEBUG, INFO, WARN, ERROR).
	LogLevel string `env:"AUDITION_LOG_LEVEL" envDefault:"INFO"`

	// LogFormat is the log output format ("text" or "json").
	LogFormat string `env:"AUDITION_LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.ImportWorkers < 1 {
		cfg.ImportWorkers = 1
	}
	return cfg, nil
}
