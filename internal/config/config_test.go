package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mpv", cfg.MPVPath)
	assert.Equal(t, "", cfg.MPVSocket)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, 4, cfg.ImportWorkers)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUDITION_MPV_PATH", "/opt/mpv/bin/mpv")
	t.Setenv("AUDITION_IMPORT_WORKERS", "8")
	t.Setenv("AUDITION_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/mpv/bin/mpv", cfg.MPVPath)
	assert.Equal(t, 8, cfg.ImportWorkers)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoad_ClampsWorkerCount(t *testing.T) {
	t.Setenv("AUDITION_IMPORT_WORKERS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.ImportWorkers)
}

func TestLoad_RejectsGarbage(t *testing.T) {
	t.Setenv("AUDITION_IMPORT_WORKERS", "many")

	_, err := Load()
	assert.Error(t, err)
}
