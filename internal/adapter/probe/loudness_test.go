package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSummary = `
size=N/A time=00:03:02.99 bitrate=N/A speed= 231x
video:0KiB audio:31574KiB subtitle:0KiB other streams:0KiB global headers:0KiB muxing overhead: unknown
[Parsed_ebur128_0 @ 0x5581f5f2cc80] Summary:

  Integrated loudness:
    I:         -14.5 LUFS
    Threshold: -25.6 LUFS

  Loudness range:
    LRA:         6.3 LU
    Threshold: -35.9 LUFS
    LRA low:   -18.5 LUFS
    LRA high:  -12.2 LUFS

  True peak:
    Peak:       -0.3 dBFS
`

func TestParseEBUR128Summary(t *testing.T) {
	loudness, err := parseEBUR128Summary(sampleSummary)
	require.NoError(t, err)

	assert.Equal(t, -14.5, loudness.LUFS)
	assert.Equal(t, -0.3, loudness.Peak)
}

func TestParseEBUR128Summary_MissingBlock(t *testing.T) {
	_, err := parseEBUR128Summary("frame=1 fps=0.0 q=-0.0 size=N/A\n")
	assert.Error(t, err)
}

func TestParseEBUR128Summary_MissingPeak(t *testing.T) {
	// peak=true was not in effect, so only integrated loudness is printed
	_, err := parseEBUR128Summary(`
  Integrated loudness:
    I:         -14.5 LUFS
    Threshold: -25.6 LUFS
`)
	assert.Error(t, err)
}

func TestFFmpegScanner_Available(t *testing.T) {
	scanner := NewFFmpegScanner("definitely-not-a-real-binary-name")
	assert.False(t, scanner.Available())
}
