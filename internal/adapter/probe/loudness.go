package probe

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegScanner measures loudness by running ffmpeg's ebur128 filter over the
// whole file and parsing the summary it prints on exit.
type FFmpegScanner struct {
	// Binary is the ffmpeg executable to run.
	Binary string
}

// NewFFmpegScanner creates a scanner using the given ffmpeg binary.
func NewFFmpegScanner(binary string) *FFmpegScanner {
	return &FFmpegScanner{Binary: binary}
}

// Available reports whether the configured binary can be found.
func (s *FFmpegScanner) Available() bool {
	_, err := exec.LookPath(s.Binary)
	return err == nil
}

// Scan runs the ebur128 analysis. The whole file is decoded, so this belongs
// on an import worker, never on the UI goroutine.
func (s *FFmpegScanner) Scan(path string) (Loudness, error) {
	cmd := exec.Command(s.Binary,
		"-hide_banner", "-nostats",
		"-i", path,
		"-filter_complex", "ebur128=peak=true",
		"-f", "null", "-")

	// ffmpeg writes the filter summary to stderr
	out, err := cmd.CombinedOutput()
	if err != nil {
		return Loudness{}, fmt.Errorf("ffmpeg ebur128 failed for %q: %w", path, err)
	}

	return parseEBUR128Summary(string(out))
}

// parseEBUR128Summary extracts integrated loudness and true peak from the
// ebur128 summary block, which looks like:
//
//	[Parsed_ebur128_0 @ 0x...] Summary:
//
//	  Integrated loudness:
//	    I:         -14.5 LUFS
//	    Threshold: -25.6 LUFS
//
//	  True peak:
//	    Peak:       -0.3 dBFS
func parseEBUR128Summary(output string) (Loudness, error) {
	var (
		loudness Loudness
		haveI    bool
		havePeak bool
	)

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		switch {
		case fields[0] == "I:" && fields[2] == "LUFS":
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				continue
			}
			loudness.LUFS = v
			haveI = true

		case fields[0] == "Peak:" && fields[2] == "dBFS":
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				continue
			}
			loudness.Peak = v
			havePeak = true
		}
	}

	if !haveI || !havePeak {
		return Loudness{}, fmt.Errorf("ebur128 summary not found in ffmpeg output")
	}
	return loudness, nil
}

// Verify that FFmpegScanner implements the LoudnessScanner interface
var _ LoudnessScanner = (*FFmpegScanner)(nil)
