package transcriber

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FilterOptions selects the optional signal-processing filters applied
// during extraction and pre-upload cleanup.
type FilterOptions struct {
	// CleanAudio applies a mild denoise (afftdn nf=-25) followed by
	// one-pass loudness normalization (loudnorm I=-16:LRA=11:TP=-1.5).
	CleanAudio bool
	// TrimSilence removes leading and trailing silence only, with 0.5s
	// windows at -50dB. These thresholds are the contract: anything
	// more aggressive clips quiet speech.
	TrimSilence bool
}

// AudioExtractor produces mono 16 kHz WAV audio from media files.
type AudioExtractor interface {
	Extract(ctx context.Context, inputPath, outputPath string, opts FilterOptions) error
}

// FFmpeg extracts audio by invoking the ffmpeg binary.
type FFmpeg struct {
	binary     string
	sampleRate int
}

// NewFFmpeg creates an extractor and verifies the ffmpeg binary is
// reachable. A missing binary is an environment failure and fatal to
// the invocation.
func NewFFmpeg() (*FFmpeg, error) {
	f := &FFmpeg{binary: "ffmpeg", sampleRate: 16000}
	if err := exec.Command(f.binary, "-version").Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg not found, install it first: %w", err)
	}
	return f, nil
}

// Extract demuxes inputPath to a mono 16 kHz pcm_s16le WAV at
// outputPath, applying the selected filter chain.
func (f *FFmpeg) Extract(ctx context.Context, inputPath, outputPath string, opts FilterOptions) error {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(f.sampleRate),
		"-ac", "1",
	}
	if chain := filterChain(opts); chain != "" {
		args = append(args, "-af", chain)
	}
	args = append(args, "-y", outputPath)

	cmd := exec.CommandContext(ctx, f.binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func filterChain(opts FilterOptions) string {
	var filters []string

	if opts.TrimSilence {
		filters = append(filters,
			"silenceremove="+
				"start_periods=1:start_duration=0.5:start_threshold=-50dB:"+
				"stop_periods=1:stop_duration=0.5:stop_threshold=-50dB")
	}

	if opts.CleanAudio {
		filters = append(filters, "afftdn=nf=-25", "loudnorm=I=-16:LRA=11:TP=-1.5")
	}

	return strings.Join(filters, ",")
}
