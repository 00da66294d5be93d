package archive

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrNoVideo is reported when the downloader finds no downloadable
	// video behind the source URL.
	ErrNoVideo = errors.New("no video found")
)

// VideoFetcher downloads the video behind a post URL into a file whose
// path shares the given template stem; the tool chooses the extension.
type VideoFetcher interface {
	Fetch(ctx context.Context, sourceURL, outputStem string) error
}

const downloaderUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// YTDLP invokes the yt-dlp binary to fetch videos.
type YTDLP struct {
	binary string
}

// NewYTDLP creates a fetcher backed by the yt-dlp binary on PATH.
func NewYTDLP() *YTDLP {
	return &YTDLP{binary: "yt-dlp"}
}

// Fetch downloads the best mp4-leaning format to {outputStem}.{ext}.
// Tool errors indicating the post has no video map to ErrNoVideo.
func (y *YTDLP) Fetch(ctx context.Context, sourceURL, outputStem string) error {
	cmd := exec.CommandContext(ctx, y.binary,
		"-f", "best[ext=mp4]/best",
		"-o", outputStem+".%(ext)s",
		"--quiet",
		"--no-warnings",
		"--user-agent", downloaderUserAgent,
		sourceURL,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("yt-dlp not found on PATH: %w", err)
		}
		msg := strings.ToLower(string(out))
		if strings.Contains(msg, "no video") ||
			strings.Contains(msg, "no media found") ||
			strings.Contains(msg, "unsupported url") {
			return ErrNoVideo
		}
		return fmt.Errorf("yt-dlp failed: %v: %s", err, strings.TrimSpace(string(out)))
	}

	return nil
}
