package archive

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"tweet-scraper/pkg/domain"
)

// Alternate extensions the downloader may choose; anything but mp4 is
// renamed after download.
var videoExtensions = []string{"mp4", "mkv", "webm", "mov"}

// Result is the per-item outcome of the orchestrator. VideoOK means a
// video was present and downloaded; the sidecar is written either way.
type Result struct {
	VideoOK   bool
	VideoPath string
	JSONPath  string
}

// Summary aggregates a batch run.
type Summary struct {
	Items       int
	JSONSaved   int
	VideoOK     int
	VideoFailed int
}

// Service drives the per-item download-and-persist pipeline: resolve a
// video source, hand it to the fetcher, normalize the output extension,
// and write the JSON sidecar. A failed video download never prevents
// the sidecar from being written.
type Service struct {
	outputDir string
	fetcher   VideoFetcher
}

// NewService creates the orchestrator, ensuring the output directory
// exists.
func NewService(outputDir string, fetcher VideoFetcher) (*Service, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Service{outputDir: outputDir, fetcher: fetcher}, nil
}

// ProcessTweet downloads the tweet's video when present and writes its
// sidecar. The error return covers sidecar persistence only; video
// failures are reported through Result.VideoOK.
func (s *Service) ProcessTweet(ctx context.Context, t *domain.Tweet) (Result, error) {
	var res Result

	if t.HasVideo() {
		path, err := s.download(ctx, t.URL, t.VideoFilename())
		if err != nil {
			log.Printf("Video download failed for tweet %s: %v", t.ID, err)
		} else {
			t.VideoFile = filepath.Base(path)
			res.VideoOK = true
			res.VideoPath = path
		}
	}

	jsonPath := filepath.Join(s.outputDir, t.SidecarFilename())
	if err := WriteSidecar(jsonPath, t); err != nil {
		return res, err
	}
	res.JSONPath = jsonPath
	return res, nil
}

// ProcessThread downloads the thread's video when present, trying each
// member's canonical URL in chronological order until the first
// success, then writes the thread sidecar.
func (s *Service) ProcessThread(ctx context.Context, th *domain.Thread) (Result, error) {
	var res Result

	if th.HasVideo() {
		for _, member := range th.Tweets {
			path, err := s.download(ctx, member.URL, th.VideoFilename())
			if err != nil {
				continue
			}
			th.VideoFile = filepath.Base(path)
			res.VideoOK = true
			res.VideoPath = path
			break
		}
		if !res.VideoOK {
			log.Printf("Video download failed for thread %s", th.ID)
		}
	}

	jsonPath := filepath.Join(s.outputDir, th.SidecarFilename())
	if err := WriteSidecar(jsonPath, th); err != nil {
		return res, err
	}
	res.JSONPath = jsonPath
	return res, nil
}

// ProcessAll runs the pipeline sequentially over the batch. Per-item
// video failures only increment the failure counter; a sidecar write
// failure aborts, since it breaks the durability contract.
func (s *Service) ProcessAll(ctx context.Context, tweets []*domain.Tweet, threads []*domain.Thread) (Summary, error) {
	var sum Summary
	sum.Items = len(tweets) + len(threads)

	for i, t := range tweets {
		log.Printf("Processing tweet %d/%d: %s", i+1, len(tweets), t.ID)
		res, err := s.ProcessTweet(ctx, t)
		if err != nil {
			return sum, fmt.Errorf("tweet %s: %w", t.ID, err)
		}
		s.record(&sum, t.HasVideo(), res)
	}

	for i, th := range threads {
		log.Printf("Processing thread %d/%d: %s (%d tweets)", i+1, len(threads), th.ID, len(th.Tweets))
		res, err := s.ProcessThread(ctx, th)
		if err != nil {
			return sum, fmt.Errorf("thread %s: %w", th.ID, err)
		}
		s.record(&sum, th.HasVideo(), res)
	}

	return sum, nil
}

func (s *Service) record(sum *Summary, hadVideo bool, res Result) {
	if res.JSONPath != "" {
		sum.JSONSaved++
	}
	if !hadVideo {
		return
	}
	if res.VideoOK {
		sum.VideoOK++
	} else {
		sum.VideoFailed++
	}
}

// download fetches sourceURL to the stem of videoFilename and
// normalizes the tool-chosen extension to .mp4.
func (s *Service) download(ctx context.Context, sourceURL, videoFilename string) (string, error) {
	stem := filepath.Join(s.outputDir, strings.TrimSuffix(videoFilename, filepath.Ext(videoFilename)))

	if err := s.fetcher.Fetch(ctx, sourceURL, stem); err != nil {
		return "", err
	}

	for _, ext := range videoExtensions {
		candidate := stem + "." + ext
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if ext == "mp4" {
			return candidate, nil
		}
		final := stem + ".mp4"
		if err := os.Rename(candidate, final); err != nil {
			return "", fmt.Errorf("normalize extension: %w", err)
		}
		return final, nil
	}

	return "", fmt.Errorf("downloaded file not found for %s", sourceURL)
}
