package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tweet-scraper/pkg/domain"
)

// fakeFetcher simulates yt-dlp by dropping a file at the output stem
// with a configurable extension, or failing per source URL.
type fakeFetcher struct {
	ext     string
	failFor map[string]error
	calls   []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, sourceURL, outputStem string) error {
	f.calls = append(f.calls, sourceURL)
	if err, ok := f.failFor[sourceURL]; ok {
		return err
	}
	ext := f.ext
	if ext == "" {
		ext = "mp4"
	}
	return os.WriteFile(outputStem+"."+ext, []byte("video"), 0o644)
}

func videoTweet(id string) *domain.Tweet {
	return &domain.Tweet{
		ID:       id,
		Author:   "someuser",
		Text:     "text " + id,
		Date:     time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
		URL:      "https://x.com/someuser/status/" + id,
		VideoURL: "https://video.example/" + id + ".mp4",
	}
}

func TestService_ProcessTweet_DownloadAndSidecar(t *testing.T) {
	dir := t.TempDir()
	fetcher := &fakeFetcher{}
	svc, err := NewService(dir, fetcher)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	tw := videoTweet("100")
	res, err := svc.ProcessTweet(context.Background(), tw)
	if err != nil {
		t.Fatalf("ProcessTweet failed: %v", err)
	}

	if !res.VideoOK {
		t.Error("Expected video downloaded")
	}
	wantVideo := filepath.Join(dir, "2024_03_05_100_video.mp4")
	if res.VideoPath != wantVideo {
		t.Errorf("VideoPath = %q, want %q", res.VideoPath, wantVideo)
	}
	if tw.VideoFile != "2024_03_05_100_video.mp4" {
		t.Errorf("Expected VideoFile recorded on tweet, got %q", tw.VideoFile)
	}
	if _, err := os.Stat(res.JSONPath); err != nil {
		t.Errorf("Expected sidecar on disk: %v", err)
	}

	// The fetcher is handed the canonical tweet URL, not the raw
	// variant URL.
	if len(fetcher.calls) != 1 || fetcher.calls[0] != tw.URL {
		t.Errorf("Expected fetch of %q, got %v", tw.URL, fetcher.calls)
	}
}

func TestService_ProcessTweet_VideoFailureStillWritesSidecar(t *testing.T) {
	dir := t.TempDir()
	tw := videoTweet("101")
	fetcher := &fakeFetcher{failFor: map[string]error{tw.URL: ErrNoVideo}}
	svc, _ := NewService(dir, fetcher)

	res, err := svc.ProcessTweet(context.Background(), tw)
	if err != nil {
		t.Fatalf("ProcessTweet failed: %v", err)
	}

	if res.VideoOK {
		t.Error("Expected video failure reported")
	}
	if res.JSONPath == "" {
		t.Fatal("Expected sidecar written despite video failure")
	}
	if _, err := os.Stat(res.JSONPath); err != nil {
		t.Errorf("Expected sidecar on disk: %v", err)
	}
	if tw.VideoFile != "" {
		t.Errorf("Expected no VideoFile recorded, got %q", tw.VideoFile)
	}
}

func TestService_ProcessTweet_NormalizesExtension(t *testing.T) {
	dir := t.TempDir()
	svc, _ := NewService(dir, &fakeFetcher{ext: "webm"})

	tw := videoTweet("102")
	res, err := svc.ProcessTweet(context.Background(), tw)
	if err != nil {
		t.Fatalf("ProcessTweet failed: %v", err)
	}

	if !strings.HasSuffix(res.VideoPath, ".mp4") {
		t.Errorf("Expected .mp4 path, got %q", res.VideoPath)
	}
	if _, err := os.Stat(res.VideoPath); err != nil {
		t.Errorf("Expected renamed file on disk: %v", err)
	}
	if _, err := os.Stat(strings.TrimSuffix(res.VideoPath, ".mp4") + ".webm"); !os.IsNotExist(err) {
		t.Error("Expected original extension removed")
	}
}

func TestService_ProcessThread_FirstWorkingSourceWins(t *testing.T) {
	dir := t.TempDir()

	first := videoTweet("200")
	second := videoTweet("201")
	th := &domain.Thread{
		ID:       "200",
		Author:   "someuser",
		Date:     first.Date,
		Tweets:   []*domain.Tweet{first, second},
		VideoURL: first.VideoURL,
	}

	fetcher := &fakeFetcher{failFor: map[string]error{first.URL: ErrNoVideo}}
	svc, _ := NewService(dir, fetcher)

	res, err := svc.ProcessThread(context.Background(), th)
	if err != nil {
		t.Fatalf("ProcessThread failed: %v", err)
	}

	if !res.VideoOK {
		t.Fatal("Expected download via second member")
	}
	if len(fetcher.calls) != 2 {
		t.Fatalf("Expected 2 fetch attempts, got %d", len(fetcher.calls))
	}
	if fetcher.calls[0] != first.URL || fetcher.calls[1] != second.URL {
		t.Errorf("Expected chronological attempts, got %v", fetcher.calls)
	}
	if !strings.HasSuffix(res.JSONPath, "_thread_twitt.json") {
		t.Errorf("Expected thread sidecar name, got %q", res.JSONPath)
	}
}

func TestService_ProcessAll_Summary(t *testing.T) {
	dir := t.TempDir()

	ok := videoTweet("300")
	failed := videoTweet("301")
	plain := videoTweet("302")
	plain.VideoURL = ""

	fetcher := &fakeFetcher{failFor: map[string]error{failed.URL: ErrNoVideo}}
	svc, _ := NewService(dir, fetcher)

	sum, err := svc.ProcessAll(context.Background(), []*domain.Tweet{ok, failed, plain}, nil)
	if err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}

	if sum.Items != 3 {
		t.Errorf("Items = %d, want 3", sum.Items)
	}
	if sum.JSONSaved != 3 {
		t.Errorf("JSONSaved = %d, want 3", sum.JSONSaved)
	}
	if sum.VideoOK != 1 {
		t.Errorf("VideoOK = %d, want 1", sum.VideoOK)
	}
	if sum.VideoFailed != 1 {
		t.Errorf("VideoFailed = %d, want 1", sum.VideoFailed)
	}
}

func TestWriteSidecar_PreservesNonASCII(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	tw := videoTweet("400")
	tw.Text = "سلام <دنیا>"
	if err := WriteSidecar(path, tw); err != nil {
		t.Fatalf("WriteSidecar failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !strings.Contains(string(raw), "سلام <دنیا>") {
		t.Error("Expected non-ASCII text written verbatim")
	}
	if strings.Contains(string(raw), "\\u003c") {
		t.Error("Expected angle brackets unescaped")
	}

	var decoded domain.Tweet
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Sidecar is not valid JSON: %v", err)
	}
	if decoded.Text != tw.Text {
		t.Errorf("Round-trip text = %q", decoded.Text)
	}
}

func TestService_Rerun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	svc, _ := NewService(dir, &fakeFetcher{})

	tw := videoTweet("500")
	if _, err := svc.ProcessTweet(context.Background(), tw); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(dir, tw.SidecarFilename()))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if _, err := svc.ProcessTweet(context.Background(), tw); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir, tw.SidecarFilename()))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if string(first) != string(second) {
		t.Error("Expected rerun to produce identical sidecar")
	}
}
