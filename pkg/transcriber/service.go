package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"tweet-scraper/pkg/archive"
	"tweet-scraper/pkg/domain"
)

// Options are the transcription pipeline controls, resolved once at
// startup and passed by value.
type Options struct {
	Model        string
	Prompt       string
	Temperature  *float64
	Language     string
	CleanAudio   bool
	TrimSilence  bool
	SkipExisting bool
	Timestamps   bool
}

// Summary aggregates a phase run.
type Summary struct {
	Successful int
	Skipped    int
	Failed     int
}

// OversizeError reports an audio file over the upload ceiling. The
// upload is rejected outright; there is no partial upload.
type OversizeError struct {
	Size int64
}

func (e *OversizeError) Error() string {
	return fmt.Sprintf("audio file is too large (%.1fMB), the api limit is %dMB",
		float64(e.Size)/1024/1024, MaxUploadBytes>>20)
}

// Service runs the two media phases: audio extraction from downloaded
// videos, and transcription of the extracted audio.
type Service struct {
	extractor   AudioExtractor
	transcriber Transcriber
	opts        Options
}

// NewService wires the two collaborators with the resolved options.
func NewService(extractor AudioExtractor, transcriber Transcriber, opts Options) *Service {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Language == "" {
		opts.Language = "fa"
	}
	return &Service{extractor: extractor, transcriber: transcriber, opts: opts}
}

// ExtractAudio demuxes every video under inputPath to a voice WAV named
// by the filename convention. Existing voice files are skipped when
// skip-existing is enabled; per-item failures do not abort the batch.
// outputDir defaults to each video's own directory when empty.
func (s *Service) ExtractAudio(ctx context.Context, inputPath, outputDir string) (Summary, error) {
	videos, err := FindVideoFiles(inputPath)
	if err != nil {
		return Summary{}, err
	}
	if len(videos) == 0 {
		log.Printf("No video files found in %s", inputPath)
		return Summary{}, nil
	}

	log.Printf("Found %d video file(s)", len(videos))

	var sum Summary
	for i, videoPath := range videos {
		log.Printf("[%d/%d] Extracting: %s", i+1, len(videos), filepath.Base(videoPath))

		outDir := outputDir
		if outDir == "" {
			outDir = filepath.Dir(videoPath)
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return sum, fmt.Errorf("create output dir: %w", err)
		}
		voicePath := filepath.Join(outDir, VoiceName(videoPath))

		if s.opts.SkipExisting {
			if _, err := os.Stat(voicePath); err == nil {
				log.Printf("  Skipping (voice file exists)")
				sum.Skipped++
				continue
			}
		}

		opts := FilterOptions{CleanAudio: s.opts.CleanAudio, TrimSilence: s.opts.TrimSilence}
		if err := s.extractor.Extract(ctx, videoPath, voicePath, opts); err != nil {
			log.Printf("  Error: %v", err)
			sum.Failed++
			continue
		}
		sum.Successful++
	}

	return sum, nil
}

// TranscribeAll transcribes every audio file under inputPath. With
// updateJSON set, the transcript is merged into the matching sidecar
// located by reversing the filename convention, falling back to a
// standalone subtitle file with a warning when none matches; otherwise
// a subtitle file is always written. outputDir defaults to each audio
// file's own directory when empty.
func (s *Service) TranscribeAll(ctx context.Context, inputPath, outputDir string, updateJSON bool) (Summary, error) {
	audios, err := FindAudioFiles(inputPath)
	if err != nil {
		return Summary{}, err
	}
	if len(audios) == 0 {
		log.Printf("No audio files found in %s (run extract-audio first)", inputPath)
		return Summary{}, nil
	}

	log.Printf("Found %d audio file(s)", len(audios))

	var sum Summary
	for i, audioPath := range audios {
		log.Printf("[%d/%d] Transcribing: %s", i+1, len(audios), filepath.Base(audioPath))

		if s.opts.SkipExisting && s.alreadyTranscribed(audioPath, outputDir, updateJSON) {
			log.Printf("  Skipping (already transcribed)")
			sum.Skipped++
			continue
		}

		tr, err := s.transcribeOne(ctx, audioPath)
		if err != nil {
			// An oversized file is a precondition failure: the ceiling
			// is fixed and retrying other items cannot change it.
			var oversize *OversizeError
			if errors.As(err, &oversize) {
				return sum, fmt.Errorf("%s: %w", filepath.Base(audioPath), err)
			}
			log.Printf("  Error: %v", err)
			sum.Failed++
			continue
		}

		if err := s.persist(audioPath, outputDir, updateJSON, tr); err != nil {
			log.Printf("  Error: %v", err)
			sum.Failed++
			continue
		}
		sum.Successful++
	}

	return sum, nil
}

// alreadyTranscribed checks the idempotence markers: a transcript field
// in the linked sidecar (update-json mode) or an existing subtitle
// file.
func (s *Service) alreadyTranscribed(audioPath, outputDir string, updateJSON bool) bool {
	if updateJSON {
		sidecar := FindSidecar(audioPath)
		if sidecar == "" {
			return false
		}
		data, err := readSidecar(sidecar)
		if err != nil {
			return false
		}
		_, ok := data["transcript"]
		return ok
	}

	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(audioPath)
	}
	_, err := os.Stat(filepath.Join(dir, SubtitleName(audioPath)))
	return err == nil
}

// transcribeOne optionally cleans the audio, enforces the upload
// ceiling, and calls the service with the primary model, retrying
// exactly once with the fallback model when the primary is reported
// unavailable. Any temporary cleaned artifact is removed on every path.
func (s *Service) transcribeOne(ctx context.Context, audioPath string) (*domain.Transcription, error) {
	uploadPath := audioPath

	if s.opts.CleanAudio || s.opts.TrimSilence {
		tempPath := filepath.Join(os.TempDir(), "voice_clean_"+uuid.NewString()+".wav")
		defer os.Remove(tempPath)

		opts := FilterOptions{CleanAudio: s.opts.CleanAudio, TrimSilence: s.opts.TrimSilence}
		if err := s.extractor.Extract(ctx, audioPath, tempPath, opts); err != nil {
			return nil, fmt.Errorf("clean audio: %w", err)
		}
		uploadPath = tempPath
	}

	info, err := os.Stat(uploadPath)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxUploadBytes {
		return nil, &OversizeError{Size: info.Size()}
	}

	req := TranscribeRequest{
		Model:       s.opts.Model,
		Language:    s.opts.Language,
		Prompt:      s.opts.Prompt,
		Temperature: s.opts.Temperature,
		Timestamps:  s.opts.Timestamps,
	}

	tr, err := s.transcriber.Transcribe(ctx, uploadPath, req)
	if err != nil && req.Model != FallbackModel && isModelUnavailable(err) {
		log.Printf("  Model %q unavailable, retrying with %q", req.Model, FallbackModel)
		req.Model = FallbackModel
		tr, err = s.transcriber.Transcribe(ctx, uploadPath, req)
	}
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// isModelUnavailable matches the error classes that warrant the single
// fallback retry: the requested model name being unknown or invalid.
// Network, auth and quota errors never trigger a fallback.
func isModelUnavailable(err error) bool {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "model") {
		return false
	}
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "invalid")
}

func (s *Service) persist(audioPath, outputDir string, updateJSON bool, tr *domain.Transcription) error {
	if updateJSON {
		sidecar := FindSidecar(audioPath)
		if sidecar != "" {
			if err := mergeTranscript(sidecar, tr); err != nil {
				return err
			}
			log.Printf("  Updated: %s", filepath.Base(sidecar))
			return nil
		}
		log.Printf("  Warning: no corresponding sidecar found for %s", filepath.Base(audioPath))
	}

	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	subtitlePath := filepath.Join(dir, SubtitleName(audioPath))
	if err := archive.WriteSidecar(subtitlePath, tr); err != nil {
		return err
	}
	log.Printf("  Saved: %s", filepath.Base(subtitlePath))
	return nil
}

func readSidecar(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse sidecar %s: %w", path, err)
	}
	return data, nil
}

// mergeTranscript sets the transcript field of an existing sidecar,
// preserving everything else in it.
func mergeTranscript(path string, tr *domain.Transcription) error {
	data, err := readSidecar(path)
	if err != nil {
		return err
	}
	data["transcript"] = tr
	return archive.WriteSidecar(path, data)
}
