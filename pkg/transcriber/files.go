package transcriber

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	videoExtensions = map[string]bool{".mp4": true, ".mkv": true, ".webm": true, ".mov": true, ".avi": true}
	audioExtensions = map[string]bool{".wav": true, ".mp3": true, ".m4a": true, ".flac": true, ".ogg": true}
)

// FindVideoFiles returns the video files under path, which may name a
// single file or a directory.
func FindVideoFiles(path string) ([]string, error) {
	return findByExtension(path, videoExtensions, "")
}

// FindAudioFiles returns the audio files under path. In a directory,
// *_voice.wav artifacts are preferred; other audio files are only
// considered when none exist.
func FindAudioFiles(path string) ([]string, error) {
	return findByExtension(path, audioExtensions, "*_voice.wav")
}

func findByExtension(path string, extensions map[string]bool, preferGlob string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil, fmt.Errorf("%s is not a recognized media file", path)
		}
		return []string{path}, nil
	}

	if preferGlob != "" {
		preferred, err := filepath.Glob(filepath.Join(path, preferGlob))
		if err == nil && len(preferred) > 0 {
			sort.Strings(preferred)
			return preferred, nil
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// VoiceName derives the audio artifact name for a video file, replacing
// the _video suffix of the naming convention.
func VoiceName(videoPath string) string {
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	if prefix, ok := strings.CutSuffix(stem, "_video"); ok {
		return prefix + "_voice.wav"
	}
	return stem + "_voice.wav"
}

// SubtitleName derives the transcript JSON name for an audio file.
func SubtitleName(audioPath string) string {
	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	if prefix, ok := strings.CutSuffix(stem, "_voice"); ok {
		return prefix + "_subtitle.json"
	}
	return stem + "_subtitle.json"
}

// FindSidecar reverses the filename convention to locate the JSON
// sidecar next to an audio artifact: first the single-tweet sidecar,
// then the thread one. Returns "" when neither exists.
func FindSidecar(audioPath string) string {
	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	prefix, ok := strings.CutSuffix(stem, "_voice")
	if !ok {
		return ""
	}

	dir := filepath.Dir(audioPath)
	for _, name := range []string{prefix + "_twitt.json", prefix + "_thread_twitt.json"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
