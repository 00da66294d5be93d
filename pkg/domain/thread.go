package domain

import (
	"fmt"
	"time"
)

// Thread is a chronologically ordered run of tweets by a single author,
// connected by reply-to relationships and collapsed into one logical unit.
//
// Its identifier and date are those of the root (earliest) tweet. The
// thread owns references to the Tweet values it groups; a tweet assigned
// to a thread never also appears in the standalone set.
type Thread struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Date      time.Time `json:"date"`
	Tweets    []*Tweet  `json:"tweets"`
	VideoURL  string    `json:"video_url"`
	VideoFile string    `json:"video_file"`

	Transcript *Transcription `json:"transcript,omitempty"`
}

// HasVideo reports whether the thread itself or any member tweet carries
// video content.
func (th *Thread) HasVideo() bool {
	if th.VideoURL != "" {
		return true
	}
	for _, t := range th.Tweets {
		if t.HasVideo() {
			return true
		}
	}
	return false
}

// FirstVideoURL returns the thread's resolved video source: its own
// field when set, otherwise the first member video URL in sequence
// order. Empty when the thread has no video.
func (th *Thread) FirstVideoURL() string {
	if th.VideoURL != "" {
		return th.VideoURL
	}
	for _, t := range th.Tweets {
		if t.VideoURL != "" {
			return t.VideoURL
		}
	}
	return ""
}

// FilenamePrefix derives the deterministic on-disk prefix from the root
// tweet's date and id.
func (th *Thread) FilenamePrefix() string {
	return fmt.Sprintf("%s_%s", th.Date.Format("2006_01_02"), th.ID)
}

// VideoFilename is the normalized video artifact name.
func (th *Thread) VideoFilename() string {
	return th.FilenamePrefix() + "_video.mp4"
}

// SidecarFilename is the JSON metadata file name, distinguished from a
// single tweet's sidecar by the _thread suffix.
func (th *Thread) SidecarFilename() string {
	return th.FilenamePrefix() + "_thread_twitt.json"
}

// VoiceFilename is the extracted audio artifact name.
func (th *Thread) VoiceFilename() string {
	return th.FilenamePrefix() + "_voice.wav"
}

// SubtitleFilename is the standalone transcript JSON name.
func (th *Thread) SubtitleFilename() string {
	return th.FilenamePrefix() + "_subtitle.json"
}
