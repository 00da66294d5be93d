package domain

import (
	"fmt"
	"time"
)

// Tweet represents a single post fetched from the timeline API.
//
// A Tweet is created once by the extractor and mutated only to attach a
// downloaded video filename or a transcript.
type Tweet struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Date      time.Time `json:"date"`
	URL       string    `json:"url"`
	VideoURL  string    `json:"video_url"`
	VideoFile string    `json:"video_file"`
	IsRetweet bool      `json:"is_retweet"`
	IsReply   bool      `json:"is_reply"`
	ReplyToID string    `json:"reply_to_id"`

	Transcript *Transcription `json:"transcript,omitempty"`
}

// HasVideo reports whether the tweet carries downloadable video content.
func (t *Tweet) HasVideo() bool {
	return t.VideoURL != ""
}

// FilenamePrefix derives the deterministic on-disk prefix for all
// artifacts belonging to this tweet: {YYYY_MM_DD}_{id}.
func (t *Tweet) FilenamePrefix() string {
	return fmt.Sprintf("%s_%s", t.Date.Format("2006_01_02"), t.ID)
}

// VideoFilename is the normalized video artifact name.
func (t *Tweet) VideoFilename() string {
	return t.FilenamePrefix() + "_video.mp4"
}

// SidecarFilename is the JSON metadata file name.
func (t *Tweet) SidecarFilename() string {
	return t.FilenamePrefix() + "_twitt.json"
}

// VoiceFilename is the extracted audio artifact name.
func (t *Tweet) VoiceFilename() string {
	return t.FilenamePrefix() + "_voice.wav"
}

// SubtitleFilename is the standalone transcript JSON name.
func (t *Tweet) SubtitleFilename() string {
	return t.FilenamePrefix() + "_subtitle.json"
}
