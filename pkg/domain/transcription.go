package domain

import "time"

// TranscriptionSegment is a time-aligned slice of transcribed speech.
// Start and End are offsets in seconds from the beginning of the audio.
type TranscriptionSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the complete output of the speech-to-text service for
// one audio artifact. Segments are expected, but not enforced, to be
// monotonically non-decreasing in time.
type Transcription struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language"`
	Segments []TranscriptionSegment `json:"segments"`
}

// ScrapingResult aggregates the outcome of one scraping session. It is a
// pure view over the reconstructed items and is never persisted itself;
// durability comes from the per-item JSON sidecars.
type ScrapingResult struct {
	ProfileURL string
	StartDate  time.Time
	EndDate    time.Time
	Tweets     []*Tweet
	Threads    []*Thread
}
