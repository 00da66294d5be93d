package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tweet-scraper/pkg/domain"
	"tweet-scraper/pkg/httpclient"
)

const (
	openaiBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the primary transcription model.
	DefaultModel = "gpt-4o-mini-transcribe"
	// FallbackModel is the known-good model retried exactly once when
	// the primary is unavailable.
	FallbackModel = "whisper-1"

	// MaxUploadBytes is the service's hard upload ceiling (25 MB).
	MaxUploadBytes = 25 << 20
)

// TranscribeRequest carries the per-call transcription controls.
type TranscribeRequest struct {
	Model       string
	Language    string
	Prompt      string
	Temperature *float64
	Timestamps  bool
}

// Transcriber is the speech-to-text collaborator boundary.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, req TranscribeRequest) (*domain.Transcription, error)
}

// TranscriptionError is a non-2xx response from the transcription API.
type TranscriptionError struct {
	Status  int
	Message string
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription api error (status %d): %s", e.Status, e.Message)
}

// OpenAIClient calls the OpenAI audio transcription endpoint.
type OpenAIClient struct {
	baseURL string
	http    *httpclient.Client
}

// NewOpenAIClient creates a transcription client. The timeout is
// generous: uploads of near-ceiling files are slow.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		baseURL: openaiBaseURL,
		http:    httpclient.NewBearer(apiKey, 10*time.Minute),
	}
}

type openaiSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type openaiResponse struct {
	Text     string          `json:"text"`
	Language string          `json:"language"`
	Segments []openaiSegment `json:"segments"`
}

type openaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Transcribe uploads the audio file and returns the normalized
// transcription. Segments are only populated when req.Timestamps is
// set.
func (c *OpenAIClient) Transcribe(ctx context.Context, audioPath string, req TranscribeRequest) (*domain.Transcription, error) {
	body, contentType, err := c.buildForm(audioPath, req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call transcription api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr openaiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, &TranscriptionError{Status: resp.StatusCode, Message: apiErr.Error.Message}
		}
		return nil, &TranscriptionError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	var parsed openaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	tr := &domain.Transcription{
		Text:     strings.TrimSpace(parsed.Text),
		Language: req.Language,
		Segments: []domain.TranscriptionSegment{},
	}
	if req.Timestamps {
		for _, seg := range parsed.Segments {
			tr.Segments = append(tr.Segments, domain.TranscriptionSegment{
				Start: seg.Start,
				End:   seg.End,
				Text:  strings.TrimSpace(seg.Text),
			})
		}
	}
	return tr, nil
}

func (c *OpenAIClient) buildForm(audioPath string, req TranscribeRequest) (*bytes.Buffer, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}

	fields := map[string]string{
		"model":    req.Model,
		"language": req.Language,
	}
	if req.Prompt != "" {
		fields["prompt"] = req.Prompt
	}
	if req.Temperature != nil {
		fields["temperature"] = strconv.FormatFloat(*req.Temperature, 'f', -1, 64)
	}
	if req.Timestamps {
		fields["response_format"] = "verbose_json"
		fields["timestamp_granularities[]"] = "segment"
	} else {
		fields["response_format"] = "json"
	}

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
