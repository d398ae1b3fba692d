package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"telegram-scribe-bot/internal/domain/ports/adapter"
)

var _ adapter.SpeechTranscriber = (*HTTPTranscriber)(nil)

// HTTPTranscriber sends the media file to an OpenAI-compatible
// /audio/transcriptions endpoint. Used when no local model is configured.
type HTTPTranscriber struct {
	apiKey string
	base   string // e.g. https://api.openai.com/v1
	model  string
	client *http.Client
}

func NewHTTPTranscriber(apiKey, baseURL, model string) (*HTTPTranscriber, error) {
	if apiKey == "" {
		return nil, errors.New("stt api key empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "whisper-1"
	}
	return &HTTPTranscriber{
		apiKey: apiKey,
		base:   baseURL,
		model:  model,
		client: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, localPath string) (adapter.Transcript, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return adapter.Transcript{}, fmt.Errorf("open media file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return adapter.Transcript{}, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return adapter.Transcript{}, err
	}
	if err := mw.WriteField("model", t.model); err != nil {
		return adapter.Transcript{}, err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return adapter.Transcript{}, err
	}
	if err := mw.Close(); err != nil {
		return adapter.Transcript{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+"/audio/transcriptions", &body)
	if err != nil {
		return adapter.Transcript{}, err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return adapter.Transcript{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return adapter.Transcript{}, fmt.Errorf("transcription endpoint http %d", resp.StatusCode)
	}

	var payload struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []struct {
			Text string `json:"text"`
		} `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return adapter.Transcript{}, err
	}

	out := adapter.Transcript{Language: payload.Language}
	for _, s := range payload.Segments {
		out.Segments = append(out.Segments, s.Text)
	}
	if len(out.Segments) == 0 && payload.Text != "" {
		out.Segments = []string{payload.Text}
	}
	return out, nil
}
