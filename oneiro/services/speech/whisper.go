// Package speech handles dictation: one-shot Whisper transcription of audio
// segments and the push-style capture feed behind the capture websocket.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"oneiro/oneiro/utils/logging"
)

// WhisperClient transcribes audio through the hosted Whisper API.
type WhisperClient struct {
	apiKey  string
	baseURL string
	model   string
}

func NewWhisperClient(apiKey, model string) *WhisperClient {
	if model == "" {
		model = "whisper-1"
	}
	return &WhisperClient{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1/audio/transcriptions",
		model:   model,
	}
}

// Enabled reports whether an API key is configured. Without one the
// capture capability is unavailable and callers should fail fast.
func (c *WhisperClient) Enabled() bool {
	return c.apiKey != ""
}

// Transcribe sends one audio segment and returns the recognized text.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error) {
	defer logging.LogDuration(ctx, "whisper_transcribe")()

	if !c.Enabled() {
		return "", fmt.Errorf("whisper transcription not configured")
	}
	if filename == "" {
		filename = "segment.wav"
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := form.WriteField("model", c.model); err != nil {
		return "", err
	}
	if language != "" {
		if err := form.WriteField("language", language); err != nil {
			return "", err
		}
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("whisper request failed: %s - %s", resp.Status, string(b))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode whisper response: %w", err)
	}
	return parsed.Text, nil
}

// SupportedLanguages lists the transcription languages the service accepts.
func SupportedLanguages() []string {
	return []string{
		"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh",
		"ar", "hi", "tr", "pl", "nl", "sv", "da", "no", "fi",
	}
}
