// oneiro/controllers/speech.go
package controllers

import (
	"context"
	"fmt"
	"time"

	"oneiro/oneiro/services/speech"
	"oneiro/oneiro/sources/storage"
	"oneiro/oneiro/utils/logging"
	"oneiro/oneiro/utils/types"

	"go.uber.org/zap"
)

// SpeechController turns uploaded audio segments into text. The MinIO
// store is optional; when absent segments are transcribed and discarded.
type SpeechController struct {
	whisper  *speech.WhisperClient
	store    *storage.MinIOClient
	maxBytes int
	language string
}

func NewSpeechController(whisper *speech.WhisperClient, store *storage.MinIOClient, maxBytes int, language string) *SpeechController {
	return &SpeechController{
		whisper:  whisper,
		store:    store,
		maxBytes: maxBytes,
		language: language,
	}
}

func (c *SpeechController) Enabled() bool {
	return c.whisper != nil && c.whisper.Enabled()
}

func (c *SpeechController) Transcribe(ctx context.Context, sessionID string, audio []byte, filename, language, contentType string) (*types.TranscriptionResponse, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("speech transcription not configured")
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio")
	}
	if c.maxBytes > 0 && len(audio) > c.maxBytes {
		return nil, fmt.Errorf("audio exceeds %d bytes", c.maxBytes)
	}
	if language == "" {
		language = c.language
	}

	var key string
	if c.store != nil {
		k, err := c.store.UploadAudio(ctx, sessionID, audio, contentType)
		if err != nil {
			logging.ErrorLogger.Error("failed to store audio", zap.String("session_id", sessionID), zap.Error(err))
		} else {
			key = k
		}
	}

	tctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	text, err := c.whisper.Transcribe(tctx, audio, filename, language)
	if err != nil {
		return nil, err
	}
	return &types.TranscriptionResponse{Transcription: text, AudioKey: key}, nil
}

func (c *SpeechController) Languages() []string {
	return speech.SupportedLanguages()
}
