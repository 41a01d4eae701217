// oneiro/utils/types/dream.go
package types

// LoginRequest identifies a user; accounts are auto-created on first login.
type LoginRequest struct {
	Username string `json:"username"`
}

// AnalyzeRequest is the payload for submitting a dream narrative.
type AnalyzeRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale,omitempty"`
}

// FeedbackRequest records a thumbs up/down on the interpretation.
type FeedbackRequest struct {
	Kind string `json:"kind"` // "positive" | "negative"
}

// ConversationRequest is one follow-up question in a session.
type ConversationRequest struct {
	Question string `json:"question"`
}

// CaptureInit is the first text frame on the capture websocket.
type CaptureInit struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
}

// CaptureFrame is a recognized-speech event pushed over the capture socket.
type CaptureFrame struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// ProgressResponse reports the simulated analysis progress.
type ProgressResponse struct {
	Percent int    `json:"percent"`
	Visible bool   `json:"visible"`
	State   string `json:"state"`
}

// TranscriptionResponse is the result of a one-shot audio transcription.
type TranscriptionResponse struct {
	Transcription string `json:"transcription"`
	AudioKey      string `json:"audio_key,omitempty"`
}
