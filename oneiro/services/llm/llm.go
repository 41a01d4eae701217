// oneiro/services/llm/llm.go
package llm

import (
	"context"

	httputils "oneiro/oneiro/utils/http"
	"oneiro/oneiro/utils/logging"
)

// Message is one chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the provider-independent completion request.
type ChatRequest struct {
	Model       string      `json:"model"`
	Messages    []Message   `json:"messages"`
	Stream      bool        `json:"stream"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	Options     interface{} `json:"options,omitempty"`
}

// Client is one hosted (or local) chat-completion backend.
type Client interface {
	Run(ctx context.Context, req ChatRequest) (string, error)
}

// OllamaClient talks to a local Ollama server; the offline fallback when
// no hosted API key is configured.
type OllamaClient struct {
	baseURL string
}

func NewOllamaClient(baseURL string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434/api"
	}
	return &OllamaClient{baseURL: baseURL}
}

type ollamaResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

func (c *OllamaClient) Run(ctx context.Context, req ChatRequest) (string, error) {
	defer logging.LogDuration(ctx, "ollama_run")()
	req.Stream = false
	var resp ollamaResponse
	if err := httputils.PostJSON(ctx, c.baseURL+"/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}
