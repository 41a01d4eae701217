// oneiro/services/llm/groq_client.go
package llm

import (
	"context"
	"fmt"

	httputils "oneiro/oneiro/utils/http"
	"oneiro/oneiro/utils/logging"
)

type GroqClient struct {
	baseURL string
	apiKey  string
}

// NewGroqClient returns a client pointing to Groq's OpenAI-compatible
// chat endpoint.
func NewGroqClient(apiKey string) *GroqClient {
	return &GroqClient{
		baseURL: "https://api.groq.com/openai/v1",
		apiKey:  apiKey,
	}
}

func (c *GroqClient) Run(ctx context.Context, req ChatRequest) (string, error) {
	defer logging.LogDuration(ctx, "groq_run")()

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req.Stream = false

	var resp struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	if err := httputils.PostJSONWithAuth(ctx, url, c.apiKey, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("no choices returned")
}
