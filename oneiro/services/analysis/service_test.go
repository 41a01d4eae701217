package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"oneiro/oneiro/nlp"
	"oneiro/oneiro/services/llm"
	"oneiro/oneiro/session"
	"oneiro/oneiro/utils/logging"
)

type fakeClient struct {
	responses []string
	err       error
	requests  []llm.ChatRequest
}

func (f *fakeClient) Run(ctx context.Context, req llm.ChatRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func newTestService(client llm.Client) *Service {
	logging.InitLogger()
	return NewService(client, nlp.NewAnalyzer(), nlp.NewMapper(""), "test-model", 1000, 0.7)
}

func TestAnalyzeBuildsInterpretation(t *testing.T) {
	client := &fakeClient{responses: []string{
		`["You are processing a desire for freedom.", "The ocean points to deep emotions."]`,
		"This dream appears to reflect a longing for open horizons.",
	}}
	s := newTestService(client)

	const dream = "I was flying over an ocean holding a golden key"
	interp, err := s.Analyze(context.Background(), dream, "en")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if interp.SourceText != dream {
		t.Errorf("source text mismatch: %q", interp.SourceText)
	}
	if len(interp.Symbols) == 0 {
		t.Errorf("expected mapped symbols")
	}
	if len(interp.Insights) != 2 {
		t.Errorf("expected 2 insights, got %d", len(interp.Insights))
	}
	if !strings.HasPrefix(interp.Summary, "This dream appears to") {
		t.Errorf("unexpected summary %q", interp.Summary)
	}
	if interp.ID == "" || interp.CreatedAt.IsZero() {
		t.Errorf("expected id and timestamp assigned")
	}
	if len(client.requests) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(client.requests))
	}
}

func TestAnalyzeParsesNumberedListFallback(t *testing.T) {
	client := &fakeClient{responses: []string{
		"1. First insight about transformation.\n2. Second insight about growth.\n3. Third.\n4. Fourth.\n5. Fifth.\n6. Sixth.",
		"This dream appears to be about growth.",
	}}
	s := newTestService(client)

	interp, err := s.Analyze(context.Background(), "I dreamt of a river", "en")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(interp.Insights) != 5 {
		t.Errorf("expected insights capped at 5, got %d", len(interp.Insights))
	}
	if interp.Insights[0] != "First insight about transformation." {
		t.Errorf("unexpected first insight %q", interp.Insights[0])
	}
}

func TestAnalyzePropagatesFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}
	s := newTestService(client)

	if _, err := s.Analyze(context.Background(), "a dream about a bridge", "en"); err == nil {
		t.Fatalf("expected error from failing model")
	}
}

func TestRespondAnchorsToInterpretation(t *testing.T) {
	client := &fakeClient{responses: []string{"The key stands for a solution within reach."}}
	s := newTestService(client)

	interp := &session.Interpretation{
		SourceText: "holding a golden key",
		Summary:    "This dream appears to be about access.",
	}
	history := []session.Message{
		{Role: session.RoleAssistant, Content: "Your dream has been interpreted."},
	}
	answer, err := s.Respond(context.Background(), interp, history, "what does the key mean?")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if answer != "The key stands for a solution within reach." {
		t.Errorf("unexpected answer %q", answer)
	}

	req := client.requests[0]
	if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "holding a golden key") {
		t.Errorf("system prompt must anchor to the original dream")
	}
	if last := req.Messages[len(req.Messages)-1]; last.Role != "user" || last.Content != "what does the key mean?" {
		t.Errorf("question must be the final message, got %+v", last)
	}
}

func TestVisualizationPromptTopThreeSymbols(t *testing.T) {
	prompt := VisualizationPrompt([]session.Symbol{
		{Symbol: "Flying", Meaning: "freedom"},
		{Symbol: "Ocean", Meaning: "the unconscious"},
		{Symbol: "Key", Meaning: "access"},
		{Symbol: "Mirror", Meaning: "self-reflection"},
	})
	if !strings.Contains(prompt, "Flying representing freedom") {
		t.Errorf("missing top symbol in %q", prompt)
	}
	if strings.Contains(prompt, "Mirror") {
		t.Errorf("prompt must only use the top 3 symbols: %q", prompt)
	}
}

func TestAnalyzeCarriesLocaleIntoPrompts(t *testing.T) {
	client := &fakeClient{responses: []string{
		`["Puede que estes procesando un deseo de libertad."]`,
		"This dream appears to reflect a longing for open horizons.",
	}}
	s := newTestService(client)

	if _, err := s.Analyze(context.Background(), "I was flying over an ocean", "es"); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if len(client.requests) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(client.requests))
	}
	for i, req := range client.requests {
		prompt := req.Messages[len(req.Messages)-1].Content
		if !strings.Contains(prompt, `language with ISO code "es"`) {
			t.Errorf("request %d missing locale instruction:\n%s", i, prompt)
		}
	}

	// English is the prompts' own language and needs no instruction.
	client = &fakeClient{responses: []string{
		`["You are processing a desire for freedom."]`,
		"This dream appears to reflect a longing for open horizons.",
	}}
	s = newTestService(client)
	if _, err := s.Analyze(context.Background(), "I was flying over an ocean", "en"); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	for i, req := range client.requests {
		prompt := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(prompt, "ISO code") {
			t.Errorf("request %d has locale instruction for english:\n%s", i, prompt)
		}
	}
}
