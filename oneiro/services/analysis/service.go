// Package analysis turns a dream narrative into a structured interpretation:
// a local heuristic pre-pass maps symbols through the curated dictionary,
// then the LLM supplies psychological insights, the integrated
// interpretation and follow-up conversation replies.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"oneiro/oneiro/nlp"
	"oneiro/oneiro/services/llm"
	"oneiro/oneiro/session"
	"oneiro/oneiro/utils/jsonutils"
	"oneiro/oneiro/utils/logging"

	"github.com/google/uuid"
)

const systemPrompt = "You are an expert dream analyst."

const maxInsights = 5

type Service struct {
	client      llm.Client
	analyzer    *nlp.Analyzer
	mapper      *nlp.Mapper
	model       string
	maxTokens   int
	temperature float64
}

func NewService(client llm.Client, analyzer *nlp.Analyzer, mapper *nlp.Mapper, model string, maxTokens int, temperature float64) *Service {
	return &Service{
		client:      client,
		analyzer:    analyzer,
		mapper:      mapper,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Analyze runs the full pipeline for one narrative. The result is produced
// atomically: any failure along the way returns an error and no partial
// interpretation.
func (s *Service) Analyze(ctx context.Context, text, locale string) (*session.Interpretation, error) {
	defer logging.LogDuration(ctx, "analysis_analyze")()

	cleaned := s.analyzer.Preprocess(text)
	elements := s.analyzer.Extract(cleaned)
	symbols := s.mapper.Map(elements.Symbols)

	insights, err := s.insights(ctx, cleaned, symbols, elements.Tone, locale)
	if err != nil {
		return nil, fmt.Errorf("insights request: %w", err)
	}

	summary, err := s.run(ctx, interpretationPrompt(cleaned, symbols, insights, locale), s.temperature)
	if err != nil {
		return nil, fmt.Errorf("interpretation request: %w", err)
	}

	interp := &session.Interpretation{
		ID:            uuid.New().String(),
		SourceText:    text,
		Symbols:       toSessionSymbols(symbols),
		Insights:      insights,
		EmotionalTone: elements.Tone,
		Summary:       strings.TrimSpace(summary),
		CreatedAt:     time.Now(),
	}
	return interp, nil
}

// Respond answers one follow-up question anchored to the interpretation.
func (s *Service) Respond(ctx context.Context, interp *session.Interpretation, history []session.Message, question string) (string, error) {
	defer logging.LogDuration(ctx, "analysis_respond")()

	messages := []llm.Message{
		{Role: "system", Content: conversationPrompt(interp, question)},
	}
	for _, m := range history {
		messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: question})

	answer, err := s.client.Run(ctx, llm.ChatRequest{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: 0.8,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (s *Service) insights(ctx context.Context, text string, symbols []nlp.MappedSymbol, tone, locale string) ([]string, error) {
	resp, err := s.run(ctx, insightsPrompt(text, symbols, tone, locale), s.temperature)
	if err != nil {
		return nil, err
	}
	insights := jsonutils.ExtractStringList(resp)
	if insights == nil {
		// Model ignored the JSON instruction; fall back to numbered-list
		// parsing.
		insights = parseNumberedList(resp)
	}
	if len(insights) == 0 {
		return nil, fmt.Errorf("no insights in model response")
	}
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights, nil
}

func (s *Service) run(ctx context.Context, prompt string, temperature float64) (string, error) {
	return s.client.Run(ctx, llm.ChatRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   s.maxTokens,
		Temperature: temperature,
	})
}

func parseNumberedList(resp string) []string {
	var items []string
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] >= '0' && line[0] <= '9' || strings.HasPrefix(line, "-") {
			cleaned := strings.TrimLeft(line, "0123456789.- ")
			if cleaned != "" {
				items = append(items, cleaned)
			}
		}
	}
	return items
}

func toSessionSymbols(mapped []nlp.MappedSymbol) []session.Symbol {
	out := make([]session.Symbol, 0, len(mapped))
	for _, m := range mapped {
		out = append(out, session.Symbol{
			Symbol:     m.Symbol,
			Meaning:    m.Meaning,
			Confidence: m.Confidence,
		})
	}
	return out
}
