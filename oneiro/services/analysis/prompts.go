package analysis

import (
	"fmt"
	"strings"

	"oneiro/oneiro/nlp"
	"oneiro/oneiro/session"
)

// localeInstruction asks the model to answer in the session's language.
// English needs no instruction; it is the prompts' own language.
func localeInstruction(locale string) string {
	if locale == "" || locale == "en" {
		return ""
	}
	return fmt.Sprintf("\n\nWrite your response in the language with ISO code %q.", locale)
}

func insightsPrompt(dreamText string, symbols []nlp.MappedSymbol, tone string, locale string) string {
	parts := make([]string, 0, 5)
	for i, s := range symbols {
		if i == 5 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Symbol, s.Meaning))
	}
	return fmt.Sprintf(`You are an expert dream analyst with deep knowledge of psychology, particularly Jungian analysis, Freudian theory, and modern dream research.

Analyze this dream and provide 3-5 psychological insights.

Dream: %q

Detected symbols: %s
Emotional tone: %s

Provide insights that:
1. Connect the symbols to possible psychological meanings
2. Consider the emotional context
3. Relate to potential waking life concerns
4. Are supportive and constructive

Respond with ONLY a JSON array of strings, one insight per element, each 1-2 sentences long.%s`,
		dreamText, strings.Join(parts, ", "), tone, localeInstruction(locale))
}

func interpretationPrompt(dreamText string, symbols []nlp.MappedSymbol, insights []string, locale string) string {
	var symbolLines []string
	for i, s := range symbols {
		if i == 5 {
			break
		}
		symbolLines = append(symbolLines, fmt.Sprintf("- %s: %s", s.Symbol, s.Meaning))
	}
	var insightLines []string
	for _, in := range insights {
		insightLines = append(insightLines, "- "+in)
	}
	return fmt.Sprintf(`As a professional dream interpreter, provide a comprehensive yet accessible interpretation of this dream.

Dream: %q

Key Symbols:
%s

Psychological Insights:
%s

Create a cohesive interpretation that:
1. Weaves together the symbols and insights
2. Provides practical relevance to the dreamer's life
3. Is encouraging and constructive
4. Is 2-3 paragraphs long
5. Uses accessible language while maintaining depth

Begin with "This dream appears to..." and provide a thoughtful, integrated analysis.%s`,
		dreamText, strings.Join(symbolLines, "\n"), strings.Join(insightLines, "\n"), localeInstruction(locale))
}

func conversationPrompt(interp *session.Interpretation, question string) string {
	return fmt.Sprintf(`You are continuing a conversation about a dream interpretation. The user has a follow-up question.

Original Dream: %q

Original Interpretation: %q

User's Question: %q

Provide a helpful, conversational response that:
1. Directly addresses their question
2. References the original dream and interpretation
3. Offers additional insights if relevant
4. Is supportive and encouraging
5. Is 1-2 paragraphs long

Maintain the tone of a knowledgeable but approachable dream counselor.`,
		interp.SourceText, interp.Summary, question)
}

// VisualizationPrompt builds a text-to-image prompt from the top symbols
// of an interpretation.
func VisualizationPrompt(symbols []session.Symbol) string {
	var parts []string
	for i, s := range symbols {
		if i == 3 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s representing %s", s.Symbol, s.Meaning))
	}
	return fmt.Sprintf("A surreal dreamlike scene featuring %s, artistic, ethereal, symbolic",
		strings.Join(parts, ", "))
}
