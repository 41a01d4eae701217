// Command-line interpreter: reads a dream narrative from stdin and prints
// the analysis without the HTTP server or database.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"oneiro/oneiro/config"
	"oneiro/oneiro/nlp"
	"oneiro/oneiro/services/analysis"
	"oneiro/oneiro/services/llm"
	"oneiro/oneiro/utils/color"
	"oneiro/oneiro/utils/logging"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	var client llm.Client
	switch cfg.LLMProvider {
	case "groq":
		client = llm.NewGroqClient(cfg.GroqAPIKey)
	case "ollama":
		client = llm.NewOllamaClient(cfg.OllamaBaseURL)
	default:
		client = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	}

	svc := analysis.NewService(
		client,
		nlp.NewAnalyzer(),
		nlp.NewMapper(cfg.SymbolDictPath),
		cfg.LLMModel,
		cfg.MaxTokens,
		cfg.Temperature,
	)

	fmt.Println(color.ColorPrompt("Describe your dream, then press Enter (or pipe text in):"))
	reader := bufio.NewReader(os.Stdin)
	text, err := reader.ReadString('\n')
	if err != nil && text == "" {
		fmt.Fprintln(os.Stderr, "no input")
		os.Exit(1)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		fmt.Fprintln(os.Stderr, "no input")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AnalysisTimeout)
	defer cancel()
	interp, err := svc.Analyze(ctx, text, cfg.DefaultLanguage)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("analysis failed: "+err.Error()))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(color.ColorSummary(interp.Summary))
	if len(interp.Symbols) > 0 {
		fmt.Println("\nSymbols:")
		for _, s := range interp.Symbols {
			fmt.Printf("  %s %s (%.0f%%)\n", color.ColorSymbol(fmt.Sprintf("%-12s", s.Symbol)), s.Meaning, s.Confidence*100)
		}
	}
	if len(interp.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, in := range interp.Insights {
			fmt.Println(color.ColorInsight("  - "+in))
		}
	}
	if interp.EmotionalTone != "" {
		fmt.Println("\nEmotional tone:", color.ColorTone(interp.EmotionalTone))
	}
}
