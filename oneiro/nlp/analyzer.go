// Package nlp is the local pre-pass over a dream narrative: text cleanup,
// heuristic symbol/emotion extraction and the curated symbol dictionary.
// The heavy lifting (insights, full interpretation) is the LLM's job.
package nlp

import (
	"regexp"
	"sort"
	"strings"
)

type ExtractedSymbol struct {
	Symbol     string  `json:"symbol"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context"`
}

type Emotion struct {
	Emotion   string   `json:"emotion"`
	Intensity float64  `json:"intensity"`
	Keywords  []string `json:"keywords_found"`
}

// Elements is everything the heuristic pass pulls out of one narrative.
type Elements struct {
	Symbols    []ExtractedSymbol
	Emotions   []Emotion
	Tone       string
	Themes     []string
	Archetypes []string
}

type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

var (
	reSpaces   = regexp.MustCompile(`\s+`)
	reDots     = regexp.MustCompile(`\.{2,}`)
	reQuestion = regexp.MustCompile(`\?{2,}`)
	reBang     = regexp.MustCompile(`!{2,}`)
)

// dictation mishearings seen in transcribed narratives
var transcriptionFixes = map[string]string{
	" there was ": " I was ",
	" they was ":  " I was ",
	" we was ":    " I was ",
}

// Preprocess normalizes whitespace and punctuation and fixes common
// dictation errors before extraction.
func (a *Analyzer) Preprocess(text string) string {
	cleaned := reSpaces.ReplaceAllString(strings.TrimSpace(text), " ")
	cleaned = reDots.ReplaceAllString(cleaned, ".")
	cleaned = reQuestion.ReplaceAllString(cleaned, "?")
	cleaned = reBang.ReplaceAllString(cleaned, "!")
	for wrong, right := range transcriptionFixes {
		cleaned = strings.ReplaceAll(cleaned, wrong, right)
	}
	return cleaned
}

var symbolPatterns = map[string][]string{
	"animals":  {"dog", "cat", "bird", "snake", "spider", "horse", "wolf", "bear", "lion", "fish", "butterfly"},
	"water":    {"water", "ocean", "sea", "lake", "river", "rain", "swimming", "drowning", "flood", "waves"},
	"flight":   {"flying", "falling", "jumping", "running", "climbing", "soaring", "floating"},
	"people":   {"mother", "father", "family", "friend", "stranger", "child", "baby", "lover", "teacher"},
	"places":   {"house", "school", "workplace", "forest", "mountain", "cave", "bridge", "door", "window", "room"},
	"objects":  {"car", "phone", "mirror", "key", "book", "money", "clothes", "food", "fire", "light"},
	"abstract": {"death", "birth", "lost", "found", "trapped", "free", "hidden", "revealed", "broken", "whole"},
}

var emotionKeywords = map[string][]string{
	"fear":      {"scared", "afraid", "terrified", "frightened", "anxious", "worried", "panic"},
	"joy":       {"happy", "excited", "joyful", "elated", "cheerful", "delighted", "pleased"},
	"sadness":   {"sad", "depressed", "melancholy", "grief", "sorrow", "disappointed"},
	"anger":     {"angry", "furious", "mad", "irritated", "frustrated", "rage"},
	"surprise":  {"surprised", "amazed", "shocked", "astonished", "stunned"},
	"confusion": {"confused", "puzzled", "lost", "uncertain", "bewildered"},
	"peace":     {"peaceful", "calm", "serene", "relaxed", "tranquil", "content"},
}

var toneMapping = map[string]string{
	"fear":      "anxious",
	"joy":       "positive",
	"sadness":   "melancholic",
	"anger":     "intense",
	"surprise":  "transformative",
	"confusion": "uncertain",
	"peace":     "serene",
}

var themeKeywords = map[string][]string{
	"transformation": {"changing", "becoming", "turning", "growing", "shrinking", "metamorphosis"},
	"journey":        {"traveling", "walking", "driving", "path", "road", "destination", "journey"},
	"conflict":       {"fighting", "arguing", "battle", "war", "struggle", "competition"},
	"relationships":  {"meeting", "talking", "loving", "friendship", "family", "romantic"},
	"achievement":    {"winning", "success", "graduation", "promotion", "accomplishment"},
	"loss":           {"losing", "missing", "dead", "gone", "lost", "disappeared"},
	"exploration":    {"discovering", "exploring", "finding", "searching", "adventure"},
}

var archetypeKeywords = map[string][]string{
	"hero":         {"saving", "rescuing", "fighting", "brave", "courage", "quest"},
	"shadow":       {"dark", "evil", "monster", "demon", "enemy", "hidden"},
	"anima_animus": {"mysterious person", "guide", "wise", "beautiful", "handsome"},
	"mother":       {"nurturing", "caring", "protective", "feeding", "mother"},
	"father":       {"authority", "teaching", "guiding", "strong", "father"},
	"trickster":    {"joking", "laughing", "fooling", "mischief", "playful"},
	"wise_old_man": {"teacher", "mentor", "advice", "wisdom", "elder"},
}

// Extract pulls symbols, emotions, tone, themes and archetypes out of a
// (preprocessed) narrative using keyword heuristics.
func (a *Analyzer) Extract(text string) Elements {
	return Elements{
		Symbols:    a.extractSymbols(text),
		Emotions:   a.extractEmotions(text),
		Tone:       a.Tone(text),
		Themes:     matchKeywordGroups(text, themeKeywords),
		Archetypes: matchKeywordGroups(text, archetypeKeywords),
	}
}

func (a *Analyzer) extractSymbols(text string) []ExtractedSymbol {
	lower := strings.ToLower(text)
	var found []ExtractedSymbol
	for category, symbols := range symbolPatterns {
		for _, symbol := range symbols {
			if !strings.Contains(lower, symbol) {
				continue
			}
			found = append(found, ExtractedSymbol{
				Symbol:     titleWord(symbol),
				Category:   category,
				Confidence: symbolConfidence(symbol, text),
				Context:    symbolContext(symbol, text, 30),
			})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Confidence > found[j].Confidence
	})
	if len(found) > 10 {
		found = found[:10]
	}
	return found
}

// symbolConfidence scores a symbol by frequency, boosted when it appears
// near the start or end of the narrative.
func symbolConfidence(symbol, text string) float64 {
	lower := strings.ToLower(text)
	freq := strings.Count(lower, symbol)
	confidence := float64(freq)*0.3 + 0.4
	if confidence > 1.0 {
		confidence = 1.0
	}
	if n := len(lower); n > 0 {
		head := lower[:min(50, n)]
		tail := lower[max(0, n-50):]
		if strings.Contains(head, symbol) {
			confidence += 0.1
		}
		if strings.Contains(tail, symbol) {
			confidence += 0.1
		}
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func symbolContext(symbol, text string, window int) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, symbol)
	if idx < 0 {
		return ""
	}
	start := max(0, idx-window)
	end := min(len(text), idx+len(symbol)+window)
	return strings.TrimSpace(text[start:end])
}

func (a *Analyzer) extractEmotions(text string) []Emotion {
	lower := strings.ToLower(text)
	var found []Emotion
	for emotion, keywords := range emotionKeywords {
		var hits []string
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) == 0 {
			continue
		}
		intensity := float64(len(hits)) / float64(len(keywords))
		if intensity > 1.0 {
			intensity = 1.0
		}
		found = append(found, Emotion{Emotion: emotion, Intensity: intensity, Keywords: hits})
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Intensity > found[j].Intensity
	})
	return found
}

// Tone maps the dominant emotion to an overall classifying label.
func (a *Analyzer) Tone(text string) string {
	emotions := a.extractEmotions(text)
	if len(emotions) == 0 {
		return "neutral"
	}
	if tone, ok := toneMapping[emotions[0].Emotion]; ok {
		return tone
	}
	return "neutral"
}

func matchKeywordGroups(text string, groups map[string][]string) []string {
	lower := strings.ToLower(text)
	var names []string
	for name, keywords := range groups {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
