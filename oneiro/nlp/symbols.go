package nlp

import (
	"os"
	"sort"
	"strings"

	"oneiro/oneiro/utils/logging"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SymbolMeaning is one dictionary entry: keyword meanings, a psychological
// reading and per-culture variants.
type SymbolMeaning struct {
	Meanings         []string          `yaml:"meanings"`
	Psychological    string            `yaml:"psychological"`
	CulturalVariants map[string]string `yaml:"cultural_variants"`
}

// Dictionary maps category -> symbol -> meaning.
type Dictionary map[string]map[string]SymbolMeaning

// MappedSymbol is an extracted symbol joined with its dictionary meaning
// and ranked for presentation.
type MappedSymbol struct {
	Symbol     string            `json:"symbol"`
	Category   string            `json:"category"`
	Meaning    string            `json:"meaning"`
	Keywords   []string          `json:"keywords"`
	Confidence float64           `json:"confidence"`
	Cultural   map[string]string `json:"cultural_meanings,omitempty"`
	Context    string            `json:"context,omitempty"`

	score float64
}

// Mapper resolves extracted symbols against the curated dictionary.
type Mapper struct {
	dict Dictionary
}

// NewMapper loads the dictionary from a YAML file, falling back to the
// compiled-in default when the file is missing or malformed.
func NewMapper(path string) *Mapper {
	m := &Mapper{dict: defaultDictionary()}
	if path == "" {
		return m
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logging.AppLogger.Warn("symbol dictionary not found, using defaults",
			zap.String("path", path), zap.Error(err))
		return m
	}
	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		logging.ErrorLogger.Error("failed to parse symbol dictionary",
			zap.String("path", path), zap.Error(err))
		return m
	}
	m.dict = dict
	return m
}

// category weights for ranking
var categoryWeights = map[string]float64{
	"animals":  1.2,
	"water":    1.1,
	"flight":   1.3,
	"people":   1.0,
	"objects":  0.9,
	"places":   0.8,
	"abstract": 1.1,
}

// Map joins extracted symbols with dictionary meanings and returns them
// ranked by category weight x confidence. Symbols without any dictionary
// entry are dropped.
func (m *Mapper) Map(extracted []ExtractedSymbol) []MappedSymbol {
	var mapped []MappedSymbol
	for _, ex := range extracted {
		name := strings.ToLower(ex.Symbol)
		meaning, ok := m.lookup(name, ex.Category)
		if !ok {
			continue
		}
		weight, ok := categoryWeights[ex.Category]
		if !ok {
			weight = 1.0
		}
		mapped = append(mapped, MappedSymbol{
			Symbol:     titleWord(name),
			Category:   ex.Category,
			Meaning:    meaning.Psychological,
			Keywords:   meaning.Meanings,
			Confidence: ex.Confidence,
			Cultural:   meaning.CulturalVariants,
			Context:    ex.Context,
			score:      ex.Confidence * weight,
		})
	}
	sort.SliceStable(mapped, func(i, j int) bool {
		return mapped[i].score > mapped[j].score
	})
	return mapped
}

// lookup tries the symbol's own category first, then every category, then
// partial matches in either direction.
func (m *Mapper) lookup(symbol, category string) (SymbolMeaning, bool) {
	if cat, ok := m.dict[category]; ok {
		if meaning, ok := cat[symbol]; ok {
			return meaning, true
		}
	}
	for _, cat := range m.dict {
		if meaning, ok := cat[symbol]; ok {
			return meaning, true
		}
	}
	for _, cat := range m.dict {
		for name, meaning := range cat {
			if strings.Contains(name, symbol) || strings.Contains(symbol, name) {
				return meaning, true
			}
		}
	}
	return SymbolMeaning{}, false
}

func defaultDictionary() Dictionary {
	return Dictionary{
		"animals": {
			"dog": {
				Meanings:      []string{"loyalty", "friendship", "protection", "instinct"},
				Psychological: "Represents faithful relationships and protective instincts",
				CulturalVariants: map[string]string{
					"western": "companion and loyalty",
					"eastern": "fortune and prosperity",
				},
			},
			"snake": {
				Meanings:      []string{"transformation", "healing", "wisdom", "danger"},
				Psychological: "Represents transformation, hidden knowledge, or repressed fears",
				CulturalVariants: map[string]string{
					"western": "temptation or medicine",
					"eastern": "wisdom and renewal",
				},
			},
			"bird": {
				Meanings:      []string{"freedom", "spirituality", "messages", "perspective"},
				Psychological: "Represents desire for freedom, spiritual aspirations, or higher perspective",
				CulturalVariants: map[string]string{
					"universal": "freedom and transcendence",
				},
			},
		},
		"water": {
			"ocean": {
				Meanings:      []string{"unconscious", "emotions", "vastness", "unknown"},
				Psychological: "Represents the vast unconscious mind and deep emotions",
				CulturalVariants: map[string]string{
					"universal": "life source and mystery",
				},
			},
			"river": {
				Meanings:      []string{"life flow", "time", "journey", "change"},
				Psychological: "Represents the flow of life and personal journey",
				CulturalVariants: map[string]string{
					"universal": "life passage and renewal",
				},
			},
		},
		"flight": {
			"flying": {
				Meanings:      []string{"freedom", "transcendence", "escape", "spiritual elevation"},
				Psychological: "Represents desire for freedom from limitations or spiritual growth",
				CulturalVariants: map[string]string{
					"universal": "liberation and aspiration",
				},
			},
			"falling": {
				Meanings:      []string{"loss of control", "anxiety", "failure", "letting go"},
				Psychological: "Represents fear of failure or losing control in waking life",
				CulturalVariants: map[string]string{
					"western": "anxiety and loss of control",
					"eastern": "letting go and surrender",
				},
			},
		},
		"people": {
			"stranger": {
				Meanings:      []string{"unknown aspects of self", "new opportunities", "fear of unknown"},
				Psychological: "May represent unknown aspects of personality or new life possibilities",
				CulturalVariants: map[string]string{
					"universal": "the unknown self or other",
				},
			},
		},
		"objects": {
			"mirror": {
				Meanings:      []string{"self-reflection", "truth", "vanity", "introspection"},
				Psychological: "Represents self-examination and truth about oneself",
				CulturalVariants: map[string]string{
					"western": "self-reflection and vanity",
					"eastern": "illusion and reality",
				},
			},
			"key": {
				Meanings:      []string{"solutions", "access", "secrets", "opportunity"},
				Psychological: "Represents access to hidden knowledge or solutions to problems",
				CulturalVariants: map[string]string{
					"universal": "access and solutions",
				},
			},
		},
	}
}
