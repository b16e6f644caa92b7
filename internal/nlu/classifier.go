// Package nlu provides a lexical intent classifier. A classifier is trained
// once at process start from pattern documents and is read-only afterwards,
// so a single instance can be shared across concurrent analyses.
package nlu

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// IntentQuestion is the intent label for interrogative sentences.
const IntentQuestion = "question"

// IntentNone is returned when no trained pattern matches.
const IntentNone = "none"

// Document is one training example: a lexical pattern mapped to an intent.
// A trailing '*' marks a prefix pattern ("pouvez-vous*" matches any
// continuation).
type Document struct {
	Pattern string
	Intent  string
}

// Result is the outcome of classifying a single sentence.
type Result struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Sentiment  float64 `json:"sentiment"`
}

type trainedPattern struct {
	prefix string
	intent string
}

// Classifier maps sentences to intents using per-language pattern models.
type Classifier struct {
	mu        sync.RWMutex
	languages map[string][]trainedPattern
}

// New creates an untrained classifier.
func New() *Classifier {
	return &Classifier{languages: make(map[string][]trainedPattern)}
}

// Train builds the pattern model for a language, replacing any previous
// model for that language. Training is cheap and idempotent.
func (c *Classifier) Train(language string, docs []Document) error {
	if language == "" {
		return fmt.Errorf("nlu: language is required")
	}
	if len(docs) == 0 {
		return fmt.Errorf("nlu: no training documents for language %q", language)
	}

	patterns := make([]trainedPattern, 0, len(docs))
	for _, doc := range docs {
		prefix := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(doc.Pattern), "*"))
		if prefix == "" {
			continue
		}
		patterns = append(patterns, trainedPattern{prefix: prefix, intent: doc.Intent})
	}
	if len(patterns) == 0 {
		return fmt.Errorf("nlu: all training documents for language %q were empty", language)
	}

	c.mu.Lock()
	c.languages[language] = patterns
	c.mu.Unlock()
	return nil
}

// Trained reports whether a model exists for the language.
func (c *Classifier) Trained(language string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.languages[language]
	return ok
}

// Classify returns the intent and sentiment for a sentence. It fails if the
// language has not been trained.
func (c *Classifier) Classify(language, sentence string) (Result, error) {
	c.mu.RLock()
	patterns, ok := c.languages[language]
	c.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("nlu: language %q has not been trained", language)
	}

	lower := strings.ToLower(sentence)
	best := Result{Intent: IntentNone, Sentiment: sentimentScore(lower)}
	for _, p := range patterns {
		conf, matched := matchConfidence(lower, p.prefix)
		if matched && conf > best.Confidence {
			best.Intent = p.intent
			best.Confidence = conf
		}
	}
	return best, nil
}

// matchConfidence reports whether the pattern prefix occurs at a word
// boundary in the sentence. Matches at the start of the sentence score
// higher than matches in the middle.
func matchConfidence(sentence, prefix string) (float64, bool) {
	idx := 0
	for {
		pos := strings.Index(sentence[idx:], prefix)
		if pos < 0 {
			return 0, false
		}
		pos += idx
		if pos == 0 {
			return 0.95, true
		}
		prev, _ := utf8.DecodeLastRuneInString(sentence[:pos])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return 0.75, true
		}
		idx = pos + len(prefix)
		if idx >= len(sentence) {
			return 0, false
		}
	}
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// sentimentScore averages lexicon polarity over the sentence's tokens.
func sentimentScore(lower string) float64 {
	tokens := wordPattern.FindAllString(lower, -1)
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	for _, tok := range tokens {
		sum += polarity[tok]
	}
	return sum / float64(len(tokens))
}

// polarity is a small bilingual sentiment lexicon, enough to score casual
// speech the way the upstream NLU runtime did.
var polarity = map[string]float64{
	"bon": 1, "bien": 1, "bonne": 1, "merci": 1, "super": 2, "parfait": 2,
	"heureux": 2, "heureuse": 2, "excellent": 2, "bravo": 2, "agréable": 1,
	"mauvais": -1, "mal": -1, "triste": -2, "problème": -1, "terrible": -2,
	"horrible": -2, "nul": -2, "difficile": -1,
	"good": 1, "great": 2, "happy": 2, "love": 2, "nice": 1, "thanks": 1,
	"bad": -1, "sad": -2, "hate": -2, "awful": -2, "wrong": -1, "error": -1,
}
