// Package insights generates the summary and study questions for a
// transcript through a language-model provider.
package insights

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kbukum/orator/internal/llm"
)

const (
	// NoSummaryResponse is stored when the model produced nothing usable.
	NoSummaryResponse = "No summary available"
	// NoQuestionsResponse is stored when the model produced no questions.
	NoQuestionsResponse = "No questions generated"

	// promptExcerptLimit bounds how much transcript is sent to the model.
	promptExcerptLimit = 1000
)

// Generator produces transcript insights through an LLM provider.
type Generator struct {
	provider llm.Provider
}

// NewGenerator creates a generator bound to an LLM provider.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Summarize asks the model for a short summary of the transcript. It never
// fails the pipeline: on any model error the fallback response is returned.
func (g *Generator) Summarize(ctx context.Context, text, model string, sentences int) string {
	if strings.TrimSpace(text) == "" {
		return NoSummaryResponse
	}
	if sentences <= 0 {
		sentences = 2
	}

	prompt := fmt.Sprintf(
		"Veuillez fournir un résumé concis du texte suivant en %d phrases. "+
			"N'incluez pas d'autres informations, juste le résumé.\n\nTexte: %s\n\nRésumé:",
		sentences, excerpt(text))

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Model:       model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: 0.3,
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		return NoSummaryResponse
	}
	return strings.TrimSpace(resp.Content)
}

// GenerateQuestions asks the model for n study questions about the
// transcript and returns them formatted one per line as "1. question".
func (g *Generator) GenerateQuestions(ctx context.Context, text, model string, n int) string {
	if strings.TrimSpace(text) == "" {
		return NoQuestionsResponse
	}
	if n <= 0 {
		n = 3
	}

	prompt := fmt.Sprintf(
		"Basé sur le texte suivant, générez %d questions réfléchies qui aideraient "+
			"quelqu'un à comprendre les concepts clés et les idées discutées. "+
			"Formatez chaque question sur une nouvelle ligne. Aucun autre texte "+
			"n'est nécessaire, juste les questions.\n\nTexte: %s\n\nQuestions:",
		n, excerpt(text))

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Model:       model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: 0.3,
	})
	if err != nil {
		return NoQuestionsResponse
	}

	questions := ParseQuestions(resp.Content, n)
	if len(questions) == 0 {
		return NoQuestionsResponse
	}

	lines := make([]string, len(questions))
	for i, q := range questions {
		lines[i] = fmt.Sprintf("%d. %s", i+1, q)
	}
	return strings.Join(lines, "\n")
}

// ParseQuestions extracts up to n question lines from raw model output,
// stripping list markers and "Q:"-style prefixes. Only lines ending in '?'
// are kept.
func ParseQuestions(content string, n int) []string {
	var questions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789")
		line = strings.TrimSpace(strings.TrimLeft(line, ".-*) "))
		for _, prefix := range []string{"Q:", "Question:"} {
			if strings.HasPrefix(line, prefix) {
				line = strings.TrimSpace(strings.TrimPrefix(line, prefix))
			}
		}
		if line != "" && strings.HasSuffix(line, "?") {
			questions = append(questions, line)
			if len(questions) >= n {
				break
			}
		}
	}
	return questions
}

// excerpt cuts at the limit without splitting a multi-byte rune.
func excerpt(text string) string {
	if len(text) <= promptExcerptLimit {
		return text
	}
	cut := promptExcerptLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
