// Package analysis contains the text-analysis engine: sentence segmentation,
// question detection over a transcript, keyword extraction, and keyword-based
// answer retrieval.
package analysis

import "strings"

// SplitSentences splits a transcript into sentence units. Embedded newlines
// are collapsed to spaces first; a sentence ends immediately after '.', '!'
// or '?' followed by whitespace. A trailing sentence without terminal
// punctuation is still returned.
func SplitSentences(text string) []string {
	text = strings.Join(strings.Fields(strings.ReplaceAll(text, "\n", " ")), " ")
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminal(text[i]) {
			continue
		}
		// Consume runs of terminators ("?!", "...") as one boundary.
		end := i + 1
		for end < len(text) && isTerminal(text[end]) {
			end++
		}
		if end == len(text) || text[end] == ' ' {
			if s := strings.TrimSpace(text[start:end]); s != "" {
				sentences = append(sentences, s)
			}
			start = end
			i = end - 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}
