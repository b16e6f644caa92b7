package analysis

import (
	"regexp"
	"strings"
)

var keywordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// ExtractKeywords lowercases the text and returns its maximal runs of word
// characters in first-seen order, without duplicates. Every token is kept;
// there is no stop-word list.
func ExtractKeywords(text string) []string {
	tokens := keywordPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}
