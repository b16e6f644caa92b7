package analysis

import (
	"fmt"
	"strings"
)

// NoAnswerResponse is returned when no question keyword occurs in the corpus.
const NoAnswerResponse = "I cannot find the answer to your question."

// Answer matches the question's keywords against the stored corpus and
// returns an acknowledgment naming the matched keyword set, or the fixed
// no-answer response. Matching is literal substring containment against the
// corpus as stored; keywords are lowercase by construction.
//
// This is retrieval acknowledgment, not extractive question answering. The
// behavior is kept as-is on purpose; see DESIGN.md.
func Answer(corpus, question string) string {
	var matched []string
	for _, keyword := range ExtractKeywords(question) {
		if strings.Contains(corpus, keyword) {
			matched = append(matched, keyword)
		}
	}
	if len(matched) == 0 {
		return NoAnswerResponse
	}
	return fmt.Sprintf("The corpus mentions %s.", strings.Join(matched, " "))
}
