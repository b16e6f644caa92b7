package analysis

import (
	"fmt"

	"github.com/kbukum/orator/internal/nlu"
)

// Question is one interrogative sentence found in a transcript.
type Question struct {
	Sentence  string  `json:"sentence"`
	Sentiment float64 `json:"sentiment"`
}

// Result is the outcome of analyzing a transcript for questions.
type Result struct {
	QuestionCount int        `json:"question_count"`
	Questions     []Question `json:"questions"`
}

// QuestionEngine counts and extracts interrogative sentences using a
// trained intent classifier.
type QuestionEngine struct {
	classifier *nlu.Classifier
	language   string
}

// NewQuestionEngine creates an engine bound to a classifier and language.
// The classifier must be trained for the language before Analyze is called.
func NewQuestionEngine(classifier *nlu.Classifier, language string) *QuestionEngine {
	return &QuestionEngine{classifier: classifier, language: language}
}

// Classify classifies a single sentence in the engine's language.
func (e *QuestionEngine) Classify(sentence string) (nlu.Result, error) {
	return e.classifier.Classify(e.language, sentence)
}

// Analyze segments the transcript and classifies every sentence, returning
// the interrogative ones in original order. An empty transcript yields a
// zero count and no questions.
func (e *QuestionEngine) Analyze(transcript string) (*Result, error) {
	result := &Result{Questions: []Question{}}
	for _, sentence := range SplitSentences(transcript) {
		res, err := e.classifier.Classify(e.language, sentence)
		if err != nil {
			return nil, fmt.Errorf("analysis: classify sentence: %w", err)
		}
		if res.Intent == nlu.IntentQuestion {
			result.Questions = append(result.Questions, Question{
				Sentence:  sentence,
				Sentiment: res.Sentiment,
			})
		}
	}
	result.QuestionCount = len(result.Questions)
	return result, nil
}
