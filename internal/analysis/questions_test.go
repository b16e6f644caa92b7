package analysis

import (
	"testing"

	"github.com/kbukum/orator/internal/nlu"
)

func newTestEngine(t *testing.T, language string) *QuestionEngine {
	t.Helper()
	classifier := nlu.New()
	if err := classifier.Train(language, nlu.QuestionDocuments(language)); err != nil {
		t.Fatalf("train classifier: %v", err)
	}
	return NewQuestionEngine(classifier, language)
}

func TestAnalyzeFrenchTranscript(t *testing.T) {
	engine := newTestEngine(t, "fr")

	transcript := "Bonjour. Comment allez-vous? C'est un test. Qui etes-vous?"
	result, err := engine.Analyze(transcript)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.QuestionCount != 2 {
		t.Errorf("QuestionCount = %d, want 2", result.QuestionCount)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(result.Questions))
	}
	if result.Questions[0].Sentence != "Comment allez-vous?" {
		t.Errorf("first question = %q", result.Questions[0].Sentence)
	}
	if result.Questions[1].Sentence != "Qui etes-vous?" {
		t.Errorf("second question = %q", result.Questions[1].Sentence)
	}
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	engine := newTestEngine(t, "fr")

	result, err := engine.Analyze("")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.QuestionCount != 0 {
		t.Errorf("QuestionCount = %d, want 0", result.QuestionCount)
	}
	if len(result.Questions) != 0 {
		t.Errorf("got %d questions, want 0", len(result.Questions))
	}
}

func TestAnalyzeUntrainedLanguage(t *testing.T) {
	engine := NewQuestionEngine(nlu.New(), "fr")
	if _, err := engine.Analyze("Comment allez-vous?"); err == nil {
		t.Error("expected error for untrained classifier")
	}
}

func TestClassifySingleSentence(t *testing.T) {
	engine := newTestEngine(t, "fr")

	res, err := engine.Classify("Pourquoi le ciel est bleu?")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Intent != nlu.IntentQuestion {
		t.Errorf("Intent = %q, want %q", res.Intent, nlu.IntentQuestion)
	}
}
