package insights

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kbukum/orator/internal/llm"
)

type fakeProvider struct {
	content string
	err     error
	lastReq llm.CompletionRequest
}

func (f *fakeProvider) Name() string                              { return "fake" }
func (f *fakeProvider) IsAvailable(context.Context) bool          { return true }
func (f *fakeProvider) EnsureModel(context.Context, string) error { return nil }
func (f *fakeProvider) WaitReady(context.Context, string) error   { return nil }
func (f *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content, Model: req.Model}, nil
}

func TestSummarize(t *testing.T) {
	provider := &fakeProvider{content: "Un résumé court. En deux phrases."}
	g := NewGenerator(provider)

	got := g.Summarize(context.Background(), "La réunion portait sur le budget.", "llama3", 2)
	if got != "Un résumé court. En deux phrases." {
		t.Errorf("Summarize = %q", got)
	}
	if provider.lastReq.Model != "llama3" {
		t.Errorf("model = %q, want llama3", provider.lastReq.Model)
	}
	if !strings.Contains(provider.lastReq.Messages[0].Content, "2 phrases") {
		t.Errorf("prompt does not request 2 sentences: %q", provider.lastReq.Messages[0].Content)
	}
}

func TestSummarizeFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		text     string
	}{
		{"provider error", &fakeProvider{err: errors.New("down")}, "du texte"},
		{"blank response", &fakeProvider{content: "   "}, "du texte"},
		{"empty transcript", &fakeProvider{content: "jamais appelé"}, "   "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGenerator(tc.provider)
			if got := g.Summarize(context.Background(), tc.text, "llama3", 2); got != NoSummaryResponse {
				t.Errorf("Summarize = %q, want fallback", got)
			}
		})
	}
}

func TestSummarizeTruncatesLongTranscripts(t *testing.T) {
	provider := &fakeProvider{content: "résumé"}
	g := NewGenerator(provider)

	long := strings.Repeat("a", 5000)
	g.Summarize(context.Background(), long, "llama3", 2)

	prompt := provider.lastReq.Messages[0].Content
	if strings.Contains(prompt, strings.Repeat("a", promptExcerptLimit+1)) {
		t.Error("prompt contains more transcript than the excerpt limit")
	}
	if !strings.Contains(prompt, strings.Repeat("a", promptExcerptLimit)) {
		t.Error("prompt is missing the transcript excerpt")
	}
}

func TestExcerptKeepsRuneBoundary(t *testing.T) {
	// "é" is two bytes; the leading "a" puts every rune boundary at an odd
	// offset so the limit falls mid-rune.
	text := "a" + strings.Repeat("é", promptExcerptLimit)
	got := excerpt(text)
	if !utf8.ValidString(got) {
		t.Errorf("excerpt split a rune at the cut point")
	}
	if len(got) > promptExcerptLimit {
		t.Errorf("excerpt length = %d, want <= %d", len(got), promptExcerptLimit)
	}
	if len(got) < promptExcerptLimit-utf8.UTFMax {
		t.Errorf("excerpt length = %d, cut more than one rune short", len(got))
	}

	short := "résumé"
	if excerpt(short) != short {
		t.Errorf("excerpt modified text under the limit")
	}
}

func TestGenerateQuestionsFormatsNumberedList(t *testing.T) {
	provider := &fakeProvider{content: "Quelle est la conclusion?\nPourquoi ce choix?\nnotes sans question\nComment continuer?"}
	g := NewGenerator(provider)

	got := g.GenerateQuestions(context.Background(), "du texte", "llama3", 3)
	want := "1. Quelle est la conclusion?\n2. Pourquoi ce choix?\n3. Comment continuer?"
	if got != want {
		t.Errorf("GenerateQuestions = %q, want %q", got, want)
	}
}

func TestGenerateQuestionsFallbacks(t *testing.T) {
	for name, provider := range map[string]*fakeProvider{
		"provider error":       {err: errors.New("down")},
		"no question lines":    {content: "aucune question ici"},
		"empty model response": {content: ""},
	} {
		t.Run(name, func(t *testing.T) {
			g := NewGenerator(provider)
			if got := g.GenerateQuestions(context.Background(), "du texte", "llama3", 3); got != NoQuestionsResponse {
				t.Errorf("GenerateQuestions = %q, want fallback", got)
			}
		})
	}
}

func TestParseQuestions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
		want    []string
	}{
		{
			name:    "numbered list",
			content: "1. Quelle heure est-il?\n2. Qui parle?",
			n:       3,
			want:    []string{"Quelle heure est-il?", "Qui parle?"},
		},
		{
			name:    "bullets and prefixes",
			content: "- Q: Pourquoi?\n* Question: Comment?\n",
			n:       3,
			want:    []string{"Pourquoi?", "Comment?"},
		},
		{
			name:    "caps at n",
			content: "Un?\nDeux?\nTrois?\nQuatre?",
			n:       2,
			want:    []string{"Un?", "Deux?"},
		},
		{
			name:    "drops statements",
			content: "Ceci est une phrase.\nEt une question?",
			n:       3,
			want:    []string{"Et une question?"},
		},
		{
			name:    "empty content",
			content: "",
			n:       3,
			want:    nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseQuestions(tc.content, tc.n); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseQuestions(%q) = %v, want %v", tc.content, got, tc.want)
			}
		})
	}
}
