// Package pipeline owns the per-file processing state machine: it advances
// an uploaded file through model preparation, transcription, and analysis,
// persists results, and answers on-demand queries against completed files.
package pipeline

import (
	"context"
	"io"

	"github.com/kbukum/orator/internal/sse"
	"github.com/kbukum/orator/internal/store"
)

// Config holds pipeline configuration.
type Config struct {
	// Language is the transcript language used for classification and ASR.
	Language string `yaml:"language" mapstructure:"language"`
	// DefaultModel is the LLM model used when the upload names none.
	DefaultModel string `yaml:"default_model" mapstructure:"default_model"`
	// SummarySentences is the requested summary length.
	SummarySentences int `yaml:"summary_sentences" mapstructure:"summary_sentences"`
	// QuestionCount is the default number of generated questions.
	QuestionCount int `yaml:"question_count" mapstructure:"question_count"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Language == "" {
		c.Language = "fr"
	}
	if c.SummarySentences <= 0 {
		c.SummarySentences = 2
	}
	if c.QuestionCount <= 0 {
		c.QuestionCount = 3
	}
}

// Store is the record persistence the pipeline drives. Mutators are guarded:
// ok=false means the record is gone or the write is no longer legal, and the
// result must be discarded.
type Store interface {
	Create(ctx context.Context, file *store.AudioFile) error
	List(ctx context.Context) ([]store.AudioFile, error)
	Get(ctx context.Context, id string) (*store.AudioFile, error)
	Delete(ctx context.Context, id string) error
	SetStage(ctx context.Context, id string, stage store.Stage, progress int) (bool, error)
	SetTranscription(ctx context.Context, id, text string) (bool, error)
	SetAnalysis(ctx context.Context, id, summary, questions string) (bool, error)
	AppendQuestions(ctx context.Context, id, questions string) (bool, error)
	SetError(ctx context.Context, id, message string) (bool, error)
	SetDuration(ctx context.Context, id string, seconds float64) (bool, error)
}

// Publisher receives progress events for connected clients.
type Publisher interface {
	Publish(event sse.ProgressEvent)
}

// Upload is the validated input for Submit.
type Upload struct {
	// Reader streams the raw audio payload.
	Reader io.Reader
	// Filename is the original upload filename.
	Filename string
	// Size is the payload size in bytes.
	Size int64
	// Model optionally overrides the default LLM model for this file.
	Model string
	// QuestionCount optionally overrides how many questions to generate.
	QuestionCount int
}

// Answer is the response to an ad-hoc question against a transcript.
type Answer struct {
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	Sentiment float64 `json:"sentiment"`
}
