package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/orator/internal/analysis"
	apperrors "github.com/kbukum/orator/internal/errors"
	"github.com/kbukum/orator/internal/insights"
	"github.com/kbukum/orator/internal/llm"
	"github.com/kbukum/orator/internal/logger"
	"github.com/kbukum/orator/internal/observability"
	"github.com/kbukum/orator/internal/storage"
	"github.com/kbukum/orator/internal/store"
	"github.com/kbukum/orator/internal/transcription"
)

// Progress checkpoints within each stage.
const (
	progressModelCheck = 5
	progressModelPull  = 10
	progressModelReady = 20

	progressTranscribeStart = 25
	progressTranscribeHalf  = 50
	progressTranscribeDone  = 75

	progressAnalyzeStart   = 80
	progressAnalyzeSummary = 90

	progressComplete = 100
)

const modelReadyTimeout = 60 * time.Second

// Processor is the top-level orchestrator for uploaded files. Each submitted
// file runs its own pipeline goroutine; records are mutated only through the
// guarded store so results for deleted files are discarded.
type Processor struct {
	cfg       Config
	store     Store
	staging   storage.Storage
	asr       transcription.Provider
	models    llm.Provider
	generator *insights.Generator
	engine    *analysis.QuestionEngine
	hub       Publisher
	metrics   *observability.PipelineMetrics
	log       *logger.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a Processor. hub and metrics may be nil.
func New(
	cfg Config,
	st Store,
	staging storage.Storage,
	asr transcription.Provider,
	models llm.Provider,
	generator *insights.Generator,
	engine *analysis.QuestionEngine,
	hub Publisher,
	metrics *observability.PipelineMetrics,
	log *logger.Logger,
) *Processor {
	cfg.ApplyDefaults()
	return &Processor{
		cfg:       cfg,
		store:     st,
		staging:   staging,
		asr:       asr,
		models:    models,
		generator: generator,
		engine:    engine,
		hub:       hub,
		metrics:   metrics,
		log:       log.WithComponent("pipeline"),
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Submit validates and stages an upload, creates its record, and starts the
// pipeline asynchronously. It returns as soon as the record exists.
func (p *Processor) Submit(ctx context.Context, upload Upload) (*store.AudioFile, error) {
	if upload.Reader == nil || upload.Size <= 0 {
		return nil, apperrors.Validation("No audio payload was uploaded.")
	}
	if upload.Filename == "" {
		return nil, apperrors.MissingField("filename")
	}

	model := upload.Model
	if model == "" {
		model = p.cfg.DefaultModel
	}
	questionCount := upload.QuestionCount
	if questionCount <= 0 {
		questionCount = p.cfg.QuestionCount
	}

	id := uuid.NewString()
	stagedPath := stagedName(id, upload.Filename)

	if err := p.staging.Upload(ctx, stagedPath, upload.Reader); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("stage upload: %w", err))
	}

	file := &store.AudioFile{
		ID:              id,
		Filename:        upload.Filename,
		FileSize:        upload.Size,
		SelectedModel:   model,
		ProcessingStage: store.StageUploading,
	}
	if err := p.store.Create(ctx, file); err != nil {
		_ = p.staging.Delete(ctx, stagedPath)
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancels[id] = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(runCtx, id, stagedPath, model, questionCount)

	p.log.Info("File submitted", logger.Fields(
		logger.FieldFileID, id, "filename", upload.Filename, "size", upload.Size,
	))
	return file, nil
}

// Get returns one record.
func (p *Processor) Get(ctx context.Context, id string) (*store.AudioFile, error) {
	return p.store.Get(ctx, id)
}

// List returns all records, most recent upload first.
func (p *Processor) List(ctx context.Context) ([]store.AudioFile, error) {
	return p.store.List(ctx)
}

// Delete removes a record and signals cancellation to its in-flight pipeline.
// Cancellation is best-effort: a running external call may still finish, but
// its result is discarded by the guarded store writes.
func (p *Processor) Delete(ctx context.Context, id string) error {
	file, err := p.store.Get(ctx, id)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if cancel, ok := p.cancels[id]; ok {
		cancel()
	}
	p.mu.Unlock()

	if err := p.store.Delete(ctx, id); err != nil {
		return err
	}
	_ = p.staging.Delete(ctx, stagedName(id, file.Filename))

	p.log.Info("File deleted", logger.Fields(logger.FieldFileID, id))
	return nil
}

// Ask answers an ad-hoc question against a completed file's transcript.
func (p *Processor) Ask(ctx context.Context, id, question string) (*Answer, error) {
	if question == "" {
		return nil, apperrors.MissingField("question")
	}
	file, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.Transcription == "" {
		return nil, apperrors.NoCorpus(id)
	}

	sentiment := 0.0
	if res, err := p.engine.Classify(question); err == nil {
		sentiment = res.Sentiment
	}

	return &Answer{
		Question:  question,
		Answer:    analysis.Answer(file.Transcription, question),
		Sentiment: sentiment,
	}, nil
}

// AnalyzeQuestions runs the question analysis engine against a file's stored
// transcript. The result is ephemeral; nothing is persisted.
func (p *Processor) AnalyzeQuestions(ctx context.Context, id string) (*analysis.Result, error) {
	file, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.Transcription == "" {
		return nil, apperrors.NoCorpus(id)
	}
	return p.engine.Analyze(file.Transcription)
}

// GenerateQuestions generates n additional questions for a completed file
// and appends them to the stored question block without discarding prior
// content.
func (p *Processor) GenerateQuestions(ctx context.Context, id string, n int) (*store.AudioFile, error) {
	file, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.Transcription == "" {
		return nil, apperrors.NoCorpus(id)
	}
	if n <= 0 {
		n = p.cfg.QuestionCount
	}

	block := p.generator.GenerateQuestions(ctx, file.Transcription, file.SelectedModel, n)
	ok, err := p.store.AppendQuestions(ctx, id, block)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound("audio file", id)
	}
	return p.store.Get(ctx, id)
}

// Shutdown cancels all in-flight pipelines and waits for them to drain.
func (p *Processor) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	for _, cancel := range p.cancels {
		cancel()
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stagedName keeps the original extension so the ASR engine can sniff the
// container format.
func stagedName(id, filename string) string {
	return id + filepath.Ext(filename)
}
