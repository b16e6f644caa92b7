package pipeline

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/orator/internal/analysis"
	"github.com/kbukum/orator/internal/insights"
	"github.com/kbukum/orator/internal/logger"
	"github.com/kbukum/orator/internal/observability"
	"github.com/kbukum/orator/internal/sse"
	"github.com/kbukum/orator/internal/store"
	"github.com/kbukum/orator/internal/transcription"
)

// run drives one file through the full pipeline. It owns the staged audio
// file and removes it on every exit path. Every record write goes through
// setStage/guarded mutators; ok=false means the file was deleted mid-flight
// and the run stops silently.
func (p *Processor) run(ctx context.Context, id, stagedPath, model string, questionCount int) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		delete(p.cancels, id)
		p.mu.Unlock()
	}()
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = p.staging.Delete(cleanupCtx, stagedPath)
	}()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Pipeline panicked", logger.Fields(
				logger.FieldFileID, id, "panic", r,
			))
			p.fail(id, "internal processing error")
		}
	}()

	ctx, span := observability.StartSpan(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("file_id", id)))
	defer span.End()

	log := p.log.WithField(logger.FieldFileID, id)
	start := time.Now()

	if !p.prepareModel(ctx, id, model, log) {
		return
	}

	text, ok := p.transcribe(ctx, id, stagedPath, model, log)
	if !ok {
		return
	}

	if !p.analyze(ctx, id, text, model, questionCount, log) {
		return
	}

	if ok, err := p.store.SetStage(ctx, id, store.StageComplete, progressComplete); err != nil || !ok {
		if err != nil {
			log.Error("Failed to mark file complete", logger.ErrorFields("complete", err))
		}
		return
	}
	p.publish(id, store.StageComplete, progressComplete, "")
	p.metrics.RecordOutcome(ctx, "complete")
	log.Info("Pipeline complete", logger.DurationFields("run", time.Since(start)))
}

// prepareModel verifies the LLM backend and makes sure the requested model is
// present. Model problems never fail the pipeline: insight generation will
// fall back later, so failures here only log and move on.
func (p *Processor) prepareModel(ctx context.Context, id, model string, log *logger.Logger) bool {
	ctx, span := observability.StartSpan(ctx, "pipeline.prepare_model",
		trace.WithAttributes(attribute.String("model", model)))
	defer span.End()

	stageStart := time.Now()
	if ok := p.setStage(ctx, id, store.StageDownloadingModel, progressModelCheck); !ok {
		return false
	}

	if !p.models.IsAvailable(ctx) {
		log.Warn("Model backend unreachable, insights will use fallbacks",
			logger.Fields("model", model))
		return p.setStage(ctx, id, store.StageDownloadingModel, progressModelReady)
	}

	if ok := p.setStage(ctx, id, store.StageDownloadingModel, progressModelPull); !ok {
		return false
	}
	if err := p.models.EnsureModel(ctx, model); err != nil {
		if ctx.Err() != nil {
			return false
		}
		log.Warn("Failed to ensure model, insights will use fallbacks",
			logger.ErrorFields("ensure_model", err))
	} else {
		readyCtx, cancel := context.WithTimeout(ctx, modelReadyTimeout)
		err := p.models.WaitReady(readyCtx, model)
		cancel()
		if err != nil && ctx.Err() == nil {
			log.Warn("Model not ready, insights will use fallbacks",
				logger.ErrorFields("wait_ready", err))
		}
	}

	if ok := p.setStage(ctx, id, store.StageDownloadingModel, progressModelReady); !ok {
		return false
	}
	p.metrics.RecordStage(ctx, string(store.StageDownloadingModel), time.Since(stageStart))
	return true
}

// transcribe runs the ASR engine against the staged audio and persists the
// cleaned transcript. Transcription failure is terminal for the file.
func (p *Processor) transcribe(ctx context.Context, id, stagedPath, model string, log *logger.Logger) (string, bool) {
	ctx, span := observability.StartSpan(ctx, "pipeline.transcribe")
	defer span.End()

	stageStart := time.Now()
	if ok := p.setStage(ctx, id, store.StageTranscribing, progressTranscribeStart); !ok {
		return "", false
	}
	if ok := p.setStage(ctx, id, store.StageTranscribing, progressTranscribeHalf); !ok {
		return "", false
	}

	resp, err := p.asr.Transcribe(ctx, transcription.Request{
		AudioPath: p.staging.Resolve(stagedPath),
		Language:  p.cfg.Language,
		Model:     model,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", false
		}
		span.RecordError(err)
		log.Error("Transcription failed", logger.ErrorFields("transcribe", err))
		p.fail(id, "transcription failed: "+err.Error())
		p.metrics.RecordOutcome(ctx, "error")
		return "", false
	}

	if resp.Duration > 0 {
		if ok, err := p.store.SetDuration(ctx, id, resp.Duration); err != nil || !ok {
			return "", false
		}
	}
	if ok, err := p.store.SetTranscription(ctx, id, resp.Text); err != nil || !ok {
		if err != nil {
			log.Error("Failed to persist transcript", logger.ErrorFields("set_transcription", err))
		}
		return "", false
	}

	if ok := p.setStage(ctx, id, store.StageTranscribing, progressTranscribeDone); !ok {
		return "", false
	}
	p.metrics.RecordStage(ctx, string(store.StageTranscribing), time.Since(stageStart))
	log.Info("Transcription stored", logger.Fields(
		"characters", len(resp.Text), "duration_seconds", resp.Duration,
	))
	return resp.Text, true
}

// analyze produces the summary and question block for the transcript. The
// transcript itself is already persisted, so analysis failure marks the file
// errored without losing it.
func (p *Processor) analyze(ctx context.Context, id, text, model string, questionCount int, log *logger.Logger) bool {
	ctx, span := observability.StartSpan(ctx, "pipeline.analyze")
	defer span.End()

	stageStart := time.Now()
	if ok := p.setStage(ctx, id, store.StageAnalyzing, progressAnalyzeStart); !ok {
		return false
	}

	result, err := p.engine.Analyze(text)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		span.RecordError(err)
		log.Error("Question analysis failed", logger.ErrorFields("analyze", err))
		p.fail(id, "analysis failed: "+err.Error())
		p.metrics.RecordOutcome(ctx, "error")
		return false
	}
	log.Info("Transcript analyzed", logger.Fields("question_count", result.QuestionCount))

	summary := p.generator.Summarize(ctx, text, model, p.cfg.SummarySentences)
	if ok := p.setStage(ctx, id, store.StageAnalyzing, progressAnalyzeSummary); !ok {
		return false
	}

	questions := p.generator.GenerateQuestions(ctx, text, model, questionCount)
	if questions == "" || questions == insights.NoQuestionsResponse {
		questions = detectedQuestionsBlock(result)
	}

	if ok, err := p.store.SetAnalysis(ctx, id, summary, questions); err != nil || !ok {
		if err != nil {
			log.Error("Failed to persist analysis", logger.ErrorFields("set_analysis", err))
		}
		return false
	}
	p.metrics.RecordStage(ctx, string(store.StageAnalyzing), time.Since(stageStart))
	return true
}

// detectedQuestionsBlock falls back to the questions already spoken in the
// transcript when the model produced none.
func detectedQuestionsBlock(result *analysis.Result) string {
	if result == nil || len(result.Questions) == 0 {
		return insights.NoQuestionsResponse
	}
	lines := make([]string, len(result.Questions))
	for i, q := range result.Questions {
		lines[i] = q.Sentence
	}
	return strings.Join(lines, "\n")
}

// setStage advances the record and publishes the event. A false return means
// the record is gone or the transition is illegal and the run must stop.
func (p *Processor) setStage(ctx context.Context, id string, stage store.Stage, progress int) bool {
	ok, err := p.store.SetStage(ctx, id, stage, progress)
	if err != nil {
		p.log.Error("Failed to update stage", logger.Fields(
			logger.FieldFileID, id, logger.FieldStage, string(stage), logger.FieldError, err.Error(),
		))
		return false
	}
	if !ok {
		return false
	}
	p.publish(id, stage, progress, "")
	return true
}

// fail marks the record errored. It uses a fresh context so a cancelled run
// can still record its own failure.
func (p *Processor) fail(id, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ok, err := p.store.SetError(ctx, id, message)
	if err != nil {
		p.log.Error("Failed to record pipeline error", logger.Fields(
			logger.FieldFileID, id, logger.FieldError, err.Error(),
		))
		return
	}
	if ok {
		p.publish(id, store.StageError, 0, message)
	}
}

func (p *Processor) publish(id string, stage store.Stage, progress int, errMsg string) {
	if p.hub == nil {
		return
	}
	p.hub.Publish(sse.ProgressEvent{
		FileID:   id,
		Stage:    stage,
		Progress: progress,
		Error:    errMsg,
	})
}
