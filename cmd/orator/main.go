// Command orator runs the audio transcription and analysis service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/orator/internal/analysis"
	"github.com/kbukum/orator/internal/api"
	"github.com/kbukum/orator/internal/config"
	"github.com/kbukum/orator/internal/database"
	"github.com/kbukum/orator/internal/insights"
	"github.com/kbukum/orator/internal/llm/ollama"
	"github.com/kbukum/orator/internal/logger"
	"github.com/kbukum/orator/internal/nlu"
	"github.com/kbukum/orator/internal/observability"
	"github.com/kbukum/orator/internal/pipeline"
	"github.com/kbukum/orator/internal/server"
	"github.com/kbukum/orator/internal/sse"
	"github.com/kbukum/orator/internal/storage"
	"github.com/kbukum/orator/internal/store"
	"github.com/kbukum/orator/internal/transcription"
	"github.com/kbukum/orator/internal/transcription/whisper"
)

const (
	serviceName    = "orator"
	serviceVersion = "1.0.0"

	shutdownTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		logger.Error("Service failed", logger.Fields("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadApp(serviceName)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging, serviceName)
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Init(ctx, serviceName, serviceVersion, cfg.Observability)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			log.Warn("Telemetry shutdown failed", logger.Fields("error", err.Error()))
		}
	}()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.AutoMigrate(&store.AudioFile{}); err != nil {
		return err
	}

	staging, err := storage.NewLocal(cfg.Storage.BasePath)
	if err != nil {
		return err
	}

	asr := transcription.NewAdapter(whisper.NewProvider(cfg.Whisper))
	models := ollama.NewProvider(cfg.Ollama)

	// The classifier must be trained before any request is served.
	classifier := nlu.New()
	if err := classifier.Train(cfg.Pipeline.Language, nlu.QuestionDocuments(cfg.Pipeline.Language)); err != nil {
		return err
	}
	engine := analysis.NewQuestionEngine(classifier, cfg.Pipeline.Language)

	metrics, err := observability.NewPipelineMetrics()
	if err != nil {
		return err
	}

	hub := sse.NewHub(log)
	processor := pipeline.New(
		cfg.Pipeline,
		store.New(db.GormDB),
		staging,
		asr,
		models,
		insights.NewGenerator(models),
		engine,
		hub,
		metrics,
		log,
	)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	api.NewHandler(processor, hub, asr, models, serviceVersion, log).Register(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		return err
	}

	log.Info("Service started", logger.Fields("addr", srv.Addr()))
	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Server stop failed", logger.Fields("error", err.Error()))
	}
	if err := processor.Shutdown(shutdownCtx); err != nil {
		log.Warn("Pipeline drain interrupted", logger.Fields("error", err.Error()))
	}
	return nil
}
