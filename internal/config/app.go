package config

import (
	"fmt"

	"github.com/kbukum/orator/internal/database"
	"github.com/kbukum/orator/internal/llm/ollama"
	"github.com/kbukum/orator/internal/logger"
	"github.com/kbukum/orator/internal/observability"
	"github.com/kbukum/orator/internal/pipeline"
	"github.com/kbukum/orator/internal/server"
	"github.com/kbukum/orator/internal/storage"
	"github.com/kbukum/orator/internal/transcription/whisper"
)

// App is the full service configuration, one section per component.
type App struct {
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Whisper       whisper.Config       `yaml:"whisper" mapstructure:"whisper"`
	Ollama        ollama.Config        `yaml:"ollama" mapstructure:"ollama"`
	Pipeline      pipeline.Config      `yaml:"pipeline" mapstructure:"pipeline"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section's zero values.
func (a *App) ApplyDefaults() {
	a.Server.ApplyDefaults()
	a.Logging.ApplyDefaults()
	a.Database.ApplyDefaults()
	a.Storage.ApplyDefaults()
	a.Whisper.ApplyDefaults()
	a.Ollama.ApplyDefaults()
	a.Pipeline.ApplyDefaults()
	a.Observability.ApplyDefaults()
}

// Validate checks every section that defines validation rules.
func (a *App) Validate() error {
	if err := a.Server.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := a.Logging.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LoadApp loads, defaults, and validates the service configuration.
func LoadApp(serviceName string, opts ...LoaderOption) (*App, error) {
	var app App
	if err := Load(serviceName, &app, opts...); err != nil {
		return nil, err
	}
	app.ApplyDefaults()
	if err := app.Validate(); err != nil {
		return nil, err
	}
	return &app, nil
}
