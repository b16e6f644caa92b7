// Package storage provides the staging store for raw audio uploads. Files
// live here only between upload and the end of transcription.
package storage

import (
	"context"
	"io"
)

// Storage is the interface staging backends must implement.
type Storage interface {
	// Upload writes data from reader to the given relative path.
	Upload(ctx context.Context, path string, reader io.Reader) error
	// Download returns a reader for the file at the given relative path.
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes a file. Removing a missing file is not an error.
	Delete(ctx context.Context, path string) error
	// Exists checks whether a file exists.
	Exists(ctx context.Context, path string) (bool, error)
	// Resolve returns the absolute filesystem path for a relative path,
	// for collaborators that consume files by path (the ASR sidecar).
	Resolve(path string) string
}

// Config holds staging storage configuration.
type Config struct {
	// BasePath is the root directory for staged uploads.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BasePath == "" {
		c.BasePath = "./uploads"
	}
}
