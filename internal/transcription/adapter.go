package transcription

import (
	"context"
	"regexp"
	"strings"

	apperrors "github.com/kbukum/orator/internal/errors"
)

// Engines emit inline segment annotations like
// [00:08:29.500 --> 00:08:36.500] inside the text stream.
var timestampPattern = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\.\d{3} --> \d{2}:\d{2}:\d{2}\.\d{3}\]`)

// Adapter wraps a Provider and normalizes its output: timestamp annotations
// are stripped and failures are surfaced as TRANSCRIPTION_FAILED errors.
type Adapter struct {
	provider Provider
}

// NewAdapter creates an adapter around a transcription provider.
func NewAdapter(p Provider) *Adapter {
	return &Adapter{provider: p}
}

// Name returns the underlying provider's name.
func (a *Adapter) Name() string { return a.provider.Name() }

// IsAvailable reports whether the underlying provider is reachable.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	return a.provider.IsAvailable(ctx)
}

// Transcribe runs the underlying provider and returns cleaned transcript text.
func (a *Adapter) Transcribe(ctx context.Context, req Request) (*Response, error) {
	resp, err := a.provider.Transcribe(ctx, req)
	if err != nil {
		return nil, apperrors.TranscriptionFailed(err)
	}
	resp.Text = CleanTranscript(resp.Text)
	return resp, nil
}

// CleanTranscript strips timestamp annotations and trims surrounding
// whitespace from raw engine output.
func CleanTranscript(text string) string {
	return strings.TrimSpace(timestampPattern.ReplaceAllString(text, ""))
}

// compile-time check
var _ Provider = (*Adapter)(nil)
