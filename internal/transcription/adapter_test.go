package transcription

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/kbukum/orator/internal/errors"
)

type fakeProvider struct {
	resp *Response
	err  error
}

func (f *fakeProvider) Name() string                        { return "fake" }
func (f *fakeProvider) IsAvailable(context.Context) bool    { return true }
func (f *fakeProvider) Transcribe(context.Context, Request) (*Response, error) {
	return f.resp, f.err
}

func TestCleanTranscript(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "strips timestamp annotations",
			text: "[00:00:00.000 --> 00:00:04.500] Bonjour tout le monde.",
			want: "Bonjour tout le monde.",
		},
		{
			name: "multiple annotations",
			text: "[00:08:29.500 --> 00:08:36.500] Un. [00:08:36.500 --> 00:08:40.000] Deux.",
			want: "Un.  Deux.",
		},
		{
			name: "no annotations",
			text: "Texte brut.",
			want: "Texte brut.",
		},
		{
			name: "trims whitespace",
			text: "  [00:00:00.000 --> 00:00:01.000] salut  ",
			want: "salut",
		},
		{
			name: "malformed timestamps are kept",
			text: "[00:00 --> 00:01] salut",
			want: "[00:00 --> 00:01] salut",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanTranscript(tc.text); got != tc.want {
				t.Errorf("CleanTranscript(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestAdapterTranscribeCleansOutput(t *testing.T) {
	adapter := NewAdapter(&fakeProvider{
		resp: &Response{
			Text:     "[00:00:00.000 --> 00:00:02.000] Bonjour.",
			Duration: 2,
		},
	})

	resp, err := adapter.Transcribe(context.Background(), Request{AudioPath: "x.wav"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "Bonjour." {
		t.Errorf("Text = %q, want %q", resp.Text, "Bonjour.")
	}
	if resp.Duration != 2 {
		t.Errorf("Duration = %v, want 2", resp.Duration)
	}
}

func TestAdapterTranscribeWrapsErrors(t *testing.T) {
	cause := errors.New("sidecar down")
	adapter := NewAdapter(&fakeProvider{err: cause})

	_, err := adapter.Transcribe(context.Background(), Request{AudioPath: "x.wav"})
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrCodeTranscriptionFailed {
		t.Errorf("Code = %q, want %q", appErr.Code, apperrors.ErrCodeTranscriptionFailed)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not preserved through wrapping")
	}
}
