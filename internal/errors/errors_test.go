package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorStatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
		retry  bool
	}{
		{"validation", Validation("bad"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"missing field", MissingField("question"), ErrCodeMissingField, http.StatusBadRequest, false},
		{"not found", NotFound("audio file", "x"), ErrCodeNotFound, http.StatusNotFound, false},
		{"no corpus", NoCorpus("x"), ErrCodeNoCorpus, http.StatusConflict, false},
		{"transcription failed", TranscriptionFailed(stderrors.New("x")), ErrCodeTranscriptionFailed, http.StatusBadGateway, false},
		{"unavailable", ServiceUnavailable("llm"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"external", ExternalServiceError("whisper", stderrors.New("x")), ErrCodeExternalService, http.StatusBadGateway, true},
		{"internal", Internal(stderrors.New("x")), ErrCodeInternal, http.StatusInternalServerError, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("Code = %q, want %q", tc.err.Code, tc.code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("HTTPStatus = %d, want %d", tc.err.HTTPStatus, tc.status)
			}
			if tc.err.Retryable != tc.retry {
				t.Errorf("Retryable = %v, want %v", tc.err.Retryable, tc.retry)
			}
		})
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("root")
	err := Internal(fmt.Errorf("wrapping: %w", cause))
	if !stderrors.Is(err, cause) {
		t.Error("cause lost through AppError")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("audio file", "x")
	wrapped := fmt.Errorf("handler: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok || got.Code != ErrCodeNotFound {
		t.Errorf("AsAppError = (%v, %v)", got, ok)
	}

	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error recognized as AppError")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NoCorpus("x")); got != ErrCodeNoCorpus {
		t.Errorf("CodeOf = %q", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != ErrCodeInternal {
		t.Errorf("CodeOf(plain) = %q, want INTERNAL_ERROR", got)
	}
}

func TestToResponse(t *testing.T) {
	err := MissingField("question")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeMissingField {
		t.Errorf("response code = %q", resp.Error.Code)
	}
	if resp.Error.Details["field"] != "question" {
		t.Errorf("details = %v", resp.Error.Details)
	}
}

func TestWithDetailAndCause(t *testing.T) {
	cause := stderrors.New("root")
	err := Validation("bad").WithDetail("field", "model").WithCause(cause)
	if err.Details["field"] != "model" {
		t.Errorf("details = %v", err.Details)
	}
	if !stderrors.Is(err, cause) {
		t.Error("WithCause not unwrappable")
	}
}
