package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/orator/internal/analysis"
	"github.com/kbukum/orator/internal/insights"
	"github.com/kbukum/orator/internal/llm"
	"github.com/kbukum/orator/internal/logger"
	"github.com/kbukum/orator/internal/nlu"
	"github.com/kbukum/orator/internal/pipeline"
	"github.com/kbukum/orator/internal/sse"
	"github.com/kbukum/orator/internal/storage"
	"github.com/kbukum/orator/internal/store"
	"github.com/kbukum/orator/internal/transcription"
)

type fakeASR struct {
	text string
}

func (f *fakeASR) Name() string                     { return "fake-asr" }
func (f *fakeASR) IsAvailable(context.Context) bool { return true }
func (f *fakeASR) Transcribe(context.Context, transcription.Request) (*transcription.Response, error) {
	return &transcription.Response{Text: f.text, Duration: 1}, nil
}

type fakeLLM struct {
	content string
}

func (f *fakeLLM) Name() string                              { return "fake-llm" }
func (f *fakeLLM) IsAvailable(context.Context) bool          { return true }
func (f *fakeLLM) EnsureModel(context.Context, string) error { return nil }
func (f *fakeLLM) WaitReady(context.Context, string) error   { return nil }
func (f *fakeLLM) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: f.content, Model: req.Model}, nil
}

type testAPI struct {
	engine *gin.Engine
	store  *store.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&store.AudioFile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.New(db)

	staging, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("staging: %v", err)
	}

	classifier := nlu.New()
	if err := classifier.Train("fr", nlu.QuestionDocuments("fr")); err != nil {
		t.Fatalf("train: %v", err)
	}

	log := logger.NewDefault("test")
	asr := transcription.NewAdapter(&fakeASR{text: "Bonjour. Comment allez-vous?"})
	models := &fakeLLM{content: "Quelle est la suite?"}
	hub := sse.NewHub(log)

	processor := pipeline.New(
		pipeline.Config{Language: "fr"},
		st,
		staging,
		asr,
		models,
		insights.NewGenerator(models),
		analysis.NewQuestionEngine(classifier, "fr"),
		hub,
		nil,
		log,
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		processor.Shutdown(ctx)
	})

	engine := gin.New()
	NewHandler(processor, hub, asr, models, "test", log).Register(engine)
	return &testAPI{engine: engine, store: st}
}

func (a *testAPI) do(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func multipartUpload(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("fake audio bytes"))
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return envelope.Data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error %q: %v", w.Body.String(), err)
	}
	return envelope.Error.Code
}

func waitComplete(t *testing.T, a *testAPI, id string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		file, err := a.store.Get(context.Background(), id)
		if err == nil && file.ProcessingStage.Terminal() {
			if file.ProcessingStage != store.StageComplete {
				t.Fatalf("file errored: %s", file.ErrorMessage)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("upload never completed")
}

func TestUploadLifecycle(t *testing.T) {
	a := newTestAPI(t)

	body, contentType := multipartUpload(t, "meeting.wav")
	w := a.do(http.MethodPost, "/api/upload", body, contentType)
	if w.Code != http.StatusAccepted {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}
	id, _ := decodeData(t, w)["id"].(string)
	if id == "" {
		t.Fatalf("no id in response: %s", w.Body.String())
	}

	waitComplete(t, a, id)

	w = a.do(http.MethodGet, "/api/files/"+id, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	data := decodeData(t, w)
	if data["processing_stage"] != string(store.StageComplete) {
		t.Errorf("stage = %v", data["processing_stage"])
	}
	if data["transcription"] != "Bonjour. Comment allez-vous?" {
		t.Errorf("transcription = %v", data["transcription"])
	}

	w = a.do(http.MethodGet, "/api/files", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	w = a.do(http.MethodDelete, "/api/files/"+id, nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = a.do(http.MethodDelete, "/api/files/"+id, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestUploadWithoutAudio(t *testing.T) {
	a := newTestAPI(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("model", "llama3")
	writer.Close()

	w := a.do(http.MethodPost, "/api/upload", &buf, writer.FormDataContentType())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != "INVALID_INPUT" {
		t.Errorf("code = %q, want INVALID_INPUT", code)
	}

	// A rejected upload must not leave a record behind.
	w = a.do(http.MethodGet, "/api/files", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list %q: %v", w.Body.String(), err)
	}
	if len(list.Data) != 0 {
		t.Errorf("rejected upload created %d record(s)", len(list.Data))
	}
}

func TestUploadRejectsBadQuestionCount(t *testing.T) {
	a := newTestAPI(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("audio", "a.wav")
	part.Write([]byte("x"))
	writer.WriteField("questions", "zero")
	writer.Close()

	w := a.do(http.MethodPost, "/api/upload", &buf, writer.FormDataContentType())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetMissingFile(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(http.MethodGet, "/api/files/nope", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if code := errorCode(t, w); code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", code)
	}
}

func TestAsk(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()

	a.store.Create(ctx, &store.AudioFile{ID: "f1", Filename: "f1.wav"})

	// No transcript yet.
	body := bytes.NewBufferString(`{"id":"f1","question":"Quand est la réunion?"}`)
	w := a.do(http.MethodPost, "/api/ask", body, "application/json")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if code := errorCode(t, w); code != "NO_CORPUS" {
		t.Errorf("code = %q, want NO_CORPUS", code)
	}

	a.store.SetTranscription(ctx, "f1", "la réunion est prévue demain")
	body = bytes.NewBufferString(`{"id":"f1","question":"Quand est la réunion?"}`)
	w = a.do(http.MethodPost, "/api/ask", body, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	answer, _ := data["answer"].(string)
	if !strings.Contains(answer, "réunion") {
		t.Errorf("answer = %q", answer)
	}

	// Missing question field.
	body = bytes.NewBufferString(`{"id":"f1"}`)
	w = a.do(http.MethodPost, "/api/ask", body, "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != "MISSING_FIELD" {
		t.Errorf("code = %q, want MISSING_FIELD", code)
	}
}

func TestGenerateQuestionsEndpoint(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()

	a.store.Create(ctx, &store.AudioFile{ID: "f1", Filename: "f1.wav"})
	a.store.SetTranscription(ctx, "f1", "du texte")
	a.store.SetAnalysis(ctx, "f1", "résumé", "1. Première?")

	w := a.do(http.MethodPost, "/api/files/f1/questions", bytes.NewBufferString(`{"count":1}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	questions, _ := data["questions"].(string)
	if !strings.HasPrefix(questions, "1. Première?") {
		t.Errorf("prior questions discarded: %q", questions)
	}
	if !strings.Contains(questions, "Quelle est la suite?") {
		t.Errorf("new questions missing: %q", questions)
	}
}

func TestAnalysisEndpoint(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()

	a.store.Create(ctx, &store.AudioFile{ID: "f1", Filename: "f1.wav"})
	a.store.SetTranscription(ctx, "f1", "Bonjour. Comment allez-vous? C'est un test. Qui etes-vous?")

	w := a.do(http.MethodGet, "/api/files/f1/analysis", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if count, _ := data["question_count"].(float64); count != 2 {
		t.Errorf("question_count = %v, want 2", data["question_count"])
	}
}

func TestStatusAndHealth(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodGet, "/api/status", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := decodeData(t, w)
	if data["llm"] != true || data["transcription"] != true {
		t.Errorf("availability = %v", data)
	}

	w = a.do(http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
}
