// Package api registers the HTTP routes and translates between transport
// payloads and the processing pipeline.
package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/kbukum/orator/internal/errors"
	"github.com/kbukum/orator/internal/llm"
	"github.com/kbukum/orator/internal/logger"
	"github.com/kbukum/orator/internal/pipeline"
	"github.com/kbukum/orator/internal/server"
	"github.com/kbukum/orator/internal/sse"
	"github.com/kbukum/orator/internal/transcription"
)

// Handler holds the route handlers and their dependencies.
type Handler struct {
	processor *pipeline.Processor
	hub       *sse.Hub
	asr       transcription.Provider
	models    llm.Provider
	version   string
	log       *logger.Logger
}

// NewHandler creates the API handler set.
func NewHandler(
	processor *pipeline.Processor,
	hub *sse.Hub,
	asr transcription.Provider,
	models llm.Provider,
	version string,
	log *logger.Logger,
) *Handler {
	return &Handler{
		processor: processor,
		hub:       hub,
		asr:       asr,
		models:    models,
		version:   version,
		log:       log.WithComponent("api"),
	}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(engine *gin.Engine) {
	engine.GET("/health", h.Health)

	api := engine.Group("/api")
	api.POST("/upload", h.Upload)
	api.GET("/files", h.ListFiles)
	api.GET("/files/:id", h.GetFile)
	api.DELETE("/files/:id", h.DeleteFile)
	api.POST("/files/:id/questions", h.GenerateQuestions)
	api.GET("/files/:id/analysis", h.AnalyzeQuestions)
	api.GET("/files/:id/events", h.Events)
	api.POST("/ask", h.Ask)
	api.GET("/status", h.Status)
}

// Upload accepts a multipart audio upload and starts the pipeline.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		server.RespondWithError(c, apperrors.Validation("No audio payload was uploaded."))
		return
	}

	questionCount := 0
	if raw := c.PostForm("questions"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			server.RespondWithError(c,
				apperrors.Validation("The questions field must be a positive integer."))
			return
		}
		questionCount = n
	}

	src, err := fileHeader.Open()
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	defer src.Close()

	file, err := h.processor.Submit(c.Request.Context(), pipeline.Upload{
		Reader:        src,
		Filename:      fileHeader.Filename,
		Size:          fileHeader.Size,
		Model:         c.PostForm("model"),
		QuestionCount: questionCount,
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondAccepted(c, file)
}

// ListFiles returns every record, most recent upload first.
func (h *Handler) ListFiles(c *gin.Context) {
	files, err := h.processor.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, files)
}

// GetFile returns one record by id.
func (h *Handler) GetFile(c *gin.Context) {
	file, err := h.processor.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, file)
}

// DeleteFile removes a record and cancels any in-flight processing.
func (h *Handler) DeleteFile(c *gin.Context) {
	if err := h.processor.Delete(c.Request.Context(), c.Param("id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

type askRequest struct {
	ID       string `json:"id" binding:"required"`
	Question string `json:"question" binding:"required"`
}

// Ask answers an ad-hoc question against a file's transcript.
func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, bindingError(err))
		return
	}

	answer, err := h.processor.Ask(c.Request.Context(), req.ID, req.Question)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, answer)
}

type generateRequest struct {
	Count int `json:"count" binding:"omitempty,gt=0"`
}

// GenerateQuestions appends freshly generated questions to a file's record.
func (h *Handler) GenerateQuestions(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		server.RespondWithError(c, bindingError(err))
		return
	}

	file, err := h.processor.GenerateQuestions(c.Request.Context(), c.Param("id"), req.Count)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, file)
}

// AnalyzeQuestions returns the interrogative sentences found in a file's
// transcript. The result is computed on demand and not persisted.
func (h *Handler) AnalyzeQuestions(c *gin.Context) {
	result, err := h.processor.AnalyzeQuestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, result)
}

// Status reports backend availability for operators and UIs.
func (h *Handler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	server.RespondOK(c, gin.H{
		"version":       h.version,
		"transcription": h.asr.IsAvailable(ctx),
		"llm":           h.models.IsAvailable(ctx),
	})
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	server.RespondOK(c, gin.H{"status": "ok"})
}

// bindingError maps validator failures to structured validation errors.
func bindingError(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		field := verrs[0].Field()
		if verrs[0].Tag() == "required" {
			return apperrors.MissingField(field)
		}
		return apperrors.Validation("Invalid value for field: " + field)
	}
	return apperrors.Validation("The request body could not be parsed.")
}
