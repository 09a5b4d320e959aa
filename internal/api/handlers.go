// internal/api/handlers.go
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/locale"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/services"
)

// asyncTaskTimeout bounds a background creation including its generation
// stages.
const asyncTaskTimeout = 30 * time.Minute

// Handler exposes the content pipeline over HTTP.
type Handler struct {
	Detector     *services.IntentDetector
	Parser       *services.ResponseParser
	Creator      *services.ContentCreator
	Orchestrator *services.GenerationOrchestrator
	LLM          *services.LLMService
	Hub          *TaskHub
	Response     *ResponseHelper
	Logger       *zap.Logger
}

type detectRequest struct {
	UserMessage       string `json:"user_message" binding:"required"`
	AssistantResponse string `json:"assistant_response"`
	Language          string `json:"language"`
}

// DetectIntent scores one conversation turn for creation intent.
func (h *Handler) DetectIntent(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	lang := locale.Normalize(req.Language)
	result := h.Detector.Detect(req.UserMessage, req.AssistantResponse, lang)
	if result == nil {
		h.Response.Success(c, gin.H{"detected": false})
		return
	}
	h.Response.Success(c, gin.H{"detected": true, "detection": result})
}

type parseRequest struct {
	Response     string `json:"response" binding:"required"`
	ExpectedType string `json:"expected_type"`
	Language     string `json:"language"`
}

// ParseResponse extracts typed entities from an assistant response.
func (h *Handler) ParseResponse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	lang := locale.Normalize(req.Language)
	result := h.Parser.Parse(req.Response, models.ContentType(req.ExpectedType), lang)
	h.Response.Success(c, result)
}

type createRequest struct {
	Type         string             `json:"type" binding:"required"`
	Data         models.ContentData `json:"data"`
	WorldContext string             `json:"world_context"`
	Language     string             `json:"language"`
	Async        bool               `json:"async"`
}

// CreateContent assembles one entity. Media types may run asynchronously:
// the handler returns a task id immediately and progress streams over the
// task websocket.
func (h *Handler) CreateContent(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	t := models.ContentType(req.Type)
	lang := locale.Normalize(req.Language)

	if req.Async && t.IsMedia() {
		taskID := h.startAsyncCreation(t, req.Data, req.WorldContext, lang)
		h.Response.Accepted(c, gin.H{"task_id": taskID})
		return
	}

	result := h.Creator.CreateContent(c.Request.Context(), t, req.Data, req.WorldContext, lang)
	h.renderCreation(c, result)
}

type createFromResponseRequest struct {
	Response     string             `json:"response" binding:"required"`
	Type         string             `json:"type" binding:"required"`
	Data         models.ContentData `json:"data"`
	WorldContext string             `json:"world_context"`
	Language     string             `json:"language"`
}

// CreateFromResponse parses an assistant response restricted to one type
// and assembles the resulting entity.
func (h *Handler) CreateFromResponse(c *gin.Context) {
	var req createFromResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	lang := locale.Normalize(req.Language)
	result := h.Creator.CreateFromLLMResponse(
		c.Request.Context(), req.Response, models.ContentType(req.Type),
		req.Data, req.WorldContext, lang)
	h.renderCreation(c, result)
}

func (h *Handler) renderCreation(c *gin.Context, result *models.CreationResult) {
	if result.Success {
		h.Response.Created(c, result, result.Message)
		return
	}
	h.Response.Success(c, result, result.Message)
}

// startAsyncCreation runs the creation in the background, relaying
// generation progress through the task hub. The task outlives the HTTP
// request, so it gets its own context.
func (h *Handler) startAsyncCreation(t models.ContentType, data models.ContentData, worldContext string, lang locale.Lang) string {
	taskID := uuid.NewString()
	h.Hub.StartTask(taskID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTaskTimeout)
		defer cancel()

		result := h.Creator.CreateContentWithProgress(ctx, t, data, worldContext, lang,
			func(p models.GenerationProgress) {
				h.Hub.PublishProgress(taskID, p)
			})
		h.Hub.FinishTask(taskID, result)
		h.Logger.Info("async creation finished",
			zap.String("task_id", taskID),
			zap.String("type", string(t)),
			zap.Bool("success", result.Success))
	}()

	return taskID
}

// TaskStatus reports whether a task finished and, if so, its result.
func (h *Handler) TaskStatus(c *gin.Context) {
	id := c.Param("id")
	if !h.Hub.KnownTask(id) {
		h.Response.NotFound(c, "unknown task "+id)
		return
	}
	if result, done := h.Hub.TaskResult(id); done {
		h.Response.Success(c, gin.H{"done": true, "result": result})
		return
	}
	h.Response.Success(c, gin.H{"done": false})
}

// TaskProgressWS streams task progress over a websocket.
func (h *Handler) TaskProgressWS(c *gin.Context) {
	h.Hub.ServeTask(c.Writer, c.Request, c.Param("id"))
}

// ListJobs returns the ids of active generation jobs.
func (h *Handler) ListJobs(c *gin.Context) {
	h.Response.Success(c, gin.H{"jobs": h.Orchestrator.ActiveJobs()})
}

// CancelJob cancels one active generation job.
func (h *Handler) CancelJob(c *gin.Context) {
	if err := h.Orchestrator.CancelJob(c.Param("id")); err != nil {
		h.Response.Error(c, err)
		return
	}
	h.Response.Success(c, gin.H{"cancelled": c.Param("id")})
}

// CancelAllJobs cancels every active generation job.
func (h *Handler) CancelAllJobs(c *gin.Context) {
	h.Orchestrator.CancelAllJobs()
	h.Response.Success(c, gin.H{"cancelled": "all"})
}

// Health reports service and LLM readiness.
func (h *Handler) Health(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"status":      "ok",
		"llm_ready":   h.LLM.IsReady(),
		"llm_state":   h.LLM.ReadyState(),
		"provider":    h.LLM.ProviderName(),
		"active_jobs": len(h.Orchestrator.ActiveJobs()),
	})
}
