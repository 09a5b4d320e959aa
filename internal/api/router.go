// internal/api/router.go
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/di"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/services"
)

// SetupRouter wires the HTTP surface from an initialized service
// container. Services are only looked up, never constructed here.
func SetupRouter(container *di.Container, logger *zap.Logger, debug bool) (*gin.Engine, error) {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	detector, ok := container.Get("detector").(*services.IntentDetector)
	if !ok {
		return nil, fmt.Errorf("intent detector not initialized")
	}
	parser, ok := container.Get("parser").(*services.ResponseParser)
	if !ok {
		return nil, fmt.Errorf("response parser not initialized")
	}
	creator, ok := container.Get("creator").(*services.ContentCreator)
	if !ok {
		return nil, fmt.Errorf("content creator not initialized")
	}
	orchestrator, ok := container.Get("orchestrator").(*services.GenerationOrchestrator)
	if !ok {
		return nil, fmt.Errorf("generation orchestrator not initialized")
	}
	llmService, ok := container.Get("llm").(*services.LLMService)
	if !ok {
		return nil, fmt.Errorf("llm service not initialized")
	}

	handler := &Handler{
		Detector:     detector,
		Parser:       parser,
		Creator:      creator,
		Orchestrator: orchestrator,
		LLM:          llmService,
		Hub:          NewTaskHub(logger),
		Response:     NewResponseHelper(),
		Logger:       logger,
	}

	r := gin.New()
	r.Use(RecoveryMiddleware(logger))
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware())

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/detect", handler.DetectIntent)
		apiGroup.POST("/parse", handler.ParseResponse)
		apiGroup.POST("/content", handler.CreateContent)
		apiGroup.POST("/content/from-response", handler.CreateFromResponse)

		apiGroup.GET("/tasks/:id", handler.TaskStatus)

		apiGroup.GET("/jobs", handler.ListJobs)
		apiGroup.DELETE("/jobs", handler.CancelAllJobs)
		apiGroup.DELETE("/jobs/:id", handler.CancelJob)

		apiGroup.GET("/health", handler.Health)
	}

	r.GET("/ws/tasks/:id", handler.TaskProgressWS)

	return r, nil
}
