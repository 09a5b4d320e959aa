// internal/app/app.go
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/config"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/di"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/generation"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/llm"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/services"

	// providers register themselves with the llm registry
	_ "github.com/zedarvates/StoryCore-Engine-sub001/internal/llm/providers/openai"
	_ "github.com/zedarvates/StoryCore-Engine-sub001/internal/llm/providers/openrouter"
)

// InitServices builds every pipeline service and registers them in a
// container. The server keeps running with a degraded LLM service when the
// provider cannot be initialized; auto-fill then relies on its static
// fallbacks.
func InitServices(cfg *config.Config, logger *zap.Logger) (*di.Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	container := di.NewContainer()

	llmService := buildLLMService(cfg, logger)
	container.Register("llm", llmService)

	extractor := services.NewEntityExtractor()
	container.Register("extractor", extractor)

	detector := services.NewIntentDetector(extractor, logger)
	container.Register("detector", detector)

	parser := services.NewResponseParser(extractor, logger)
	container.Register("parser", parser)

	autofill := services.NewAutoFillEngine(llmService, logger)
	container.Register("autofill", autofill)

	orchestrator := services.NewGenerationOrchestrator(
		llmService,
		imageBackend(cfg),
		audioBackend(cfg),
		videoBackend(cfg),
		logger)
	container.Register("orchestrator", orchestrator)

	creator := services.NewContentCreator(autofill, parser, orchestrator, llmService, logger)
	container.Register("creator", creator)

	return container, nil
}

func buildLLMService(cfg *config.Config, logger *zap.Logger) *services.LLMService {
	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig())
	if err != nil {
		logger.Warn("llm provider unavailable, running without completions",
			zap.String("provider", cfg.LLMProvider), zap.Error(err))
		return services.NewEmptyLLMService(logger)
	}
	logger.Info("llm provider ready", zap.String("provider", provider.GetName()))
	return services.NewLLMService(provider, logger)
}

func imageBackend(cfg *config.Config) generation.ImageBackend {
	if cfg.ImageBackendURL == "" {
		return nil
	}
	return generation.NewHTTPImageBackend(cfg.ImageBackendURL)
}

func audioBackend(cfg *config.Config) generation.AudioBackend {
	if cfg.AudioBackendURL == "" {
		return nil
	}
	return generation.NewHTTPAudioBackend(cfg.AudioBackendURL)
}

func videoBackend(cfg *config.Config) generation.VideoBackend {
	if cfg.VideoBackendURL == "" {
		return nil
	}
	return generation.NewHTTPVideoBackend(cfg.VideoBackendURL)
}
