// internal/services/llm_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/llm"
)

var ErrLLMNotReady = errors.New("llm service not ready")

// LLMService wraps a completion provider behind the coarse interface the
// pipeline consumes. A failed call and a Success=false result are treated
// identically by every caller; both trigger the fallback path.
type LLMService struct {
	provider     llm.Provider
	providerName string
	isReady      bool
	readyState   string
	logger       *zap.Logger
}

// CompletionParams is the flat request bag of the pipeline-facing call.
type CompletionParams struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
}

// CompletionData holds the generated content on success.
type CompletionData struct {
	Content string `json:"content"`
}

// CompletionResult mirrors the external completion contract.
type CompletionResult struct {
	Success bool            `json:"success"`
	Data    *CompletionData `json:"data,omitempty"`
}

// NewLLMService creates a ready service around an initialized provider.
func NewLLMService(provider llm.Provider, logger *zap.Logger) *LLMService {
	if provider == nil {
		return NewEmptyLLMService(logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMService{
		provider:     provider,
		providerName: provider.GetName(),
		isReady:      true,
		readyState:   "ready",
		logger:       logger,
	}
}

// NewEmptyLLMService creates a standby service with no provider. Every call
// reports failure, which downstream components absorb through their static
// fallbacks.
func NewEmptyLLMService(logger *zap.Logger) *LLMService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMService{
		providerName: "empty",
		isReady:      false,
		readyState:   "provider not configured",
		logger:       logger,
	}
}

// IsReady reports whether a provider is configured.
func (s *LLMService) IsReady() bool {
	return s != nil && s.isReady && s.provider != nil
}

// ReadyState returns a human-readable readiness description.
func (s *LLMService) ReadyState() string {
	if s.IsReady() {
		return "ready"
	}
	return s.readyState
}

// ProviderName returns the active provider identifier.
func (s *LLMService) ProviderName() string {
	return s.providerName
}

// GenerateCompletion runs one completion call. The result never panics the
// caller: on any failure it returns Success=false alongside the error.
func (s *LLMService) GenerateCompletion(ctx context.Context, params CompletionParams) (CompletionResult, error) {
	if !s.IsReady() {
		return CompletionResult{Success: false}, fmt.Errorf("%w: %s", ErrLLMNotReady, s.readyState)
	}

	resp, err := s.provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:      params.Prompt,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	})
	if err != nil {
		return CompletionResult{Success: false}, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return CompletionResult{Success: false}, errors.New("empty completion")
	}

	return CompletionResult{
		Success: true,
		Data:    &CompletionData{Content: resp.Text},
	}, nil
}

// CompleteStructured runs one completion and unmarshals the cleaned JSON
// answer into out.
func (s *LLMService) CompleteStructured(ctx context.Context, prompt, systemPrompt string, maxTokens int, temperature float32, out any) error {
	if !s.IsReady() {
		return fmt.Errorf("%w: %s", ErrLLMNotReady, s.readyState)
	}

	structuredSystemPrompt := systemPrompt
	if structuredSystemPrompt != "" {
		structuredSystemPrompt += "\n\n"
	}
	structuredSystemPrompt += "Return your response as valid JSON matching the requested schema, without explanations or preambles."

	resp, err := s.provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: structuredSystemPrompt,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	})
	if err != nil {
		return err
	}

	text := CleanJSONResponse(resp.Text)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to parse completion into structured data: %w", err)
	}
	return nil
}

// jsonNoiseReplacer strips markdown fences and invisible characters models
// tend to emit around JSON.
var jsonNoiseReplacer = strings.NewReplacer(
	"```json", "",
	"```", "",
	"\uFEFF", "",
	" ", " ",
	" ", "\n",
	" ", "\n",
)

// CleanJSONResponse trims a completion down to its first balanced JSON
// value. Returns the input unchanged when no opening bracket exists.
func CleanJSONResponse(s string) string {
	if s == "" {
		return s
	}

	s = jsonNoiseReplacer.Replace(s)
	s = strings.TrimSpace(s)

	// Drop zero-width and control characters except line structure.
	s = strings.Map(func(r rune) rune {
		switch r {
		case '​', '‌', '‍', '⁠', '\uFEFF':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	s = strings.TrimSpace(s[start:])
	if s == "" {
		return s
	}

	if end := balancedEnd(s); end > 0 {
		return strings.TrimSpace(s[:end])
	}

	// No balanced close found; fall back to the last closing bracket.
	closer := "}"
	if s[0] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(s, closer); end != -1 {
		return strings.TrimSpace(s[:end+1])
	}
	return strings.TrimSpace(s)
}

// balancedEnd returns the index one past the close of the JSON value that
// starts at s[0], or 0 when the value never closes. String literals and
// escapes are respected.
func balancedEnd(s string) int {
	if len(s) == 0 || (s[0] != '{' && s[0] != '[') {
		return 0
	}

	open, closeCh := byte('{'), byte('}')
	if s[0] == '[' {
		open, closeCh = '[', ']'
	}

	balance := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case open:
			balance++
		case closeCh:
			balance--
		}
		if balance == 0 && (ch == open || ch == closeCh) {
			return i + 1
		}
	}
	return 0
}
