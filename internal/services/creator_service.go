// internal/services/creator_service.go
package services

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/generation"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/locale"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
)

// ContentCreator assembles final entities from partial data bags. Its two
// entry points never panic outward and always return a CreationResult.
type ContentCreator struct {
	autofill     *AutoFillEngine
	parser       *ResponseParser
	orchestrator *GenerationOrchestrator
	llm          *LLMService
	logger       *zap.Logger
}

func NewContentCreator(autofill *AutoFillEngine, parser *ResponseParser, orchestrator *GenerationOrchestrator, llm *LLMService, logger *zap.Logger) *ContentCreator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentCreator{
		autofill:     autofill,
		parser:       parser,
		orchestrator: orchestrator,
		llm:          llm,
		logger:       logger,
	}
}

// CreateContent runs auto-fill, dispatches to the per-type builder and
// wraps the outcome in a CreationResult. Any panic inside the pipeline is
// converted to a failed result rather than propagated.
func (c *ContentCreator) CreateContent(ctx context.Context, t models.ContentType, partial models.ContentData, worldContext string, lang locale.Lang) *models.CreationResult {
	return c.CreateContentWithProgress(ctx, t, partial, worldContext, lang, nil)
}

// CreateContentWithProgress is CreateContent with generation progress
// relayed to cb for the media types. cb may be nil.
func (c *ContentCreator) CreateContentWithProgress(ctx context.Context, t models.ContentType, partial models.ContentData, worldContext string, lang locale.Lang, cb ProgressCallback) (result *models.CreationResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("creation panicked",
				zap.String("type", string(t)), zap.Any("panic", r))
			result = &models.CreationResult{
				Success: false,
				Type:    t,
				Entity:  partial,
				Message: locale.T(lang, "creation.failed", fmt.Sprint(r)),
				Error:   fmt.Sprint(r),
			}
		}
	}()

	if !knownContentType(t) {
		return &models.CreationResult{
			Success: false,
			Type:    t,
			Entity:  partial,
			Message: locale.T(lang, "creation.unknown_type", string(t)),
			Error:   fmt.Sprintf("unknown content type %q", t),
		}
	}

	filled := c.autofill.Fill(ctx, t, partial, worldContext, lang)

	entity, err := c.buildEntity(ctx, t, filled, lang, cb)
	if err != nil {
		c.logger.Warn("entity assembly failed",
			zap.String("type", string(t)), zap.Error(err))
		return &models.CreationResult{
			Success: false,
			Type:    t,
			Entity:  filled,
			Message: locale.T(lang, "creation.failed", err.Error()),
			Error:   err.Error(),
		}
	}

	return &models.CreationResult{
		Success: true,
		Type:    t,
		Entity:  entity,
		Message: c.successMessage(t, entity, lang),
	}
}

// CreateFromLLMResponse parses an assistant response restricted to one
// type, merges the recovered fields with caller-supplied data (caller
// wins on conflicts) and delegates to CreateContent.
func (c *ContentCreator) CreateFromLLMResponse(ctx context.Context, llmResponse string, t models.ContentType, additional models.ContentData, worldContext string, lang locale.Lang) *models.CreationResult {
	merged := models.ContentData{}
	if parsed := c.parser.ParseForType(llmResponse, t, lang); parsed != nil {
		for k, v := range parsed.Data {
			merged[k] = v
		}
	}
	for k, v := range additional {
		merged[k] = v
	}
	return c.CreateContent(ctx, t, merged, worldContext, lang)
}

func knownContentType(t models.ContentType) bool {
	for _, known := range models.AllContentTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (c *ContentCreator) successMessage(t models.ContentType, entity models.ContentData, lang locale.Lang) string {
	key := "created." + string(t)
	if t.Nameable() {
		name := asString(entity["name"])
		if name == "" {
			name = asString(entity["title"])
		}
		if t != models.ContentDialogue {
			return locale.T(lang, key, name)
		}
	}
	return locale.T(lang, key)
}

func (c *ContentCreator) buildEntity(ctx context.Context, t models.ContentType, data models.ContentData, lang locale.Lang, cb ProgressCallback) (models.ContentData, error) {
	switch t {
	case models.ContentCharacter:
		return c.buildCharacter(data), nil
	case models.ContentLocation:
		return c.buildLocation(data), nil
	case models.ContentObject:
		return c.buildObject(data), nil
	case models.ContentDialogue:
		return c.buildDialogue(ctx, data, lang), nil
	case models.ContentStory:
		return c.buildStory(data), nil
	case models.ContentWorld:
		return c.buildWorld(data), nil
	case models.ContentScenario:
		return c.buildScenario(data), nil
	case models.ContentImage:
		return c.buildImage(ctx, data, lang, cb), nil
	case models.ContentAudio:
		return c.buildAudio(ctx, data, lang, cb), nil
	case models.ContentVideo:
		return c.buildVideo(ctx, data, lang, cb), nil
	default:
		return nil, fmt.Errorf("no builder for content type %q", t)
	}
}

func (c *ContentCreator) buildCharacter(data models.ContentData) models.ContentData {
	return models.EntityMap(models.Character{
		ID:          uuid.NewString(),
		Name:        asString(data["name"]),
		Gender:      NormalizeGender(asString(data["gender"])),
		Role:        asString(data["role"]),
		Archetype:   asString(data["archetype"]),
		Age:         asString(data["age"]),
		Personality: asString(data["personality"]),
		Backstory:   asString(data["backstory"]),
		Description: asString(data["description"]),
		ImageURL:    toDataURI(asString(data["image"])),
		Knowledge:   asStringSlice(data["knowledge"]),
	})
}

func (c *ContentCreator) buildLocation(data models.ContentData) models.ContentData {
	return models.EntityMap(models.Location{
		ID:               uuid.NewString(),
		Name:             asString(data["name"]),
		Type:             asString(data["type"]),
		Description:      asString(data["description"]),
		Atmosphere:       asString(data["atmosphere"]),
		Era:              asString(data["era"]),
		PointsOfInterest: asStringSlice(data["pointsOfInterest"]),
		ImageURL:         toDataURI(asString(data["image"])),
	})
}

func (c *ContentCreator) buildObject(data models.ContentData) models.ContentData {
	return models.EntityMap(models.Object{
		ID:          uuid.NewString(),
		Name:        asString(data["name"]),
		Type:        asString(data["type"]),
		Rarity:      asString(data["rarity"]),
		PowerLevel:  asInt(data["powerLevel"], 1),
		Material:    asString(data["material"]),
		Usage:       asString(data["usage"]),
		Description: asString(data["description"]),
		Abilities:   asStringSlice(data["abilities"]),
		ImageURL:    toDataURI(asString(data["image"])),
	})
}

// buildDialogue asks the LLM for a short scripted exchange. A failed or
// unparseable completion falls back to a fixed two-line exchange.
func (c *ContentCreator) buildDialogue(ctx context.Context, data models.ContentData, lang locale.Lang) models.ContentData {
	participants := asStringSlice(data["participants"])
	if len(participants) == 0 {
		participants = []string{
			locale.Pick(lang, "Narrator", "Narrateur"),
			locale.Pick(lang, "Stranger", "Inconnu"),
		}
	}

	lines := c.generateDialogueLines(ctx, participants, data, lang)

	return models.EntityMap(models.Dialogue{
		ID:           uuid.NewString(),
		Participants: participants,
		Lines:        lines,
		Tone:         asString(data["tone"]),
		Description:  asString(data["description"]),
	})
}

func (c *ContentCreator) generateDialogueLines(ctx context.Context, participants []string, data models.ContentData, lang locale.Lang) []models.DialogueLine {
	fallback := func() []models.DialogueLine {
		first, second := participants[0], participants[0]
		if len(participants) > 1 {
			second = participants[1]
		}
		return []models.DialogueLine{
			{Character: first, Text: locale.T(lang, "dialogue.fallback.line1"), Emotion: "neutral"},
			{Character: second, Text: locale.T(lang, "dialogue.fallback.line2"), Emotion: "neutral"},
		}
	}

	if c.llm == nil || !c.llm.IsReady() {
		return fallback()
	}

	prompt := locale.Pick(lang,
		fmt.Sprintf("Write a short dialogue between %s. Tone: %s. Return a JSON array of objects with keys character, text, emotion.",
			strings.Join(participants, " and "), asString(data["tone"])),
		fmt.Sprintf("Écris un court dialogue entre %s. Ton : %s. Renvoie un tableau JSON d'objets avec les clés character, text, emotion.",
			strings.Join(participants, " et "), asString(data["tone"])),
	)

	var lines []models.DialogueLine
	if err := c.llm.CompleteStructured(ctx, prompt, "", 400, 0.8, &lines); err != nil {
		c.logger.Debug("dialogue completion failed", zap.Error(err))
		return fallback()
	}
	if len(lines) == 0 {
		return fallback()
	}
	return lines
}

func (c *ContentCreator) buildStory(data models.ContentData) models.ContentData {
	title := asString(data["title"])
	if title == "" {
		title = asString(data["name"])
	}
	return models.EntityMap(models.Story{
		ID:         uuid.NewString(),
		Title:      title,
		Genre:      asStringSlice(data["genre"]),
		Tone:       asStringSlice(data["tone"]),
		Era:        asString(data["era"]),
		Summary:    asString(data["description"]),
		PlotPoints: asStringSlice(data["plotPoints"]),
		Characters: orEmpty(asStringSlice(data["characters"])),
		Locations:  orEmpty(asStringSlice(data["locations"])),
	})
}

func (c *ContentCreator) buildWorld(data models.ContentData) models.ContentData {
	return models.EntityMap(models.World{
		ID:          uuid.NewString(),
		Name:        asString(data["name"]),
		Genre:       asStringSlice(data["genre"]),
		Era:         asString(data["era"]),
		Cultures:    asStringSlice(data["cultures"]),
		WorldRules:  asStringSlice(data["worldRules"]),
		Description: asString(data["description"]),
	})
}

func (c *ContentCreator) buildScenario(data models.ContentData) models.ContentData {
	return models.EntityMap(models.Scenario{
		ID:          uuid.NewString(),
		Name:        asString(data["name"]),
		Genre:       asStringSlice(data["genre"]),
		Tone:        asStringSlice(data["tone"]),
		Hooks:       asStringSlice(data["hooks"]),
		Objectives:  asStringSlice(data["objectives"]),
		Description: asString(data["description"]),
		Characters:  orEmpty(asStringSlice(data["characters"])),
		Locations:   orEmpty(asStringSlice(data["locations"])),
	})
}

// buildImage derives a prompt through the fallback chain, applies the
// generation defaults and runs the orchestrator. A missing prompt or a
// backend failure lands in the entity's error field; the creation itself
// still succeeds.
func (c *ContentCreator) buildImage(ctx context.Context, data models.ContentData, lang locale.Lang, cb ProgressCallback) models.ContentData {
	content := models.ImageContent{
		ID:      uuid.NewString(),
		Prompt:  firstNonEmpty(data, "prompt", "description", "name"),
		Width:   asInt(data["width"], 512),
		Height:  asInt(data["height"], 512),
		Steps:   asInt(data["steps"], 30),
		Seed:    asInt64(data["seed"], rand.Int63n(1<<31)),
		Sampler: nonEmpty(asString(data["sampler"]), "euler_a"),
	}

	if content.Prompt == "" {
		content.Error = locale.T(lang, "image.no_prompt")
		return models.EntityMap(content)
	}
	if c.orchestrator == nil {
		content.Error = locale.T(lang, "generation.failed", "no image backend configured")
		return models.EntityMap(content)
	}

	asset, err := c.orchestrator.GenerateImage(ctx, generation.Params{
		"prompt":  content.Prompt,
		"width":   content.Width,
		"height":  content.Height,
		"steps":   content.Steps,
		"seed":    content.Seed,
		"sampler": content.Sampler,
	}, cb)
	if err != nil {
		content.Error = locale.T(lang, "generation.failed", err.Error())
	} else {
		content.Asset = asset
	}
	return models.EntityMap(content)
}

func (c *ContentCreator) buildAudio(ctx context.Context, data models.ContentData, lang locale.Lang, cb ProgressCallback) models.ContentData {
	content := models.AudioContent{
		ID:        uuid.NewString(),
		Text:      firstNonEmpty(data, "text", "content", "description"),
		VoiceType: nonEmpty(asString(data["voiceType"]), "narrator"),
		Emotion:   nonEmpty(asString(data["emotion"]), "neutral"),
		Speed:     asFloat(data["speed"], 1.0),
	}

	if content.Text == "" {
		content.Error = locale.T(lang, "audio.no_text")
		return models.EntityMap(content)
	}
	if c.orchestrator == nil {
		content.Error = locale.T(lang, "generation.failed", "no audio backend configured")
		return models.EntityMap(content)
	}

	asset, err := c.orchestrator.GenerateAudio(ctx, generation.Params{
		"text":       content.Text,
		"voice_type": content.VoiceType,
		"emotion":    content.Emotion,
		"speed":      content.Speed,
	}, cb)
	if err != nil {
		content.Error = locale.T(lang, "generation.failed", err.Error())
	} else {
		content.Asset = asset
	}
	return models.EntityMap(content)
}

func (c *ContentCreator) buildVideo(ctx context.Context, data models.ContentData, lang locale.Lang, cb ProgressCallback) models.ContentData {
	content := models.VideoContent{
		ID:         uuid.NewString(),
		Prompt:     firstNonEmpty(data, "prompt", "description", "name"),
		Width:      asInt(data["width"], 768),
		Height:     asInt(data["height"], 432),
		FrameCount: asInt(data["frameCount"], 48),
		Steps:      asInt(data["steps"], 25),
		Seed:       asInt64(data["seed"], rand.Int63n(1<<31)),
	}

	if content.Prompt == "" {
		content.Error = locale.T(lang, "video.no_prompt")
		return models.EntityMap(content)
	}
	if c.orchestrator == nil {
		content.Error = locale.T(lang, "generation.failed", "no video backend configured")
		return models.EntityMap(content)
	}

	asset, err := c.orchestrator.GenerateVideo(ctx, generation.Params{
		"prompt":      content.Prompt,
		"width":       content.Width,
		"height":      content.Height,
		"frame_count": content.FrameCount,
		"steps":       content.Steps,
		"seed":        content.Seed,
	}, cb)
	if err != nil {
		content.Error = locale.T(lang, "generation.failed", err.Error())
	} else {
		content.Asset = asset
	}
	return models.EntityMap(content)
}

// Coercion helpers. Parsed JSON and extracted text both arrive loosely
// typed; builders normalize them at the boundary.

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case nil:
		return ""
	default:
		return ""
	}
}

func asInt(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed
		}
	}
	return def
}

func asInt64(v any, def int64) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		if parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func asFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return parsed
		}
	}
	return def
}

// asStringSlice coerces scalars into single-element slices so "genre":
// "fantasy" and "genre": ["fantasy"] behave identically.
func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case string:
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	case []any:
		out := make([]string, 0, len(s))
		for _, el := range s {
			if str := asString(el); str != "" {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func firstNonEmpty(data models.ContentData, keys ...string) string {
	for _, k := range keys {
		if v := asString(data[k]); v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// toDataURI normalizes a raw base64 image payload into a data URI. URLs
// and existing data URIs pass through untouched.
func toDataURI(image string) string {
	if image == "" ||
		strings.HasPrefix(image, "data:") ||
		strings.HasPrefix(image, "http://") ||
		strings.HasPrefix(image, "https://") ||
		strings.HasPrefix(image, "/") {
		return image
	}
	return "data:image/png;base64," + image
}
