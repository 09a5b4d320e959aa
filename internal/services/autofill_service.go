// internal/services/autofill_service.go
package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/locale"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
)

// fillValue is the outcome of one fill step: the chosen value and whether
// the static fallback survived instead of an LLM suggestion.
type fillValue struct {
	value        string
	usedFallback bool
}

// AutoFillEngine completes partial data bags before assembly. Every step
// degrades to a deterministic fallback; Fill never returns an error.
type AutoFillEngine struct {
	llm    *LLMService
	logger *zap.Logger
}

func NewAutoFillEngine(llm *LLMService, logger *zap.Logger) *AutoFillEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoFillEngine{llm: llm, logger: logger}
}

// Static name pools, drawn from per language when the LLM cannot help.
var fallbackNames = map[models.ContentType]map[locale.Lang][]string{
	models.ContentCharacter: {
		locale.English: {"Aria", "Kael", "Mira", "Dorian", "Lyra", "Theron", "Isolde", "Corvin"},
		locale.French:  {"Aveline", "Tristan", "Maëlle", "Gaspard", "Élise", "Baptiste", "Solène", "Armand"},
	},
	models.ContentLocation: {
		locale.English: {"The Gilded Lantern", "Ravenhollow", "Thornfield Keep", "The Sunken Market"},
		locale.French:  {"La Lanterne Dorée", "Val-aux-Corbeaux", "Fort des Épines", "Le Marché Englouti"},
	},
	models.ContentObject: {
		locale.English: {"Whisperblade", "The Ember Locket", "Stormcaller's Ring", "The Pale Compass"},
		locale.French:  {"Lame-Murmure", "Le Médaillon de Braise", "L'Anneau des Tempêtes", "La Boussole Pâle"},
	},
	models.ContentWorld: {
		locale.English: {"Eldoria", "Vastmere", "The Shattered Reaches", "Aurelia"},
		locale.French:  {"Eldoria", "Vastemer", "Les Confins Brisés", "Aurélia"},
	},
	models.ContentStory: {
		locale.English: {"The Last Ember", "Crown of Ashes", "A Debt of Shadows"},
		locale.French:  {"La Dernière Braise", "Couronne de Cendres", "Une Dette d'Ombres"},
	},
	models.ContentScenario: {
		locale.English: {"The Missing Courier", "Echoes in the Deep", "A Bargain at Dusk"},
		locale.French:  {"Le Messager Disparu", "Échos des Profondeurs", "Un Marché au Crépuscule"},
	},
}

// Fill completes the bag for one content type. Existing values are never
// overwritten; the returned map is a copy.
func (a *AutoFillEngine) Fill(ctx context.Context, t models.ContentType, partial models.ContentData, worldContext string, lang locale.Lang) models.ContentData {
	filled := partial.Clone()
	if filled == nil {
		filled = models.ContentData{}
	}
	if worldContext == "" {
		worldContext = locale.T(lang, "autofill.context.default")
	}

	if t.Nameable() && emptyField(filled, "name") {
		name := a.fillName(ctx, t, worldContext, lang)
		filled["name"] = name.value
		if name.usedFallback {
			a.logger.Debug("name fallback used", zap.String("type", string(t)))
		}
	}

	if emptyField(filled, "description") {
		desc := a.fillDescription(ctx, t, filled, worldContext, lang)
		if desc.value != "" {
			filled["description"] = desc.value
		}
	}

	a.applyTypeDefaults(t, filled)
	return filled
}

// fillName picks a static name immediately, then lets the LLM improve it.
// An LLM failure or an out-of-bounds suggestion keeps the static pick.
func (a *AutoFillEngine) fillName(ctx context.Context, t models.ContentType, worldContext string, lang locale.Lang) fillValue {
	pool := fallbackNames[t][locale.English]
	if lang == locale.French {
		pool = fallbackNames[t][locale.French]
	}
	fallback := "Unnamed"
	if len(pool) > 0 {
		fallback = pool[rand.Intn(len(pool))]
	}

	prompt := locale.Pick(lang,
		fmt.Sprintf("Invent a single evocative name for a %s in a %s setting. Reply with the name only.", t, worldContext),
		fmt.Sprintf("Invente un seul nom évocateur pour un élément de type %s dans un univers %s. Réponds uniquement avec le nom.", t, worldContext),
	)
	suggestion, err := a.complete(ctx, prompt, 50, 0.9)
	if err != nil {
		a.logger.Debug("name completion failed", zap.String("type", string(t)), zap.Error(err))
		return fillValue{value: fallback, usedFallback: true}
	}
	suggestion = strings.TrimSpace(strings.Trim(strings.TrimSpace(suggestion), `"'`))
	if len(suggestion) == 0 || len(suggestion) >= 100 {
		return fillValue{value: fallback, usedFallback: true}
	}
	return fillValue{value: suggestion}
}

// fillDescription mirrors fillName with a templated fallback sentence.
func (a *AutoFillEngine) fillDescription(ctx context.Context, t models.ContentType, data models.ContentData, worldContext string, lang locale.Lang) fillValue {
	key := "autofill.description." + string(t)
	fallback := locale.T(lang, key, worldContext)
	if fallback == key {
		// media and dialogue types carry no templated description
		fallback = ""
	}

	name, _ := data["name"].(string)
	prompt := locale.Pick(lang,
		fmt.Sprintf("Write a vivid two-sentence description of a %s named %q in a %s setting.", t, name, worldContext),
		fmt.Sprintf("Écris une description vivante en deux phrases d'un élément de type %s nommé %q dans un univers %s.", t, name, worldContext),
	)
	suggestion, err := a.complete(ctx, prompt, 200, 0.7)
	if err != nil {
		if fallback != "" {
			a.logger.Debug("description completion failed", zap.String("type", string(t)), zap.Error(err))
		}
		return fillValue{value: fallback, usedFallback: true}
	}
	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" {
		return fillValue{value: fallback, usedFallback: true}
	}
	return fillValue{value: suggestion}
}

func (a *AutoFillEngine) complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if a.llm == nil {
		return "", ErrLLMNotReady
	}
	result, err := a.llm.GenerateCompletion(ctx, CompletionParams{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if !result.Success || result.Data == nil {
		return "", fmt.Errorf("completion returned no content")
	}
	return result.Data.Content, nil
}

// applyTypeDefaults fills remaining gaps with fixed or lightly randomized
// values. Present fields are left alone.
func (a *AutoFillEngine) applyTypeDefaults(t models.ContentType, data models.ContentData) {
	setIfEmpty := func(k string, v any) {
		if emptyField(data, k) {
			data[k] = v
		}
	}
	switch t {
	case models.ContentCharacter:
		gender := "male"
		if rand.Intn(2) == 0 {
			gender = "female"
		}
		setIfEmpty("gender", gender)
		setIfEmpty("role", "supporting")
	case models.ContentObject:
		setIfEmpty("type", "artifact")
		setIfEmpty("rarity", "uncommon")
		setIfEmpty("powerLevel", 1+rand.Intn(5))
	case models.ContentWorld:
		setIfEmpty("era", "medieval")
		setIfEmpty("genre", "fantasy")
	case models.ContentLocation:
		setIfEmpty("type", "landmark")
	case models.ContentStory:
		setIfEmpty("genre", "fantasy")
	case models.ContentScenario:
		setIfEmpty("tone", "adventurous")
	}
}

func emptyField(data models.ContentData, key string) bool {
	v, ok := data[key]
	if !ok || v == nil {
		return true
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) == ""
	}
	return false
}
