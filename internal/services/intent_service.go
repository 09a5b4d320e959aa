// internal/services/intent_service.go
package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/locale"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
)

// detectionThreshold is the minimum confidence below which no creation
// intent is reported.
const detectionThreshold = 0.3

// IntentDetector scans a conversation turn for content-creation intent and
// scores one candidate content type.
type IntentDetector struct {
	extractor *EntityExtractor
	logger    *zap.Logger
}

func NewIntentDetector(extractor *EntityExtractor, logger *zap.Logger) *IntentDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentDetector{extractor: extractor, logger: logger}
}

// intentKeywords holds the per-type, per-language trigger vocabulary.
// Every occurrence of a keyword counts toward the score.
var intentKeywords = map[models.ContentType]map[locale.Lang][]string{
	models.ContentCharacter: {
		locale.English: {"character", "protagonist", "hero", "heroine", "villain", "npc", "persona", "companion"},
		locale.French:  {"personnage", "protagoniste", "héros", "héroïne", "méchant", "pnj", "compagnon"},
	},
	models.ContentLocation: {
		locale.English: {"location", "place", "tavern", "castle", "dungeon", "forest", "city", "village", "temple"},
		locale.French:  {"lieu", "endroit", "taverne", "château", "donjon", "forêt", "ville", "village", "temple"},
	},
	models.ContentObject: {
		locale.English: {"object", "item", "artifact", "weapon", "sword", "amulet", "relic", "potion", "armor"},
		locale.French:  {"objet", "artefact", "arme", "épée", "amulette", "relique", "potion", "armure"},
	},
	models.ContentDialogue: {
		locale.English: {"dialogue", "conversation", "exchange", "banter", "lines"},
		locale.French:  {"dialogue", "conversation", "échange", "répliques"},
	},
	models.ContentStory: {
		locale.English: {"story", "tale", "plot", "narrative", "chapter", "saga"},
		locale.French:  {"histoire", "récit", "intrigue", "chapitre", "saga"},
	},
	models.ContentWorld: {
		locale.English: {"world", "universe", "realm", "setting", "lore", "worldbuilding"},
		locale.French:  {"monde", "univers", "royaume", "cadre", "lore"},
	},
	models.ContentScenario: {
		locale.English: {"scenario", "quest", "mission", "adventure", "campaign", "encounter"},
		locale.French:  {"scénario", "quête", "mission", "aventure", "campagne", "rencontre"},
	},
	models.ContentImage: {
		locale.English: {"image", "picture", "illustration", "portrait", "artwork", "draw"},
		locale.French:  {"image", "illustration", "portrait", "dessin", "dessine"},
	},
	models.ContentAudio: {
		locale.English: {"audio", "voice", "narration", "speech", "sound", "voiceover"},
		locale.French:  {"audio", "voix", "narration", "son"},
	},
	models.ContentVideo: {
		locale.English: {"video", "animation", "clip", "cinematic", "trailer"},
		locale.French:  {"vidéo", "animation", "clip", "cinématique"},
	},
}

// Detect scores the concatenated turn against the keyword table of the
// requested language and returns the winning content type, or nil when
// confidence stays under the threshold. Ties between types yield the
// earliest type in declaration order.
func (d *IntentDetector) Detect(userMessage, assistantResponse string, lang locale.Lang) *models.DetectionResult {
	text := strings.ToLower(userMessage + " " + assistantResponse)

	var (
		best      models.ContentType
		bestScore int
	)
	for _, t := range models.AllContentTypes {
		score := d.keywordHits(t, text, lang)
		if score > bestScore {
			best = t
			bestScore = score
		}
	}
	if bestScore == 0 {
		return nil
	}

	confidence := models.ClampConfidence(float64(bestScore) / 3.0)
	if confidence < detectionThreshold {
		return nil
	}

	data := d.extractor.Extract(best, userMessage+" "+assistantResponse, lang)
	missing := d.extractor.MissingFields(best, data)

	d.logger.Debug("creation intent detected",
		zap.String("type", string(best)),
		zap.Float64("confidence", confidence),
		zap.Int("keyword_hits", bestScore))

	return &models.DetectionResult{
		Type:            best,
		Confidence:      confidence,
		ExtractedData:   data,
		MissingFields:   missing,
		SuggestedAction: locale.T(lang, "suggest."+string(best)),
	}
}

// keywordHits sums the occurrences of every keyword of the type in the
// requested language. Repeats raise the score; the other language's
// vocabulary never contributes.
func (d *IntentDetector) keywordHits(t models.ContentType, loweredText string, lang locale.Lang) int {
	hits := 0
	for _, kw := range intentKeywords[t][lang] {
		hits += strings.Count(loweredText, kw)
	}
	return hits
}
