// internal/services/parser_service.go
package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/locale"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
)

// jsonConfidence is the fixed score for entities recovered from embedded
// JSON; structured data is treated as authoritative over pattern hits.
const jsonConfidence = 0.95

// ResponseParser scans assistant text for embedded JSON first and runs the
// regex extractor as a fallback, then merges both passes into typed
// entities.
type ResponseParser struct {
	extractor *EntityExtractor
	logger    *zap.Logger
}

func NewResponseParser(extractor *EntityExtractor, logger *zap.Logger) *ResponseParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseParser{extractor: extractor, logger: logger}
}

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	fencedObjectRe  = regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```")
	fencedArrayRe   = regexp.MustCompile("(?s)```\\s*(\\[.*?\\])\\s*```")
	fencedRegionRe  = regexp.MustCompile("(?s)```.*?```")
	inlineBracketRe = regexp.MustCompile(`[\[{]`)
)

// keySynonyms normalizes top-level JSON keys that assistants emit in
// French onto the canonical English field names.
var keySynonyms = map[string]string{
	"nom":          "name",
	"prénom":       "name",
	"rareté":       "rarity",
	"rarete":       "rarity",
	"rôle":         "role",
	"âge":          "age",
	"époque":       "era",
	"epoque":       "era",
	"ère":          "era",
	"matériau":     "material",
	"materiau":     "material",
	"utilisation":  "usage",
	"titre":        "title",
	"personnalité": "personality",
	"personnalite": "personality",
	"archétype":    "archetype",
	"ton":          "tone",
	"ambiance":     "atmosphere",
	"capacités":    "abilities",
	"capacites":    "abilities",
	"puissance":    "powerLevel",
	"répliques":    "lines",
	"repliques":    "lines",
	"scènes":       "scenes",
	"chapitres":    "chapters",
	"cultures":     "cultures",
	"histoire":     "backstory",
}

// typeSignals maps content types to the keys whose mere presence implies
// that type. Checked in slice order; the first type with a present signal
// key wins.
var typeSignals = []struct {
	t    models.ContentType
	keys []string
}{
	{models.ContentCharacter, []string{"archetype", "personality", "backstory", "visual_identity"}},
	{models.ContentObject, []string{"rarity", "powerLevel", "abilities"}},
	{models.ContentWorld, []string{"era", "cultures", "worldRules"}},
	{models.ContentStory, []string{"scenes", "chapters", "plotPoints"}},
	{models.ContentDialogue, []string{"participants", "lines", "exchanges"}},
	{models.ContentLocation, []string{"atmosphere", "pointsOfInterest"}},
	{models.ContentScenario, []string{"hooks", "objectives"}},
}

// Parse recovers every typed entity embedded in a response. expectedType
// short-circuits type inference for JSON candidates when non-empty.
func (p *ResponseParser) Parse(response string, expectedType models.ContentType, lang locale.Lang) *models.ParseResult {
	jsonEntities := p.extractJSONEntities(response, expectedType)
	patternEntity := p.extractPatternEntity(response, expectedType, lang)

	entities := mergeEntities(jsonEntities, patternEntity)

	result := &models.ParseResult{
		Entities:          entities,
		DetectedTypes:     distinctTypes(entities),
		HasStructuredData: len(jsonEntities) > 0,
		RawResponse:       response,
	}
	p.logger.Debug("response parsed",
		zap.Int("entities", len(result.Entities)),
		zap.Bool("structured", result.HasStructuredData))
	return result
}

// ParseForType returns the single merged entity of the requested type, or
// nil when the response carries nothing of that type.
func (p *ResponseParser) ParseForType(response string, t models.ContentType, lang locale.Lang) *models.ParsedEntity {
	result := p.Parse(response, t, lang)
	for i := range result.Entities {
		if result.Entities[i].Type == t {
			return &result.Entities[i]
		}
	}
	return nil
}

// extractJSONEntities runs the five extraction classes: three fenced regex
// classes over the whole text, then bracket-balance scans over the text
// with fenced regions blanked so the same JSON is never captured twice.
func (p *ResponseParser) extractJSONEntities(response string, expectedType models.ContentType) []models.ParsedEntity {
	var entities []models.ParsedEntity
	seen := map[string]bool{}

	collect := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			return
		}
		seen[raw] = true
		for _, data := range decodeCandidates(raw) {
			normalized := normalizeKeys(data)
			t := expectedType
			if t == "" {
				t = inferTypeFromKeys(normalized)
			}
			if t == "" {
				continue
			}
			entities = append(entities, models.ParsedEntity{
				Type:       t,
				Confidence: jsonConfidence,
				Data:       normalized,
				RawText:    raw,
			})
		}
	}

	for _, re := range []*regexp.Regexp{fencedJSONRe, fencedObjectRe, fencedArrayRe} {
		for _, m := range re.FindAllStringSubmatch(response, -1) {
			collect(m[1])
		}
	}

	// Bare inline values: blank out fenced regions, then walk every
	// opening bracket and take the balanced span. RE2 cannot express
	// nesting, so this pass is a scan rather than a regex.
	bare := fencedRegionRe.ReplaceAllStringFunc(response, func(s string) string {
		return strings.Repeat(" ", len(s))
	})
	for offset := 0; offset < len(bare); {
		loc := inlineBracketRe.FindStringIndex(bare[offset:])
		if loc == nil {
			break
		}
		start := offset + loc[0]
		end := balancedEnd(bare[start:])
		if end == 0 {
			offset = start + 1
			continue
		}
		collect(bare[start : start+end])
		offset = start + end
	}

	return entities
}

// decodeCandidates parses raw JSON into candidate objects, expanding
// top-level arrays element-wise. Invalid JSON yields nothing; parse
// failures are silent at this layer.
func decodeCandidates(raw string) []models.ContentData {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil
	}
	switch v := value.(type) {
	case map[string]any:
		return []models.ContentData{models.ContentData(v)}
	case []any:
		var out []models.ContentData
		for _, el := range v {
			if obj, ok := el.(map[string]any); ok {
				out = append(out, models.ContentData(obj))
			}
		}
		return out
	default:
		return nil
	}
}

func normalizeKeys(data models.ContentData) models.ContentData {
	out := make(models.ContentData, len(data))
	for k, v := range data {
		canonical := k
		if syn, ok := keySynonyms[strings.ToLower(k)]; ok {
			canonical = syn
		}
		if _, exists := out[canonical]; !exists {
			out[canonical] = v
		}
	}
	return out
}

// inferTypeFromKeys applies the signal-key table, then the fallback
// cascade. Returns "" when nothing matches.
func inferTypeFromKeys(data models.ContentData) models.ContentType {
	for _, sig := range typeSignals {
		for _, k := range sig.keys {
			if _, ok := data[k]; ok {
				return sig.t
			}
		}
	}
	_, hasGender := data["gender"]
	_, hasRole := data["role"]
	if hasGender || hasRole {
		return models.ContentCharacter
	}
	_, hasGenre := data["genre"]
	_, hasEra := data["era"]
	if hasGenre && hasEra {
		return models.ContentWorld
	}
	_, hasTitle := data["title"]
	_, hasName := data["name"]
	if hasGenre && (hasTitle || hasName) {
		return models.ContentStory
	}
	return ""
}

// extractPatternEntity runs the full regex field set once over the text
// and scores the result with the pattern-confidence formula.
func (p *ResponseParser) extractPatternEntity(response string, expectedType models.ContentType, lang locale.Lang) *models.ParsedEntity {
	data := p.extractor.ExtractAll(response, lang)
	if len(data) == 0 {
		return nil
	}

	t := expectedType
	if t == "" {
		t = inferTypeFromAttributes(data)
	}
	if t == "" {
		return nil
	}

	return &models.ParsedEntity{
		Type:       t,
		Confidence: patternConfidence(t, data),
		Data:       data,
		RawText:    response,
	}
}

// inferTypeFromAttributes is the attribute-priority cascade for pattern
// hits; unlike the JSON table it keys off extracted text fields.
func inferTypeFromAttributes(data models.ContentData) models.ContentType {
	has := func(k string) bool { _, ok := data[k]; return ok }
	switch {
	case has("gender") || has("archetype") || has("role"):
		return models.ContentCharacter
	case has("rarity"):
		return models.ContentObject
	case has("era"):
		return models.ContentWorld
	case has("genre"):
		return models.ContentStory
	case has("type") && (has("name") || has("description")):
		return models.ContentLocation
	default:
		return ""
	}
}

// patternConfidence scores a pattern-extracted entity: a per-field base
// capped at 0.8, a name bonus, and a bonus for the type's canonical field
// combination, clamped to 1.
func patternConfidence(t models.ContentType, data models.ContentData) float64 {
	conf := float64(len(data)) * 0.2
	if conf > 0.8 {
		conf = 0.8
	}
	has := func(k string) bool { _, ok := data[k]; return ok }
	if has("name") {
		conf += 0.1
	}
	switch t {
	case models.ContentCharacter:
		if has("name") && has("role") {
			conf += 0.1
		}
	case models.ContentObject:
		if has("name") && has("type") && has("rarity") {
			conf += 0.1
		}
	case models.ContentWorld:
		if has("name") && has("era") {
			conf += 0.1
		}
	case models.ContentLocation:
		if has("name") && has("type") {
			conf += 0.1
		}
	case models.ContentStory:
		if has("name") && has("genre") {
			conf += 0.1
		}
	}
	return models.ClampConfidence(conf)
}

// mergeEntities folds the pattern entity into the first JSON entity of the
// same type: JSON values win on key conflicts, confidence takes the max.
// Without a JSON counterpart the pattern entity stands on its own.
func mergeEntities(jsonEntities []models.ParsedEntity, pattern *models.ParsedEntity) []models.ParsedEntity {
	if pattern == nil {
		return jsonEntities
	}
	for i := range jsonEntities {
		if jsonEntities[i].Type != pattern.Type {
			continue
		}
		merged := pattern.Data.Clone()
		for k, v := range jsonEntities[i].Data {
			merged[k] = v
		}
		jsonEntities[i].Data = merged
		if pattern.Confidence > jsonEntities[i].Confidence {
			jsonEntities[i].Confidence = pattern.Confidence
		}
		return jsonEntities
	}
	return append(jsonEntities, *pattern)
}

func distinctTypes(entities []models.ParsedEntity) []models.ContentType {
	seen := map[models.ContentType]bool{}
	var out []models.ContentType
	for _, e := range entities {
		if !seen[e.Type] {
			seen[e.Type] = true
			out = append(out, e.Type)
		}
	}
	return out
}
