// internal/services/extractor_service.go
package services

import (
	"regexp"
	"strings"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/locale"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
)

// fieldRule is one entry of an ordered extraction table. The first rule
// that matches wins its field; later rules for the same field are not
// consulted.
type fieldRule struct {
	field     string
	lang      locale.Lang // zero value means the rule applies to any language
	pattern   *regexp.Regexp
	transform func(string) string
}

// EntityExtractor recovers structured fields from free text with ordered
// regex cascades, one table per language.
type EntityExtractor struct {
	rules []fieldRule
}

// NewEntityExtractor builds the extractor with its static rule tables.
func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{rules: buildFieldRules()}
}

var (
	// typeFields lists, in extraction order, which fields each content type
	// carries.
	typeFields = map[models.ContentType][]string{
		models.ContentCharacter: {"name", "gender", "role", "archetype", "age", "description"},
		models.ContentLocation:  {"name", "type", "atmosphere", "era", "description"},
		models.ContentObject:    {"name", "type", "rarity", "material", "usage", "description"},
		models.ContentDialogue:  {"name", "tone", "description"},
		models.ContentStory:     {"name", "genre", "era", "tone", "description"},
		models.ContentWorld:     {"name", "genre", "era", "description"},
		models.ContentScenario:  {"name", "genre", "tone", "description"},
		models.ContentImage:     {"prompt", "description", "name"},
		models.ContentAudio:     {"text", "description", "name"},
		models.ContentVideo:     {"prompt", "description", "name"},
	}

	// requiredFields drives missing-field computation. Order is preserved
	// in the reported list.
	requiredFields = map[models.ContentType][]string{
		models.ContentCharacter: {"name", "gender", "role"},
		models.ContentLocation:  {"name", "type"},
		models.ContentObject:    {"name", "rarity"},
		models.ContentDialogue:  {"participants"},
		models.ContentStory:     {"name", "genre"},
		models.ContentWorld:     {"name", "era"},
		models.ContentScenario:  {"name"},
		models.ContentImage:     {"prompt"},
		models.ContentAudio:     {"text"},
		models.ContentVideo:     {"prompt"},
	}
)

// patternFields is the union of extractable fields, used by the parser's
// pattern pass which runs type inference after extraction.
var patternFields = []string{
	"name", "gender", "role", "archetype", "age", "genre", "era",
	"rarity", "material", "usage", "type", "atmosphere", "tone", "description",
}

// Extract pulls the fields of one content type out of free text.
func (e *EntityExtractor) Extract(t models.ContentType, text string, lang locale.Lang) models.ContentData {
	fields, ok := typeFields[t]
	if !ok {
		return models.ContentData{}
	}
	return e.extractFields(fields, text, lang)
}

// ExtractAll runs every field rule once over the text, without a type
// constraint. The caller infers the type from the recovered attributes.
func (e *EntityExtractor) ExtractAll(text string, lang locale.Lang) models.ContentData {
	return e.extractFields(patternFields, text, lang)
}

// MissingFields subtracts present keys from the fixed required list of a
// type, preserving declaration order.
func (e *EntityExtractor) MissingFields(t models.ContentType, data models.ContentData) []string {
	required := requiredFields[t]
	missing := make([]string, 0, len(required))
	for _, f := range required {
		v, ok := data[f]
		if !ok {
			missing = append(missing, f)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (e *EntityExtractor) extractFields(fields []string, text string, lang locale.Lang) models.ContentData {
	data := models.ContentData{}
	for _, field := range fields {
		for _, rule := range e.orderedRules(field, lang) {
			m := rule.pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			value := strings.TrimSpace(m[len(m)-1])
			if rule.transform != nil {
				value = rule.transform(value)
			}
			if value == "" {
				continue
			}
			data[field] = value
			break
		}
	}
	return data
}

// orderedRules returns the rules for one field with the requested
// language's patterns first. Rules of the other language still run last so
// mixed-language replies degrade gracefully.
func (e *EntityExtractor) orderedRules(field string, lang locale.Lang) []fieldRule {
	var preferred, neutral, other []fieldRule
	for _, r := range e.rules {
		if r.field != field {
			continue
		}
		switch r.lang {
		case lang:
			preferred = append(preferred, r)
		case "":
			neutral = append(neutral, r)
		default:
			other = append(other, r)
		}
	}
	out := make([]fieldRule, 0, len(preferred)+len(neutral)+len(other))
	out = append(out, preferred...)
	out = append(out, neutral...)
	out = append(out, other...)
	return out
}

// Gender keyword families per language, normalized to four values.
var genderFamilies = map[string][]string{
	"female":     {"female", "woman", "girl", "femme", "fille", "féminin", "féminine"},
	"male":       {"male", "man", "boy", "homme", "garçon", "masculin"},
	"non-binary": {"non-binary", "nonbinary", "non binaire", "non-binaire"},
	"neutral":    {"neutral", "neutre", "genderless"},
}

// NormalizeGender maps a raw gender word onto {female, male, non-binary,
// neutral}. Unrecognized inputs become neutral.
func NormalizeGender(raw string) string {
	w := strings.ToLower(strings.TrimSpace(raw))
	for norm, words := range genderFamilies {
		for _, k := range words {
			if w == k {
				return norm
			}
		}
	}
	return "neutral"
}

var rarityNormal = map[string]string{
	"commun": "common", "commune": "common",
	"peu commun": "uncommon", "peu commune": "uncommon",
	"épique": "epic", "epique": "epic",
	"légendaire": "legendary", "legendaire": "legendary",
	"mythique": "mythic",
}

func normalizeRarity(raw string) string {
	w := strings.ToLower(strings.TrimSpace(raw))
	if n, ok := rarityNormal[w]; ok {
		return n
	}
	return w
}

var eraNormal = map[string]string{
	"médiéval": "medieval", "médiévale": "medieval", "medieval": "medieval",
	"antique": "ancient", "ancient": "ancient",
	"futuriste": "futuristic", "futuristic": "futuristic",
	"moderne": "modern", "modern": "modern",
	"victorien": "victorian", "victorienne": "victorian", "victorian": "victorian",
}

func normalizeEra(raw string) string {
	w := strings.ToLower(strings.TrimSpace(raw))
	if n, ok := eraNormal[w]; ok {
		return n
	}
	return w
}

func lowered(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// buildFieldRules assembles the ordered bilingual rule tables. Order inside
// one field and language matters: explicit "field: value" phrasing beats
// loose keyword hits.
func buildFieldRules() []fieldRule {
	return []fieldRule{
		// name
		{field: "name", lang: locale.English, pattern: regexp.MustCompile(`(?i)\bname\s*(?:is|:)\s*["']?([\p{L}][\p{L}' -]{1,60}?)["']?(?:[.,;\n]|$)`)},
		{field: "name", lang: locale.English, pattern: regexp.MustCompile(`(?i)\b(?:called|named)\s+["']?([\p{L}][\p{L}' -]{1,60}?)["']?(?:[.,;\n]|$)`)},
		{field: "name", lang: locale.French, pattern: regexp.MustCompile(`(?i)\b(?:s'appelle|se nomme)\s+["']?([\p{L}][\p{L}' -]{1,60}?)["']?(?:[.,;\n]|$)`)},
		{field: "name", lang: locale.French, pattern: regexp.MustCompile(`(?i)\bnom\s*:\s*["']?([\p{L}][\p{L}' -]{1,60}?)["']?(?:[.,;\n]|$)`)},

		// gender
		{field: "gender", pattern: regexp.MustCompile(`(?i)\b(female|male|non-?binary|woman|man|girl|boy|femme|homme|fille|garçon|féminin|féminine|masculin|neutre|neutral)\b`), transform: NormalizeGender},

		// role
		{field: "role", lang: locale.English, pattern: regexp.MustCompile(`(?i)\brole\s*(?:is|:)\s*["']?([\p{L} -]{2,40}?)["']?(?:[.,;\n]|$)`), transform: lowered},
		{field: "role", lang: locale.French, pattern: regexp.MustCompile(`(?i)\brôle\s*:?\s*["']?([\p{L} -]{2,40}?)["']?(?:[.,;\n]|$)`), transform: lowered},
		{field: "role", pattern: regexp.MustCompile(`(?i)\b(protagonist|antagonist|mentor|villain|hero|ally|sidekick|héros|héroïne|méchant|méchante|allié|alliée|mentor)\b`), transform: lowered},

		// archetype
		{field: "archetype", lang: locale.English, pattern: regexp.MustCompile(`(?i)\barchetype\s*(?:is|:)\s*["']?([\p{L} -]{2,40}?)["']?(?:[.,;\n]|$)`), transform: lowered},
		{field: "archetype", lang: locale.French, pattern: regexp.MustCompile(`(?i)\barchétype\s*:?\s*["']?([\p{L} -]{2,40}?)["']?(?:[.,;\n]|$)`), transform: lowered},
		{field: "archetype", pattern: regexp.MustCompile(`(?i)\b(warrior|mage|rogue|healer|bard|paladin|ranger|guerrier|guerrière|magicien|magicienne|voleur|voleuse|soigneur|soigneuse|barde)\b`), transform: lowered},

		// age
		{field: "age", lang: locale.English, pattern: regexp.MustCompile(`(?i)\b(\d{1,4})\s*years?\s*old\b`)},
		{field: "age", lang: locale.French, pattern: regexp.MustCompile(`(?i)\b(\d{1,4})\s*ans\b`)},
		{field: "age", pattern: regexp.MustCompile(`(?i)\b(?:age|âge)\s*:?\s*(\d{1,4})\b`)},

		// genre
		{field: "genre", pattern: regexp.MustCompile(`(?i)\b(fantasy|science[- ]fiction|sci-fi|horror|mystery|romance|cyberpunk|steampunk|western|noir|fantastique|horreur|mystère|policier)\b`), transform: lowered},

		// era
		{field: "era", pattern: regexp.MustCompile(`(?i)\b(medieval|ancient|futuristic|modern|victorian|médiéval(?:e)?|antique|futuriste|moderne|victorien(?:ne)?)\b`), transform: normalizeEra},

		// rarity
		{field: "rarity", pattern: regexp.MustCompile(`(?i)\b(common|uncommon|rare|epic|legendary|mythic|commun(?:e)?|peu commun(?:e)?|épique|légendaire|mythique)\b`), transform: normalizeRarity},

		// material
		{field: "material", lang: locale.English, pattern: regexp.MustCompile(`(?i)\bmade\s+of\s+([\p{L} ]{2,30}?)(?:[.,;\n]|$)`), transform: lowered},
		{field: "material", lang: locale.French, pattern: regexp.MustCompile(`(?i)\b(?:fait|faite|forgé|forgée)\s+(?:en|de)\s+([\p{L} ]{2,30}?)(?:[.,;\n]|$)`), transform: lowered},
		{field: "material", pattern: regexp.MustCompile(`(?i)\b(?:material|matériau)\s*:?\s*([\p{L} ]{2,30}?)(?:[.,;\n]|$)`), transform: lowered},

		// usage
		{field: "usage", lang: locale.English, pattern: regexp.MustCompile(`(?i)\bused\s+(?:for|to)\s+([\p{L} ]{2,60}?)(?:[.,;\n]|$)`), transform: lowered},
		{field: "usage", lang: locale.French, pattern: regexp.MustCompile(`(?i)\b(?:utilisé|utilisée|sert)\s+(?:pour|à)\s+([\p{L} ]{2,60}?)(?:[.,;\n]|$)`), transform: lowered},
		{field: "usage", pattern: regexp.MustCompile(`(?i)\busage\s*:?\s*([\p{L} ]{2,60}?)(?:[.,;\n]|$)`), transform: lowered},

		// type (locations, objects)
		{field: "type", pattern: regexp.MustCompile(`(?i)\btype\s*(?:is|:)\s*["']?([\p{L} -]{2,30}?)["']?(?:[.,;\n]|$)`), transform: lowered},
		{field: "type", pattern: regexp.MustCompile(`(?i)\b(tavern|castle|forest|dungeon|city|village|temple|ruins|taverne|château|forêt|donjon|ville|village|temple|ruines)\b`), transform: lowered},

		// atmosphere
		{field: "atmosphere", lang: locale.English, pattern: regexp.MustCompile(`(?i)\batmosphere\s*(?:is|:)\s*["']?([\p{L} ,-]{2,60}?)["']?(?:[.;\n]|$)`), transform: lowered},
		{field: "atmosphere", lang: locale.French, pattern: regexp.MustCompile(`(?i)\b(?:ambiance|atmosphère)\s*:?\s*["']?([\p{L} ,-]{2,60}?)["']?(?:[.;\n]|$)`), transform: lowered},

		// tone
		{field: "tone", lang: locale.English, pattern: regexp.MustCompile(`(?i)\btone\s*(?:is|:)\s*["']?([\p{L} ,-]{2,40}?)["']?(?:[.;\n]|$)`), transform: lowered},
		{field: "tone", lang: locale.French, pattern: regexp.MustCompile(`(?i)\bton\s*:\s*["']?([\p{L} ,-]{2,40}?)["']?(?:[.;\n]|$)`), transform: lowered},

		// description (loose: an explicit labelled description only)
		{field: "description", lang: locale.English, pattern: regexp.MustCompile(`(?i)\bdescription\s*:\s*["']?(.{10,300}?)["']?(?:\n|$)`)},
		{field: "description", lang: locale.French, pattern: regexp.MustCompile(`(?i)\bdescription\s*:\s*["']?(.{10,300}?)["']?(?:\n|$)`)},

		// prompt / text for media types
		{field: "prompt", pattern: regexp.MustCompile(`(?i)\bprompt\s*:\s*["']?(.{4,300}?)["']?(?:\n|$)`)},
		{field: "text", lang: locale.English, pattern: regexp.MustCompile(`(?i)\btext\s*:\s*["']?(.{4,500}?)["']?(?:\n|$)`)},
		{field: "text", lang: locale.French, pattern: regexp.MustCompile(`(?i)\btexte\s*:\s*["']?(.{4,500}?)["']?(?:\n|$)`)},
	}
}
