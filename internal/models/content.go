// internal/models/content.go
package models

import "time"

// ContentType enumerates the kinds of entities the creation pipeline can
// produce from conversational input.
type ContentType string

const (
	ContentCharacter ContentType = "character"
	ContentLocation  ContentType = "location"
	ContentObject    ContentType = "object"
	ContentDialogue  ContentType = "dialogue"
	ContentStory     ContentType = "story"
	ContentWorld     ContentType = "world"
	ContentScenario  ContentType = "scenario"
	ContentImage     ContentType = "image"
	ContentAudio     ContentType = "audio"
	ContentVideo     ContentType = "video"
)

// AllContentTypes lists every content type in declaration order. Intent
// detection resolves confidence ties by this order, so it must stay stable.
var AllContentTypes = []ContentType{
	ContentCharacter,
	ContentLocation,
	ContentObject,
	ContentDialogue,
	ContentStory,
	ContentWorld,
	ContentScenario,
	ContentImage,
	ContentAudio,
	ContentVideo,
}

// ParseContentType maps a string onto a known content type.
func ParseContentType(s string) (ContentType, bool) {
	for _, t := range AllContentTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsMedia reports whether the type requires an asynchronous generation job.
func (t ContentType) IsMedia() bool {
	return t == ContentImage || t == ContentAudio || t == ContentVideo
}

// Nameable reports whether entities of this type carry a name that auto-fill
// must never leave empty.
func (t ContentType) Nameable() bool {
	switch t {
	case ContentCharacter, ContentLocation, ContentObject, ContentWorld, ContentStory, ContentScenario:
		return true
	}
	return false
}

// ContentData is the loosely keyed field bag exchanged between the parser,
// the auto-fill engine and the assembler. Keys are normalized English field
// names regardless of the input language.
type ContentData map[string]any

// Clone returns a shallow copy so concurrent creations never share a bag.
func (d ContentData) Clone() ContentData {
	out := make(ContentData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// DetectionResult is the outcome of one chat-level intent detection call.
type DetectionResult struct {
	Type            ContentType `json:"type"`
	Confidence      float64     `json:"confidence"`
	ExtractedData   ContentData `json:"extracted_data"`
	MissingFields   []string    `json:"missing_fields"`
	SuggestedAction string      `json:"suggested_action"`
}

// ParsedEntity is one typed entity recovered from an assistant response,
// consumed immediately by the assembler.
type ParsedEntity struct {
	Type       ContentType `json:"type"`
	Confidence float64     `json:"confidence"`
	Data       ContentData `json:"data"`
	RawText    string      `json:"raw_text,omitempty"`
}

// ParseResult aggregates everything one parse pass recovered.
type ParseResult struct {
	Entities          []ParsedEntity `json:"entities"`
	DetectedTypes     []ContentType  `json:"detected_types"`
	HasStructuredData bool           `json:"has_structured_data"`
	RawResponse       string         `json:"raw_response"`
}

// CreationResult is returned to the caller for every creation attempt,
// including internal failures. Success with a populated Error on the entity
// is the partial-success contract for media types.
type CreationResult struct {
	Success bool        `json:"success"`
	Type    ContentType `json:"type"`
	Entity  ContentData `json:"entity"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// GenerationProgress is emitted zero or more times per generation job.
type GenerationProgress struct {
	Stage                  string  `json:"stage"`
	StageProgress          float64 `json:"stage_progress"`   // 0..100 within the stage
	OverallProgress        float64 `json:"overall_progress"` // 0..100 across the job
	EstimatedTimeRemaining float64 `json:"estimated_time_remaining"` // seconds
	Message                string  `json:"message"`
	Cancellable            bool    `json:"cancellable"`
}

// GeneratedAsset describes one finished media artifact.
type GeneratedAsset struct {
	ID            string         `json:"id"`
	Type          ContentType    `json:"type"`
	URL           string         `json:"url"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	RelatedAssets []string       `json:"related_assets,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// ClampConfidence keeps heuristic scores inside [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
