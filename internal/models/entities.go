// internal/models/entities.go
package models

import "encoding/json"

// Strongly typed payloads, one per content type. The assembler narrows the
// parsed field bag into exactly one of these before rendering the final
// CreationResult entity.

// Character is a person or creature the player can interact with.
type Character struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Gender      string   `json:"gender"`
	Role        string   `json:"role"`
	Archetype   string   `json:"archetype,omitempty"`
	Age         string   `json:"age,omitempty"`
	Personality string   `json:"personality,omitempty"`
	Backstory   string   `json:"backstory,omitempty"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url,omitempty"`
	Knowledge   []string `json:"knowledge,omitempty"`
}

// Location is a place entities and scenes can reference.
type Location struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Description      string   `json:"description"`
	Atmosphere       string   `json:"atmosphere,omitempty"`
	Era              string   `json:"era,omitempty"`
	PointsOfInterest []string `json:"points_of_interest,omitempty"`
	ImageURL         string   `json:"image_url,omitempty"`
}

// Object is an item, artifact or prop.
type Object struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Rarity      string   `json:"rarity"`
	PowerLevel  int      `json:"powerLevel"`
	Material    string   `json:"material,omitempty"`
	Usage       string   `json:"usage,omitempty"`
	Description string   `json:"description"`
	Abilities   []string `json:"abilities,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// DialogueLine is one exchange inside a generated dialogue.
type DialogueLine struct {
	Character string `json:"character"`
	Text      string `json:"text"`
	Emotion   string `json:"emotion"`
}

// Dialogue is a short scripted conversation between characters.
type Dialogue struct {
	ID           string         `json:"id"`
	Participants []string       `json:"participants"`
	Lines        []DialogueLine `json:"lines"`
	Tone         string         `json:"tone,omitempty"`
	Description  string         `json:"description,omitempty"`
}

// Story is a narrative arc referencing characters and locations.
type Story struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Genre      []string `json:"genre"`
	Tone       []string `json:"tone,omitempty"`
	Era        string   `json:"era,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	PlotPoints []string `json:"plot_points,omitempty"`
	Characters []string `json:"characters"`
	Locations  []string `json:"locations"`
}

// World is a setting with its own rules and cultures.
type World struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Genre       []string `json:"genre"`
	Era         string   `json:"era"`
	Cultures    []string `json:"cultures,omitempty"`
	WorldRules  []string `json:"worldRules,omitempty"`
	Description string   `json:"description"`
}

// Scenario is a playable situation inside a world.
type Scenario struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Genre       []string `json:"genre"`
	Tone        []string `json:"tone,omitempty"`
	Hooks       []string `json:"hooks,omitempty"`
	Objectives  []string `json:"objectives,omitempty"`
	Description string   `json:"description"`
	Characters  []string `json:"characters"`
	Locations   []string `json:"locations"`
}

// ImageContent carries the resolved generation parameters plus the produced
// asset. Error is populated instead of failing the whole creation when the
// prompt cannot be derived or the backend rejects the job.
type ImageContent struct {
	ID      string          `json:"id"`
	Prompt  string          `json:"prompt"`
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	Steps   int             `json:"steps"`
	Seed    int64           `json:"seed"`
	Sampler string          `json:"sampler"`
	Asset   *GeneratedAsset `json:"asset,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// AudioContent is a narrated or spoken audio request plus its asset.
type AudioContent struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	VoiceType string          `json:"voice_type"`
	Emotion   string          `json:"emotion"`
	Speed     float64         `json:"speed"`
	Asset     *GeneratedAsset `json:"asset,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// VideoContent is a two-stage (latent + upscale) video request plus its asset.
type VideoContent struct {
	ID         string          `json:"id"`
	Prompt     string          `json:"prompt"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	FrameCount int             `json:"frame_count"`
	Steps      int             `json:"steps"`
	Seed       int64           `json:"seed"`
	Asset      *GeneratedAsset `json:"asset,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// EntityMap renders a typed payload back into the ContentData shape carried
// by CreationResult. The JSON round trip keeps field naming consistent with
// the wire format.
func EntityMap(v any) ContentData {
	raw, err := json.Marshal(v)
	if err != nil {
		return ContentData{}
	}
	var out ContentData
	if err := json.Unmarshal(raw, &out); err != nil {
		return ContentData{}
	}
	return out
}
