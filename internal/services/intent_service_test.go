// internal/services/intent_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/locale"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
)

func newDetector() *IntentDetector {
	return NewIntentDetector(NewEntityExtractor(), nil)
}

func TestDetectCharacterIntent(t *testing.T) {
	d := newDetector()

	result := d.Detect(
		"Please create a character for my campaign",
		"Here is a brave protagonist, a hero named Kael.",
		locale.English)

	require.NotNil(t, result)
	assert.Equal(t, models.ContentCharacter, result.Type)
	assert.GreaterOrEqual(t, result.Confidence, 0.3)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.NotEmpty(t, result.SuggestedAction)
}

func TestDetectWorksWithoutCreationVerb(t *testing.T) {
	d := newDetector()

	// keyword density alone carries the intent; no imperative needed
	result := d.Detect(
		"the hero fights the villain, what a character",
		"", locale.English)
	require.NotNil(t, result)
	assert.Equal(t, models.ContentCharacter, result.Type)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
}

func TestDetectCountsRepeatedKeywordOccurrences(t *testing.T) {
	d := newDetector()

	result := d.Detect(
		"create a character; the character is a character",
		"", locale.English)
	require.NotNil(t, result)
	assert.Equal(t, models.ContentCharacter, result.Type)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
}

func TestDetectScoresRequestedLanguageOnly(t *testing.T) {
	d := newDetector()

	// "dialogue" sits in both vocabularies but must count once
	result := d.Detect("create a dialogue", "", locale.English)
	require.NotNil(t, result)
	assert.Equal(t, models.ContentDialogue, result.Type)
	assert.InDelta(t, 1.0/3.0, result.Confidence, 1e-9)
}

func TestDetectReturnsNilWithoutKeywords(t *testing.T) {
	d := newDetector()

	result := d.Detect("Please create something nice", "", locale.English)
	assert.Nil(t, result)
}

func TestDetectFrenchKeywords(t *testing.T) {
	d := newDetector()

	result := d.Detect(
		"Crée un personnage, un héros pour mon histoire",
		"", locale.French)

	require.NotNil(t, result)
	assert.Equal(t, models.ContentCharacter, result.Type)
}

func TestDetectConfidenceScalesWithKeywordCount(t *testing.T) {
	d := newDetector()

	one := d.Detect("create a tavern", "", locale.English)
	require.NotNil(t, one)
	assert.Equal(t, models.ContentLocation, one.Type)
	assert.InDelta(t, 1.0/3.0, one.Confidence, 1e-9)

	three := d.Detect("create a tavern location in the city", "", locale.English)
	require.NotNil(t, three)
	assert.InDelta(t, 1.0, three.Confidence, 1e-9)
}

func TestDetectIsDeterministic(t *testing.T) {
	d := newDetector()

	user := "generate an artifact, a legendary sword"
	first := d.Detect(user, "", locale.English)
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		next := d.Detect(user, "", locale.English)
		require.NotNil(t, next)
		assert.Equal(t, first.Type, next.Type)
		assert.Equal(t, first.Confidence, next.Confidence)
	}
}

func TestDetectTieBreaksByDeclarationOrder(t *testing.T) {
	d := newDetector()

	// one keyword each for character (declared first) and object
	result := d.Detect("create a hero with an amulet", "", locale.English)
	require.NotNil(t, result)
	assert.Equal(t, models.ContentCharacter, result.Type)
}

func TestDetectFillsExtractedDataAndMissingFields(t *testing.T) {
	d := newDetector()

	result := d.Detect(
		"Create a character named Mira, a female healer",
		"", locale.English)

	require.NotNil(t, result)
	assert.Equal(t, "Mira", result.ExtractedData["name"])
	assert.Equal(t, "female", result.ExtractedData["gender"])
	assert.Contains(t, result.MissingFields, "role")
}
