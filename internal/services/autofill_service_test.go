// internal/services/autofill_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/locale"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
)

// brokenEngine has no working LLM; every completion fails and the static
// fallbacks must carry the fill.
func brokenEngine() *AutoFillEngine {
	return NewAutoFillEngine(NewEmptyLLMService(nil), nil)
}

func TestFillNeverLeavesCharacterUnnamed(t *testing.T) {
	engine := brokenEngine()

	for i := 0; i < 10; i++ {
		filled := engine.Fill(context.Background(), models.ContentCharacter, models.ContentData{}, "", locale.English)
		name, _ := filled["name"].(string)
		require.NotEmpty(t, name)
	}
}

func TestFillNeverOverwritesExistingValues(t *testing.T) {
	engine := brokenEngine()

	filled := engine.Fill(context.Background(), models.ContentObject, models.ContentData{
		"name":        "Blade",
		"rarity":      "legendary",
		"description": "A known blade.",
	}, "cyberpunk", locale.English)

	assert.Equal(t, "Blade", filled["name"])
	assert.Equal(t, "legendary", filled["rarity"])
	assert.Equal(t, "A known blade.", filled["description"])
}

func TestFillObjectDefaults(t *testing.T) {
	engine := brokenEngine()

	filled := engine.Fill(context.Background(), models.ContentObject, models.ContentData{"name": "Blade"}, "cyberpunk", locale.English)

	assert.Equal(t, "artifact", filled["type"])
	assert.Equal(t, "uncommon", filled["rarity"])
	level, ok := filled["powerLevel"].(int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, level, 1)
	assert.LessOrEqual(t, level, 5)
}

func TestFillCharacterDefaults(t *testing.T) {
	engine := brokenEngine()

	filled := engine.Fill(context.Background(), models.ContentCharacter, models.ContentData{"name": "Kael"}, "", locale.English)

	assert.Equal(t, "supporting", filled["role"])
	assert.Contains(t, []any{"female", "male"}, filled["gender"])
}

func TestFillWorldDefaults(t *testing.T) {
	engine := brokenEngine()

	filled := engine.Fill(context.Background(), models.ContentWorld, models.ContentData{"name": "Eldoria"}, "", locale.English)
	assert.Equal(t, "medieval", filled["era"])
}

func TestFillDescriptionUsesWorldContext(t *testing.T) {
	engine := brokenEngine()

	filled := engine.Fill(context.Background(), models.ContentObject, models.ContentData{"name": "Blade"}, "cyberpunk", locale.English)
	desc, _ := filled["description"].(string)
	assert.Contains(t, desc, "cyberpunk")
}

func TestFillDoesNotMutateInput(t *testing.T) {
	engine := brokenEngine()

	partial := models.ContentData{"name": "Kael"}
	engine.Fill(context.Background(), models.ContentCharacter, partial, "", locale.English)
	assert.Equal(t, models.ContentData{"name": "Kael"}, partial)
}

func TestFillHandlesNilInput(t *testing.T) {
	engine := brokenEngine()

	filled := engine.Fill(context.Background(), models.ContentCharacter, nil, "", locale.French)
	name, _ := filled["name"].(string)
	assert.NotEmpty(t, name)
}
