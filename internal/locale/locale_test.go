// internal/locale/locale_test.go
package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, English, Normalize("en"))
	assert.Equal(t, French, Normalize("fr"))
	assert.Equal(t, French, Normalize("FR"))
	assert.Equal(t, English, Normalize(""))
	assert.Equal(t, English, Normalize("de"))
	assert.Equal(t, English, Normalize("zz"))
}

func TestPick(t *testing.T) {
	assert.Equal(t, "hello", Pick(English, "hello", "bonjour"))
	assert.Equal(t, "bonjour", Pick(French, "hello", "bonjour"))
	assert.Equal(t, "hello", Pick(Lang("de"), "hello", "bonjour"))
}

func TestTFormatsBothLanguages(t *testing.T) {
	en := T(English, "created.object", "Blade")
	assert.Equal(t, `✅ Object "Blade" created successfully! It appears in the inventory.`, en)

	fr := T(French, "created.object", "Blade")
	assert.Contains(t, fr, "Blade")
	assert.NotEqual(t, en, fr)
}

func TestTFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, T(English, "creation.failed", "x"), T(Lang("de"), "creation.failed", "x"))
}

func TestTUnknownKeyReturnsKey(t *testing.T) {
	assert.Equal(t, "no.such.key", T(English, "no.such.key"))
}

func TestEveryCatalogEntryHasBothVariants(t *testing.T) {
	for key, e := range catalog {
		assert.NotEmpty(t, e.en, "missing english for %s", key)
		assert.NotEmpty(t, e.fr, "missing french for %s", key)
	}
}
