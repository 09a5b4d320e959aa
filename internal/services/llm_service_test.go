// internal/services/llm_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONResponseStripsFences(t *testing.T) {
	raw := "```json\n{\"name\":\"Aria\"}\n```"
	assert.Equal(t, `{"name":"Aria"}`, CleanJSONResponse(raw))
}

func TestCleanJSONResponseStripsProse(t *testing.T) {
	raw := `Sure, here is the JSON you asked for: {"name":"Aria","age":27} Hope that helps!`
	assert.Equal(t, `{"name":"Aria","age":27}`, CleanJSONResponse(raw))
}

func TestCleanJSONResponseHandlesNestedBraces(t *testing.T) {
	raw := `prefix {"a":{"b":"}"},"c":[1,2]} suffix`
	assert.Equal(t, `{"a":{"b":"}"},"c":[1,2]}`, CleanJSONResponse(raw))
}

func TestCleanJSONResponseArray(t *testing.T) {
	raw := "Here you go:\n[{\"x\":1},{\"x\":2}]\nDone."
	assert.Equal(t, `[{"x":1},{"x":2}]`, CleanJSONResponse(raw))
}

func TestCleanJSONResponsePassthrough(t *testing.T) {
	assert.Equal(t, `{"ok":true}`, CleanJSONResponse(`{"ok":true}`))
}

func TestEmptyLLMServiceFailsClosed(t *testing.T) {
	s := NewEmptyLLMService(nil)

	assert.False(t, s.IsReady())

	result, err := s.GenerateCompletion(context.Background(), CompletionParams{Prompt: "hi"})
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.ErrorIs(t, err, ErrLLMNotReady)

	var out map[string]any
	err = s.CompleteStructured(context.Background(), "hi", "", 100, 0.5, &out)
	assert.ErrorIs(t, err, ErrLLMNotReady)
}
