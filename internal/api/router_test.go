// internal/api/router_test.go
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/di"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/services"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	llm := services.NewEmptyLLMService(logger)
	extractor := services.NewEntityExtractor()
	parser := services.NewResponseParser(extractor, logger)
	autofill := services.NewAutoFillEngine(llm, logger)
	orchestrator := services.NewGenerationOrchestrator(llm, nil, nil, nil, logger)

	container := di.NewContainer()
	container.Register("llm", llm)
	container.Register("extractor", extractor)
	container.Register("detector", services.NewIntentDetector(extractor, logger))
	container.Register("parser", parser)
	container.Register("autofill", autofill)
	container.Register("orchestrator", orchestrator)
	container.Register("creator", services.NewContentCreator(autofill, parser, orchestrator, llm, logger))

	router, err := SetupRouter(container, logger, false)
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t)

	w, envelope := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := envelope["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, false, data["llm_ready"])
}

func TestDetectEndpoint(t *testing.T) {
	router := testRouter(t)

	w, envelope := doJSON(t, router, http.MethodPost, "/api/detect", map[string]any{
		"user_message": "create a character, a hero named Kael",
		"language":     "en",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := envelope["data"].(map[string]any)
	assert.Equal(t, true, data["detected"])
	detection := data["detection"].(map[string]any)
	assert.Equal(t, "character", detection["type"])
}

func TestDetectEndpointRequiresUserMessage(t *testing.T) {
	router := testRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/detect", map[string]any{"language": "en"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateContentSync(t *testing.T) {
	router := testRouter(t)

	w, envelope := doJSON(t, router, http.MethodPost, "/api/content", map[string]any{
		"type":          "object",
		"data":          map[string]any{"name": "Blade"},
		"world_context": "cyberpunk",
		"language":      "en",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := envelope["data"].(map[string]any)
	assert.Equal(t, true, data["success"])
	entity := data["entity"].(map[string]any)
	assert.Equal(t, "Blade", entity["name"])
	assert.Equal(t, "uncommon", entity["rarity"])
}

func TestCreateContentUnknownTypeStillResponds(t *testing.T) {
	router := testRouter(t)

	w, envelope := doJSON(t, router, http.MethodPost, "/api/content", map[string]any{
		"type": "starship",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := envelope["data"].(map[string]any)
	assert.Equal(t, false, data["success"])
}

func TestCreateFromResponseEndpoint(t *testing.T) {
	router := testRouter(t)

	w, envelope := doJSON(t, router, http.MethodPost, "/api/content/from-response", map[string]any{
		"response": "```json\n{\"name\":\"Eldoria\",\"era\":\"medieval\"}\n```",
		"type":     "world",
		"language": "en",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := envelope["data"].(map[string]any)
	entity := data["entity"].(map[string]any)
	assert.Equal(t, "Eldoria", entity["name"])
	assert.Equal(t, "medieval", entity["era"])
}

func TestParseEndpoint(t *testing.T) {
	router := testRouter(t)

	w, envelope := doJSON(t, router, http.MethodPost, "/api/parse", map[string]any{
		"response": "```json\n{\"name\":\"Aria\",\"gender\":\"female\"}\n```",
		"language": "en",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := envelope["data"].(map[string]any)
	entities := data["entities"].([]any)
	require.Len(t, entities, 1)
	entity := entities[0].(map[string]any)
	assert.Equal(t, "character", entity["type"])
	assert.Equal(t, 0.95, entity["confidence"])
}

func TestAsyncMediaCreationReturnsTask(t *testing.T) {
	router := testRouter(t)

	w, envelope := doJSON(t, router, http.MethodPost, "/api/content", map[string]any{
		"type":  "image",
		"data":  map[string]any{"prompt": "a neon skyline"},
		"async": true,
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	data := envelope["data"].(map[string]any)
	taskID, _ := data["task_id"].(string)
	require.NotEmpty(t, taskID)

	// with no backend configured the task finishes quickly with a
	// partial-success result
	deadline := time.Now().Add(2 * time.Second)
	for {
		w, envelope = doJSON(t, router, http.MethodGet, "/api/tasks/"+taskID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		status := envelope["data"].(map[string]any)
		if status["done"] == true {
			result := status["result"].(map[string]any)
			assert.Equal(t, true, result["success"])
			entity := result["entity"].(map[string]any)
			assert.NotEmpty(t, entity["error"])
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("async task never finished")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTaskStatusUnknownTask(t *testing.T) {
	router := testRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/tasks/unknown-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobsEndpoints(t *testing.T) {
	router := testRouter(t)

	w, envelope := doJSON(t, router, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := envelope["data"].(map[string]any)
	assert.Empty(t, data["jobs"])

	w, _ = doJSON(t, router, http.MethodDelete, "/api/jobs/no-such-job", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, router, http.MethodDelete, "/api/jobs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
