// internal/generation/http_test.go
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ndjsonHandler(t *testing.T, events []progressEvent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))

		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher := w.(http.Flusher)
		enc := json.NewEncoder(w)
		for _, ev := range events {
			require.NoError(t, enc.Encode(ev))
			flusher.Flush()
		}
	}
}

func TestImageBackendStreamsProgress(t *testing.T) {
	srv := httptest.NewServer(ndjsonHandler(t, []progressEvent{
		{Progress: 25, Message: "sampling"},
		{Progress: 75, Message: "sampling"},
		{Progress: 100, Message: "done", Done: true, URL: "http://assets/img.png"},
	}))
	defer srv.Close()

	backend := NewHTTPImageBackend(srv.URL)

	var seen []float64
	result, err := backend.GenerateImage(context.Background(), Params{"prompt": "x"},
		func(p float64, msg string) { seen = append(seen, p) })

	require.NoError(t, err)
	assert.Equal(t, "http://assets/img.png", result.URL)
	assert.Equal(t, []float64{25, 75, 100}, seen)
	assert.Contains(t, result.Metadata, "completed_at")
}

func TestBackendReportsStreamError(t *testing.T) {
	srv := httptest.NewServer(ndjsonHandler(t, []progressEvent{
		{Progress: 10, Message: "starting"},
		{Error: "out of memory"},
	}))
	defer srv.Close()

	backend := NewHTTPAudioBackend(srv.URL)
	result, err := backend.GenerateAudio(context.Background(), Params{"text": "x"}, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestBackendRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	backend := NewHTTPImageBackend(srv.URL)
	_, err := backend.GenerateImage(context.Background(), Params{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestBackendStreamWithoutTerminalEvent(t *testing.T) {
	srv := httptest.NewServer(ndjsonHandler(t, []progressEvent{
		{Progress: 10, Message: "starting"},
	}))
	defer srv.Close()

	backend := NewHTTPImageBackend(srv.URL)
	_, err := backend.GenerateImage(context.Background(), Params{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal event")
}

func TestBackendHonorsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"progress":5,"message":"starting"}`)
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	backend := NewHTTPVideoBackend(srv.URL)

	done := make(chan error, 1)
	go func() {
		_, err := backend.GenerateLatent(ctx, Params{"prompt": "x"}, nil)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation was not honored")
	}
}

func TestVideoUpscaleCarriesSourceURL(t *testing.T) {
	var gotParams map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotParams)
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"progress":100,"done":true,"url":"http://assets/video.mp4"}`)
	}))
	defer srv.Close()

	backend := NewHTTPVideoBackend(srv.URL)
	latent := &Result{URL: "http://assets/latent.bin"}
	result, err := backend.Upscale(context.Background(), latent, Params{"steps": 10}, nil)

	require.NoError(t, err)
	assert.Equal(t, "http://assets/video.mp4", result.URL)
	assert.Equal(t, "http://assets/latent.bin", gotParams["source_url"])
	assert.EqualValues(t, 10, gotParams["steps"])
}

func TestParamsAccessors(t *testing.T) {
	p := Params{"s": "v", "f": 1.5, "i": 3, "empty": ""}
	assert.Equal(t, "v", p.GetString("s", "d"))
	assert.Equal(t, "d", p.GetString("empty", "d"))
	assert.Equal(t, "d", p.GetString("missing", "d"))
	assert.Equal(t, 1.5, p.GetFloat("f", 0))
	assert.Equal(t, 3.0, p.GetFloat("i", 0))
	assert.Equal(t, 9.0, p.GetFloat("missing", 9))
}
