// internal/generation/http.go
package generation

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// progressEvent is one line of the backend's NDJSON progress stream. The
// final event carries done=true and the asset URL.
type progressEvent struct {
	Progress float64        `json:"progress"`
	Message  string         `json:"message"`
	Done     bool           `json:"done"`
	URL      string         `json:"url"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// httpClient streams generation requests against an HTTP backend that
// reports progress as newline-delimited JSON events.
type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string) httpClient {
	return httpClient{
		baseURL: baseURL,
		// No overall timeout: generation runs long and cancellation
		// comes through the request context.
		client: &http.Client{Timeout: 0},
	}
}

// stream POSTs params to path and relays every progress event until the
// terminal one. Context cancellation aborts the request mid-stream.
func (c httpClient) stream(ctx context.Context, path string, params Params, onProgress ProgressFunc) (*Result, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode generation params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation backend returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev progressEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if ev.Error != "" {
			return nil, fmt.Errorf("generation backend: %s", ev.Error)
		}
		if onProgress != nil {
			onProgress(ev.Progress, ev.Message)
		}
		if ev.Done {
			if ev.Metadata == nil {
				ev.Metadata = map[string]any{}
			}
			ev.Metadata["completed_at"] = time.Now().UTC().Format(time.RFC3339)
			return &Result{URL: ev.URL, Metadata: ev.Metadata}, nil
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read generation stream: %w", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("generation stream ended without a terminal event")
}

// HTTPImageBackend drives a diffusion service over HTTP.
type HTTPImageBackend struct {
	httpClient
}

func NewHTTPImageBackend(baseURL string) *HTTPImageBackend {
	return &HTTPImageBackend{newHTTPClient(baseURL)}
}

func (b *HTTPImageBackend) GenerateImage(ctx context.Context, params Params, onProgress ProgressFunc) (*Result, error) {
	return b.stream(ctx, "/v1/images/generate", params, onProgress)
}

// HTTPAudioBackend drives a text-to-speech service over HTTP.
type HTTPAudioBackend struct {
	httpClient
}

func NewHTTPAudioBackend(baseURL string) *HTTPAudioBackend {
	return &HTTPAudioBackend{newHTTPClient(baseURL)}
}

func (b *HTTPAudioBackend) GenerateAudio(ctx context.Context, params Params, onProgress ProgressFunc) (*Result, error) {
	return b.stream(ctx, "/v1/audio/generate", params, onProgress)
}

// HTTPVideoBackend drives a two-stage video service: latent generation
// followed by upscaling of the latent result.
type HTTPVideoBackend struct {
	httpClient
}

func NewHTTPVideoBackend(baseURL string) *HTTPVideoBackend {
	return &HTTPVideoBackend{newHTTPClient(baseURL)}
}

func (b *HTTPVideoBackend) GenerateLatent(ctx context.Context, params Params, onProgress ProgressFunc) (*Result, error) {
	return b.stream(ctx, "/v1/videos/latent", params, onProgress)
}

func (b *HTTPVideoBackend) Upscale(ctx context.Context, latent *Result, params Params, onProgress ProgressFunc) (*Result, error) {
	upscale := Params{}
	for k, v := range params {
		upscale[k] = v
	}
	if latent != nil {
		upscale["source_url"] = latent.URL
	}
	return b.stream(ctx, "/v1/videos/upscale", upscale, onProgress)
}
