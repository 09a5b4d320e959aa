// internal/generation/backends.go
package generation

import "context"

// Params is the flat parameter bag a backend receives. Defaults are
// applied by the caller before the call.
type Params map[string]any

// Result is what every backend returns on success.
type Result struct {
	URL      string         `json:"url"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ProgressFunc relays backend progress. percent is 0..100 within the
// current stage; message is backend-supplied and already human-readable.
type ProgressFunc func(percent float64, message string)

// ImageBackend produces still images. Implementations must honor ctx
// cancellation at their own await points.
type ImageBackend interface {
	GenerateImage(ctx context.Context, params Params, onProgress ProgressFunc) (*Result, error)
}

// AudioBackend produces narration or speech audio.
type AudioBackend interface {
	GenerateAudio(ctx context.Context, params Params, onProgress ProgressFunc) (*Result, error)
}

// VideoBackend produces video in two stages: a latent generation pass and
// an upscaling pass over its result.
type VideoBackend interface {
	GenerateLatent(ctx context.Context, params Params, onProgress ProgressFunc) (*Result, error)
	Upscale(ctx context.Context, latent *Result, params Params, onProgress ProgressFunc) (*Result, error)
}

// GetString reads a string parameter with a default.
func (p Params) GetString(key, def string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return def
}

// GetFloat reads a numeric parameter, accepting int and float64, with a
// default.
func (p Params) GetFloat(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}
