// internal/config/config.go
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup. Values come from the
// environment, optionally preloaded from a .env file.
type Config struct {
	Port      string `env:"PORT" env-default:"8080"`
	DebugMode bool   `env:"DEBUG_MODE" env-default:"false"`

	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
	LogEncoding string `env:"LOG_ENCODING" env-default:"json"`

	// LLM provider settings.
	LLMProvider string `env:"LLM_PROVIDER" env-default:"openai"`
	LLMAPIKey   string `env:"LLM_API_KEY"`
	LLMModel    string `env:"LLM_MODEL"`
	LLMBaseURL  string `env:"LLM_BASE_URL"`

	// Generation backend endpoints. Empty values leave the corresponding
	// media type without a backend; media creations then carry an error
	// field instead of an asset.
	ImageBackendURL string `env:"IMAGE_BACKEND_URL"`
	AudioBackendURL string `env:"AUDIO_BACKEND_URL"`
	VideoBackendURL string `env:"VIDEO_BACKEND_URL"`
}

// Load reads the configuration from the environment. A missing .env file is
// not an error.
func Load() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment config: %w", err)
	}
	return &cfg, nil
}

// LLMConfig renders the provider settings as the flat map the provider
// registry consumes.
func (c *Config) LLMConfig() map[string]string {
	m := map[string]string{
		"api_key": c.LLMAPIKey,
	}
	if c.LLMModel != "" {
		m["default_model"] = c.LLMModel
	}
	if c.LLMBaseURL != "" {
		m["base_url"] = c.LLMBaseURL
	}
	return m
}
