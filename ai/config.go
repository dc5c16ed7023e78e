// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.



package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Supported embedding backends.
const (
	// BackendLangchain talks to an OpenAI-compatible API through langchaingo.
	BackendLangchain = "langchaingo"
	// BackendGoOpenAI talks to an OpenAI-compatible API through go-openai.
	BackendGoOpenAI = "go-openai"
)

// Config holds configuration for the embedding service.
type Config struct {
	// Backend selects the client library used to reach the embedding API.
	// Default: "langchaingo"
	Backend string

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// The model determines the vector dimensionality of a collection.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// APIKey is passed through as the bearer token. Local servers accept any value.
	APIKey string

	// Dimensions optionally asks the model for vectors of this length.
	// Zero leaves the choice to the model.
	Dimensions int

	// Timeout bounds a single embedding call. Zero disables the per-call timeout.
	// Default: 30s
	Timeout time.Duration

	// MaxAttempts is the total number of attempts for transient failures.
	// Default: 3
	MaxAttempts int

	// RetryDelay is the base delay for exponential backoff.
	// Default: 1s
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff delay. Zero means uncapped.
	// Default: 30s
	MaxRetryDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend sets the embedding client backend.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAPIKey sets the API key sent to the embedding service.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithDimensions requests vectors of a specific length.
func WithDimensions(dims int) ConfigOption {
	return func(c *Config) {
		c.Dimensions = dims
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithRetry sets the attempt budget and base backoff delay.
func WithRetry(maxAttempts int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = maxAttempts
		c.RetryDelay = delay
	}
}

// WithMaxRetryDelay caps the backoff delay.
func WithMaxRetryDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxRetryDelay = delay
	}
}

// DefaultConfig returns a Config with sensible defaults for a local OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendLangchain,
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "embeddinggemma",
		Timeout:        30 * time.Second,
		MaxAttempts:    3,
		RetryDelay:     time.Second,
		MaxRetryDelay:  30 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("https://api.openai.com/v1"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	    WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to the host if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.Backend == "" {
		c.Backend = BackendLangchain
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Backend != BackendLangchain && c.Backend != BackendGoOpenAI {
		return fmt.Errorf("ai config: unknown Backend %q", c.Backend)
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.Dimensions < 0 {
		return errors.New("ai config: Dimensions cannot be negative")
	}
	if c.Timeout < 0 {
		return errors.New("ai config: Timeout cannot be negative")
	}
	if c.MaxAttempts < 1 {
		return errors.New("ai config: MaxAttempts must be at least 1")
	}
	if c.RetryDelay < 0 || c.MaxRetryDelay < 0 {
		return errors.New("ai config: retry delays cannot be negative")
	}
	return nil
}

// RetryPolicy derives the retry policy for embedding calls.
func (c *Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.MaxAttempts,
		BaseDelay:   c.RetryDelay,
		MaxDelay:    c.MaxRetryDelay,
		Timeout:     c.Timeout,
	}
}
