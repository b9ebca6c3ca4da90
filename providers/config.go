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


package providers

import (
	"errors"
	"strings"
)

// Config holds configuration for the pipeline's external service
// providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// ADEHost is the base URL for the advanced document extraction service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	ADEHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// ADEModel is the model identifier to use for element extraction.
	// Example: "qwen2.5vl:7b", "gpt-4o-mini"
	ADEModel string

	// MinConfidence is the minimum confidence score (0.0-1.0) for
	// extracted elements. Elements below this threshold are filtered out.
	// Default: 0.5
	MinConfidence float64

	// ChunkSize is the target chunk size in characters for text splitting.
	// Default: 1000
	ChunkSize int

	// ChunkOverlap is the number of characters adjacent chunks share.
	// Default: 200
	ChunkOverlap int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithADEHost sets the element extraction service host URL.
func WithADEHost(host string) ConfigOption {
	return func(c *Config) {
		c.ADEHost = host
	}
}

// WithHost sets both embedding and ADE hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ADEHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithADEModel sets the element extraction model identifier.
func WithADEModel(model string) ConfigOption {
	return func(c *Config) {
		c.ADEModel = model
	}
}

// WithMinConfidence sets the minimum confidence threshold for element extraction.
func WithMinConfidence(min float64) ConfigOption {
	return func(c *Config) {
		c.MinConfidence = min
	}
}

// WithChunking sets the chunk size and overlap for text splitting.
func WithChunking(size, overlap int) ConfigOption {
	return func(c *Config) {
		c.ChunkSize = size
		c.ChunkOverlap = overlap
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and ADE use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		ADEHost:        defaultHost,
		EmbeddingModel: "embeddinggemma",
		ADEModel:       "qwen2.5vl:7b",
		MinConfidence:  0.5,
		ChunkSize:      1000,
		ChunkOverlap:   200,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithEmbeddingModel("text-embedding-3-small"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.ADEHost != "" && !strings.HasSuffix(c.ADEHost, "/v1") {
		c.ADEHost = strings.TrimSuffix(c.ADEHost, "/")
		c.ADEHost = c.ADEHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("providers config: EmbeddingHost is required")
	}
	if c.ADEHost == "" {
		return errors.New("providers config: ADEHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("providers config: EmbeddingModel is required")
	}
	if c.ADEModel == "" {
		return errors.New("providers config: ADEModel is required")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errors.New("providers config: MinConfidence must be between 0.0 and 1.0")
	}
	if c.ChunkSize < 1 {
		return errors.New("providers config: ChunkSize must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return errors.New("providers config: ChunkOverlap must be non-negative and smaller than ChunkSize")
	}
	return nil
}
