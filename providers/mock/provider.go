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


package mock

import "github.com/poiesic/docpipe/providers"

// MockProvider is a test double for providers.Provider.
// It aggregates mock instances of every pipeline service.
type MockProvider struct {
	extractor *MockExtractor
	imager    *MockImager
	elements  *MockElementExtractor
	embedder  *MockEmbedder
	chunker   *MockChunker
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns providers.Provider interface for consistency with production
// constructors. Use the GetMock* accessors for test assertions.
func NewMockProvider() providers.Provider {
	return &MockProvider{
		extractor: NewMockExtractor(),
		imager:    NewMockImager(),
		elements:  NewMockElementExtractor(),
		embedder:  NewMockEmbedder(),
		chunker:   NewMockChunker(),
	}
}

// Extractor returns the mock extractor.
func (p *MockProvider) Extractor() providers.Extractor {
	return p.extractor
}

// Imager returns the mock imager.
func (p *MockProvider) Imager() providers.Imager {
	return p.imager
}

// ElementExtractor returns the mock ADE service.
func (p *MockProvider) ElementExtractor() providers.ElementExtractor {
	return p.elements
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() providers.Embedder {
	return p.embedder
}

// Chunker returns the mock chunker.
func (p *MockProvider) Chunker() providers.Chunker {
	return p.chunker
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockExtractor returns the underlying mock extractor for test assertions.
func (p *MockProvider) GetMockExtractor() *MockExtractor {
	return p.extractor
}

// GetMockImager returns the underlying mock imager for test assertions.
func (p *MockProvider) GetMockImager() *MockImager {
	return p.imager
}

// GetMockElementExtractor returns the underlying mock ADE service for test assertions.
func (p *MockProvider) GetMockElementExtractor() *MockElementExtractor {
	return p.elements
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockChunker returns the underlying mock chunker for test assertions.
func (p *MockProvider) GetMockChunker() *MockChunker {
	return p.chunker
}
