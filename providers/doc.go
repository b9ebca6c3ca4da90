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


// Package providers defines abstractions for the external services the
// document pipeline depends on.
//
// The pipeline stages never talk to a PDF parser, a rendering tool, or
// an AI model directly; they depend on the interfaces declared here.
// This keeps stage logic testable without external services and lets
// implementations be swapped without touching orchestration code.
//
// # Interfaces
//
//   - Extractor: extracts plain text from document pages
//   - Imager: renders document pages to images
//   - ElementExtractor: identifies structural elements on a page (ADE)
//   - Embedder: generates vector embeddings from text
//   - Chunker: splits text into embedding-sized chunks
//   - Provider: aggregates the services for convenient wiring
//
// # Implementation Packages
//
//   - providers/pdf: text extraction and page rendering for PDF files
//   - providers/openai: embeddings and element extraction via
//     OpenAI-compatible APIs
//   - providers/mock: test doubles for unit testing without external
//     dependencies
//
// The deterministic Chunker lives in this package directly since it
// needs no external service.
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder, pdf.NewExtractor, etc.)
// return INTERFACE types to enforce abstraction and prevent accidental
// coupling to concrete implementations.
//
//	embedder, err := openai.NewEmbedder(config)  // returns providers.Embedder
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockExtractor)
// return CONCRETE types to enable test assertions and behavior injection
// via the mock's function fields.
//
//	mockEmbed := mock.NewMockEmbedder()  // returns *mock.MockEmbedder
//	mockEmbed.EmbedTextFunc = ...        // needs concrete type
//	count := mockEmbed.CallCount()       // test assertion
//
// # Usage Example
//
//	cfg := providers.NewConfig(
//	    providers.WithHost("http://localhost:11434"),
//	    providers.WithEmbeddingModel("text-embedding-3-small"),
//	)
//	embedder, err := openai.NewEmbedder(cfg)
//	extractor, err := pdf.NewExtractor()
package providers
