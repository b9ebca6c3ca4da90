// Package mock provides test double implementations of the pipeline's
// provider interfaces.
//
// This package contains mock implementations of providers.Extractor,
// providers.Imager, providers.ElementExtractor, providers.Embedder,
// and providers.Chunker for use in unit tests. The mocks allow tests to
// run without external services and enable controlled, deterministic
// behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	pages, err := mockProvider.Extractor().ExtractPage(ctx, "doc.pdf", 1)
//
//	// Custom behavior injection
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockExtractor: three pages of synthetic text per document
//   - MockImager: a tiny synthetic PNG per page
//   - MockElementExtractor: one paragraph element per page
//   - MockEmbedder: deterministic vectors based on text hash
//   - MockChunker: splits on blank lines
package mock
