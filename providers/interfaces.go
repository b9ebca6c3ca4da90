package providers

import "context"

// Extractor extracts plain text from an uploaded document, one page at
// a time. Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// PageCount returns the number of pages in the document.
	// Returns an error if the file cannot be opened or parsed.
	PageCount(ctx context.Context, filePath string) (int, error)

	// ExtractPage extracts the plain text of a single page.
	// Page numbers are 1-based.
	ExtractPage(ctx context.Context, filePath string, page int) (Page, error)
}

// Imager renders document pages to images for downstream visual
// processing. Implementations must be thread-safe for concurrent use.
type Imager interface {
	// RenderPage renders a single page to an image.
	// Page numbers are 1-based.
	RenderPage(ctx context.Context, filePath string, page int) (PageImage, error)
}

// ElementExtractor performs advanced document extraction (ADE): given a
// rendered page, it identifies the structural elements on it.
// Implementations must be thread-safe for concurrent use.
type ElementExtractor interface {
	// ExtractElements analyzes a page image and returns the structural
	// elements found on it, each with a type, text content, and a
	// confidence score. Returns an empty slice when the page holds no
	// recognizable structure.
	ExtractElements(ctx context.Context, image PageImage) ([]Element, error)
}

// Embedder generates vector embeddings from text for semantic
// similarity search. Implementations must be thread-safe for concurrent
// use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings
	// in a batch. The returned slice contains embeddings in the same
	// order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Chunker splits extracted text into searchable chunks.
type Chunker interface {
	// Split divides text into chunks sized for embedding.
	Split(text string) ([]string, error)
}

// Provider aggregates the pipeline's external collaborators for
// convenient initialization and lifecycle management.
type Provider interface {
	// Extractor returns the text extraction service.
	Extractor() Extractor

	// Imager returns the page imaging service.
	Imager() Imager

	// ElementExtractor returns the ADE service.
	ElementExtractor() ElementExtractor

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Chunker returns the text chunking service.
	Chunker() Chunker

	// Close releases resources held by the provider and its services.
	Close() error
}
