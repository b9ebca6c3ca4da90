package providers

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// TextChunker implements Chunker using recursive character splitting.
// It prefers splitting on paragraph and sentence boundaries and only
// falls back to hard character cuts for pathological input.
type TextChunker struct {
	splitter textsplitter.RecursiveCharacter
}

// NewTextChunker creates a chunker using the chunk size and overlap
// from the configuration.
//
// Returns the Chunker interface to enforce abstraction.
func NewTextChunker(config *Config) (Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(config.ChunkSize),
		textsplitter.WithChunkOverlap(config.ChunkOverlap),
	)
	return &TextChunker{splitter: splitter}, nil
}

// Split divides text into chunks sized for embedding. Whitespace-only
// input yields ErrEmptyText so callers can distinguish empty documents
// from splitter failures.
func (c *TextChunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	chunks, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	// Drop whitespace-only chunks the splitter occasionally produces at
	// boundaries.
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) != "" {
			out = append(out, chunk)
		}
	}
	return out, nil
}
