package mock

import (
	"strings"

	"github.com/poiesic/docpipe/providers"
)

// MockChunker is a test double for providers.Chunker.
// It allows custom behavior injection via function fields.
type MockChunker struct {
	// SplitFunc is called by Split if set.
	// If nil, splits on blank lines.
	SplitFunc func(text string) ([]string, error)

	callCount int
}

// NewMockChunker creates a mock chunker that splits on blank lines.
// Note: Returns concrete type to allow behavior injection and assertions.
func NewMockChunker() *MockChunker {
	return &MockChunker{}
}

// Split divides text into chunks at blank lines.
func (m *MockChunker) Split(text string) ([]string, error) {
	m.callCount++

	if m.SplitFunc != nil {
		return m.SplitFunc(text)
	}

	if strings.TrimSpace(text) == "" {
		return nil, providers.ErrEmptyText
	}

	parts := strings.Split(text, "\n\n")
	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			chunks = append(chunks, strings.TrimSpace(part))
		}
	}
	return chunks, nil
}

// CallCount returns the number of times Split was called.
func (m *MockChunker) CallCount() int {
	return m.callCount
}
