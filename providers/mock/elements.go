package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/docpipe/providers"
)

// MockElementExtractor is a test double for providers.ElementExtractor.
// It allows custom behavior injection via function fields.
type MockElementExtractor struct {
	// ExtractElementsFunc is called by ExtractElements if set.
	// If nil, returns one paragraph element per page.
	ExtractElementsFunc func(ctx context.Context, image providers.PageImage) ([]providers.Element, error)

	callCount int
}

// NewMockElementExtractor creates a mock ADE service with default behavior.
// Note: Returns concrete type to allow behavior injection and assertions.
func NewMockElementExtractor() *MockElementExtractor {
	return &MockElementExtractor{}
}

// ExtractElements returns a single synthetic paragraph element for the page.
func (m *MockElementExtractor) ExtractElements(ctx context.Context, image providers.PageImage) ([]providers.Element, error) {
	m.callCount++

	if m.ExtractElementsFunc != nil {
		return m.ExtractElementsFunc(ctx, image)
	}

	return []providers.Element{
		{
			Type:       "paragraph",
			Page:       image.Page,
			Text:       fmt.Sprintf("Synthetic paragraph on page %d.", image.Page),
			Confidence: 0.9,
		},
	}, nil
}

// CallCount returns the number of times ExtractElements was called.
func (m *MockElementExtractor) CallCount() int {
	return m.callCount
}
