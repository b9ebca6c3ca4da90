package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/docpipe/providers"
)

// MockImager is a test double for providers.Imager.
// It allows custom behavior injection via function fields.
type MockImager struct {
	// RenderPageFunc is called by RenderPage if set.
	// If nil, returns a tiny synthetic PNG payload.
	RenderPageFunc func(ctx context.Context, filePath string, page int) (providers.PageImage, error)

	callCount int
}

// NewMockImager creates a mock imager with default synthetic behavior.
// Note: Returns concrete type to allow behavior injection and assertions.
func NewMockImager() *MockImager {
	return &MockImager{}
}

// RenderPage returns a synthetic image payload tagged with the page number.
func (m *MockImager) RenderPage(ctx context.Context, filePath string, page int) (providers.PageImage, error) {
	m.callCount++

	if m.RenderPageFunc != nil {
		return m.RenderPageFunc(ctx, filePath, page)
	}

	if page < 1 {
		return providers.PageImage{}, providers.ErrPageOutOfRange
	}
	return providers.PageImage{
		Page:   page,
		Format: "png",
		Data:   []byte(fmt.Sprintf("png:%s:%d", filePath, page)),
	}, nil
}

// CallCount returns the number of times RenderPage was called.
func (m *MockImager) CallCount() int {
	return m.callCount
}
