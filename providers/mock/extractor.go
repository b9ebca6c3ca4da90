package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/docpipe/providers"
)

// MockExtractor is a test double for providers.Extractor.
// It allows custom behavior injection via function fields.
type MockExtractor struct {
	// Pages is the page count returned by the default PageCount behavior.
	Pages int

	// PageCountFunc is called by PageCount if set.
	PageCountFunc func(ctx context.Context, filePath string) (int, error)

	// ExtractPageFunc is called by ExtractPage if set.
	// If nil, returns synthetic text for the page.
	ExtractPageFunc func(ctx context.Context, filePath string, page int) (providers.Page, error)

	callCount int
}

// NewMockExtractor creates a mock extractor that reports three pages of
// synthetic text per document.
// Note: Returns concrete type to allow behavior injection and assertions.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{Pages: 3}
}

// PageCount returns the configured page count.
func (m *MockExtractor) PageCount(ctx context.Context, filePath string) (int, error) {
	m.callCount++

	if m.PageCountFunc != nil {
		return m.PageCountFunc(ctx, filePath)
	}
	return m.Pages, nil
}

// ExtractPage returns synthetic text identifying the file and page.
func (m *MockExtractor) ExtractPage(ctx context.Context, filePath string, page int) (providers.Page, error) {
	m.callCount++

	if m.ExtractPageFunc != nil {
		return m.ExtractPageFunc(ctx, filePath, page)
	}

	if page < 1 || page > m.Pages {
		return providers.Page{}, providers.ErrPageOutOfRange
	}
	return providers.Page{
		Number: page,
		Text:   fmt.Sprintf("Synthetic text for page %d of %s.", page, filePath),
	}, nil
}

// CallCount returns the number of times any method was called.
func (m *MockExtractor) CallCount() int {
	return m.callCount
}
