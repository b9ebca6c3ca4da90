package pdf

import (
	"fmt"
	"log/slog"
	"strings"

	"context"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/docpipe/providers"
)

// Extractor implements providers.Extractor for PDF files.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a PDF text extractor.
//
// Returns providers.Extractor interface to enforce abstraction.
func NewExtractor() providers.Extractor {
	return &Extractor{
		logger: slog.Default().With("component", "pdf-extractor"),
	}
}

// PageCount returns the number of pages in the PDF.
func (e *Extractor) PageCount(ctx context.Context, filePath string) (int, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		e.logger.Error("failed to open pdf", "path", filePath, "err", err)
		return 0, fmt.Errorf("open pdf %s: %w", filePath, err)
	}
	defer f.Close()

	return reader.NumPage(), nil
}

// ExtractPage extracts the plain text of a single page.
// Page numbers are 1-based.
func (e *Extractor) ExtractPage(ctx context.Context, filePath string, page int) (providers.Page, error) {
	if err := ctx.Err(); err != nil {
		return providers.Page{}, err
	}

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		e.logger.Error("failed to open pdf", "path", filePath, "err", err)
		return providers.Page{}, fmt.Errorf("open pdf %s: %w", filePath, err)
	}
	defer f.Close()

	if page < 1 || page > reader.NumPage() {
		return providers.Page{}, fmt.Errorf("%w: page %d of %d", providers.ErrPageOutOfRange, page, reader.NumPage())
	}

	p := reader.Page(page)
	if p.V.IsNull() {
		return providers.Page{}, fmt.Errorf("%w: page %d is null", providers.ErrPageOutOfRange, page)
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		e.logger.Error("failed to extract page text", "path", filePath, "page", page, "err", err)
		return providers.Page{}, fmt.Errorf("extract page %d of %s: %w", page, filePath, err)
	}

	return providers.Page{
		Number: page,
		Text:   strings.TrimSpace(text),
	}, nil
}
