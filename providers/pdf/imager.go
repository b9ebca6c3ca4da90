package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/poiesic/docpipe/providers"
)

// Imager implements providers.Imager by shelling out to pdftoppm from
// the poppler-utils suite. The tool must be on PATH.
type Imager struct {
	binary string
	dpi    int
	logger *slog.Logger
}

// ImagerOption configures an Imager.
type ImagerOption func(*Imager)

// WithBinary overrides the pdftoppm binary path.
func WithBinary(path string) ImagerOption {
	return func(i *Imager) {
		i.binary = path
	}
}

// WithDPI sets the render resolution. Default is 150.
func WithDPI(dpi int) ImagerOption {
	return func(i *Imager) {
		i.dpi = dpi
	}
}

// NewImager creates a page renderer backed by pdftoppm.
//
// Returns providers.Imager interface to enforce abstraction.
func NewImager(opts ...ImagerOption) providers.Imager {
	imager := &Imager{
		binary: "pdftoppm",
		dpi:    150,
		logger: slog.Default().With("component", "pdf-imager"),
	}
	for _, opt := range opts {
		opt(imager)
	}
	return imager
}

// RenderPage renders a single page to a PNG image.
// Page numbers are 1-based.
func (i *Imager) RenderPage(ctx context.Context, filePath string, page int) (providers.PageImage, error) {
	if page < 1 {
		return providers.PageImage{}, providers.ErrPageOutOfRange
	}

	// -f/-l select a single page; writing to stdout avoids temp files.
	cmd := exec.CommandContext(ctx, i.binary,
		"-png",
		"-r", fmt.Sprint(i.dpi),
		"-f", fmt.Sprint(page),
		"-l", fmt.Sprint(page),
		filePath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		i.logger.Error("pdftoppm failed",
			"path", filePath,
			"page", page,
			"stderr", stderr.String(),
			"err", err)
		return providers.PageImage{}, fmt.Errorf("render page %d of %s: %w", page, filePath, err)
	}

	if stdout.Len() == 0 {
		return providers.PageImage{}, fmt.Errorf("%w: page %d produced no image", providers.ErrPageOutOfRange, page)
	}

	return providers.PageImage{
		Page:   page,
		Format: "png",
		Data:   stdout.Bytes(),
	}, nil
}
