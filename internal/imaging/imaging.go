// Package imaging converts between PDFs and raster images. Rasterisation shells out to the
// Poppler pdftoppm binary; image pages are composited with x/image and imported with pdfcpu.
package imaging

import (
	"github.com/sammcj/mcp-pdftools/internal/config"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultRasterizer is the Poppler binary used by PDFToImages.
	DefaultRasterizer = "pdftoppm"
	// DefaultDPI is the rasterisation resolution when none is given.
	DefaultDPI = 150
	MaxDPI     = 1200

	// renderWorkers bounds concurrent pdftoppm processes.
	renderWorkers = 4
)

// Converter performs image conversions under the configured size ceiling.
type Converter struct {
	maxBytes   int64
	rasterizer string
	logger     *logrus.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithRasterizer overrides the pdftoppm binary name or path.
func WithRasterizer(name string) Option {
	return func(c *Converter) {
		c.rasterizer = name
	}
}

// New returns a Converter for settings.
func New(settings config.Settings, logger *logrus.Logger, opts ...Option) *Converter {
	if logger == nil {
		logger = logrus.New()
	}
	c := &Converter{
		maxBytes:   settings.MaxFileSizeBytes(),
		rasterizer: DefaultRasterizer,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
