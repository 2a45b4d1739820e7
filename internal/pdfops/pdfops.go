// Package pdfops implements the document operations behind the text, metadata and manipulation
// tools. PDF reading and writing is delegated to pdfcpu; text extraction to ledongthuc/pdf.
package pdfops

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sammcj/mcp-pdftools/internal/config"
	"github.com/sammcj/mcp-pdftools/internal/validate"
	"github.com/sirupsen/logrus"
)

// Processor runs document operations under the configured size ceiling.
type Processor struct {
	maxBytes int64
	logger   *logrus.Logger
}

// New returns a Processor for settings.
func New(settings config.Settings, logger *logrus.Logger) *Processor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Processor{
		maxBytes: settings.MaxFileSizeBytes(),
		logger:   logger,
	}
}

// conf returns a fresh pdfcpu configuration. Relaxed validation tolerates the small
// deviations common in producer output.
func conf() *model.Configuration {
	c := model.NewDefaultConfiguration()
	c.ValidationMode = model.ValidationRelaxed
	return c
}

// validPDF checks path is an acceptable PDF input and returns its absolute path.
func (p *Processor) validPDF(path string) (string, error) {
	return validate.PDF(path, p.maxBytes)
}

// PageCount returns the number of pages in the PDF at path.
func (p *Processor) PageCount(path string) (int, error) {
	abs, err := p.validPDF(path)
	if err != nil {
		return 0, err
	}
	return pageCount(abs)
}

func pageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read page count of %s: %w", path, err)
	}
	return n, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Size(), nil
}
