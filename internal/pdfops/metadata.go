package pdfops

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Metadata is the document information of a PDF.
type Metadata struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	Creator      string `json:"creator"`
	Producer     string `json:"producer"`
	CreationDate string `json:"creation_date"`
	ModDate      string `json:"mod_date"`
	PageCount    int    `json:"page_count"`
	Encrypted    bool   `json:"encrypted"`
	PDFVersion   string `json:"pdf_version"`
	FileSize     int64  `json:"file_size"`
}

// Info is the summary returned by get_pdf_info.
type Info struct {
	Path      string `json:"path"`
	Pages     int    `json:"pages"`
	Size      int64  `json:"size"`
	Version   string `json:"version"`
	Encrypted bool   `json:"encrypted"`
}

// ExtractMetadata reads the document information dictionary and basic facts of a PDF.
func (p *Processor) ExtractMetadata(path string) (*Metadata, error) {
	abs, err := p.validPDF(path)
	if err != nil {
		return nil, err
	}

	ctx, err := readContext(abs)
	if err != nil {
		return nil, err
	}
	size, err := fileSize(abs)
	if err != nil {
		return nil, err
	}

	// Configuration also carries a CreationDate, so the info fields are read off the xref table
	xref := ctx.XRefTable
	return &Metadata{
		Title:        xref.Title,
		Author:       xref.Author,
		Creator:      xref.Creator,
		Producer:     xref.Producer,
		CreationDate: xref.CreationDate,
		ModDate:      xref.ModDate,
		PageCount:    xref.PageCount,
		Encrypted:    xref.Encrypt != nil,
		PDFVersion:   xref.VersionString(),
		FileSize:     size,
	}, nil
}

// Info summarises a PDF without extracting content.
func (p *Processor) Info(path string) (*Info, error) {
	abs, err := p.validPDF(path)
	if err != nil {
		return nil, err
	}

	ctx, err := readContext(abs)
	if err != nil {
		return nil, err
	}
	size, err := fileSize(abs)
	if err != nil {
		return nil, err
	}

	return &Info{
		Path:      abs,
		Pages:     ctx.XRefTable.PageCount,
		Size:      size,
		Version:   ctx.XRefTable.VersionString(),
		Encrypted: ctx.XRefTable.Encrypt != nil,
	}, nil
}

// readContext parses and validates path into a pdfcpu context.
func readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ctx, err := api.ReadContext(f, conf())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF %s: %w", path, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to validate PDF %s: %w", path, err)
	}
	return ctx, nil
}
