package pdfops

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/pages"
	"github.com/sirupsen/logrus"
)

// TextExtractionResult is the text of a whole document.
type TextExtractionResult struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
	CharCount int    `json:"char_count"`
}

// PageText is the text of one page.
type PageText struct {
	Page      int    `json:"page"`
	Text      string `json:"text"`
	CharCount int    `json:"char_count"`
}

// ExtractText returns the text of every page joined with newlines.
func (p *Processor) ExtractText(path, encodingName string) (*TextExtractionResult, error) {
	enc, err := newTextEncoder(encodingName)
	if err != nil {
		return nil, err
	}
	abs, err := p.validPDF(path)
	if err != nil {
		return nil, err
	}

	var texts []string
	err = p.withReader(abs, func(r *pdf.Reader) error {
		fonts := make(map[string]*pdf.Font)
		for n := 1; n <= r.NumPage(); n++ {
			text, err := pageText(r, n, fonts)
			if err != nil {
				return err
			}
			texts = append(texts, text)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	text, err := enc.normalise(strings.Join(texts, "\n"))
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"path":  abs,
		"pages": len(texts),
	}).Debug("Extracted document text")

	return &TextExtractionResult{
		Text:      text,
		PageCount: len(texts),
		CharCount: utf8.RuneCountInString(text),
	}, nil
}

// ExtractTextByPage returns the text of the selected pages. Explicit pageList wins over
// pageRange; with neither every page is returned. Selected pages must exist.
func (p *Processor) ExtractTextByPage(path string, pageList []int, pageRange, encodingName string) ([]PageText, error) {
	enc, err := newTextEncoder(encodingName)
	if err != nil {
		return nil, err
	}
	abs, err := p.validPDF(path)
	if err != nil {
		return nil, err
	}

	var results []PageText
	err = p.withReader(abs, func(r *pdf.Reader) error {
		selected, err := selectPages(pageList, pageRange, r.NumPage())
		if err != nil {
			return err
		}

		fonts := make(map[string]*pdf.Font)
		results = make([]PageText, 0, len(selected))
		for _, n := range selected {
			text, err := pageText(r, n, fonts)
			if err != nil {
				return err
			}
			if text, err = enc.normalise(text); err != nil {
				return err
			}
			results = append(results, PageText{
				Page:      n,
				Text:      text,
				CharCount: utf8.RuneCountInString(text),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// selectPages picks the pages named by pageList or pageRange, bounded by maxPage.
func selectPages(pageList []int, pageRange string, maxPage int) ([]int, error) {
	var (
		selected []int
		err      error
	)
	switch {
	case len(pageList) > 0:
		selected, err = pages.Clamp(pageList, maxPage)
	case strings.TrimSpace(pageRange) != "":
		var parsed []int
		if parsed, err = pages.ParseRange(pageRange); err == nil {
			selected, err = pages.Clamp(parsed, maxPage)
		}
	default:
		selected = pages.All(maxPage)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	return selected, nil
}

// withReader opens path for text extraction. The reader panics on some malformed input, which
// is reported as an error.
func (p *Processor) withReader(path string, fn func(r *pdf.Reader) error) (err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("failed to read PDF %s: %v", path, rec)
		}
	}()

	return fn(r)
}

// pageText extracts the plain text of page n, caching fonts across calls.
func pageText(r *pdf.Reader, n int, fonts map[string]*pdf.Font) (string, error) {
	page := r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	for _, name := range page.Fonts() {
		if _, ok := fonts[name]; !ok {
			font := page.Font(name)
			fonts[name] = &font
		}
	}
	text, err := page.GetPlainText(fonts)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", n, err)
	}
	return text, nil
}
