// Package testutils holds fixtures shared by package tests: loggers, settings and small
// documents and images authored in-process.
package testutils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sammcj/mcp-pdftools/internal/config"
	"github.com/sirupsen/logrus"
)

// CreateTestLogger creates a logger suitable for testing
func CreateTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// TestSettings returns default settings with the temp and log paths inside t.TempDir().
func TestSettings(t *testing.T) config.Settings {
	t.Helper()
	dir := t.TempDir()
	s := config.Defaults()
	s.TempDir = filepath.Join(dir, "temp")
	s.LogFilePath = filepath.Join(dir, "logs", "test.log")
	return s
}

// PageText is the text WritePDF draws on page n.
func PageText(n int) string {
	return fmt.Sprintf("Hello World page %d", n)
}

// PDFBytes authors a minimal valid PDF with one Helvetica text line per page and a document
// information dictionary carrying title.
func PDFBytes(pages int, title string) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 5+2*i)
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	obj(fmt.Sprintf("<< /Title (%s) /Author (mcp-pdftools) /Producer (testutils) /CreationDate (D:20240101120000Z) >>", title))

	for i := range pages {
		content := fmt.Sprintf("BT /F1 24 Tf 72 700 Td (%s) Tj ET", PageText(i+1))
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 6+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// WritePDF writes a PDFBytes document with the given page count to dir/name.
func WritePDF(t *testing.T, dir, name string, pages int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	if err := os.WriteFile(path, PDFBytes(pages, "Test Document"), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WritePNG writes a solid w x h PNG in fill to dir/name.
func WritePNG(t *testing.T, dir, name string, w, h int, fill color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, fill)
		}
	}

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
	return path
}
