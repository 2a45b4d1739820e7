package imaging

import (
	"image"
	"image/color"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	return New(testutils.TestSettings(t), testutils.CreateTestLogger(), opts...)
}

func TestResolvePageSize(t *testing.T) {
	tests := []struct {
		name        string
		size        string
		orientation string
		expected    PageSize
		hasError    bool
	}{
		{name: "default", expected: PageSize{595, 842}},
		{name: "letter lower case", size: "letter", expected: PageSize{612, 792}},
		{name: "legal landscape", size: "Legal", orientation: "landscape", expected: PageSize{1008, 612}},
		{name: "a3 portrait", size: "A3", orientation: "PORTRAIT", expected: PageSize{842, 1191}},
		{name: "unknown size", size: "B5", hasError: true},
		{name: "unknown orientation", size: "A4", orientation: "diagonal", hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePageSize(tt.size, tt.orientation)
			if tt.hasError {
				assert.ErrorIs(t, err, errs.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFitOnCanvas(t *testing.T) {
	wide := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := range 100 {
		for x := range 200 {
			wide.Set(x, y, color.Black)
		}
	}

	canvas := fitOnCanvas(wide, 100, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 100), canvas.Bounds())

	// letterboxed top and bottom, image in the middle
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, canvas.RGBAAt(50, 5))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, canvas.RGBAAt(50, 95))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, canvas.RGBAAt(50, 50))

	transparent := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	flat := fitOnCanvas(transparent, 20, 20)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, flat.RGBAAt(10, 10), "transparency is flattened to white")
}

func TestImagesToPDF(t *testing.T) {
	c := newTestConverter(t)
	dir := t.TempDir()

	images := []string{
		testutils.WritePNG(t, dir, "red.png", 40, 20, color.RGBA{255, 0, 0, 255}),
		testutils.WritePNG(t, dir, "blue.png", 20, 40, color.RGBA{0, 0, 255, 128}),
	}
	out := filepath.Join(dir, "out", "album.pdf")

	result, err := c.ImagesToPDF(images, out, "letter", "landscape")
	require.NoError(t, err)
	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, out, result.OutputPath)
	assert.Positive(t, result.OutputSize)

	count, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// a second run replaces rather than appends
	result, err = c.ImagesToPDF(images[:1], out, "", "")
	require.NoError(t, err)
	count, err = api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, result.PageCount)

	entries, err := filepath.Glob(filepath.Join(dir, "out", ".compose-*"))
	require.NoError(t, err)
	assert.Empty(t, entries, "work directory is removed")
}

func TestImagesToPDF_Errors(t *testing.T) {
	c := newTestConverter(t)
	dir := t.TempDir()
	img := testutils.WritePNG(t, dir, "a.png", 4, 4, color.White)
	pdf := testutils.WritePDF(t, dir, "a.pdf", 1)

	_, err := c.ImagesToPDF(nil, filepath.Join(dir, "x.pdf"), "", "")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = c.ImagesToPDF([]string{img}, filepath.Join(dir, "x.pdf"), "tabloid", "")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = c.ImagesToPDF([]string{pdf}, filepath.Join(dir, "x.pdf"), "", "")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = c.ImagesToPDF([]string{filepath.Join(dir, "missing.png")}, filepath.Join(dir, "x.pdf"), "", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestNormaliseFormat(t *testing.T) {
	for in, expected := range map[string]string{"": "png", "PNG": "png", "jpg": "jpeg", "jpeg": "jpeg"} {
		got, err := NormaliseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
	_, err := NormaliseFormat("gif")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestPDFToImages_MissingRasterizer(t *testing.T) {
	c := newTestConverter(t, WithRasterizer("pdftoppm-not-installed"))
	path := testutils.WritePDF(t, t.TempDir(), "doc.pdf", 1)

	_, err := c.PDFToImages(t.Context(), path, t.TempDir(), "png", 72, nil)
	assert.ErrorIs(t, err, errs.ErrDependencyMissing)
}

func TestPDFToImages_Validation(t *testing.T) {
	c := newTestConverter(t)
	path := testutils.WritePDF(t, t.TempDir(), "doc.pdf", 1)

	_, err := c.PDFToImages(t.Context(), path, t.TempDir(), "tiff", 72, nil)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = c.PDFToImages(t.Context(), path, t.TempDir(), "png", 5000, nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestPDFToImages(t *testing.T) {
	if _, err := exec.LookPath(DefaultRasterizer); err != nil {
		t.Skip("pdftoppm not installed")
	}

	c := newTestConverter(t)
	path := testutils.WritePDF(t, t.TempDir(), "doc.pdf", 3)
	outDir := filepath.Join(t.TempDir(), "pages")

	results, err := c.PDFToImages(t.Context(), path, outDir, "png", 72, []int{3, 1, 3})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 3, results[0].Page)
	assert.Equal(t, filepath.Join(outDir, "page-0003.png"), results[0].Path)
	assert.Equal(t, 612, results[0].Width)
	assert.Equal(t, 792, results[0].Height)
	assert.Equal(t, 1, results[1].Page)
	assert.FileExists(t, results[1].Path)

	all, err := c.PDFToImages(t.Context(), path, outDir, "jpg", 36, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, filepath.Join(outDir, "page-0002.jpg"), all[1].Path)

	_, err = c.PDFToImages(t.Context(), path, outDir, "png", 72, []int{4})
	assert.ErrorIs(t, err, errs.ErrValidation)
}
