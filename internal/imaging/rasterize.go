package imaging

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/pages"
	"github.com/sammcj/mcp-pdftools/internal/validate"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PageImage is one rendered page.
type PageImage struct {
	Page   int    `json:"page"`
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// NormaliseFormat maps a requested image format to "png" or "jpeg".
func NormaliseFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "png":
		return "png", nil
	case "jpeg", "jpg":
		return "jpeg", nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q, use png or jpeg", errs.ErrValidation, format)
	}
}

// PDFToImages renders the selected pages of path into outDir as page-NNNN.png or .jpg files.
// No selection means every page. Pages render concurrently.
func (c *Converter) PDFToImages(ctx context.Context, path, outDir, format string, dpi int, selection []int) ([]PageImage, error) {
	abs, err := validate.PDF(path, c.maxBytes)
	if err != nil {
		return nil, err
	}
	format, err = NormaliseFormat(format)
	if err != nil {
		return nil, err
	}
	if dpi == 0 {
		dpi = DefaultDPI
	}
	if dpi < 1 || dpi > MaxDPI {
		return nil, fmt.Errorf("%w: dpi must be between 1 and %d, got %d", errs.ErrValidation, MaxDPI, dpi)
	}

	bin, err := exec.LookPath(c.rasterizer)
	if err != nil {
		return nil, fmt.Errorf("%w: Poppler not found (%s missing); install Poppler and put its bin directory on PATH",
			errs.ErrDependencyMissing, c.rasterizer)
	}

	count, err := api.PageCountFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count of %s: %w", abs, err)
	}
	selected := pages.All(count)
	if len(selection) > 0 {
		if selected, err = pages.Clamp(dedupe(selection), count); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	results := make([]PageImage, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderWorkers)

	for i, page := range selected {
		g.Go(func() error {
			img, err := c.renderPage(gctx, bin, abs, outDir, format, dpi, page)
			if err != nil {
				return err
			}
			results[i] = *img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"path":   abs,
		"pages":  len(results),
		"format": format,
		"dpi":    dpi,
	}).Debug("Rendered PDF pages")

	return results, nil
}

func (c *Converter) renderPage(ctx context.Context, bin, path, outDir, format string, dpi, page int) (*PageImage, error) {
	prefix := filepath.Join(outDir, fmt.Sprintf("page-%04d", page))
	n := strconv.Itoa(page)

	cmd := exec.CommandContext(ctx, bin,
		"-f", n, "-l", n,
		"-r", strconv.Itoa(dpi),
		"-"+format,
		"-singlefile",
		path, prefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s failed on page %d: %w: %s", c.rasterizer, page, err, strings.TrimSpace(string(out)))
	}

	ext := ".png"
	if format == "jpeg" {
		ext = ".jpg"
	}
	outPath := prefix + ext

	f, err := os.Open(outPath)
	if err != nil {
		return nil, fmt.Errorf("rendered page %d missing: %w", page, err)
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page %d: %w", page, err)
	}

	return &PageImage{
		Page:   page,
		Path:   outPath,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func dedupe(pageList []int) []int {
	seen := make(map[int]bool, len(pageList))
	out := make([]int, 0, len(pageList))
	for _, p := range pageList {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
