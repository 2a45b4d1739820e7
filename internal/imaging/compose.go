package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/validate"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
)

// PageSize is a paper size in PDF points, portrait.
type PageSize struct {
	Width  int
	Height int
}

// PageSizes are the supported paper presets.
var PageSizes = map[string]PageSize{
	"A4":     {595, 842},
	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
	"A3":     {842, 1191},
}

const (
	DefaultPageSize    = "A4"
	DefaultOrientation = "portrait"

	// pixelsPerPoint sets the composited canvas resolution (144 dpi).
	pixelsPerPoint = 2
)

// ComposeResult describes a PDF built from images.
type ComposeResult struct {
	OutputPath string `json:"output_path"`
	PageCount  int    `json:"page_count"`
	OutputSize int64  `json:"output_size"`
}

// ResolvePageSize returns the dimensions for a preset name and orientation.
func ResolvePageSize(name, orientation string) (PageSize, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultPageSize
	}
	size, ok := PageSizes[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return PageSize{}, fmt.Errorf("%w: unsupported page_size %q; choose A4, Letter, Legal or A3", errs.ErrValidation, name)
	}

	switch strings.ToLower(strings.TrimSpace(orientation)) {
	case "", DefaultOrientation:
		return size, nil
	case "landscape":
		return PageSize{Width: size.Height, Height: size.Width}, nil
	default:
		return PageSize{}, fmt.Errorf("%w: orientation must be portrait or landscape, got %q", errs.ErrValidation, orientation)
	}
}

// ImagesToPDF builds out with one page per image. Each image is scaled to fit the page,
// centred on a white background, with transparency flattened.
func (c *Converter) ImagesToPDF(paths []string, out, pageSize, orientation string) (*ComposeResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: image_paths cannot be empty", errs.ErrValidation)
	}
	size, err := ResolvePageSize(pageSize, orientation)
	if err != nil {
		return nil, err
	}

	images := make([]image.Image, len(paths))
	for i, p := range paths {
		abs, err := validate.Image(p, c.maxBytes)
		if err != nil {
			return nil, err
		}
		if images[i], err = decodeImage(abs); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", out, err)
	}
	work, err := os.MkdirTemp(filepath.Dir(out), ".compose-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(work) }()

	canvases := make([]string, len(images))
	for i, img := range images {
		canvas := fitOnCanvas(img, size.Width*pixelsPerPoint, size.Height*pixelsPerPoint)
		canvases[i] = filepath.Join(work, fmt.Sprintf("page-%04d.png", i+1))
		if err := writePNG(canvases[i], canvas); err != nil {
			return nil, err
		}
	}

	// pdfcpu appends to an existing output file.
	if err := os.Remove(out); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to replace %s: %w", out, err)
	}

	imp, err := api.Import(fmt.Sprintf("dim:%d %d, pos:c, sc:1.0 rel", size.Width, size.Height), types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to configure image import: %w", err)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ImportImagesFile(canvases, out, imp, conf); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", out, err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", out, err)
	}

	c.logger.WithFields(logrus.Fields{
		"images": len(images),
		"size":   fmt.Sprintf("%dx%d", size.Width, size.Height),
		"output": out,
	}).Debug("Composed PDF from images")

	return &ComposeResult{
		OutputPath: out,
		PageCount:  len(images),
		OutputSize: info.Size(),
	}, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image %s: %v", errs.ErrValidation, path, err)
	}
	return img, nil
}

// fitOnCanvas scales img to the largest size that fits a width x height canvas without
// changing its aspect ratio, and centres it on white.
func fitOnCanvas(img image.Image, width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	src := img.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 {
		return canvas
	}

	imRatio := float64(src.Dx()) / float64(src.Dy())
	pageRatio := float64(width) / float64(height)
	w, h := width, height
	if imRatio > pageRatio {
		h = max(1, int(float64(width)/imRatio))
	} else {
		w = max(1, int(float64(height)*imRatio))
	}

	x := (width - w) / 2
	y := (height - h) / 2
	xdraw.CatmullRom.Scale(canvas, image.Rect(x, y, x+w, y+h), img, src, xdraw.Over, nil)
	return canvas
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
