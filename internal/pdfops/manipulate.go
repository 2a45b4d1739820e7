package pdfops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/pages"
	"github.com/sirupsen/logrus"
)

// ValidDegrees are the accepted page rotations.
var ValidDegrees = map[int]bool{90: true, 180: true, 270: true}

// MergeResult describes a merged document.
type MergeResult struct {
	OutputPath string   `json:"output_path"`
	TotalPages int      `json:"total_pages"`
	OutputSize int64    `json:"output_size"`
	Inputs     []string `json:"inputs"`
}

// SplitRange selects pages StartPage..EndPage inclusive into OutputPath.
type SplitRange struct {
	StartPage  int    `json:"start_page"`
	EndPage    int    `json:"end_page"`
	OutputPath string `json:"output_path"`
}

// SplitResult describes one document produced by Split.
type SplitResult struct {
	OutputPath string `json:"output_path"`
	Pages      int    `json:"pages"`
	OutputSize int64  `json:"output_size"`
}

// Rotation turns Page clockwise by Degrees.
type Rotation struct {
	Page    int `json:"page"`
	Degrees int `json:"degrees"`
}

// RotateResult describes a rotated document.
type RotateResult struct {
	OutputPath   string `json:"output_path"`
	RotatedPages []int  `json:"rotated_pages"`
	PageCount    int    `json:"page_count"`
	OutputSize   int64  `json:"output_size"`
}

// Merge concatenates inputs in order into out.
func (p *Processor) Merge(inputs []string, out string) (*MergeResult, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: input_files cannot be empty", errs.ErrValidation)
	}

	paths := make([]string, len(inputs))
	total := 0
	for i, in := range inputs {
		abs, err := p.validPDF(in)
		if err != nil {
			return nil, err
		}
		n, err := pageCount(abs)
		if err != nil {
			return nil, err
		}
		paths[i] = abs
		total += n
	}

	for _, in := range paths {
		if sameFile(in, out) {
			return nil, fmt.Errorf("%w: output_path must not be one of the input files: %s", errs.ErrValidation, out)
		}
	}

	if err := ensureParent(out); err != nil {
		return nil, err
	}
	if err := api.MergeCreateFile(paths, out, false, conf()); err != nil {
		return nil, fmt.Errorf("failed to merge %d files into %s: %w", len(paths), out, err)
	}

	size, err := fileSize(out)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"inputs": len(paths),
		"pages":  total,
		"output": out,
	}).Debug("Merged PDFs")

	return &MergeResult{
		OutputPath: out,
		TotalPages: total,
		OutputSize: size,
		Inputs:     inputs,
	}, nil
}

// Split writes each range of path to its own output. Ranges must lie within the document and
// must not share pages.
func (p *Processor) Split(path string, ranges []SplitRange) ([]SplitResult, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: split_ranges cannot be empty", errs.ErrValidation)
	}
	abs, err := p.validPDF(path)
	if err != nil {
		return nil, err
	}
	maxPage, err := pageCount(abs)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	for i, r := range ranges {
		if r.OutputPath == "" {
			return nil, fmt.Errorf("%w: each range must include output_path", errs.ErrValidation)
		}
		if sameFile(abs, r.OutputPath) {
			return nil, fmt.Errorf("%w: output_path must not be the file being split: %s", errs.ErrValidation, r.OutputPath)
		}
		for _, other := range ranges[:i] {
			if sameFile(other.OutputPath, r.OutputPath) {
				return nil, fmt.Errorf("%w: ranges share output_path %s", errs.ErrValidation, r.OutputPath)
			}
		}
		if r.StartPage < 1 || r.EndPage < r.StartPage || r.EndPage > maxPage {
			return nil, fmt.Errorf("%w: invalid split range: %d-%d", errs.ErrValidation, r.StartPage, r.EndPage)
		}
		for pg := r.StartPage; pg <= r.EndPage; pg++ {
			if seen[pg] {
				return nil, fmt.Errorf("%w: overlapping page in ranges: %d", errs.ErrValidation, pg)
			}
			seen[pg] = true
		}
	}

	results := make([]SplitResult, 0, len(ranges))
	for _, r := range ranges {
		if err := ensureParent(r.OutputPath); err != nil {
			return nil, err
		}

		selection := []string{fmt.Sprintf("%d-%d", r.StartPage, r.EndPage)}
		if err := api.TrimFile(abs, r.OutputPath, selection, conf()); err != nil {
			return nil, fmt.Errorf("failed to write pages %s to %s: %w", selection[0], r.OutputPath, err)
		}

		size, err := fileSize(r.OutputPath)
		if err != nil {
			return nil, err
		}
		results = append(results, SplitResult{
			OutputPath: r.OutputPath,
			Pages:      r.EndPage - r.StartPage + 1,
			OutputSize: size,
		})
	}

	return results, nil
}

// Rotate writes path to out with the given pages turned. A page listed twice takes its last
// rotation.
func (p *Processor) Rotate(path string, rotations []Rotation, out string) (*RotateResult, error) {
	if len(rotations) == 0 {
		return nil, fmt.Errorf("%w: rotations cannot be empty", errs.ErrValidation)
	}
	abs, err := p.validPDF(path)
	if err != nil {
		return nil, err
	}
	maxPage, err := pageCount(abs)
	if err != nil {
		return nil, err
	}

	byPage := make(map[int]int, len(rotations))
	for _, r := range rotations {
		byPage[r.Page] = r.Degrees
	}
	for page, deg := range byPage {
		if page < 1 || page > maxPage {
			return nil, fmt.Errorf("%w: page %d out of bounds (1..%d)", errs.ErrValidation, page, maxPage)
		}
		if !ValidDegrees[deg] {
			return nil, fmt.Errorf("%w: degrees must be one of 90, 180, 270, got %d", errs.ErrValidation, deg)
		}
	}

	byDegree := make(map[int][]int)
	rotated := make([]int, 0, len(byPage))
	for page, deg := range byPage {
		byDegree[deg] = append(byDegree[deg], page)
		rotated = append(rotated, page)
	}
	sort.Ints(rotated)

	if err := ensureParent(out); err != nil {
		return nil, err
	}

	// The first pass copies the input to out; later passes rotate out in place. pdfcpu only
	// rotates in place when both names are equal, so an aliased out is rotated through its own name.
	src := abs
	if sameFile(abs, out) {
		src = out
	}
	for _, deg := range []int{90, 180, 270} {
		pageList, ok := byDegree[deg]
		if !ok {
			continue
		}
		sort.Ints(pageList)
		selection := pages.Strings(pageList)
		if err := api.RotateFile(src, out, deg, selection, conf()); err != nil {
			return nil, fmt.Errorf("failed to rotate pages %v by %d: %w", selection, deg, err)
		}
		src = out
	}

	size, err := fileSize(out)
	if err != nil {
		return nil, err
	}

	return &RotateResult{
		OutputPath:   out,
		RotatedPages: rotated,
		PageCount:    maxPage,
		OutputSize:   size,
	}, nil
}

// sameFile reports whether a and b name the same file, either by cleaned absolute path or, when
// both exist, by identity.
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

func ensureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return nil
}
