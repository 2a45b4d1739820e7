package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
)

// TempCommands maintains the temp directory from the command line.
type TempCommands struct {
	store  *filemanager.Store
	output OutputFormat
	out    io.Writer
}

// NewTempCommands creates TempCommands for store.
func NewTempCommands(store *filemanager.Store, output OutputFormat, out io.Writer) *TempCommands {
	return &TempCommands{store: store, output: output, out: out}
}

// List prints the files in temp storage, newest first, optionally filtered by content type.
func (c *TempCommands) List(contentType string) error {
	resources, err := c.store.List()
	if err != nil {
		return err
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	filtered := resources[:0:0]
	for _, r := range resources {
		if contentType == "" || r.ContentType == contentType {
			filtered = append(filtered, r)
		}
	}

	if c.output == OutputJSON {
		return writeJSON(c.out, filtered)
	}

	if len(filtered) == 0 {
		_, _ = fmt.Fprintf(c.out, "No files in %s\n", c.store.Root())
		return nil
	}

	name := color.New(color.FgGreen).SprintFunc()
	stale := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for _, r := range filtered {
		rel, err := filepath.Rel(c.store.Root(), r.Path)
		if err != nil {
			rel = r.Path
		}
		age := time.Since(r.Created)
		ageText := humanAge(age)
		if age > filemanager.RetentionWindow {
			ageText = stale(ageText + " (expired)")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name(rel), humanSize(r.Size), dim(r.ContentType), ageText)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "%d file(s) in %s\n", len(filtered), c.store.Root())
	return nil
}

// Cleanup removes expired files and reports how many went.
func (c *TempCommands) Cleanup() error {
	removed, err := c.store.Cleanup(time.Time{})
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if c.output == OutputJSON {
		return writeJSON(c.out, map[string]any{"removed": removed, "directory": c.store.Root()})
	}

	if removed == 0 {
		_, _ = fmt.Fprintln(c.out, color.New(color.FgGreen).Sprint("Nothing to clean up"))
		return nil
	}
	_, _ = fmt.Fprintf(c.out, "%s expired file(s) removed from %s\n",
		color.New(color.FgYellow, color.Bold).Sprint(removed), c.store.Root())
	return nil
}

// Upload stores everything read from r in temp storage under name and prints the stored path.
func (c *TempCommands) Upload(ctx context.Context, r io.Reader, name string) error {
	path, err := c.store.Resolve(ctx, filemanager.ReaderInput{Reader: r, Name: name}, "")
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if c.output == OutputJSON {
		return writeJSON(c.out, map[string]any{"path": path, "filename": filepath.Base(path)})
	}
	_, _ = fmt.Fprintln(c.out, color.New(color.FgGreen).Sprint(path))
	return nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

func humanAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
