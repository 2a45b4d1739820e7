package filemanager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/sammcj/mcp-pdftools/internal/config"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	settings := config.Defaults()
	settings.TempDir = t.TempDir()
	settings.MaxFileSizeMB = 1
	store, err := New(settings, opts...)
	require.NoError(t, err)
	return store
}

func writeAged(t *testing.T, path string, age time.Duration, now time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	mtime := now.Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestWriteUnique(t *testing.T) {
	store := newTestStore(t)

	first, err := store.WriteUnique("report.pdf", []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root(), "report.pdf"), first)

	second, err := store.WriteUnique("report.pdf", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, ".pdf", filepath.Ext(second))
	assert.Regexp(t, `report-[0-9a-f]{6}\.pdf$`, second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data), "existing file must not be overwritten")
}

func TestWriteUnique_NamesStayInRoot(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"../../etc/passwd", "passwd"},
		{"/abs/dir/file.png", "file.png"},
		{`..\windows\evil.pdf`, "evil.pdf"},
		{"", DefaultUploadName},
		{"..", DefaultUploadName},
		{".hidden", "hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := store.WriteUnique(tt.name, []byte("x"))
			require.NoError(t, err)
			assert.Equal(t, store.Root(), filepath.Dir(path))
			assert.True(t, strings.HasPrefix(filepath.Base(path), strings.TrimSuffix(tt.expected, filepath.Ext(tt.expected))))
		})
	}
}

func TestCleanup(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	writeAged(t, filepath.Join(store.Root(), "old.pdf"), 25*time.Hour, now)
	writeAged(t, filepath.Join(store.Root(), "nested", "old.png"), 48*time.Hour, now)
	writeAged(t, filepath.Join(store.Root(), "fresh.pdf"), time.Hour, now)
	writeAged(t, filepath.Join(store.Root(), "boundary.pdf"), RetentionWindow-time.Second, now)
	writeAged(t, filepath.Join(store.Root(), ".keep"), 72*time.Hour, now)

	removed, err := store.Cleanup(now)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.NoFileExists(t, filepath.Join(store.Root(), "old.pdf"))
	assert.NoFileExists(t, filepath.Join(store.Root(), "nested", "old.png"))
	assert.FileExists(t, filepath.Join(store.Root(), "fresh.pdf"))
	assert.FileExists(t, filepath.Join(store.Root(), "boundary.pdf"))
	assert.FileExists(t, filepath.Join(store.Root(), ".keep"))

	removed, err = store.Cleanup(now)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCleanup_SkippedWhileLocked(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	writeAged(t, filepath.Join(store.Root(), "old.pdf"), 25*time.Hour, now)

	held := flock.New(filepath.Join(store.Root(), cleanupLockName))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	removed, err := store.Cleanup(now)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.FileExists(t, filepath.Join(store.Root(), "old.pdf"))

	require.NoError(t, held.Unlock())

	removed, err = store.Cleanup(now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestList(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	writeAged(t, filepath.Join(store.Root(), "a.pdf"), 2*time.Hour, now)
	writeAged(t, filepath.Join(store.Root(), "b.png"), time.Hour, now)
	writeAged(t, filepath.Join(store.Root(), "sub", "c.JPG"), 3*time.Hour, now)
	writeAged(t, filepath.Join(store.Root(), "d.txt"), 4*time.Hour, now)
	writeAged(t, filepath.Join(store.Root(), ".cleanup.lock"), time.Minute, now)

	resources, err := store.List()
	require.NoError(t, err)
	require.Len(t, resources, 4)

	assert.Equal(t, "b.png", filepath.Base(resources[0].Path))
	assert.Equal(t, "image/png", resources[0].ContentType)
	assert.Equal(t, "application/pdf", resources[1].ContentType)
	assert.Equal(t, "image/jpeg", resources[2].ContentType)
	assert.Equal(t, "application/octet-stream", resources[3].ContentType)
	assert.Equal(t, int64(1), resources[0].Size)
	assert.True(t, filepath.IsAbs(resources[0].Path))
}

func TestEnsureWithin(t *testing.T) {
	store := newTestStore(t)
	inside := filepath.Join(store.Root(), "file.pdf")
	require.NoError(t, os.WriteFile(inside, []byte("x"), 0o600))

	got, err := store.EnsureWithin(inside)
	require.NoError(t, err)
	assert.Equal(t, inside, got)

	got, err = store.EnsureWithin(filepath.Join(store.Root(), "not", "yet", "there.pdf"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root(), "not", "yet", "there.pdf"), got)

	outside := t.TempDir()
	rejected := []string{
		filepath.Join(store.Root(), "..", "escape.pdf"),
		filepath.Join(store.Root(), "sub", "..", "..", "escape.pdf"),
		filepath.Join(outside, "file.pdf"),
		"/etc/passwd",
	}
	for _, p := range rejected {
		_, err := store.EnsureWithin(p)
		assert.ErrorIs(t, err, errs.ErrAccessDenied, p)
	}

	link := filepath.Join(store.Root(), "link")
	require.NoError(t, os.Symlink(outside, link))
	_, err = store.EnsureWithin(filepath.Join(link, "file.pdf"))
	assert.ErrorIs(t, err, errs.ErrAccessDenied, "symlinks leaving the root are rejected")
}

func TestReadBase64(t *testing.T) {
	store := newTestStore(t)
	path, err := store.WriteUnique("hello.txt", []byte("hello"))
	require.NoError(t, err)

	encoded, resolved, err := store.ReadBase64(path)
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", encoded)
	assert.Equal(t, path, resolved)

	_, resolved, err = store.ReadBase64(filepath.Base(path))
	require.NoError(t, err)
	assert.Equal(t, path, resolved)

	_, _, err = store.ReadBase64("../outside.txt")
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	_, _, err = store.ReadBase64(filepath.Join(store.Root(), "missing.pdf"))
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, _, err = store.ReadBase64(filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorIs(t, err, errs.ErrAccessDenied)
}

func TestOutputPath(t *testing.T) {
	store := newTestStore(t)

	got, err := store.OutputPath("out/merged.pdf", "merged.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root(), "out", "merged.pdf"), got)
	assert.DirExists(t, filepath.Join(store.Root(), "out"))

	abs := filepath.Join(store.Root(), "abs.pdf")
	got, err = store.OutputPath(abs, "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, abs, got)

	got, err = store.OutputPath("", "rotated.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root(), "rotated.pdf"), got)

	_, err = store.OutputPath(filepath.Join(t.TempDir(), "x.pdf"), "x.pdf")
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	_, err = store.OutputPath("../x.pdf", "x.pdf")
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	dir, err := store.OutputDir("pages", "images")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(store.Root(), "pages"), dir)

	dir, err = store.OutputDir("", "images")
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestOutputPath_HiddenNames(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		path     string
		expected string
	}{
		{path: ".x.pdf", expected: "x.pdf"},
		{path: ".hidden/..y.pdf", expected: filepath.Join("hidden", "y.pdf")},
		{path: "out/...", expected: filepath.Join("out", "fallback.pdf")},
		{path: filepath.Join(store.Root(), ".abs.pdf"), expected: "abs.pdf"},
	}
	for _, tt := range tests {
		got, err := store.OutputPath(tt.path, "fallback.pdf")
		require.NoError(t, err, tt.path)
		assert.Equal(t, filepath.Join(store.Root(), tt.expected), got, tt.path)
	}

	written, err := store.OutputPath(".listed.pdf", "x.pdf")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(written, []byte("%PDF"), 0o600))
	resources, err := store.List()
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, written, resources[0].Path)

	dir, err := store.OutputDir(".pages", "images")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root(), "pages"), dir)
}

func TestContainment_RootItself(t *testing.T) {
	store := newTestStore(t)

	_, err := store.EnsureWithin(store.Root())
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	for _, p := range []string{store.Root(), ".", "sub/.."} {
		_, _, err = store.ReadBase64(p)
		assert.ErrorIs(t, err, errs.ErrAccessDenied, p)
	}
}
