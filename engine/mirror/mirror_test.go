package mirror

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func read(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}

func TestSync(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "/raw/config.cpp", "class A {};")
	write(t, fs, "/raw/data/tex.paa", "new texture")
	write(t, fs, "/raw/data/same.paa", "abc")

	write(t, fs, "/patched/data/tex.paa", "old")
	write(t, fs, "/patched/data/same.paa", "xyz")
	write(t, fs, "/patched/data/stale.paa", "gone")
	write(t, fs, "/patched/old/deep/file.txt", "gone")

	st, err := Sync(fs, "/raw", "/patched")
	require.NoError(t, err)
	assert.Equal(t, Stats{Copied: 2, Unchanged: 1, Removed: 2}, st)

	assert.Equal(t, "class A {};", read(t, fs, "/patched/config.cpp"))
	assert.Equal(t, "new texture", read(t, fs, "/patched/data/tex.paa"))
	// same size counts as unchanged
	assert.Equal(t, "xyz", read(t, fs, "/patched/data/same.paa"))
	assert.False(t, exists(t, fs, "/patched/data/stale.paa"))
	assert.False(t, exists(t, fs, "/patched/old"))
}

func TestSyncIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "/raw/a.txt", "a")
	write(t, fs, "/raw/sub/b.txt", "bb")

	_, err := Sync(fs, "/raw", "/patched")
	require.NoError(t, err)
	st, err := Sync(fs, "/raw", "/patched")
	require.NoError(t, err)
	assert.Equal(t, Stats{Unchanged: 2}, st)
}

func TestSyncMissingSource(t *testing.T) {
	_, err := Sync(afero.NewMemMapFs(), "/nope", "/patched")
	assert.Error(t, err)
}

func TestCopyFileKeepsModTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "/a.txt", "hello")
	mtime := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fs.Chtimes("/a.txt", mtime, mtime))

	require.NoError(t, CopyFile(fs, "/a.txt", "/out/nested/a.txt"))
	info, err := fs.Stat("/out/nested/a.txt")
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
	assert.Equal(t, "hello", read(t, fs, "/out/nested/a.txt"))
}

func TestOverlay(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "/edits/vehicle/body.p3d", "model")
	write(t, fs, "/edits/vehicle/body.psd", "layers")
	write(t, fs, "/patched/vehicle/body.p3d", "old model")

	n, err := Overlay(fs, "/edits", "/patched", "*.p3d")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "model", read(t, fs, "/patched/vehicle/body.p3d"))
	assert.False(t, exists(t, fs, "/patched/vehicle/body.psd"))

	n, err = CopyTree(fs, "/edits", "/all")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
