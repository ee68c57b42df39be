package safeio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	require.NoError(t, AtomicWrite(path, []byte("hello")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no leftover temp file")
}

func TestAtomicWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, AtomicWrite(path, []byte("v1")))
	require.NoError(t, AtomicWrite(path, []byte("v2")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestIsSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(real, []byte("x"), 0o644))

	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(real, link))

	isLink, err := IsSymlink(real)
	require.NoError(t, err)
	assert.False(t, isLink)

	isLink, err = IsSymlink(link)
	require.NoError(t, err)
	assert.True(t, isLink)
}

func TestEnsureNotSymlinkRejectsLink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(real, []byte("x"), 0o644))
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(real, link))

	assert.NoError(t, EnsureNotSymlink(real))

	err := EnsureNotSymlink(link)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindSymlink))
}

func TestEnsureNotSymlinkMissingIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, EnsureNotSymlink(filepath.Join(dir, "missing")))
}

func TestCopyDirSafeSkipsSymlinks(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "dst")

	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(src, "a.txt"), filepath.Join(src, "link.txt")))

	count, err := CopyDirSafe(src, dst)
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	_, err = os.Stat(filepath.Join(dst, "a.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dst, "sub", "b.txt"))
	assert.NoError(t, err)
	_, err = os.Lstat(filepath.Join(dst, "link.txt"))
	assert.True(t, os.IsNotExist(err), "symlink should have been skipped")
}

func TestCopyDirSafeRefusesSymlinkSource(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(real, []byte("x"), 0o644))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(real, link))

	_, err := CopyDirSafe(link, filepath.Join(dir, "dst"))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindSymlink))
}
