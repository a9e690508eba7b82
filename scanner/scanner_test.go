package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"photosync/cache"
	"photosync/db"
	"photosync/digest"
)

func openCache(t *testing.T) *cache.Cache {
	t.Helper()

	gdb, err := db.Open(":memory:")
	require.NoError(t, err)

	c, err := cache.Load(gdb)
	require.NoError(t, err)
	return c
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScan_CollapsesDuplicatesToFirstPath(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "IMG_0001 (2).jpg", "same bytes")
	writeFile(t, dir, "IMG_0001.jpg", "same bytes")
	writeFile(t, dir, "IMG_0002.jpg", "other bytes")

	s := New(openCache(t), 4)

	res, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	require.Equal(t, 3, res.Files)
	require.Equal(t, 3, res.Indexed)
	require.Equal(t, 2, res.Index.Len())

	d, err := digest.File(first)
	require.NoError(t, err)

	rec, ok := res.Index.Get(d)
	require.True(t, ok)
	// "IMG_0001 (2).jpg" sorts before "IMG_0001.jpg" (space < dot)
	require.Equal(t, first, rec.Path)
}

func TestScan_SkipsSymlinksAndIgnored(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "IMG_0001.jpg", "bytes")
	writeFile(t, dir, ".DS_Store", "junk")
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.jpg")))

	s := New(openCache(t), 2)
	s.IgnoreList = []string{".DS_Store"}

	res, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 1, res.Files)
	require.Equal(t, 1, res.Index.Len())
}

func TestScan_WalksSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2024/05/IMG_0001.jpg", "a")
	writeFile(t, dir, "2024/06/IMG_0002.jpg", "b")

	s := New(openCache(t), 2)

	res, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 2, res.Index.Len())
	require.True(t, res.Index.HasName("IMG_0001.jpg"))
	require.True(t, res.Index.HasName("IMG_0002.jpg"))
}

func TestScan_ServesUnchangedFilesFromCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "IMG_0001.jpg", "aaaa")
	writeFile(t, dir, "IMG_0002.jpg", "bbbb")

	c := openCache(t)

	var calls atomic.Int64
	countingHash := func(path string) (digest.Digest, error) {
		calls.Add(1)
		return digest.File(path)
	}

	s := New(c, 2)
	s.HashFile = countingHash

	_, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())

	// second scan with unchanged files must not rehash anything
	s2 := New(c, 2)
	s2.HashFile = countingHash

	res, err := s2.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
	require.Equal(t, 2, res.Index.Len())
}

func TestScan_UnreadableFileIsWarningNotAbort(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "IMG_0001.jpg", "aaaa")
	writeFile(t, dir, "IMG_0002.jpg", "bbbb")

	s := New(openCache(t), 2)
	s.HashFile = func(path string) (digest.Digest, error) {
		if path == bad {
			return digest.Digest{}, errors.New("simulated read failure")
		}
		return digest.File(path)
	}

	res, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	require.Equal(t, bad, res.Warnings[0].Path)
	require.Equal(t, 2, res.Files)
	require.Equal(t, 1, res.Indexed)
	require.Equal(t, 1, res.Index.Len())
}

func TestScan_MissingRootFails(t *testing.T) {
	s := New(openCache(t), 1)

	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
