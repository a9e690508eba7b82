package copier

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"photosync/digest"
	"photosync/model"
)

func writeFile(t *testing.T, dir, name, content string) (string, digest.Digest) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	d, err := digest.File(path)
	require.NoError(t, err)
	return path, d
}

func action(path string, d digest.Digest, name string, size int64) model.CopyAction {
	return model.CopyAction{Digest: d, SrcPath: path, DstName: name, Size: size}
}

func TestRun_CopiesPlannedFiles(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	pathA, digA := writeFile(t, srcDir, "IMG_0001.jpg", "photo A")
	pathB, digB := writeFile(t, srcDir, "IMG_0002.jpg", "photo B")

	dst := model.NewIndex()
	c := New(dstDir, 2, nil)

	copied, bytesCopied, errs := c.Run(context.Background(), []model.CopyAction{
		action(pathA, digA, "IMG_0001.jpg", 7),
		action(pathB, digB, "IMG_0002.jpg", 7),
	}, dst)

	require.Empty(t, errs)
	require.Equal(t, 2, copied)
	require.EqualValues(t, 14, bytesCopied)

	gotA, err := digest.File(filepath.Join(dstDir, "IMG_0001.jpg"))
	require.NoError(t, err)
	require.Equal(t, digA, gotA)

	require.True(t, dst.Has(digA))
	require.True(t, dst.Has(digB))
}

func TestRun_InRunDuplicateCopiedOnce(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	pathA, dig := writeFile(t, srcDir, "IMG_0001.jpg", "same photo")
	pathB, _ := writeFile(t, srcDir, "IMG_0001 (2).jpg", "same photo")

	dst := model.NewIndex()
	c := New(dstDir, 1, nil)

	copied, _, errs := c.Run(context.Background(), []model.CopyAction{
		action(pathA, dig, "IMG_0001.jpg", 10),
		action(pathB, dig, "IMG_0001 (2).jpg", 10),
	}, dst)

	require.Empty(t, errs)
	require.Equal(t, 1, copied)

	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	pathA, digA := writeFile(t, srcDir, "IMG_0001.jpg", "photo A")
	pathB, digB := writeFile(t, srcDir, "IMG_0002.jpg", "photo B")
	pathC, digC := writeFile(t, srcDir, "IMG_0003.jpg", "photo C")

	// a directory squatting on the planned name makes the rename fail
	require.NoError(t, os.Mkdir(filepath.Join(dstDir, "IMG_0002.jpg"), 0755))

	dst := model.NewIndex()
	c := New(dstDir, 1, nil)

	copied, _, errs := c.Run(context.Background(), []model.CopyAction{
		action(pathA, digA, "IMG_0001.jpg", 7),
		action(pathB, digB, "IMG_0002.jpg", 7),
		action(pathC, digC, "IMG_0003.jpg", 7),
	}, dst)

	require.Len(t, errs, 1)
	require.Equal(t, pathB, errs[0].Action.SrcPath)
	require.Equal(t, 2, copied)

	require.FileExists(t, filepath.Join(dstDir, "IMG_0001.jpg"))
	require.FileExists(t, filepath.Join(dstDir, "IMG_0003.jpg"))
}

func TestRun_MissingSourceIsError(t *testing.T) {
	dstDir := t.TempDir()

	dst := model.NewIndex()
	c := New(dstDir, 1, nil)

	copied, _, errs := c.Run(context.Background(), []model.CopyAction{
		action(filepath.Join(t.TempDir(), "vanished.jpg"), digest.Digest{1}, "vanished.jpg", 1),
	}, dst)

	require.Equal(t, 0, copied)
	require.Len(t, errs, 1)
}

func TestRun_NoTempResidueAfterFailure(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	pathA, digA := writeFile(t, srcDir, "IMG_0001.jpg", "photo A")

	require.NoError(t, os.Mkdir(filepath.Join(dstDir, "IMG_0001.jpg"), 0755))

	dst := model.NewIndex()
	c := New(dstDir, 1, nil)

	_, _, errs := c.Run(context.Background(), []model.CopyAction{
		action(pathA, digA, "IMG_0001.jpg", 7),
	}, dst)
	require.Len(t, errs, 1)

	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	for _, entry := range entries {
		require.False(t, strings.HasSuffix(entry.Name(), ".tmp"),
			"temp file %s left behind", entry.Name())
	}
}

func TestRun_FileChangedSinceScanStillInstalledOnce(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	path, _ := writeFile(t, srcDir, "IMG_0001.jpg", "new content")

	// plan carries a stale digest; what is actually read wins
	stale := digest.Digest{9, 9, 9}

	dst := model.NewIndex()
	c := New(dstDir, 1, nil)

	copied, _, errs := c.Run(context.Background(), []model.CopyAction{
		action(path, stale, "IMG_0001.jpg", 11),
	}, dst)

	require.Empty(t, errs)
	require.Equal(t, 1, copied)

	installed, err := digest.File(filepath.Join(dstDir, "IMG_0001.jpg"))
	require.NoError(t, err)
	require.True(t, dst.Has(installed))
	require.False(t, dst.Has(stale))
}
