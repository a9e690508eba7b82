package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"photosync/db"
	"photosync/model"
)

func report(src string, copied int, bytes int64, failures int) *model.Report {
	r := &model.Report{
		Source:      src,
		Destination: "/mirror",
		SourceFiles: copied + 1,
		Copied:      copied,
		Duplicates:  1,
		BytesCopied: bytes,
		StartedAt:   time.Now(),
		Duration:    1500 * time.Millisecond,
	}

	for i := 0; i < failures; i++ {
		r.CopyErrors = append(r.CopyErrors, model.CopyError{})
	}

	return r
}

func TestSaveAndGetRecent(t *testing.T) {
	gdb, err := db.Open(":memory:")
	require.NoError(t, err)

	repo := NewRunRepository(gdb)
	require.NoError(t, repo.Save(report("/photos", 3, 3000, 0)))
	require.NoError(t, repo.Save(report("/photos", 1, 1000, 1)))

	runs, err := repo.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "/photos", runs[0].Source)
	require.Equal(t, int64(1500), runs[0].DurationMS)
}

func TestGetRecent_RespectsLimit(t *testing.T) {
	gdb, err := db.Open(":memory:")
	require.NoError(t, err)

	repo := NewRunRepository(gdb)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(report("/photos", i, int64(i)*100, 0)))
	}

	runs, err := repo.GetRecent(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
}

func TestGetStats(t *testing.T) {
	gdb, err := db.Open(":memory:")
	require.NoError(t, err)

	repo := NewRunRepository(gdb)
	require.NoError(t, repo.Save(report("/photos", 3, 3000, 0)))
	require.NoError(t, repo.Save(report("/photos", 2, 2000, 2)))

	stats, err := repo.GetStats()
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.Runs)
	require.EqualValues(t, 5, stats.Copied)
	require.EqualValues(t, 5000, stats.BytesCopied)
	require.EqualValues(t, 2, stats.Failures)
}
