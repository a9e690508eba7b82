package copier

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"photosync/cache"
	"photosync/digest"
	"photosync/logger"
	"photosync/model"
)

// Copier executes a sync plan against the destination root. Every file
// lands via a temp file in the destination directory followed by a rename,
// so a reader of the destination never sees a partial file and an
// interrupted run leaves it consistent. Failures are collected per action;
// they never stop the rest of the plan.
type Copier struct {
	DstRoot       string
	Workers       int
	Cache         *cache.Cache
	ProgressEvery int
}

func New(dstRoot string, workers int, c *cache.Cache) *Copier {
	if workers < 1 {
		workers = 1
	}

	return &Copier{
		DstRoot: dstRoot,
		Workers: workers,
		Cache:   c,
	}
}

// Run performs the planned copies, adding each installed digest to dst as
// it goes so a digest that slipped into the plan twice is copied once.
func (c *Copier) Run(ctx context.Context, actions []model.CopyAction, dst *model.Index) (copied int, bytesCopied int64, errs []model.CopyError) {
	var (
		mu      sync.Mutex
		done    atomic.Int64
		copiedN atomic.Int64
		bytesN  atomic.Int64
	)

	total := len(actions)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Workers)

	for _, action := range actions {
		action := action
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if dst.Has(action.Digest) {
				logger.Log.Debug("digest already in destination, skipping",
					zap.String("src", action.SrcPath))
				return nil
			}

			n, err := c.copyOne(action, dst)
			if err != nil {
				logger.Log.Error("copy failed",
					zap.String("src", action.SrcPath),
					zap.String("dst", action.DstName),
					zap.Error(err))

				mu.Lock()
				errs = append(errs, model.CopyError{Action: action, Err: err})
				mu.Unlock()
			} else if n >= 0 {
				copiedN.Add(1)
				bytesN.Add(n)
			}

			if d := done.Add(1); c.ProgressEvery > 0 && d%int64(c.ProgressEvery) == 0 {
				logger.Log.Info("copy progress",
					zap.Int64("done", d),
					zap.Int("total", total),
					zap.String("copied", humanize.Bytes(uint64(bytesN.Load()))))
			}

			return nil
		})
	}

	_ = g.Wait()

	return int(copiedN.Load()), bytesN.Load(), errs
}

// copyOne streams the source file through a digesting writer into a temp
// file, then renames it into place. Returns the byte count, or -1 when
// the file turned out to be a duplicate and was discarded.
func (c *Copier) copyOne(action model.CopyAction, dst *model.Index) (int64, error) {
	src, err := os.Open(action.SrcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open src: %w", err)
	}

	defer func(src *os.File) {
		_ = src.Close()
	}(src)

	tmp, err := os.CreateTemp(c.DstRoot, ".photosync-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	dw := digest.NewWriter(tmp)
	n, err := io.Copy(dw, src)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to write: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	got := dw.Sum()
	if got != action.Digest {
		// source changed between scan and copy; what we actually read is
		// what counts for identity
		logger.Log.Warn("file changed since scan",
			zap.String("path", action.SrcPath))
	}

	if dst.Has(got) {
		_ = os.Remove(tmpPath)
		return -1, nil
	}

	dstPath := filepath.Join(c.DstRoot, action.DstName)
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to rename: %w", err)
	}

	rec := model.FileRecord{Path: dstPath, Size: n, Digest: got}
	if info, err := os.Stat(dstPath); err == nil {
		rec.ModTime = info.ModTime()
		if c.Cache != nil {
			// remember the new destination file so the next run serves it
			// from cache instead of rehashing
			c.Cache.Store(dstPath, info.Size(), info.ModTime(), got)
		}
	}

	dst.Add(rec)
	dst.AddName(action.DstName)

	logger.Log.Info("copied",
		zap.String("src", action.SrcPath),
		zap.String("dst", dstPath),
		zap.String("size", humanize.Bytes(uint64(n))))

	return n, nil
}
