package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"photosync/cache"
	"photosync/copier"
	"photosync/logger"
	"photosync/model"
	"photosync/planner"
	"photosync/scanner"
)

// Syncer runs one pass of the content-addressed mirror: index both trees,
// diff them by digest, copy what the destination is missing, persist the
// metadata cache. Invoked once per scheduled run; no state survives the
// process except the cache database.
type Syncer struct {
	Src   string
	Dst   string
	Cache *cache.Cache

	HashWorkers   int
	CopyWorkers   int
	IgnoreList    []string
	ProgressEvery int
	DryRun        bool
}

// New validates the roots. A missing or non-directory source is fatal; the
// destination is created when absent.
func New(src, dst string, c *cache.Cache) (*Syncer, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return nil, fmt.Errorf("invalid src path: %w", err)
	}

	absDst, err := filepath.Abs(dst)
	if err != nil {
		return nil, fmt.Errorf("invalid dst path: %w", err)
	}

	info, err := os.Stat(absSrc)
	if err != nil {
		return nil, fmt.Errorf("source directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", absSrc)
	}

	if info, err := os.Stat(absDst); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("destination %s is not a directory", absDst)
	}
	if err := os.MkdirAll(absDst, 0755); err != nil {
		return nil, fmt.Errorf("failed to create dst dir: %w", err)
	}

	return &Syncer{
		Src:         absSrc,
		Dst:         absDst,
		Cache:       c,
		HashWorkers: 4,
		CopyWorkers: 1,
	}, nil
}

// Run executes one full sync pass and reports what happened. Per-file
// problems end up in the report, not in the returned error; the error is
// reserved for cancellation and cache persistence failures.
func (s *Syncer) Run(ctx context.Context) (*model.Report, error) {
	report := &model.Report{
		Source:      s.Src,
		Destination: s.Dst,
		StartedAt:   time.Now(),
	}

	var srcRes, dstRes *scanner.Result

	// the two trees share no mutable state besides the cache, which is
	// keyed by path and safe for concurrent use
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		srcRes, err = s.newScanner().Scan(gctx, s.Src)
		return err
	})
	g.Go(func() error {
		var err error
		dstRes, err = s.newScanner().Scan(gctx, s.Dst)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.SourceFiles = srcRes.Files
	report.DestFiles = dstRes.Files
	report.Warnings = append(srcRes.Warnings, dstRes.Warnings...)

	actions := planner.Plan(srcRes.Index, dstRes.Index)
	report.Duplicates = srcRes.Indexed - len(actions)

	logger.Log.Info("plan computed",
		zap.Int("source_files", srcRes.Files),
		zap.Int("dest_files", dstRes.Files),
		zap.Int("to_copy", len(actions)),
		zap.Int("duplicates", report.Duplicates))

	if s.DryRun {
		for _, action := range actions {
			logger.Log.Info("would copy",
				zap.String("src", action.SrcPath),
				zap.String("dst", action.DstName))
		}

		report.Duration = time.Since(report.StartedAt)
		return report, nil
	}

	cp := copier.New(s.Dst, s.CopyWorkers, s.Cache)
	cp.ProgressEvery = s.ProgressEvery
	copied, bytesCopied, copyErrs := cp.Run(ctx, actions, dstRes.Index)

	report.Copied = copied
	report.BytesCopied = bytesCopied
	report.CopyErrors = copyErrs
	report.Duration = time.Since(report.StartedAt)

	// persist only after the pass ran to completion; a cancelled run keeps
	// the previous cache intact and just rehashes next time
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if err := s.Cache.Persist(); err != nil {
		return report, err
	}

	return report, nil
}

func (s *Syncer) newScanner() *scanner.Scanner {
	sc := scanner.New(s.Cache, s.HashWorkers)
	sc.IgnoreList = s.IgnoreList
	sc.ProgressEvery = s.ProgressEvery
	return sc
}
