package scanner

import (
	"context"
	"fmt"
	"io/fs"
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

// Scanner builds a digest index of a directory tree. Digests come from the
// metadata cache when the file's fingerprint is unchanged, and from
// hashing otherwise; hashing runs on a bounded worker pool.
type Scanner struct {
	Cache         *cache.Cache
	Workers       int
	IgnoreList    []string
	ProgressEvery int

	// HashFile is swappable so tests can count hasher invocations.
	HashFile func(path string) (digest.Digest, error)
}

func New(c *cache.Cache, workers int) *Scanner {
	if workers < 1 {
		workers = 1
	}

	return &Scanner{
		Cache:    c,
		Workers:  workers,
		HashFile: digest.File,
	}
}

// Result is what one tree scan produced. Files counts every regular file
// seen; Indexed counts the ones that got a digest (the difference is the
// unreadable ones, reported in Warnings).
type Result struct {
	Index    *model.Index
	Files    int
	Indexed  int
	Warnings []model.Warning
}

// Scan walks root and returns its digest index plus warnings for files
// that could not be read. Only regular files count; symlinks, sockets and
// the like are ignored. A file vanishing or failing mid-scan is a
// warning, not an abort.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	files, warnings, err := s.collect(root)
	if err != nil {
		return nil, err
	}

	index := model.NewIndex()

	var (
		mu          sync.Mutex
		indexed     atomic.Int64
		hashed      atomic.Int64
		hashedBytes atomic.Int64
		processed   atomic.Int64
	)

	total := len(files)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)

	for _, rec := range files {
		rec := rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			d, ok := s.Cache.Lookup(rec.Path, rec.Size, rec.ModTime)
			if !ok {
				var hashErr error
				d, hashErr = s.HashFile(rec.Path)
				if hashErr != nil {
					logger.Log.Warn("failed to hash file, skipping",
						zap.String("path", rec.Path),
						zap.Error(hashErr))

					mu.Lock()
					warnings = append(warnings, model.Warning{Path: rec.Path, Err: hashErr})
					mu.Unlock()
					return nil
				}

				s.Cache.Store(rec.Path, rec.Size, rec.ModTime, d)
				hashed.Add(1)
				hashedBytes.Add(rec.Size)
			}

			rec.Digest = d
			index.Add(rec)
			index.AddName(filepath.Base(rec.Path))
			indexed.Add(1)

			if n := processed.Add(1); s.ProgressEvery > 0 && n%int64(s.ProgressEvery) == 0 {
				logger.Log.Info("scan progress",
					zap.String("root", root),
					zap.Int64("processed", n),
					zap.Int("total", total),
					zap.String("hashed", humanize.Bytes(uint64(hashedBytes.Load()))))
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Log.Debug("scan finished",
		zap.String("root", root),
		zap.Int("files", total),
		zap.Int("distinct", index.Len()),
		zap.Int64("hashed_files", hashed.Load()),
		zap.String("hashed_bytes", humanize.Bytes(uint64(hashedBytes.Load()))))

	return &Result{
		Index:    index,
		Files:    total,
		Indexed:  int(indexed.Load()),
		Warnings: warnings,
	}, nil
}

// collect walks the tree and gathers the regular files worth hashing.
func (s *Scanner) collect(root string) ([]model.FileRecord, []model.Warning, error) {
	var (
		files    []model.FileRecord
		warnings []model.Warning
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to walk %s: %w", root, err)
			}

			warnings = append(warnings, model.Warning{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		if s.ignored(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			warnings = append(warnings, model.Warning{Path: path, Err: err})
			return nil
		}

		files = append(files, model.FileRecord{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return files, warnings, nil
}

func (s *Scanner) ignored(name string) bool {
	for _, pattern := range s.IgnoreList {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}

	return false
}
