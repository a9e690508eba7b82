package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"photosync/cache"
	"photosync/db"
	"photosync/logger"
	"photosync/repository"
	"photosync/syncer"
)

var (
	syncDryRun      bool
	syncHashWorkers int
	syncCopyWorkers int
)

var syncCmd = &cobra.Command{
	Use:   "sync [source] [destination]",
	Short: "Mirror new photos from source into destination once",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		src, dst := args[0], args[1]

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := cache.Load(db.DB)
		if err != nil {
			return err
		}

		s, err := syncer.New(src, dst, c)
		if err != nil {
			return err
		}

		s.HashWorkers = cfg.HashWorkers
		if syncHashWorkers > 0 {
			s.HashWorkers = syncHashWorkers
		}
		s.CopyWorkers = cfg.CopyWorkers
		if syncCopyWorkers > 0 {
			s.CopyWorkers = syncCopyWorkers
		}
		s.IgnoreList = cfg.IgnoreList
		s.ProgressEvery = cfg.ProgressEvery
		s.DryRun = syncDryRun

		logger.Log.Info("starting sync",
			zap.String("src", s.Src),
			zap.String("dst", s.Dst),
			zap.Bool("dry_run", syncDryRun))

		report, err := s.Run(ctx)
		if err != nil {
			return err
		}

		if !syncDryRun {
			repo := repository.NewRunRepository(db.DB)
			if err := repo.Save(report); err != nil {
				logger.Log.Warn("failed to save run history",
					zap.Error(err))
			}
		}

		fmt.Printf("done: %d scanned, %d copied (%s), %d duplicates skipped, %d warnings, %d failed in %s\n",
			report.SourceFiles,
			report.Copied,
			humanize.Bytes(uint64(report.BytesCopied)),
			report.Duplicates,
			len(report.Warnings),
			len(report.CopyErrors),
			report.Duration.Round(time.Millisecond))

		if report.Failed() {
			return fmt.Errorf("%d of %d copies failed", len(report.CopyErrors), report.Copied+len(report.CopyErrors))
		}

		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Print the plan without copying")
	syncCmd.Flags().IntVar(&syncHashWorkers, "hash-workers", 0, "Parallel hash workers (0 = config default)")
	syncCmd.Flags().IntVar(&syncCopyWorkers, "copy-workers", 0, "Parallel copy workers (0 = config default)")
	rootCmd.AddCommand(syncCmd)
}
