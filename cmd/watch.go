package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"photosync/cache"
	"photosync/daemon"
	"photosync/db"
	"photosync/logger"
	"photosync/model"
	"photosync/pipeline"
	"photosync/repository"
	"photosync/syncer"
	"photosync/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [source] [destination]",
	Short: "Keep destination mirrored, re-syncing when the source changes",
	Args:  cobra.ExactArgs(2),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	src, dst := args[0], args[1]

	c, err := cache.Load(db.DB)
	if err != nil {
		return err
	}

	s, err := syncer.New(src, dst, c)
	if err != nil {
		return err
	}

	s.HashWorkers = cfg.HashWorkers
	s.CopyWorkers = cfg.CopyWorkers
	s.IgnoreList = cfg.IgnoreList
	s.ProgressEvery = cfg.ProgressEvery

	w, err := watcher.New(256)
	if err != nil {
		return err
	}
	if err := w.Watch(s.Src); err != nil {
		return err
	}

	repo := repository.NewRunRepository(db.DB)
	state := daemon.NewState(s.Src, s.Dst)

	srv := daemon.NewServer(state, repo, cfg.StatusPort)
	srv.Start()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	runOnce := func() {
		state.SetSyncing()
		report, err := s.Run(ctx)
		if err != nil {
			logger.Log.Error("sync run failed", zap.Error(err))
			if report == nil {
				report = &model.Report{Source: s.Src, Destination: s.Dst}
			}
		} else if err := repo.Save(report); err != nil {
			logger.Log.Warn("failed to save run history", zap.Error(err))
		}

		state.RecordRun(report)
	}

	// mirror once up front, then per quiesced batch of events
	runOnce()

	batchCh := pipeline.Debounce(w.Events(), time.Duration(cfg.DebounceMS)*time.Millisecond)
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)

		for batch := range batchCh {
			logger.Log.Info("source changed, re-syncing",
				zap.Int("events", len(batch)))
			runOnce()
		}
	}()

	logger.Log.Info("watch started",
		zap.String("src", s.Src),
		zap.String("dst", s.Dst),
		zap.Int("status_port", cfg.StatusPort))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Info("shutting down",
			zap.String("signal", sig.String()))
	case <-srv.StopCh():
		logger.Log.Info("stop requested via API")
	}

	cancel()
	w.Stop()
	<-doneCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
