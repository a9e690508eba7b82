package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"photosync/daemon"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View the state of a running watch daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var snap daemon.Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return fmt.Errorf("failed to decode status response: %w", err)
		}

		uptime := time.Since(snap.StartedAt).Round(time.Second)
		fmt.Printf("%s -> %s\n", snap.Src, snap.Dst)
		fmt.Printf("status: %s, runs: %d, uptime: %s\n", snap.Status, snap.Runs, uptime)

		if snap.LastRun != nil {
			fmt.Printf("last run: %d scanned, %d copied, %d duplicates, %d failed in %s\n",
				snap.LastRun.SourceFiles,
				snap.LastRun.Copied,
				snap.LastRun.Duplicates,
				snap.LastRun.Failures,
				snap.LastRun.Duration)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
